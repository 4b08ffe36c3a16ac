package mqtt

import "context"

// MessageHandler receives the payload of a subscribed topic
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Publisher publishes raw payloads
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte, retain bool) error
}

// Subscriber registers handlers for topics
type Subscriber interface {
	Subscribe(topic string, handler MessageHandler) error
}

// DiagnosticPublisher publishes bridge diagnostics
type DiagnosticPublisher interface {
	PublishDiagnostic(ctx context.Context, code int, message string) error
}

// ConnectionManager controls the broker connection
type ConnectionManager interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
}

// BridgeClient is everything the bridge needs from the transport
type BridgeClient interface {
	Publisher
	Subscriber
	DiagnosticPublisher
	ConnectionManager
}

// Compile-time verification that Client implements BridgeClient
var _ BridgeClient = (*Client)(nil)
