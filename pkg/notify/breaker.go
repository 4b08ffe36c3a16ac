package notify

import (
	"context"

	"otmqtt-bridge/pkg/logger"
	"otmqtt-bridge/pkg/recovery"
)

// CircuitBreakerNotifier stops calling an unreachable notifier for a while
// so a dead chat service does not stall the frame workers on every event.
type CircuitBreakerNotifier struct {
	notifier       Notifier
	circuitBreaker *recovery.CircuitBreaker
	log            logger.ILogger
}

// NewCircuitBreakerNotifier wraps notifier with a circuit breaker
func NewCircuitBreakerNotifier(notifier Notifier, config recovery.CircuitBreakerConfig, log logger.ILogger) *CircuitBreakerNotifier {
	if log == nil {
		log = logger.NewStandardLogger()
	}
	return &CircuitBreakerNotifier{
		notifier:       notifier,
		circuitBreaker: recovery.NewCircuitBreaker(config),
		log:            log,
	}
}

// Send delivers message unless the circuit is open
func (n *CircuitBreakerNotifier) Send(ctx context.Context, message string) error {
	before := n.circuitBreaker.GetState()
	err := n.circuitBreaker.Call(func() error {
		return n.notifier.Send(ctx, message)
	})
	n.logStateChange(before)
	return err
}

func (n *CircuitBreakerNotifier) logStateChange(before recovery.CircuitState) {
	state := n.circuitBreaker.GetState()
	if state == before {
		return
	}
	switch state {
	case recovery.StateClosed:
		n.log.LogInfo("🟢 Notifier circuit CLOSED (delivery restored)")
	case recovery.StateOpen:
		n.log.LogWarn("🔴 Notifier circuit OPEN (%s)", n.circuitBreaker.GetStats())
	case recovery.StateHalfOpen:
		n.log.LogInfo("🟡 Notifier circuit HALF-OPEN (probing)")
	}
}

// GetState returns the circuit state
func (n *CircuitBreakerNotifier) GetState() recovery.CircuitState {
	return n.circuitBreaker.GetState()
}
