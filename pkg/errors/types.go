package errors

import (
	"errors"
	"fmt"
)

// ErrorSeverity defines the severity level of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// Diagnostic codes published on the diagnostic topic
const (
	CodeOK       = 0
	CodeConfig   = 1
	CodeMQTT     = 4
	CodeValidate = 5
	CodeFrame    = 10
	CodeMetadata = 11
	CodeGeneric  = 99
)

// Sentinel errors for errors.Is checks
var (
	// ErrPayloadFatal marks frames whose message type forbids payload decoding
	ErrPayloadFatal = errors.New("invalid frame class")

	// ErrMetadataMismatch marks register metadata the decoder cannot fully use
	ErrMetadataMismatch = errors.New("register metadata mismatch")
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// BridgeError is the base error type for all bridge errors
type BridgeError struct {
	Op       string        // Operation that failed
	Err      error         // Underlying error
	Severity ErrorSeverity // Error severity
	Code     int           // Diagnostic code for MQTT
}

// Error implements the error interface
func (e *BridgeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Severity, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Severity, e.Op)
}

// Unwrap returns the underlying error
func (e *BridgeError) Unwrap() error {
	return e.Err
}

// FrameError reports a data-link frame that cannot carry a payload
type FrameError struct {
	BridgeError
	Raw         uint32
	RegisterID  uint8
	MessageType string
}

// NewFrameError creates a new frame error wrapping ErrPayloadFatal
func NewFrameError(op string, raw uint32, registerID uint8, messageType string) *FrameError {
	return &FrameError{
		BridgeError: BridgeError{
			Op:       op,
			Err:      ErrPayloadFatal,
			Severity: SeverityWarning,
			Code:     CodeFrame,
		},
		Raw:         raw,
		RegisterID:  registerID,
		MessageType: messageType,
	}
}

// Error implements the error interface
func (e *FrameError) Error() string {
	return fmt.Sprintf("[%s] Frame 0x%08X (register %d, %s): %s: %v",
		e.Severity, e.Raw, e.RegisterID, e.MessageType, e.Op, e.Err)
}

// MetadataError reports register metadata that does not fit its decoder
type MetadataError struct {
	BridgeError
	RegisterID uint8
	Kind       string
	Detail     string
}

// NewMetadataError creates a new metadata error wrapping ErrMetadataMismatch
func NewMetadataError(registerID uint8, kind, detail string) *MetadataError {
	return &MetadataError{
		BridgeError: BridgeError{
			Op:       "decode",
			Err:      ErrMetadataMismatch,
			Severity: SeverityWarning,
			Code:     CodeMetadata,
		},
		RegisterID: registerID,
		Kind:       kind,
		Detail:     detail,
	}
}

// Error implements the error interface
func (e *MetadataError) Error() string {
	return fmt.Sprintf("[%s] Register %d (%s): %v: %s",
		e.Severity, e.RegisterID, e.Kind, e.Err, e.Detail)
}

// MQTTError represents errors from MQTT operations
type MQTTError struct {
	BridgeError
	Broker string
	Topic  string
	QoS    byte
}

// NewMQTTError creates a new MQTT error
func NewMQTTError(op string, err error, broker string) *MQTTError {
	return &MQTTError{
		BridgeError: BridgeError{
			Op:       op,
			Err:      err,
			Severity: SeverityError,
			Code:     CodeMQTT,
		},
		Broker: broker,
	}
}

// Error implements the error interface
func (e *MQTTError) Error() string {
	if e.Topic != "" {
		return fmt.Sprintf("[%s] MQTT broker '%s' (topic: %s): %s: %v",
			e.Severity, e.Broker, e.Topic, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] MQTT broker '%s': %s: %v",
		e.Severity, e.Broker, e.Op, e.Err)
}

// ConfigError represents configuration errors
type ConfigError struct {
	BridgeError
	Field string
	Value interface{}
}

// NewConfigError creates a new configuration error
func NewConfigError(op string, err error, field string) *ConfigError {
	return &ConfigError{
		BridgeError: BridgeError{
			Op:       op,
			Err:      err,
			Severity: SeverityCritical, // Config errors are critical
			Code:     CodeConfig,
		},
		Field: field,
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] Configuration field '%s': %s: %v",
			e.Severity, e.Field, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] Configuration: %s: %v",
		e.Severity, e.Op, e.Err)
}

// ValidationError represents validation errors
type ValidationError struct {
	BridgeError
	Field    string
	Expected interface{}
	Actual   interface{}
}

// NewValidationError creates a new validation error
func NewValidationError(field string, expected, actual interface{}) *ValidationError {
	return &ValidationError{
		BridgeError: BridgeError{
			Op:       "validation",
			Err:      fmt.Errorf("validation failed"),
			Severity: SeverityWarning,
			Code:     CodeValidate,
		},
		Field:    field,
		Expected: expected,
		Actual:   actual,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] Field '%s': expected %v, got %v",
		e.Severity, e.Field, e.Expected, e.Actual)
}
