package errors

import (
	"context"
	"fmt"
	"otmqtt-bridge/pkg/logger"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	diagnosticPublisher DiagnosticPublisher
}

// DiagnosticPublisher interface for publishing diagnostics
type DiagnosticPublisher interface {
	PublishDiagnostic(ctx context.Context, code int, message string) error
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(publisher DiagnosticPublisher) *ErrorHandler {
	return &ErrorHandler{
		diagnosticPublisher: publisher,
	}
}

// Handle processes an error with appropriate logging and diagnostics
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	// Type switch on error types
	switch e := err.(type) {
	case *FrameError:
		h.handleFrameError(ctx, e)
	case *MetadataError:
		h.handleMetadataError(ctx, e)
	case *MQTTError:
		h.handleMQTTError(ctx, e)
	case *ConfigError:
		h.handleConfigError(ctx, e)
	case *ValidationError:
		h.handleValidationError(ctx, e)
	case *BridgeError:
		h.handleBridgeError(ctx, e)
	default:
		h.handleGenericError(ctx, err)
	}
}

// handleFrameError handles structural frame errors
func (h *ErrorHandler) handleFrameError(ctx context.Context, err *FrameError) {
	logBySeverity(err.Severity, "Frame", err.Error())
	h.publish(ctx, err.Code, fmt.Sprintf("Frame 0x%08X skipped: %s", err.Raw, err.MessageType))
}

// handleMetadataError handles register metadata mismatches
func (h *ErrorHandler) handleMetadataError(ctx context.Context, err *MetadataError) {
	logBySeverity(err.Severity, "Register metadata", err.Error())
	h.publish(ctx, err.Code, fmt.Sprintf("Register %d decoded partially: %s", err.RegisterID, err.Detail))
}

// handleMQTTError handles MQTT-specific errors
func (h *ErrorHandler) handleMQTTError(ctx context.Context, err *MQTTError) {
	logBySeverity(err.Severity, "MQTT", err.Error())
	h.publish(ctx, err.Code, fmt.Sprintf("Broker '%s': %s", err.Broker, err.Op))
}

// handleConfigError handles configuration errors
func (h *ErrorHandler) handleConfigError(ctx context.Context, err *ConfigError) {
	// Config errors are always critical
	logger.LogError("🔴 CRITICAL Configuration Error: %s", err.Error())
	h.publish(ctx, err.Code, fmt.Sprintf("Config field '%s': %s", err.Field, err.Op))
}

// handleValidationError handles validation errors
func (h *ErrorHandler) handleValidationError(ctx context.Context, err *ValidationError) {
	logger.LogWarn("⚠️ Validation Error: %s", err.Error())
	h.publish(ctx, err.Code, fmt.Sprintf("Validation failed for '%s'", err.Field))
}

// handleBridgeError handles generic bridge errors
func (h *ErrorHandler) handleBridgeError(ctx context.Context, err *BridgeError) {
	logBySeverity(err.Severity, "Bridge", err.Error())
	h.publish(ctx, err.Code, err.Op)
}

// handleGenericError handles non-typed errors
func (h *ErrorHandler) handleGenericError(ctx context.Context, err error) {
	logger.LogError("❌ Untyped Error: %v", err)
	h.publish(ctx, CodeGeneric, err.Error())
}

// publish sends a diagnostic if a publisher is available
func (h *ErrorHandler) publish(ctx context.Context, code int, message string) {
	if h.diagnosticPublisher == nil {
		return
	}
	if publishErr := h.diagnosticPublisher.PublishDiagnostic(ctx, code, message); publishErr != nil {
		logger.LogDebug("Failed to publish error diagnostic: %v", publishErr)
	}
}

func logBySeverity(severity ErrorSeverity, area, message string) {
	switch severity {
	case SeverityCritical:
		logger.LogError("🔴 CRITICAL %s Error: %s", area, message)
	case SeverityError:
		logger.LogError("❌ %s Error: %s", area, message)
	case SeverityWarning:
		logger.LogWarn("⚠️ %s Warning: %s", area, message)
	default:
		logger.LogInfo("ℹ️ %s Info: %s", area, message)
	}
}

// IsRecoverable returns true if the error is recoverable
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}

	switch e := err.(type) {
	case *ConfigError:
		return false // Config errors are not recoverable
	case *FrameError, *MetadataError, *ValidationError:
		return true
	case *BridgeError:
		return e.Severity != SeverityCritical
	case *MQTTError:
		return e.Severity != SeverityCritical
	default:
		return true // Unknown errors are assumed recoverable
	}
}

// GetDiagnosticCode extracts the diagnostic code from an error
func GetDiagnosticCode(err error) int {
	if err == nil {
		return CodeOK
	}

	switch e := err.(type) {
	case *FrameError:
		return e.Code
	case *MetadataError:
		return e.Code
	case *MQTTError:
		return e.Code
	case *ConfigError:
		return e.Code
	case *ValidationError:
		return e.Code
	case *BridgeError:
		return e.Code
	default:
		return CodeGeneric
	}
}
