package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// TestFrameErrorCreation tests creating FrameError
func TestFrameErrorCreation(t *testing.T) {
	frameErr := NewFrameError("classify", 0x70190000, 25, "Unknown-DataId")

	if frameErr.RegisterID != 25 {
		t.Errorf("Expected RegisterID 25, got %d", frameErr.RegisterID)
	}
	if frameErr.Raw != 0x70190000 {
		t.Errorf("Expected Raw 0x70190000, got 0x%08X", frameErr.Raw)
	}
	if !errors.Is(frameErr, ErrPayloadFatal) {
		t.Error("Expected FrameError to wrap ErrPayloadFatal")
	}

	errMsg := frameErr.Error()
	if errMsg == "" {
		t.Error("Expected non-empty error message")
	}
	t.Logf("FrameError message: %s", errMsg)
}

// TestMetadataErrorCreation tests creating MetadataError
func TestMetadataErrorCreation(t *testing.T) {
	metaErr := NewMetadataError(2, "Flags8U8", "needs 2 data objects, have 1")

	if !errors.Is(metaErr, ErrMetadataMismatch) {
		t.Error("Expected MetadataError to wrap ErrMetadataMismatch")
	}
	if metaErr.Severity != SeverityWarning {
		t.Errorf("Expected SeverityWarning, got %s", metaErr.Severity)
	}
	if !IsRecoverable(metaErr) {
		t.Error("Expected metadata errors to be recoverable")
	}
}

// TestMQTTErrorCreation tests creating MQTTError
func TestMQTTErrorCreation(t *testing.T) {
	baseErr := fmt.Errorf("connection timeout")
	mqttErr := NewMQTTError("connect", baseErr, "localhost:1883")
	mqttErr.Topic = "otgw/25/s_ra"
	mqttErr.QoS = 1

	if mqttErr.Broker != "localhost:1883" {
		t.Errorf("Expected Broker 'localhost:1883', got '%s'", mqttErr.Broker)
	}
	if mqttErr.Topic != "otgw/25/s_ra" {
		t.Errorf("Expected Topic 'otgw/25/s_ra', got '%s'", mqttErr.Topic)
	}

	if errors.Unwrap(mqttErr) != baseErr {
		t.Error("Expected to unwrap to base error")
	}
}

// TestErrorSeverity tests error severity levels
func TestErrorSeverity(t *testing.T) {
	configErr := NewConfigError("test", fmt.Errorf("test error"), "field")
	if configErr.Severity != SeverityCritical {
		t.Errorf("Expected SeverityCritical, got %s", configErr.Severity)
	}
	if IsRecoverable(configErr) {
		t.Error("Expected config errors to be unrecoverable")
	}

	validationErr := NewValidationError("field", "expected", "actual")
	if validationErr.Severity != SeverityWarning {
		t.Errorf("Expected SeverityWarning, got %s", validationErr.Severity)
	}
}

// TestErrorCodes tests diagnostic error codes
func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, CodeOK},
		{NewConfigError("test", fmt.Errorf("test"), "field"), CodeConfig},
		{NewMQTTError("test", fmt.Errorf("test"), "broker"), CodeMQTT},
		{NewFrameError("test", 0, 0, "Invalid-Data"), CodeFrame},
		{NewMetadataError(0, "U16", "x"), CodeMetadata},
		{fmt.Errorf("plain"), CodeGeneric},
	}

	for _, tt := range tests {
		if got := GetDiagnosticCode(tt.err); got != tt.code {
			t.Errorf("GetDiagnosticCode(%v) = %d, want %d", tt.err, got, tt.code)
		}
	}
}

type recordingPublisher struct {
	codes []int
}

func (r *recordingPublisher) PublishDiagnostic(ctx context.Context, code int, message string) error {
	r.codes = append(r.codes, code)
	return nil
}

// TestHandlerPublishesDiagnostics tests that handled errors reach the diagnostic publisher
func TestHandlerPublishesDiagnostics(t *testing.T) {
	pub := &recordingPublisher{}
	h := NewErrorHandler(pub)

	h.Handle(context.Background(), nil)
	h.Handle(context.Background(), NewFrameError("classify", 0x20000000, 0, "Invalid-Data"))
	h.Handle(context.Background(), fmt.Errorf("boom"))

	if len(pub.codes) != 2 {
		t.Fatalf("Expected 2 diagnostics, got %d", len(pub.codes))
	}
	if pub.codes[0] != CodeFrame || pub.codes[1] != CodeGeneric {
		t.Errorf("Unexpected diagnostic codes: %v", pub.codes)
	}
}
