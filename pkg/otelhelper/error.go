package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const failureEventName = "workflow_failed"

// SetError records err on the span and marks it failed. A nil error leaves the span untouched.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if err == nil {
		return
	}

	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
}

// SetFailure marks the span failed with a workflow failure message.
func SetFailure(span trace.Span, message string, attrs ...attribute.KeyValue) {
	attrs = append(attrs, attribute.String(ErrorMessageKey, message))

	span.AddEvent(failureEventName, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, message)
}
