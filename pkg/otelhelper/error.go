package otelhelper

import (
	"errors"

	"github.com/adwkit/adw/pkg/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorKindKey carries the engine's error classification on span events.
const ErrorKindKey = "adw.error.kind"

// SetError marks the span failed and records err together with its engine
// classification and any extra attributes the caller supplies.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	attrs = append(attrs, attribute.String(ErrorKindKey, string(errorKind(err))))
	span.AddEvent("error_occurred", trace.WithAttributes(attrs...))
}

// errorKind maps an error to the engine taxonomy: an explicit FlowError kind
// wins, the timeout and abort sentinels classify themselves, everything else
// is unknown.
func errorKind(err error) models.Kind {
	var flowErr *models.FlowError
	if errors.As(err, &flowErr) {
		return flowErr.Kind
	}

	switch {
	case errors.Is(err, models.ErrStepTimeout), errors.Is(err, models.ErrWorkflowTimeout):
		return models.KindTimeout
	case errors.Is(err, models.ErrAborted):
		return models.KindAbort
	}

	return models.KindUnknown
}
