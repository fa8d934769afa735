package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrNoStructuredPayload indicates the reply carried no fenced JSON block.
	ErrNoStructuredPayload = errors.New("no structured payload in ai response")

	// ErrMalformedPayload indicates the fenced block failed to parse or did
	// not match the expected schema.
	ErrMalformedPayload = errors.New("malformed ai payload")

	// ErrContentWithheld indicates the provider's safety layer withheld the
	// response.
	ErrContentWithheld = errors.New("ai response withheld by safety filter")

	// ErrTimeout indicates the generation exceeded the configured deadline.
	ErrTimeout = errors.New("ai request timed out")

	// ErrUnavailable indicates the provider could not be reached or failed.
	ErrUnavailable = errors.New("ai service unavailable")
)

// WithheldError carries the provider's reason for withholding a response.
type WithheldError struct {
	Reason  string
	Message string
}

func (e *WithheldError) Error() string {
	if e.Reason == "" {
		return ErrContentWithheld.Error()
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (%s)", ErrContentWithheld, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s", ErrContentWithheld, e.Reason)
}

func (e *WithheldError) Is(target error) bool {
	return target == ErrContentWithheld
}

// Kind returns a stable label for an adapter failure, used in logs and
// in the API error body.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoStructuredPayload):
		return "no_structured_payload"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, ErrContentWithheld):
		return "content_withheld"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "unknown"
	}
}
