package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// SchemaValidator validates a parsed payload after JSON extraction.
type SchemaValidator[T any] func(*T) error

// fencedJSON matches a markdown code fence tagged as json.
var fencedJSON = regexp.MustCompile("(?is)```[ \\t]*json[ \\t]*\\r?\\n?(.*?)```")

// ExtractFenced parses the single ```json fenced block in raw into T.
// No block is ErrNoStructuredPayload; more than one block, a parse error or
// a validator error is ErrMalformedPayload.
func ExtractFenced[T any](raw string, validator SchemaValidator[T]) (*T, error) {
	matches := fencedJSON.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil, ErrNoStructuredPayload
	}
	if len(matches) > 1 {
		return nil, fmt.Errorf("%w: expected one fenced block, found %d", ErrMalformedPayload, len(matches))
	}

	body := strings.TrimSpace(matches[0][1])
	if body == "" {
		return nil, fmt.Errorf("%w: empty fenced block", ErrMalformedPayload)
	}

	var result T
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if validator != nil {
		if err := validator(&result); err != nil {
			return nil, fmt.Errorf("%w: validation failed: %v", ErrMalformedPayload, err)
		}
	}
	return &result, nil
}
