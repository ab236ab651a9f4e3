package events

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxPayloadBytes bounds a single event payload. Streams are read in full
// when briefs recompute, so individual entries stay small.
const maxPayloadBytes = 64 * 1024

// registeredTypes is the closed set of event types cases accept.
var registeredTypes = map[string]struct{}{
	"note_added":        {},
	"source_attached":   {},
	"hypothesis_raised": {},
	"finding_recorded":  {},
	"status_annotated":  {},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError describes why an event payload was rejected. It is
// raised strictly before any store write.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateInput checks an event input structurally and semantically.
// It performs no I/O.
func ValidateInput(input EventInput) error {
	if err := validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if ok := asValidationErrors(err, &fieldErrs); ok && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return ValidationError{
				Field:   strings.ToLower(first.Field()),
				Message: fmt.Sprintf("failed %s constraint", first.Tag()),
			}
		}
		return ValidationError{Message: err.Error()}
	}

	eventType := strings.TrimSpace(input.Type)
	if _, ok := registeredTypes[eventType]; !ok {
		return ValidationError{Field: "type", Message: fmt.Sprintf("unknown event type %q", eventType)}
	}

	if len(input.Payload) > maxPayloadBytes {
		return ValidationError{Field: "payload", Message: fmt.Sprintf("exceeds %d bytes", maxPayloadBytes)}
	}

	var decoded map[string]any
	if err := json.Unmarshal(input.Payload, &decoded); err != nil {
		return ValidationError{Field: "payload", Message: "must be a JSON object"}
	}
	if len(decoded) == 0 {
		return ValidationError{Field: "payload", Message: "must not be empty"}
	}

	return nil
}

// RegisteredTypes returns the accepted event types, for documentation
// endpoints and tests.
func RegisteredTypes() []string {
	types := make([]string, 0, len(registeredTypes))
	for name := range registeredTypes {
		types = append(types, name)
	}
	return types
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = fieldErrs
	return true
}
