package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes an absent JSON field from an explicit null
// for PATCH bodies (RFC 7396):
//   - Present=false: field absent (keep current value)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value!=nil: field has a value
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only invoked when the field exists in the document
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
