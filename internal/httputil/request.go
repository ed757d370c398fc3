package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"zote/internal/config"
)

// ParseJSON decodes the request body into dest, rejecting bodies larger
// than config.MaxRequestBodyBytes
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
