package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medicare-api/internal/apperr"
)

// immutableKeys are never written by an update. They stay visible to keys()
// so policy checks see everything the caller sent.
var immutableKeys = []string{"id", "_id", "userId", "patientId", "doctorId", "createdAt", "updatedAt", "password"}

type patch map[string]json.RawMessage

// readPatch reads an update body as a JSON object.
func readPatch(c *gin.Context) (patch, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, apperr.Validation("could not read request body")
	}
	var p patch
	if err := json.Unmarshal(raw, &p); err != nil || p == nil {
		return nil, apperr.Validation("request body must be a JSON object")
	}
	return p, nil
}

// keys returns every key the caller sent, immutable ones included.
func (p patch) keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	return keys
}

func (p patch) has(key string) bool {
	_, ok := p[key]
	return ok
}

// str returns the string value of key, or "" when absent or not a string.
func (p patch) str(key string) string {
	var s string
	if raw, ok := p[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// normalizeDate rewrites a date-only value of key into RFC 3339 so it decodes into time.Time.
func (p patch) normalizeDate(key string) error {
	raw, ok := p[key]
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return apperr.Validation("%s must be a date", key)
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	b, _ := json.Marshal(t)
	p[key] = b
	return nil
}

// applyTo merges the patch onto dst, skipping immutable keys. Nested objects
// merge, arrays and scalars replace.
func (p patch) applyTo(dst any) error {
	writable := make(patch, len(p))
	for k, v := range p {
		writable[k] = v
	}
	for _, k := range immutableKeys {
		delete(writable, k)
	}
	b, err := json.Marshal(writable)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperr.Validation("invalid value for %s", typeErr.Field)
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (local midnight).
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validation("invalid date %q, use YYYY-MM-DD or RFC 3339", s)
}
