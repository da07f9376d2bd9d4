package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{Validation("missing %s", "email"), http.StatusBadRequest},
		{Unauthorized("invalid or expired token"), http.StatusUnauthorized},
		{Forbidden("access denied"), http.StatusForbidden},
		{NotFound("doctor not available"), http.StatusNotFound},
		{Conflict("user already exists with this email"), http.StatusConflict},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, c.err.Status(), c.err.Message)
	}
}

func TestFromDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	got := From(fmt.Errorf("insert user: %w", dup))
	assert.Equal(t, KindConflict, got.Kind)
}

func TestFromNoDocuments(t *testing.T) {
	got := From(fmt.Errorf("find: %w", mongo.ErrNoDocuments))
	assert.Equal(t, KindNotFound, got.Kind)
}

func TestFromKeepsAppError(t *testing.T) {
	orig := Forbidden("patients can only cancel appointments")
	got := From(fmt.Errorf("wrapped: %w", orig))
	assert.Same(t, orig, got)
	assert.True(t, Is(got, KindForbidden))
}

func TestInternalHidesCause(t *testing.T) {
	err := Internal(errors.New("connection refused on 10.0.0.3"))
	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorContains(t, err, "connection refused")
}
