package errors

import (
	"net/http"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", NewError("missing").Mark(ErrNotFound), http.StatusNotFound},
		{"validation", NewError("bad input").Mark(ErrValidation), http.StatusBadRequest},
		{"invalid operation", NewError("same plan").Mark(ErrInvalidOperation), http.StatusBadRequest},
		{"permission denied", NewError("not yours").Mark(ErrPermissionDenied), http.StatusForbidden},
		{"database", NewError("query failed").Mark(ErrDatabase), http.StatusInternalServerError},
		{"integration", NewError("provider down").Mark(ErrIntegration), http.StatusInternalServerError},
		{"system", NewError("bad state").Mark(ErrSystem), http.StatusInternalServerError},
		{"unmarked", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatusFromErr(tt.err))
		})
	}
}

func TestMarkSurvivesWrapping(t *testing.T) {
	err := NewError("plan not found").Mark(ErrNotFound)
	wrapped := WithError(err).
		WithHint("Plan lookup failed").
		Mark(ErrDatabase)

	// Both marks are visible; the helpers answer for each.
	assert.True(t, IsNotFound(wrapped))
	assert.True(t, IsDatabase(wrapped))
}

func TestHintIsRecoverable(t *testing.T) {
	err := NewError("student not linked to caller").
		WithHint("You are not allowed to modify this student's subscription").
		Mark(ErrPermissionDenied)

	hints := errors.GetAllHints(err)
	assert.Contains(t, hints, "You are not allowed to modify this student's subscription")
}

func TestReportableDetailsCarrySafePayload(t *testing.T) {
	err := NewError("no such price").
		WithReportableDetails(map[string]any{
			"price_id": "price_pro",
		}).
		Mark(ErrNotFound)

	found := false
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			if strings.HasPrefix(payload, "__json__:") && strings.Contains(payload, `"price_id":"price_pro"`) {
				found = true
			}
		}
	}
	assert.True(t, found)
}
