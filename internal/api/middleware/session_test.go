package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/bhasha-api/internal/api/shared"
	"github.com/phrazzld/bhasha-api/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSessionLookup implements SessionLookup with a function field.
type mockSessionLookup struct {
	GetFn func(id uuid.UUID) (session.Session, error)
}

func (m *mockSessionLookup) Get(id uuid.UUID) (session.Session, error) {
	return m.GetFn(id)
}

func TestRequireSession(t *testing.T) {
	knownID := uuid.New()

	lookup := &mockSessionLookup{
		GetFn: func(id uuid.UUID) (session.Session, error) {
			switch id {
			case knownID:
				return session.Session{ID: id}, nil
			case uuid.MustParse("00000000-0000-0000-0000-00000000dead"):
				return session.Session{}, errors.New("store unavailable")
			default:
				return session.Session{}, session.ErrSessionNotFound
			}
		},
	}
	mw := NewSessionMiddleware(lookup)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCalled bool
	}{
		{name: "valid session", header: knownID.String(), wantStatus: http.StatusOK, wantCalled: true},
		{name: "padded header", header: "  " + knownID.String() + " ", wantStatus: http.StatusOK, wantCalled: true},
		{name: "missing header", header: "", wantStatus: http.StatusBadRequest},
		{name: "malformed ID", header: "not-a-uuid", wantStatus: http.StatusBadRequest},
		{name: "nil ID", header: uuid.Nil.String(), wantStatus: http.StatusBadRequest},
		{name: "unknown session", header: uuid.NewString(), wantStatus: http.StatusNotFound},
		{name: "lookup failure", header: "00000000-0000-0000-0000-00000000dead", wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			var gotID uuid.UUID
			handler := mw.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotID, _ = shared.GetSessionID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			r := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
			if tc.header != "" {
				r.Header.Set(SessionHeader, tc.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			assert.Equal(t, tc.wantStatus, w.Code)
			require.Equal(t, tc.wantCalled, called)
			if tc.wantCalled {
				assert.Equal(t, knownID, gotID)
			}
		})
	}
}
