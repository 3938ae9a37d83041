package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/treesplit/pkg/errors"
)

func echoID() http.Handler {
	return RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(RequestIDFrom(r.Context())))
	}))
}

func TestRequestID_Generated(t *testing.T) {
	rec := httptest.NewRecorder()
	echoID().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rec.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err, "generated id should be a uuid")
	assert.Equal(t, id, rec.Body.String())
}

func TestRequestID_Honored(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	echoID().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc-123", rec.Body.String())
}

func TestRequestID_RejectsInvalid(t *testing.T) {
	for _, id := range []string{"has space", strings.Repeat("x", maxRequestIDLen+1), "tab\tid"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, id)
		rec := httptest.NewRecorder()
		echoID().ServeHTTP(rec, req)

		assert.NotEqual(t, id, rec.Header().Get(HeaderRequestID), "id %q should be replaced", id)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   errors.Code
		msg    string
	}{
		{"coded", errors.New(errors.ErrCodeInvalidInput, "bad weights"), http.StatusBadRequest, errors.ErrCodeInvalidInput, "bad weights"},
		{"wrapped", fmt.Errorf("layout: %w", errors.New(errors.ErrCodeTooManyWeights, "too many")), http.StatusRequestEntityTooLarge, errors.ErrCodeTooManyWeights, "too many"},
		{"plain", fmt.Errorf("disk on fire"), http.StatusInternalServerError, errors.ErrCodeInternal, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithRequestID(req.Context(), "rid"))
			rec := httptest.NewRecorder()

			WriteError(rec, req, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.msg, body.Message)
			assert.Equal(t, "rid", body.RequestID)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Weights []float64 `json:"weights"`
	}

	tests := []struct {
		name    string
		body    string
		limit   int64
		wantErr bool
	}{
		{"valid", `{"weights":[1,2]}`, 0, false},
		{"empty", ``, 0, true},
		{"malformed", `{"weights":`, 0, true},
		{"unknown field", `{"weights":[1],"color":"red"}`, 0, true},
		{"trailing", `{"weights":[1]}{}`, 0, true},
		{"too large", `{"weights":[1,2,3,4,5,6,7,8,9]}`, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(httptest.NewRecorder(), req, &p, tt.limit)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "code = %s", errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []float64{1, 2}, p.Weights)
		})
	}
}
