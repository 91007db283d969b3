package response

import (
	"encoding/json/v2"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/mirrorboxapp/mirrorbox-server/internal/errors"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var result Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	result := decodeEnvelope(t, w)
	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Error)
}

func TestJSON_SuccessFlagTracksStatus(t *testing.T) {
	tests := []struct {
		status      int
		wantSuccess bool
	}{
		{http.StatusOK, true},
		{http.StatusCreated, true},
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
		{http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		JSON(w, tt.status, nil, discardLogger())
		result := decodeEnvelope(t, w)
		assert.Equal(t, tt.wantSuccess, result.Success, "status %d", tt.status)
	}
}

func TestJSON_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusInternalServerError, "something went wrong", discardLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	result := decodeEnvelope(t, w)
	assert.False(t, result.Success)
	assert.Nil(t, result.Data)
	assert.Equal(t, "something went wrong", result.Error)
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(http.ResponseWriter, string, *slog.Logger)
		want int
	}{
		{"bad request", BadRequest, http.StatusBadRequest},
		{"unauthorized", Unauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden, http.StatusForbidden},
		{"not found", NotFound, http.StatusNotFound},
		{"internal", InternalError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.fn(w, "nope", discardLogger())
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "nope", decodeEnvelope(t, w).Error)
		})
	}
}

func TestHandleError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, domainerrors.NotFound("rule not found"), discardLogger())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "rule not found", decodeEnvelope(t, w).Error)
}

func TestHandleError_StoreError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, store.ErrAlreadyExists, discardLogger())

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("disk on fire"), discardLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Unknown errors must not leak internals to the client.
	assert.Equal(t, "internal server error", decodeEnvelope(t, w).Error)
}

func TestEnvelope_OmitEmpty(t *testing.T) {
	data, err := json.Marshal(Envelope{Success: false, Error: "something failed"})
	require.NoError(t, err)

	jsonStr := string(data)
	assert.Contains(t, jsonStr, `"error":"something failed"`)
	assert.NotContains(t, jsonStr, `"data":`)
	assert.NotContains(t, jsonStr, `"message":`)
}
