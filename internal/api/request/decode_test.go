package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeValidBody(t *testing.T) {
	var req RegisterRequest
	err := Decode(newRequest(`{"username":"alice","password":"secret123"}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "alice", req.Username)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	var req LoginRequest
	err := Decode(newRequest(`{"username":`), &req)
	assert.ErrorIs(t, err, ErrInvalidBody)
}

func TestDecodeReportsEveryField(t *testing.T) {
	var req RegisterRequest
	err := Decode(newRequest(`{"username":"al"}`), &req)
	require.Error(t, err)
	assert.Equal(t, "username must be at least 3 characters; password is required", err.Error())
}

func TestSeasonMustEndAfterStart(t *testing.T) {
	var req CreateSeasonRequest
	err := Decode(newRequest(`{"name":"Winter","starts_at":"2024-04-01T00:00:00Z","ends_at":"2024-01-01T00:00:00Z"}`), &req)
	require.Error(t, err)
	assert.Equal(t, "ends_at must be after starts_at", err.Error())
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "display_name", toSnake("DisplayName"))
	assert.Equal(t, "amount", toSnake("Amount"))
}
