package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

func TestServeHTTP_SuccessReturnsOKBody(t *testing.T) {
	secret := []byte("shh")
	body := []byte(`{}`)

	h := NewHandler(string(secret), NewDispatcher(nil, nil, "bot"))

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(body)))
	req.Header.Set(headerEvent, EventPing)
	req.Header.Set(headerSignature, sign(secret, body))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var respBody map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "OK", respBody["message"])
}

func TestServeHTTP_MissingSignatureHeader(t *testing.T) {
	h := NewHandler("shh", NewDispatcher(nil, nil, "bot"))

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{}"))
	req.Header.Set(headerEvent, EventPing)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestServeHTTP_BadSignatureRejected(t *testing.T) {
	h := NewHandler("shh", NewDispatcher(nil, nil, "bot"))

	body := []byte(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(body)))
	req.Header.Set(headerEvent, EventPing)
	req.Header.Set(headerSignature, sign([]byte("wrong-secret"), body))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}
