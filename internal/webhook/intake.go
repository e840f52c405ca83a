package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/prbot/prbot/pkg/errors"
	"github.com/prbot/prbot/pkg/logger"
)

const (
	headerEvent     = "X-GitHub-Event"
	headerSignature = "X-Hub-Signature-256"
	signaturePrefix = "sha256="
)

// Handler verifies the HMAC-SHA256 signature GitHub attaches to every
// webhook delivery and hands verified payloads to a Dispatcher.
type Handler struct {
	secret     []byte
	dispatcher *Dispatcher
}

// NewHandler builds a webhook intake Handler. secret is the shared webhook
// secret configured on the GitHub App/repository webhook.
func NewHandler(secret string, dispatcher *Dispatcher) *Handler {
	return &Handler{secret: []byte(secret), dispatcher: dispatcher}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeWebhookMissingHeader, "failed to read request body", err))
		return
	}

	eventType := r.Header.Get(headerEvent)
	if eventType == "" {
		writeError(w, errors.New(errors.ErrCodeWebhookMissingHeader, "missing "+headerEvent+" header"))
		return
	}

	signature := r.Header.Get(headerSignature)
	if signature == "" {
		writeError(w, errors.New(errors.ErrCodeWebhookMissingHeader, "missing "+headerSignature+" header"))
		return
	}
	if err := verifySignature(h.secret, body, signature); err != nil {
		writeError(w, err)
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), eventType, body); err != nil {
		logger.Error("webhook dispatch failed", zap.String("event", eventType), zap.Error(err))
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "OK"})
}

// verifySignature checks header (the literal X-Hub-Signature-256 value,
// "sha256=<hex>") against an HMAC-SHA256 of body keyed by secret.
func verifySignature(secret, body []byte, header string) error {
	hexDigest, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return errors.New(errors.ErrCodeWebhookSignature, "unsupported signature scheme")
	}

	expected, err := hex.DecodeString(hexDigest)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWebhookSignature, "malformed signature", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	actual := mac.Sum(nil)

	if !hmac.Equal(expected, actual) {
		return errors.New(errors.ErrCodeWebhookSignature, "signature mismatch")
	}
	return nil
}

func writeError(w http.ResponseWriter, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Wrap(errors.ErrCodeInternal, "internal error", err)
	}
	w.WriteHeader(appErr.HTTPStatus())
	_, _ = w.Write([]byte(appErr.Error()))
}
