// Package cryptoutil provides the RSA key-pair generation and JWT minting
// used by external account management: each external account authenticates
// to POST /external/set-qa-status with an RS256 token signed by its own
// private key and verified against its registered public key.
package cryptoutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prbot/prbot/pkg/errors"
)

// externalAccountKeySize matches the original's 4096-bit RSA keys.
const externalAccountKeySize = 4096

// KeyPair is a PEM-encoded RSA key pair for an external account.
type KeyPair struct {
	PrivateKey string
	PublicKey  string
}

// GenerateKeyPair creates a new PKCS8 private key / PKCS1 public key pair.
func GenerateKeyPair() (*KeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, externalAccountKeySize)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to generate rsa key pair", err)
	}

	privBytes, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to marshal private key", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes})

	pubBytes := x509.MarshalPKCS1PublicKey(&key.PublicKey)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: pubBytes})

	return &KeyPair{PrivateKey: string(privPEM), PublicKey: string(pubPEM)}, nil
}

// CreateAccessToken mints a never-expiring RS256 token identifying username,
// signed with its own private key. Revocation is done by rotating keys, not
// by expiry.
func CreateAccessToken(username, privateKeyPEM string) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to parse external account private key", err)
	}

	claims := jwt.MapClaims{
		"iss": username,
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to sign access token", err)
	}
	return signed, nil
}
