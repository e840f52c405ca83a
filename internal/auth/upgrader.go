// Package auth tracks the GitHub authentication state used to sign outgoing
// platform requests: anonymous, a static user token, a GitHub App identity,
// or a short-lived installation token minted from that identity.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/prbot/prbot/pkg/errors"
	"github.com/prbot/prbot/pkg/logger"
)

// Mode identifies which variant of State is active.
type Mode string

const (
	ModeAnonymous   Mode = "anonymous"
	ModeUser        Mode = "user"
	ModeApp         Mode = "app"
	ModeInstallation Mode = "installation"
)

const (
	appJWTIssuedAtMargin = 60 * time.Second
	appJWTLifetime       = 10 * time.Minute
	installRefreshMargin = 60 * time.Second

	installationTokenURLFormat = "https://api.github.com/app/installations/%d/access_tokens"
)

// State is a tagged union over the four authentication variants. Exactly the
// fields relevant to Mode are meaningful at any given time.
type State struct {
	Mode Mode

	UserToken string

	AppClientID     string
	AppPrivateKey   string

	InstallationID      int64
	InstallationToken   string
	InstallationExpires time.Time
}

// Upgrader owns the current authentication State and knows how to mint or
// refresh installation tokens against the GitHub REST API.
type Upgrader struct {
	mu         sync.Mutex
	state      State
	httpClient *http.Client

	// installationTokenURLFormat is overridden in tests to point at a
	// local httptest server instead of the real GitHub API.
	installationTokenURLFormat string
}

// NewAnonymous returns an Upgrader with no credentials; Token always fails.
func NewAnonymous() *Upgrader {
	return &Upgrader{state: State{Mode: ModeAnonymous}, httpClient: http.DefaultClient, installationTokenURLFormat: installationTokenURLFormat}
}

// NewUser returns an Upgrader backed by a static personal access token.
func NewUser(token string) *Upgrader {
	return &Upgrader{state: State{Mode: ModeUser, UserToken: token}, httpClient: http.DefaultClient, installationTokenURLFormat: installationTokenURLFormat}
}

// NewApp returns an Upgrader backed by a GitHub App identity. Installation
// tokens are minted on demand via UpgradeToInstallation.
func NewApp(clientID, privateKeyPEM string) *Upgrader {
	return &Upgrader{
		state:                      State{Mode: ModeApp, AppClientID: clientID, AppPrivateKey: privateKeyPEM},
		httpClient:                 http.DefaultClient,
		installationTokenURLFormat: installationTokenURLFormat,
	}
}

// Mode reports the current authentication variant.
func (u *Upgrader) Mode() Mode {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.Mode
}

// InstallationID reports the installation this upgrader last authenticated
// as, or 0 if it never upgraded.
func (u *Upgrader) InstallationID() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.InstallationID
}

// Token returns the bearer token to use for the next outgoing request,
// minting a fresh GitHub App JWT or refreshing an expiring installation
// token as needed.
func (u *Upgrader) Token(ctx context.Context) (string, error) {
	u.mu.Lock()
	mode := u.state.Mode
	u.mu.Unlock()

	switch mode {
	case ModeAnonymous:
		return "", errors.New(errors.ErrCodeAuthNotConfigured, "github client is not authenticated")
	case ModeUser:
		u.mu.Lock()
		defer u.mu.Unlock()
		return u.state.UserToken, nil
	case ModeApp:
		return u.appJWT()
	case ModeInstallation:
		return u.installationToken(ctx)
	default:
		return "", errors.New(errors.ErrCodeAuthNotConfigured, "unknown authentication mode")
	}
}

func (u *Upgrader) appJWT() (string, error) {
	u.mu.Lock()
	clientID, privateKeyPEM := u.state.AppClientID, u.state.AppPrivateKey
	u.mu.Unlock()
	return generateAppJWT(clientID, privateKeyPEM)
}

func generateAppJWT(clientID, privateKeyPEM string) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeAuthNotConfigured, "failed to parse github app private key", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-appJWTIssuedAtMargin)),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
		Issuer:    clientID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeAuthNotConfigured, "failed to sign github app jwt", err)
	}
	return signed, nil
}

// installationToken returns the current installation token, refreshing it
// first if it is within installRefreshMargin of expiring.
func (u *Upgrader) installationToken(ctx context.Context) (string, error) {
	u.mu.Lock()
	installationID := u.state.InstallationID
	expires := u.state.InstallationExpires
	token := u.state.InstallationToken
	u.mu.Unlock()

	if time.Now().Before(expires.Add(-installRefreshMargin)) {
		return token, nil
	}

	logger.Warn("installation token near expiry, refreshing", zap.Int64("installation_id", installationID))
	u.downgradeToApp()
	if err := u.UpgradeToInstallation(ctx, installationID); err != nil {
		return "", err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.InstallationToken, nil
}

// downgradeToApp reverts an Installation-mode upgrader back to App mode,
// keeping the App credentials that produced it.
func (u *Upgrader) downgradeToApp() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state.Mode != ModeInstallation {
		return
	}
	u.state.Mode = ModeApp
	u.state.InstallationToken = ""
	u.state.InstallationExpires = time.Time{}
}

type installationAccessTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpgradeToInstallation exchanges the current App JWT for an installation
// access token and switches the upgrader into Installation mode. It is a
// no-op error if the upgrader is not currently in App mode.
func (u *Upgrader) UpgradeToInstallation(ctx context.Context, installationID int64) error {
	u.mu.Lock()
	if u.state.Mode != ModeApp {
		u.mu.Unlock()
		return errors.New(errors.ErrCodeAuthNotConfigured, "upgrader must be in app mode to mint an installation token")
	}
	clientID, privateKeyPEM := u.state.AppClientID, u.state.AppPrivateKey
	urlFormat := u.installationTokenURLFormat
	u.mu.Unlock()

	jwtToken, err := generateAppJWT(clientID, privateKeyPEM)
	if err != nil {
		return err
	}

	url := fmt.Sprintf(urlFormat, installationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodePlatform, "failed to build installation token request", err)
	}
	req.Header.Set("Authorization", "Bearer "+jwtToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodePlatform, "failed to request installation token", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return errors.New(errors.ErrCodePlatform, fmt.Sprintf("installation token request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed installationAccessTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errors.Wrap(errors.ErrCodePlatform, "failed to parse installation token response", err)
	}

	u.mu.Lock()
	u.state = State{
		Mode:            ModeInstallation,
		AppClientID:     clientID,
		AppPrivateKey:   privateKeyPEM,
		InstallationID:  installationID,
		InstallationToken:   parsed.Token,
		InstallationExpires: parsed.ExpiresAt,
	}
	u.mu.Unlock()

	logger.Debug("upgraded to installation authentication",
		zap.Int64("installation_id", installationID),
		zap.Time("expires_at", parsed.ExpiresAt),
	)
	return nil
}
