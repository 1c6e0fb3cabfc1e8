// Package identity mirrors user accounts into a Keycloak realm through its
// admin REST API.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ticketing/user-service/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// ErrAccountUnresolved is returned when Keycloak accepted or already holds an
// account but its id could not be determined, so the role cannot be mapped.
var ErrAccountUnresolved = errors.New("identity account id unresolved")

// Config holds the realm and service-account credentials.
type Config struct {
	BaseURL      string
	Realm        string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// KeycloakClient implements ports.IdentityProvider on top of gocloak. The
// service-account token comes from a client-credentials token source that
// caches it until shortly before expiry.
type KeycloakClient struct {
	realm  string
	gc     *gocloak.GoCloak
	oauth  clientcredentials.Config
	tokCtx context.Context
	log    zerolog.Logger

	mu     sync.Mutex
	tokens oauth2.TokenSource
}

// NewKeycloakClient creates a client authenticating with the client-credentials grant.
func NewKeycloakClient(cfg Config, log zerolog.Logger) *KeycloakClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := strings.TrimRight(cfg.BaseURL, "/")

	gc := gocloak.NewClient(base)
	gc.RestyClient().SetTimeout(timeout)

	c := &KeycloakClient{
		realm: cfg.Realm,
		gc:    gc,
		oauth: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     base + "/realms/" + url.PathEscape(cfg.Realm) + "/protocol/openid-connect/token",
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		tokCtx: context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout}),
		log:    log.With().Str("component", "keycloak").Logger(),
	}
	c.tokens = c.oauth.TokenSource(c.tokCtx)
	return c
}

// CreateAccount creates an enabled user with the payload's password and maps
// its role description onto the realm role of the same name. An existing
// account is treated as already created so retries stay idempotent.
func (c *KeycloakClient) CreateAccount(ctx context.Context, p ports.UserPayload) error {
	token, err := c.accessToken()
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	user := gocloak.User{
		Username:  gocloak.StringP(p.UserName),
		FirstName: gocloak.StringP(p.FirstName),
		LastName:  gocloak.StringP(p.LastName),
		Enabled:   gocloak.BoolP(true),
		Credentials: &[]gocloak.CredentialRepresentation{{
			Type:      gocloak.StringP("password"),
			Value:     gocloak.StringP(p.Password),
			Temporary: gocloak.BoolP(false),
		}},
	}

	userID, err := c.gc.CreateUser(ctx, token, c.realm, user)
	switch {
	case err == nil:
	case statusCode(err) == http.StatusConflict:
		c.log.Info().Str("username", p.UserName).Msg("account already exists")
		userID, err = c.findUserID(ctx, token, p.UserName)
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}
	default:
		return fmt.Errorf("create account: %w", c.classify(err))
	}
	if userID == "" {
		return fmt.Errorf("create account %q: %w", p.UserName, ErrAccountUnresolved)
	}

	if p.Role.Description == "" {
		return nil
	}
	if err := c.assignRealmRole(ctx, token, userID, p.Role.Description); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// DeactivateAccount disables the account. A missing account is not an error.
func (c *KeycloakClient) DeactivateAccount(ctx context.Context, username string) error {
	token, err := c.accessToken()
	if err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}

	userID, err := c.findUserID(ctx, token, username)
	if err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	if userID == "" {
		c.log.Warn().Str("username", username).Msg("account not found, nothing to deactivate")
		return nil
	}

	disabled := gocloak.User{ID: gocloak.StringP(userID), Enabled: gocloak.BoolP(false)}
	if err := c.gc.UpdateUser(ctx, token, c.realm, disabled); err != nil {
		return fmt.Errorf("deactivate account: %w", c.classify(err))
	}
	return nil
}

// findUserID returns the Keycloak id for username, or "" if none exists.
func (c *KeycloakClient) findUserID(ctx context.Context, token, username string) (string, error) {
	users, err := c.gc.GetUsers(ctx, token, c.realm, gocloak.GetUsersParams{
		Username: gocloak.StringP(username),
		Exact:    gocloak.BoolP(true),
	})
	if err != nil {
		return "", c.classify(err)
	}
	for _, u := range users {
		if u == nil || u.ID == nil || u.Username == nil {
			continue
		}
		if strings.EqualFold(*u.Username, username) {
			return *u.ID, nil
		}
	}
	return "", nil
}

func (c *KeycloakClient) assignRealmRole(ctx context.Context, token, userID, roleName string) error {
	role, err := c.gc.GetRealmRole(ctx, token, c.realm, roleName)
	if err != nil {
		return fmt.Errorf("realm role %q: %w", roleName, c.classify(err))
	}
	if err := c.gc.AddRealmRoleToUser(ctx, token, c.realm, userID, []gocloak.Role{*role}); err != nil {
		return fmt.Errorf("map realm role %q: %w", roleName, c.classify(err))
	}
	return nil
}

func (c *KeycloakClient) accessToken() (string, error) {
	c.mu.Lock()
	ts := c.tokens
	c.mu.Unlock()

	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("token: %w", c.classify(err))
	}
	return tok.AccessToken, nil
}

// resetTokens drops the cached token so the next call logs in again.
func (c *KeycloakClient) resetTokens() {
	c.mu.Lock()
	c.tokens = c.oauth.TokenSource(c.tokCtx)
	c.mu.Unlock()
}

// classify turns gocloak and oauth2 failures into a StatusError. A rejected
// token also invalidates the cached one.
func (c *KeycloakClient) classify(err error) error {
	var apiErr *gocloak.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized {
			c.resetTokens()
		}
		return &StatusError{Code: apiErr.Code, Body: apiErr.Message}
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return &StatusError{Code: retrieveErr.Response.StatusCode, Body: strings.TrimSpace(string(retrieveErr.Body))}
	}
	return err
}

func statusCode(err error) int {
	var apiErr *gocloak.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// StatusError is returned when Keycloak answers with an unexpected status.
// Code 0 means the request never got an answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("keycloak returned status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the failure is worth retrying.
func (e *StatusError) Retryable() bool {
	return e.Code == 0 ||
		e.Code >= http.StatusInternalServerError ||
		e.Code == http.StatusTooManyRequests ||
		e.Code == http.StatusUnauthorized
}
