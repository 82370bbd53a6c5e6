// Package identity wraps the external authentication service. The core only needs
// a stable user id per bearer token; sign-in and sign-up are passed through for the
// front end's account screens.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/shopkeeper/internal/config"
)

// Client exposes the authentication operations used by the application.
type Client interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	Lookup(ctx context.Context, idToken string) (*User, error)
}

// Session is an authenticated session returned by sign-in or sign-up.
type Session struct {
	UserID       string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// User is the identity resolved from a bearer token.
type User struct {
	UserID string
	Email  string
}

// APIClient is a resty-backed implementation of Client against an Identity
// Toolkit style REST API.
type APIClient struct {
	httpClient *resty.Client
	apiKey     string
}

// NewClient builds an identity client using the provided configuration values.
func NewClient(cfg config.IdentityConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		apiKey:     cfg.APIKey,
	}
}

// apiError represents an identity service error payload.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type lookupResponse struct {
	Users []struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	} `json:"users"`
}

// SignUp creates an account and returns its session.
func (c *APIClient) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.credentialCall(ctx, "/v1/accounts:signUp", email, password)
}

// SignIn authenticates an existing account.
func (c *APIClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.credentialCall(ctx, "/v1/accounts:signInWithPassword", email, password)
}

// Lookup resolves a bearer id token to its user.
func (c *APIClient) Lookup(ctx context.Context, idToken string) (*User, error) {
	result := new(lookupResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(map[string]any{"idToken": idToken}).
		SetResult(result).
		SetError(apiErr).
		Post("/v1/accounts:lookup")
	if err != nil {
		return nil, fmt.Errorf("lookup identity: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, serviceError(resp.StatusCode(), apiErr)
	}
	if len(result.Users) == 0 {
		return nil, fmt.Errorf("identity api returned no user for token")
	}

	return &User{UserID: result.Users[0].LocalID, Email: result.Users[0].Email}, nil
}

func (c *APIClient) credentialCall(ctx context.Context, path, email, password string) (*Session, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	session := new(Session)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(payload).
		SetResult(session).
		SetError(apiErr).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("identity request %s: %w", path, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, serviceError(resp.StatusCode(), apiErr)
	}

	return session, nil
}

func serviceError(statusCode int, apiErr *apiError) error {
	message := ""
	code := statusCode
	if apiErr != nil {
		message = apiErr.Error.Message
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
	}
	return fmt.Errorf("identity api error: code=%d, message=%s", code, message)
}
