// Package authapi is the HTTP adapter for the remote auth and dash endpoints.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/target/dash-console/internal/domain/auth"
	apperrors "github.com/target/dash-console/internal/errors"
	"github.com/target/dash-console/internal/ports"
	"golang.org/x/oauth2"
)

var _ ports.AuthAPI = (*Client)(nil)

// ErrNoToken is returned by TokenFunc when no access token is held.
var ErrNoToken = errors.New("no access token")

// TokenFunc adapts a token getter to oauth2.TokenSource.
type TokenFunc func() string

// Token implements oauth2.TokenSource.
func (f TokenFunc) Token() (*oauth2.Token, error) {
	tok := f()
	if tok == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// ClientOptions configure a Client.
type ClientOptions struct {
	// BaseURL is the API root, e.g. "https://api.example.com/api/".
	BaseURL string
	// Tokens supplies the bearer token for dash/* calls.
	Tokens oauth2.TokenSource
	// Opener decrypts enveloped responses; nil disables the gate.
	Opener BodyOpener
	// Transport is the underlying round tripper (defaults to http.DefaultTransport).
	Transport http.RoundTripper
	Timeout   time.Duration
	Paths     Paths
	Logger    *slog.Logger
}

// Client calls the remote API. Auth endpoints go out anonymously; dash
// endpoints carry the bearer token through an oauth2.Transport.
type Client struct {
	base   *url.URL
	anon   *http.Client
	authed *http.Client
	paths  Paths
	logger *slog.Logger
}

// NewClient constructs a Client.
func NewClient(opts ClientOptions) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("auth api base url is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse auth api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("auth api base url must be http or https, got %q", base.Scheme)
	}
	paths := opts.Paths.withDefaults()
	if err := paths.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var rt http.RoundTripper = &DecryptingTransport{Base: opts.Transport, Opener: opts.Opener}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}

	return &Client{
		base:   base,
		anon:   &http.Client{Transport: rt, Timeout: opts.Timeout},
		authed: &http.Client{Transport: &oauth2.Transport{Source: tokens, Base: rt}, Timeout: opts.Timeout},
		paths:  paths,
		logger: logger.With("component", "authapi"),
	}, nil
}

// SignIn exchanges credentials for a token and user.
func (c *Client) SignIn(ctx context.Context, creds domainauth.Credentials) (domainauth.SignInResult, error) {
	body, err := c.do(ctx, c.anon, http.MethodPost, "auth/sign-in", creds)
	if err != nil {
		return domainauth.SignInResult{}, err
	}
	res, err := c.signInResult(body)
	if err != nil {
		return domainauth.SignInResult{}, err
	}
	if res.AccessToken == "" {
		return domainauth.SignInResult{}, apperrors.Remote(http.StatusOK, "sign-in response carried no access token")
	}
	return res, nil
}

// SignInWithToken refreshes a session from a stored token.
func (c *Client) SignInWithToken(ctx context.Context, accessToken string) (domainauth.SignInResult, error) {
	body, err := c.do(ctx, c.anon, http.MethodPost, "auth/sign-in-with-token",
		map[string]string{"accessToken": accessToken})
	if err != nil {
		return domainauth.SignInResult{}, err
	}
	return c.signInResult(body)
}

func (c *Client) SignUp(ctx context.Context, in domainauth.SignUpInput) error {
	_, err := c.do(ctx, c.anon, http.MethodPost, "auth/sign-up", in)
	return err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.do(ctx, c.anon, http.MethodPost, "auth/forgot-password", map[string]string{"email": email})
	return err
}

func (c *Client) ResetPassword(ctx context.Context, in domainauth.ResetPasswordInput) error {
	_, err := c.do(ctx, c.anon, http.MethodPost, "auth/reset-password", in)
	return err
}

func (c *Client) UnlockSession(ctx context.Context, creds domainauth.Credentials) error {
	_, err := c.do(ctx, c.anon, http.MethodPost, "auth/unlock-session", creds)
	return err
}

// Me fetches the profile of the bearer token's owner.
func (c *Client) Me(ctx context.Context) (*domainauth.CurrentUser, error) {
	return c.profile(ctx, http.MethodGet, "dash/me", nil)
}

// UpdateUser patches the current profile.
func (c *Client) UpdateUser(ctx context.Context, patch map[string]any) (*domainauth.CurrentUser, error) {
	return c.profile(ctx, http.MethodPatch, "dash/user", patch)
}

// UpdateStatus sets the user's presence status.
func (c *Client) UpdateStatus(ctx context.Context, status string) (*domainauth.CurrentUser, error) {
	return c.profile(ctx, http.MethodPost, "dash/update-status", map[string]string{"status": status})
}

func (c *Client) profile(ctx context.Context, method, path string, payload any) (*domainauth.CurrentUser, error) {
	body, err := c.do(ctx, c.authed, method, path, payload)
	if err != nil {
		return nil, err
	}
	doc, err := decodeDocument(body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeRemote, "invalid profile response")
	}
	user, err := extractUser(c.paths.Profile, doc)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeRemote, "invalid profile response")
	}
	if user == nil {
		return nil, apperrors.Remote(http.StatusOK, "profile response carried no user")
	}
	return user, nil
}

func (c *Client) signInResult(body []byte) (domainauth.SignInResult, error) {
	doc, err := decodeDocument(body)
	if err != nil {
		return domainauth.SignInResult{}, apperrors.Wrap(err, apperrors.ErrCodeRemote, "invalid sign-in response")
	}
	token, err := extractString(c.paths.Token, doc)
	if err != nil {
		return domainauth.SignInResult{}, apperrors.Wrap(err, apperrors.ErrCodeRemote, "invalid sign-in response")
	}
	user, err := extractUser(c.paths.User, doc)
	if err != nil {
		return domainauth.SignInResult{}, apperrors.Wrap(err, apperrors.ErrCodeRemote, "invalid sign-in response")
	}
	return domainauth.SignInResult{AccessToken: token, User: user}, nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, unwrapTransportError(err, path)
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	c.logger.DebugContext(ctx, "remote call",
		"method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.Remote(resp.StatusCode, remoteMessage(resp.StatusCode, body))
	}
	return body, nil
}

// unwrapTransportError strips the *url.Error wrapper so coded errors raised
// by the transport chain (decryption, missing token) keep their identity.
func unwrapTransportError(err error, path string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		var appErr *apperrors.AppError
		if errors.As(uerr.Err, &appErr) {
			return appErr
		}
		if errors.Is(uerr.Err, ErrNoToken) {
			return apperrors.Wrap(ErrNoToken, apperrors.ErrCodeUnauthorized, "not authenticated")
		}
	}
	return fmt.Errorf("call %s: %w", path, err)
}

// remoteMessage prefers the API's own "message" field over the status text.
func remoteMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return http.StatusText(status)
}
