package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultRESTBaseURL = "https://identitytoolkit.googleapis.com/v1"
	defaultRESTTimeout = 30 * time.Second
)

// RESTProvider talks to an identity-toolkit style REST API.
type RESTProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// RESTOption configures a RESTProvider.
type RESTOption func(*RESTProvider)

// WithRESTBaseURL overrides the API base URL.
func WithRESTBaseURL(u string) RESTOption {
	return func(p *RESTProvider) {
		p.baseURL = strings.TrimRight(u, "/")
	}
}

// WithRESTHTTPClient sets a custom HTTP client.
func WithRESTHTTPClient(c *http.Client) RESTOption {
	return func(p *RESTProvider) {
		p.client = c
	}
}

// WithRESTTimeout bounds each identity API call.
func WithRESTTimeout(d time.Duration) RESTOption {
	return func(p *RESTProvider) {
		c := *p.client
		c.Timeout = d
		p.client = &c
	}
}

// NewRESTProvider creates a provider authenticating with apiKey.
func NewRESTProvider(apiKey string, opts ...RESTOption) *RESTProvider {
	p := &RESTProvider{
		apiKey:  apiKey,
		baseURL: defaultRESTBaseURL,
		client:  &http.Client{Timeout: defaultRESTTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type credentialsResponse struct {
	IDToken string `json:"idToken"`
	Email   string `json:"email"`
	LocalID string `json:"localId"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *RESTProvider) SignIn(ctx context.Context, email, password string) (Identity, error) {
	return p.call(ctx, "accounts:signInWithPassword", email, password)
}

func (p *RESTProvider) SignUp(ctx context.Context, email, password string) (Identity, error) {
	return p.call(ctx, "accounts:signUp", email, password)
}

func (p *RESTProvider) call(ctx context.Context, method, email, password string) (Identity, error) {
	payload, err := json.Marshal(credentialsRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return Identity{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := p.baseURL + "/" + method + "?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Identity{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
			return Identity{}, &Error{Status: resp.StatusCode, Message: er.Error.Message}
		}
		return Identity{}, fmt.Errorf("identity api error (status %d): %s", resp.StatusCode, string(body))
	}

	var out credentialsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Identity{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if out.Email == "" {
		out.Email = email
	}
	return Identity{Email: out.Email, Token: out.IDToken}, nil
}
