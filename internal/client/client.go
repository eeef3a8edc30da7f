// Package client talks to the directory API on behalf of a user: it logs in,
// keeps the session token in a local store and fetches the student list.
//
// The logged-in state lives only on this side. The stored token is never
// checked for expiry here, and it is sent with the listing request only
// when the client is built WithAuthHeader.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TooLazyToCreate/student-directory/internal/model"
	"github.com/TooLazyToCreate/student-directory/internal/service"
	"github.com/TooLazyToCreate/student-directory/internal/token"
	"go.uber.org/zap"
)

// RedirectDelay is the pause between a successful login and showing the
// directory.
const RedirectDelay = 600 * time.Millisecond

type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged in"
	}
	return "logged out"
}

type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %s", http.StatusText(e.Status))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	store      TokenStore
	logger     *zap.Logger
	authHeader bool
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithAuthHeader attaches the stored token to directory requests, for
// servers running with the directory guard on.
func WithAuthHeader() Option {
	return func(c *Client) { c.authHeader = true }
}

func New(baseURL string, store TokenStore, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      store,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Login posts the credentials and stores the returned token. On failure the
// stored state is left untouched.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(service.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/login"), strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	raw, err := token.FromStream(resp.Body)
	if err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("login response carries no token")
	}
	if err = c.store.Set(string(raw)); err != nil {
		return err
	}
	c.logger.Debug("Session token stored", zap.String("email", email))
	return nil
}

func (c *Client) Logout() error {
	return c.store.Delete()
}

func (c *Client) State() (State, error) {
	_, ok, err := c.store.Get()
	if err != nil {
		return LoggedOut, err
	}
	if ok {
		return LoggedIn, nil
	}
	return LoggedOut, nil
}

func (c *Client) ListStudents(ctx context.Context) ([]model.Student, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/estudiantes"), nil)
	if err != nil {
		return nil, err
	}
	if c.authHeader {
		if raw, ok, err := c.store.Get(); err != nil {
			return nil, err
		} else if ok {
			req.Header.Set("Authorization", "Bearer "+raw)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}

	var students []model.Student
	if err = json.NewDecoder(resp.Body).Decode(&students); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	return students, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}
