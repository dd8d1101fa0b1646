package matrix

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"
)

// Client talks to one homeserver on behalf of one account.
type Client struct {
	cli *mautrix.Client
}

type options struct {
	httpClient  *http.Client
	accessToken string
	userID      string
	userAgent   string
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		if hc != nil {
			o.httpClient = hc
		}
	}
}

// WithAccessToken authenticates the client as userID.
func WithAccessToken(token, userID string) Option {
	return func(o *options) {
		o.accessToken = token
		o.userID = userID
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// NewClient creates a client for the homeserver at homeserverURL.
func NewClient(homeserverURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(homeserverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHomeserver, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidHomeserver, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidHomeserver)
	}

	o := options{userAgent: "traveller"}
	for _, opt := range opts {
		opt(&o)
	}

	cli, err := mautrix.NewClient(u.String(), id.UserID(o.userID), o.accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHomeserver, err)
	}
	cli.UserAgent = o.userAgent
	if o.httpClient != nil {
		cli.Client = o.httpClient
	}
	return &Client{cli: cli}, nil
}

// UserID returns the id of the authenticated account.
func (c *Client) UserID() string {
	return string(c.cli.UserID)
}

// authenticated refuses calls that would be sent without an access token.
func (c *Client) authenticated() error {
	if c.cli.AccessToken == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// ServerName returns the home-server part of a user id: everything after
// the first colon, which may include a port.
func ServerName(userID string) (string, error) {
	_, server, ok := strings.Cut(userID, ":")
	if !ok || server == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	return server, nil
}
