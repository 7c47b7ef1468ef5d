package sentinelgate

import (
	"net/http"
	"time"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithServerAddr sets the MCPP gateway address.
// If not set, defaults to the MCPP_SERVER_ADDR environment variable.
func WithServerAddr(addr string) Option {
	return func(c *Client) {
		c.serverAddr = addr
	}
}

// WithTimeout sets the HTTP request timeout.
// If not set, defaults to 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom http.Client for making requests.
// This is useful for testing, proxying, or custom transport configurations.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRequesterName sets the default requester name used to populate
// UsageContext.Requester.Name when a call doesn't specify one.
func WithRequesterName(name string) Option {
	return func(c *Client) {
		c.requesterName = name
	}
}

// WithRequesterRoles sets the default requester roles used to populate
// UsageContext.Requester.Roles when a call doesn't specify them.
func WithRequesterRoles(roles []string) Option {
	return func(c *Client) {
		c.requesterRoles = roles
	}
}
