package redmine

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticationHeaders(t *testing.T) {
	testCases := []struct {
		name          string
		configure     func(c *Client)
		wantAPIKey    string
		wantAuthorize string
	}{
		{
			name:       "api key",
			configure:  func(c *Client) { c.SetAPIKey("abc123") },
			wantAPIKey: "abc123",
		},
		{
			name:          "basic auth",
			configure:     func(c *Client) { c.SetBasicAuth("jsmith", "s3cret") },
			wantAuthorize: "Basic " + base64.StdEncoding.EncodeToString([]byte("jsmith:s3cret")),
		},
		{
			name: "switch from basic to api key",
			configure: func(c *Client) {
				c.SetBasicAuth("jsmith", "s3cret")
				c.SetAPIKey("abc123")
			},
			wantAPIKey: "abc123",
		},
		{
			name:      "anonymous",
			configure: func(c *Client) { c.SetAuthenticator(nil) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			transport := &stubTransport{respond: respondWith(http.StatusOK, `{}`)}
			c := newTestClient(t, transport)
			tc.configure(c)

			done := make(chan struct{}, 2)
			for _, resource := range []string{"issues", "projects"} {
				_, err := c.Send(context.Background(), resource, func(*Reply, Document) { done <- struct{}{} }, ModeRead, "", nil)
				require.NoError(t, err)
			}
			waitFor(t, done)
			waitFor(t, done)

			for i := 0; i < transport.count(); i++ {
				header := transport.request(i).Header
				assert.Equal(t, tc.wantAPIKey, header.Get("X-Redmine-API-Key"))
				assert.Equal(t, tc.wantAuthorize, header.Get("Authorization"))
			}
		})
	}
}

func TestConstructorsPickAuthenticator(t *testing.T) {
	c := NewWithPassword(testBaseURL, "jsmith", "s3cret", false)
	defer c.Close()
	assert.Equal(t, BasicAuth{Login: "jsmith", Password: "s3cret"}, c.auth)
	assert.False(t, c.checkSSL)

	k := NewWithAPIKey(testBaseURL, "abc123", true)
	defer k.Close()
	assert.Equal(t, APIKeyAuth{Key: "abc123"}, k.auth)
	assert.True(t, k.checkSSL)
}
