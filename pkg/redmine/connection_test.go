package redmine

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConnection(t *testing.T) {
	var mu sync.Mutex
	reachable := true
	transport := &stubTransport{respond: func(*http.Request) (*http.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		if !reachable {
			return nil, errors.New("no route to host")
		}
		return jsonResponse(http.StatusOK, `{"issues":[],"total_count":0}`), nil
	}}
	c := newTestClient(t, transport)
	assert.Equal(t, ConnectionUnknown, c.ConnectionState())

	changes := make(chan ConnectionState, 4)
	c.OnConnectionChanged(func(s ConnectionState) { changes <- s })

	require.NoError(t, c.CheckConnection(context.Background()))
	assert.Equal(t, ConnectionAccessible, waitFor(t, changes))
	assert.Equal(t, "/issues.json", transport.request(0).URL.Path)
	assert.Equal(t, "limit=1", transport.request(0).URL.RawQuery)

	// Same state again does not notify.
	require.NoError(t, c.CheckConnection(context.Background()))
	assert.Eventually(t, func() bool { return transport.count() == 2 && c.Pending() == 0 }, eventuallyTimeout, eventuallyTick)
	assert.Empty(t, changes)

	mu.Lock()
	reachable = false
	mu.Unlock()
	require.NoError(t, c.CheckConnection(context.Background()))
	assert.Equal(t, ConnectionNotAccessible, waitFor(t, changes))
	assert.Equal(t, ConnectionNotAccessible, c.ConnectionState())
}

func TestMarkNetworkUnavailable(t *testing.T) {
	c := newTestClient(t, &stubTransport{respond: respondWith(http.StatusOK, `{}`)})

	var seen []ConnectionState
	c.OnConnectionChanged(func(s ConnectionState) { seen = append(seen, s) })

	c.MarkNetworkUnavailable()
	c.MarkNetworkUnavailable()
	assert.Equal(t, []ConnectionState{ConnectionNotAccessible}, seen)
	assert.Equal(t, "not accessible", c.ConnectionState().String())
}
