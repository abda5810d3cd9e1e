package redmine

import "context"

// ConnectionState describes whether the server was reachable on the last
// check.
type ConnectionState int

const (
	ConnectionUnknown ConnectionState = iota
	ConnectionAccessible
	ConnectionNotAccessible
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionAccessible:
		return "accessible"
	case ConnectionNotAccessible:
		return "not accessible"
	default:
		return "unknown"
	}
}

// ConnectionState returns the state observed by the last check.
func (c *Client) ConnectionState() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connState
}

// OnConnectionChanged registers fn to be called whenever the connection state
// changes. Only one listener is kept.
func (c *Client) OnConnectionChanged(fn func(ConnectionState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connListener = fn
}

// CheckConnection probes the server with a one-record issue list and updates
// the connection state from the outcome.
func (c *Client) CheckConnection(ctx context.Context) error {
	_, err := c.Send(ctx, "issues", func(reply *Reply, _ Document) {
		if reply.Failed() {
			c.setConnectionState(ConnectionNotAccessible)
			return
		}
		c.setConnectionState(ConnectionAccessible)
	}, ModeRead, "limit=1", nil)
	return err
}

// MarkNetworkUnavailable records that the network is down without probing.
func (c *Client) MarkNetworkUnavailable() {
	c.setConnectionState(ConnectionNotAccessible)
}

func (c *Client) setConnectionState(state ConnectionState) {
	c.mu.Lock()
	if c.connState == state {
		c.mu.Unlock()
		return
	}
	c.connState = state
	listener := c.connListener
	c.mu.Unlock()

	c.log().Info("connection state changed", "state", state.String())
	if listener != nil {
		listener(state)
	}
}
