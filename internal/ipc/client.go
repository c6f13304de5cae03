package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Belltower.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Belltower.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Alarms returns the alarms currently loaded by the daemon.
func (c *Client) Alarms() (*AlarmsResponse, error) {
	var resp AlarmsResponse
	if err := c.client.Call("Belltower.Alarms", AlarmsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Triggers returns trigger history for a date. An empty date means today.
func (c *Client) Triggers(date string) (*TriggersResponse, error) {
	var resp TriggersResponse
	req := TriggersRequest{Date: date}
	if err := c.client.Call("Belltower.Triggers", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
