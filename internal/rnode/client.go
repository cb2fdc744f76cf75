package rnode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Method names of the node's RPC surface.
const (
	methodReplRun   = "repl.run"
	methodReplEval  = "repl.eval"
	methodListPeers = "diagnostics.listPeers"
)

// Conn is a transport handle bound to a single node endpoint. Dial performs
// no I/O; an unreachable node surfaces as an error on the first call, not at
// construction time. There are no retries and no credentials — the channel
// is assumed to be a local or internal one.
type Conn struct {
	url        string
	httpClient *http.Client
}

// Dial binds a connection handle to host:port. A timeout of 0 means calls
// wait on the node indefinitely (cancel via context if needed).
func Dial(host string, port int, timeout time.Duration) *Conn {
	return &Conn{
		url:        fmt.Sprintf("http://%s:%d/rpc", host, port),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// URL returns the endpoint this connection is bound to.
func (c *Conn) URL() string { return c.url }

// call executes one JSON-RPC exchange and decodes the result into out.
// An application-level fault from the node is returned as an *RPCError.
func (c *Conn) call(ctx context.Context, method string, params, out interface{}) error {
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: HTTP %d", method, httpResp.StatusCode)
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}

	var resp response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("%s: invalid JSON response: %w", method, err)
	}

	if resp.Error != nil {
		return fmt.Errorf("%s: node error %d: %w", method, resp.Error.Code, resp.Error)
	}

	if out != nil {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}

	return nil
}

// ReplClient issues code-execution calls against the node's Repl service.
// It is a stateless wrapper around the connection; any number of calls may
// be in flight.
type ReplClient struct {
	conn *Conn
}

// NewReplClient binds a Repl client to conn.
func NewReplClient(conn *Conn) *ReplClient {
	return &ReplClient{conn: conn}
}

// Run submits one line of code for execution and returns the node's
// textual output.
func (c *ReplClient) Run(ctx context.Context, line string) (string, error) {
	var resp ReplResponse
	if err := c.conn.call(ctx, methodReplRun, CmdRequest{Line: line}, &resp); err != nil {
		return "", err
	}
	return resp.Output, nil
}

// Eval submits a file path for the node to load and execute. The path is
// interpreted on the node's filesystem.
func (c *ReplClient) Eval(ctx context.Context, fileName string) (string, error) {
	var resp ReplResponse
	if err := c.conn.call(ctx, methodReplEval, EvalRequest{FileName: fileName}, &resp); err != nil {
		return "", err
	}
	return resp.Output, nil
}

// DiagnosticsClient issues introspection calls against the node's
// Diagnostics service.
type DiagnosticsClient struct {
	conn *Conn
}

// NewDiagnosticsClient binds a Diagnostics client to conn.
func NewDiagnosticsClient(conn *Conn) *DiagnosticsClient {
	return &DiagnosticsClient{conn: conn}
}

// ListPeers returns the node's connected peers in the order the node
// reports them.
func (c *DiagnosticsClient) ListPeers(ctx context.Context) ([]string, error) {
	var resp PeerList
	if err := c.conn.call(ctx, methodListPeers, ListPeersRequest{}, &resp); err != nil {
		return nil, err
	}
	return resp.Peers, nil
}
