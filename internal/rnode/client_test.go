package rnode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

// fakeNode implements just enough of the node's RPC surface for client tests.
type fakeNode struct {
	t     *testing.T
	calls []request

	output  string
	peers   []string
	rpcErr  *RPCError
	rawBody string // when set, written verbatim instead of a JSON-RPC response
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		n.t.Errorf("unexpected HTTP method %s", r.Method)
	}
	if r.URL.Path != "/rpc" {
		n.t.Errorf("unexpected path %s", r.URL.Path)
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		n.t.Fatalf("decode request: %v", err)
	}
	n.calls = append(n.calls, req)

	if n.rawBody != "" {
		fmt.Fprint(w, n.rawBody)
		return
	}

	resp := response{JSONRPC: "2.0", ID: req.ID}
	if n.rpcErr != nil {
		resp.Error = n.rpcErr
	} else {
		var result interface{}
		switch req.Method {
		case methodReplRun, methodReplEval:
			result = ReplResponse{Output: n.output}
		case methodListPeers:
			result = PeerList{Peers: n.peers}
		default:
			n.t.Errorf("unexpected method %s", req.Method)
		}
		raw, _ := json.Marshal(result)
		resp.Result = raw
	}
	json.NewEncoder(w).Encode(resp)
}

// dialTest binds a Conn to an httptest server's listener address.
func dialTest(t *testing.T, handler http.Handler) *Conn {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hostPort := strings.TrimPrefix(srv.URL, "http://")
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return Dial(host, port, 5*time.Second)
}

func TestReplRun(t *testing.T) {
	node := &fakeNode{t: t, output: "Storage Contents:\n @{\"x\"}!(2)"}
	conn := dialTest(t, node)

	out, err := NewReplClient(conn).Run(context.Background(), "new x in { x!(1 + 1) }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != node.output {
		t.Errorf("output: got %q, want %q", out, node.output)
	}

	if len(node.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(node.calls))
	}
	call := node.calls[0]
	if call.Method != "repl.run" {
		t.Errorf("method: got %q, want repl.run", call.Method)
	}
	params, _ := json.Marshal(call.Params)
	if string(params) != `{"line":"new x in { x!(1 + 1) }"}` {
		t.Errorf("params: got %s", params)
	}
}

func TestReplEval(t *testing.T) {
	node := &fakeNode{t: t, output: "ok"}
	conn := dialTest(t, node)

	out, err := NewReplClient(conn).Eval(context.Background(), "contract1.rho")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" {
		t.Errorf("output: got %q, want ok", out)
	}

	call := node.calls[0]
	if call.Method != "repl.eval" {
		t.Errorf("method: got %q, want repl.eval", call.Method)
	}
	params, _ := json.Marshal(call.Params)
	if string(params) != `{"fileName":"contract1.rho"}` {
		t.Errorf("params: got %s", params)
	}
}

func TestListPeersPreservesOrder(t *testing.T) {
	node := &fakeNode{t: t, peers: []string{"10.0.0.3:40400", "10.0.0.1:40400", "10.0.0.2:40400"}}
	conn := dialTest(t, node)

	peers, err := NewDiagnosticsClient(conn).ListPeers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(peers) != 3 {
		t.Fatalf("expected 3 peers, got %d", len(peers))
	}
	for i, want := range node.peers {
		if peers[i] != want {
			t.Errorf("peer %d: got %q, want %q", i, peers[i], want)
		}
	}
}

func TestNodeErrorSurfaces(t *testing.T) {
	node := &fakeNode{t: t, rpcErr: &RPCError{Code: -32000, Message: "parse error at line 1"}}
	conn := dialTest(t, node)

	_, err := NewReplClient(conn).Run(context.Background(), "bad code")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "parse error at line 1") {
		t.Errorf("error should carry node message, got %q", err)
	}

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("error should wrap *RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32000 {
		t.Errorf("code: got %d, want -32000", rpcErr.Code)
	}
}

func TestInvalidJSONResponse(t *testing.T) {
	node := &fakeNode{t: t, rawBody: "<html>not json</html>"}
	conn := dialTest(t, node)

	_, err := NewReplClient(conn).Run(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "invalid JSON response") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDialIsLazy(t *testing.T) {
	// Nothing listens on this port; Dial must still succeed and the
	// failure must surface on the first call.
	conn := Dial("127.0.0.1", 1, time.Second)
	if conn == nil {
		t.Fatal("Dial returned nil")
	}

	_, err := NewDiagnosticsClient(conn).ListPeers(context.Background())
	if err == nil {
		t.Fatal("expected connection error on first call")
	}
}
