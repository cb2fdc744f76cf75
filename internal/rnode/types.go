// Package rnode implements the client side of the rnode RPC protocol:
// a lazy connection handle plus typed clients for the node's Repl and
// Diagnostics services. The wire format is a JSON-RPC 2.0 envelope; the
// request and response payloads below mirror the node's message schema.
package rnode

import "encoding/json"

// request is the JSON-RPC 2.0 envelope sent to the node.
//
// The ID field exists to match requests with responses in pipelined
// protocols. Every call here is one synchronous HTTP round trip, so it is
// hardcoded to 1.
type request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      int         `json:"id"`
}

// response is the JSON-RPC 2.0 envelope received from the node.
//
// Result is kept as raw JSON because its shape depends on the method
// called; the typed clients decode it into the matching payload struct.
// Error is a pointer so that "no error" (absent key, nil pointer) is
// distinguishable from an error with code 0.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is an application-level fault returned by the node.
// Negative codes are reserved by the JSON-RPC 2.0 specification
// (-32601 method not found, -32602 invalid params, ...); the node may
// use positive codes for execution faults.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// CmdRequest carries a line of code for the Repl service's Run operation.
type CmdRequest struct {
	Line string `json:"line"`
}

// EvalRequest carries a file path for the Repl service's Eval operation.
// The path is resolved by the node, not by this client.
type EvalRequest struct {
	FileName string `json:"fileName"`
}

// ReplResponse is the textual result of a Run or Eval operation,
// typically a rendered dump of the node's in-memory store.
type ReplResponse struct {
	Output string `json:"output"`
}

// ListPeersRequest has no fields; the Diagnostics service takes no
// arguments for ListPeers.
type ListPeersRequest struct{}

// PeerList is the ordered set of peers the node is connected to.
type PeerList struct {
	Peers []string `json:"peers"`
}
