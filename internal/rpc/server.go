// Package rpc hosts the tool registry over newline-delimited JSON-RPC 2.0
// on a byte stream, normally stdin/stdout. Transport problems (unparseable
// frames, unknown methods) surface as JSON-RPC errors; tool-level failures
// ride inside a successful response as the {status:"error"} envelope, so a
// failed call never breaks the channel.
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"spendtrack/internal/tools"
)

// JSON-RPC 2.0 message types.

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
// Result must NOT have omitempty — clients block waiting on absent results.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result"`
	Error   *RPCError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// callParams is the parameter shape of the tools/call method.
type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Server reads requests line by line and dispatches them to the registry.
// Requests run concurrently; the write side is serialized.
type Server struct {
	registry *tools.Registry
	in       io.Reader
	out      io.Writer
	mu       sync.Mutex // guards out

	// maxInFlight bounds concurrent tool calls.
	maxInFlight int
}

func NewServer(registry *tools.Registry, in io.Reader, out io.Writer) *Server {
	return &Server{
		registry:    registry,
		in:          in,
		out:         out,
		maxInFlight: 8,
	}
}

// Run serves until the input stream ends or ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxInFlight)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		frame := []byte(line)
		g.Go(func() error {
			s.handle(gctx, frame)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read requests: %w", err)
	}
	return ctx.Err()
}

func (s *Server) handle(ctx context.Context, frame []byte) {
	var req Request
	if err := json.Unmarshal(frame, &req); err != nil {
		s.writeError(nil, codeParseError, "invalid JSON")
		return
	}

	switch req.Method {
	case "tools/list":
		s.write(Response{
			Result: map[string]any{"tools": s.registry.Specs()},
			ID:     req.ID,
		})

	case "tools/call":
		var params callParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				s.writeError(req.ID, codeInvalidParams, "invalid tools/call params")
				return
			}
		}
		if params.Name == "" {
			s.writeError(req.ID, codeInvalidParams, "tools/call requires a tool name")
			return
		}

		slog.DebugContext(ctx, "dispatching tool call", "tool", params.Name)
		result := s.registry.Call(ctx, params.Name, params.Arguments)
		s.write(Response{Result: result, ID: req.ID})

	case "":
		s.writeError(req.ID, codeInvalidRequest, "missing method")

	default:
		s.writeError(req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method))
	}
}

func (s *Server) writeError(id any, code int, message string) {
	s.write(Response{
		Error: &RPCError{Code: code, Message: message},
		ID:    id,
	})
}

func (s *Server) write(resp Response) {
	resp.JSONRPC = "2.0"
	body, err := json.Marshal(resp)
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(append(body, '\n')); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
