package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Handler answers one decoded request. A nil *Error means success and
// the result is encoded as the response result; a non-nil *Error becomes
// the response error object.
type Handler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, *Error)
}

// maxLineBytes bounds a single request line. Requests stay small; bulky
// payloads such as build contexts travel out of band.
const maxLineBytes = 4 * 1024 * 1024

// Server reads newline-delimited JSON-RPC requests, dispatches each to
// the handler on its own goroutine, and serializes responses onto the
// output stream. Responses are not ordered: a slow request does not hold
// up the ones behind it.
type Server struct {
	handler Handler
	in      io.Reader

	mu  sync.Mutex // serializes writes to out
	out io.Writer
}

func NewServer(handler Handler, in io.Reader, out io.Writer) *Server {
	return &Server{handler: handler, in: in, out: out}
}

// Run serves until the input stream ends or ctx is cancelled. In-flight
// requests are waited for on the way out, and each runs on a context
// detached from ctx: a shutdown must not abort a mutation halfway
// through.
func (s *Server) Run(ctx context.Context) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := bytes.Clone(scanner.Bytes())
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			readErr <- err
		}
	}()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return fmt.Errorf("read request stream: %w", err)
				default:
					return nil
				}
			}
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			s.serve(ctx, line, &wg)
		}
	}
}

func (s *Server) serve(ctx context.Context, line []byte, wg *sync.WaitGroup) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.reply(Response{JSONRPC: Version, Error: Errorf(ErrCodeParse, "parse error: %v", err)})
		return
	}
	if req.JSONRPC != Version || req.Method == "" {
		if req.IsNotification() {
			return
		}
		s.reply(Response{JSONRPC: Version, ID: req.ID, Error: Errorf(ErrCodeInvalidRequest, "invalid request")})
		return
	}

	hctx := context.WithoutCancel(ctx)
	wg.Add(1)
	go func() {
		defer wg.Done()
		result, rpcErr := s.handler.Handle(hctx, req.Method, req.Params)
		if req.IsNotification() {
			// Notifications are never answered, whatever the handler said.
			return
		}
		resp := Response{JSONRPC: Version, ID: req.ID}
		if rpcErr != nil {
			resp.Error = rpcErr
		} else {
			resp.Result = result
		}
		s.reply(resp)
	}()
}

func (s *Server) reply(resp Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to encode response.", "error", err)
		payload, _ = json.Marshal(Response{JSONRPC: Version, ID: resp.ID, Error: Errorf(ErrCodeInternal, "encode response")})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(append(payload, '\n')); err != nil {
		slog.Warn("Failed to write response.", "error", err)
	}
}
