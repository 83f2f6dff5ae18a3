package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

type handlerFunc func(ctx context.Context, method string, params json.RawMessage) (any, *Error)

func (f handlerFunc) Handle(ctx context.Context, method string, params json.RawMessage) (any, *Error) {
	return f(ctx, method, params)
}

// lineRecorder captures each response line as it is written. reply emits
// one Write per response, so one Write is one line.
type lineRecorder struct {
	mu    sync.Mutex
	lines chan string
}

func newLineRecorder() *lineRecorder {
	return &lineRecorder{lines: make(chan string, 16)}
}

func (w *lineRecorder) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines <- strings.TrimSuffix(string(p), "\n")
	return len(p), nil
}

func (w *lineRecorder) next(t *testing.T) string {
	t.Helper()
	select {
	case line := <-w.lines:
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("no response within 2s")
		return ""
	}
}

func (w *lineRecorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case line := <-w.lines:
		t.Fatalf("unexpected response %s", line)
	case <-time.After(50 * time.Millisecond):
	}
}

type wireResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

func decodeResponse(t *testing.T, line string) wireResponse {
	t.Helper()
	var resp wireResponse
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		t.Fatalf("decode response %s: %v", line, err)
	}
	if resp.JSONRPC != Version {
		t.Fatalf("jsonrpc = %q, want %q", resp.JSONRPC, Version)
	}
	return resp
}

func echoHandler(_ context.Context, method string, _ json.RawMessage) (any, *Error) {
	return map[string]any{"method": method}, nil
}

func runServer(t *testing.T, handler Handler, input string) (*lineRecorder, chan error) {
	t.Helper()
	out := newLineRecorder()
	s := NewServer(handler, strings.NewReader(input), out)
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	return out, done
}

func TestRun_AnswersAndEchoesIDs(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n" +
		`{"jsonrpc":"2.0","id":"abc","method":"ping"}` + "\n"
	out, done := runServer(t, handlerFunc(echoHandler), input)

	ids := map[string]bool{}
	for range 2 {
		resp := decodeResponse(t, out.next(t))
		if resp.Error != nil {
			t.Fatalf("error = %v, want result", resp.Error)
		}
		ids[string(resp.ID)] = true
	}
	// Ids come back byte for byte, number and string alike.
	if !ids["7"] || !ids[`"abc"`] {
		t.Errorf("ids = %v, want 7 and \"abc\"", ids)
	}
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_ParseError(t *testing.T) {
	out, done := runServer(t, handlerFunc(echoHandler), "{not json\n")

	resp := decodeResponse(t, out.next(t))
	if resp.Error == nil || resp.Error.Code != ErrCodeParse {
		t.Fatalf("error = %v, want code %d", resp.Error, ErrCodeParse)
	}
	if string(resp.ID) != "null" {
		t.Errorf("id = %s, want null for an unparseable request", resp.ID)
	}
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "missing method", line: `{"jsonrpc":"2.0","id":3}`},
		{name: "wrong version", line: `{"jsonrpc":"1.0","id":3,"method":"ping"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, done := runServer(t, handlerFunc(echoHandler), tt.line+"\n")

			resp := decodeResponse(t, out.next(t))
			if resp.Error == nil || resp.Error.Code != ErrCodeInvalidRequest {
				t.Fatalf("error = %v, want code %d", resp.Error, ErrCodeInvalidRequest)
			}
			if string(resp.ID) != "3" {
				t.Errorf("id = %s, want the request id echoed", resp.ID)
			}
			if err := <-done; err != nil {
				t.Fatalf("Run: %v", err)
			}
		})
	}
}

func TestRun_NotificationsNeverAnswered(t *testing.T) {
	var handled bool
	handler := handlerFunc(func(_ context.Context, method string, _ json.RawMessage) (any, *Error) {
		handled = true
		return nil, nil
	})
	input := `{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n"
	out, done := runServer(t, handler, input)

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	out.expectNone(t)
	if !handled {
		t.Error("notification was not handed to the handler")
	}
}

func TestRun_MalformedNotificationStaysSilent(t *testing.T) {
	// Invalid but id-less: there is nobody to address an error to.
	out, done := runServer(t, handlerFunc(echoHandler), `{"jsonrpc":"1.0","method":"x"}`+"\n")

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	out.expectNone(t)
}

func TestRun_SlowRequestDoesNotBlockOthers(t *testing.T) {
	release := make(chan struct{})
	handler := handlerFunc(func(_ context.Context, method string, _ json.RawMessage) (any, *Error) {
		if method == "slow" {
			<-release
		}
		return map[string]any{"method": method}, nil
	})
	input := `{"jsonrpc":"2.0","id":1,"method":"slow"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"fast"}` + "\n"
	out, done := runServer(t, handler, input)

	// The fast request answers while the slow one is still running.
	first := decodeResponse(t, out.next(t))
	if string(first.ID) != "2" {
		t.Fatalf("first response id = %s, want the fast request", first.ID)
	}

	close(release)
	second := decodeResponse(t, out.next(t))
	if string(second.ID) != "1" {
		t.Errorf("second response id = %s, want the slow request", second.ID)
	}
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_BlankLinesSkipped(t *testing.T) {
	input := "\n  \n" + `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"
	out, done := runServer(t, handlerFunc(echoHandler), input)

	resp := decodeResponse(t, out.next(t))
	if resp.Error != nil {
		t.Fatalf("error = %v, want blank lines ignored", resp.Error)
	}
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	out.expectNone(t)
}
