package engine

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
)

// Log tail bounds. Zero requests the default; the cap keeps payloads
// bounded regardless of what the caller asks for.
const (
	DefaultLogTail = 100
	MaxLogTail     = 1000
)

// LogsOptions narrows a log fetch. Since and Until are RFC3339 timestamps
// or relative durations, passed through to the engine.
type LogsOptions struct {
	Tail  int
	Since string
	Until string
}

// ContainerLogs returns the last lines of a container's output, oldest
// first. Non-TTY containers produce a multiplexed stream that is demuxed
// here; stdout and stderr stay interleaved in emission order.
func (c *Client) ContainerLogs(ctx context.Context, id string, opts LogsOptions) ([]string, error) {
	info, err := c.InspectContainer(ctx, id)
	if err != nil {
		return nil, err
	}
	tty := info.Config != nil && info.Config.Tty

	tail := opts.Tail
	if tail <= 0 {
		tail = DefaultLogTail
	} else if tail > MaxLogTail {
		tail = MaxLogTail
	}

	rc, err := c.api.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(tail),
		Since:      opts.Since,
		Until:      opts.Until,
	})
	if err != nil {
		return nil, classify("fetch container logs", "container", id, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if tty {
		_, err = io.Copy(&buf, rc)
	} else {
		_, err = stdcopy.StdCopy(&buf, &buf, rc)
	}
	if err != nil {
		return nil, &EngineError{Op: "read container logs", Err: err}
	}
	return splitLogLines(buf.String()), nil
}

// splitLogLines splits raw log output into lines, dropping the single
// empty line a trailing newline produces so tail=N yields exactly N.
func splitLogLines(raw string) []string {
	if raw == "" {
		return []string{}
	}
	lines := strings.Split(raw, "\n")
	if n := len(lines); lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
