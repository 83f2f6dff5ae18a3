package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
)

// ImageSummary is one entry of an image listing.
type ImageSummary struct {
	ID      string
	Tags    []string
	Size    int64
	Created int64
}

func (c *Client) ListImages(ctx context.Context, all bool) ([]ImageSummary, error) {
	list, err := c.api.ImageList(ctx, image.ListOptions{All: all})
	if err != nil {
		return nil, &EngineError{Op: "list images", Err: err}
	}

	out := make([]ImageSummary, 0, len(list))
	for _, img := range list {
		out = append(out, ImageSummary{
			ID:      ShortID(img.ID),
			Tags:    img.RepoTags,
			Size:    img.Size,
			Created: img.Created,
		})
	}
	return out, nil
}

// PullImage pulls ref and drains the progress stream to completion.
func (c *Client) PullImage(ctx context.Context, ref string) error {
	slog.Info("Pulling image.", "image", ref)
	rc, err := c.api.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return classify("pull image", "image", ref, err)
	}
	defer rc.Close()
	if _, err := drainImageStream(rc); err != nil {
		return &EngineError{Op: "pull image", Err: err}
	}
	return nil
}

// PushImage pushes ref. Failures reported inside the progress stream
// (denied, repository missing) surface as EngineError.
func (c *Client) PushImage(ctx context.Context, ref string) error {
	slog.Info("Pushing image.", "image", ref)
	rc, err := c.api.ImagePush(ctx, ref, image.PushOptions{RegistryAuth: anonymousRegistryAuth()})
	if err != nil {
		return classify("push image", "image", ref, err)
	}
	defer rc.Close()
	if _, err := drainImageStream(rc); err != nil {
		return &EngineError{Op: "push image", Err: err}
	}
	return nil
}

func (c *Client) RemoveImage(ctx context.Context, ref string, force bool) error {
	_, err := c.api.ImageRemove(ctx, ref, image.RemoveOptions{Force: force})
	return classify("remove image", "image", ref, err)
}

// BuildResult carries the outcome of an image build: the engine-assigned
// id when the daemon reported one, and the build output lines.
type BuildResult struct {
	ID     string
	Output []string
}

// BuildImage builds dir into an image tagged tag. dockerfile is relative
// to dir and defaults to "Dockerfile".
func (c *Client) BuildImage(ctx context.Context, dir, tag, dockerfile string) (BuildResult, error) {
	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}

	buildCtx, err := archive.TarWithOptions(dir, &archive.TarOptions{})
	if err != nil {
		return BuildResult{}, &EngineError{Op: "prepare build context", Err: err}
	}
	defer buildCtx.Close()

	slog.Info("Building image.", "tag", tag, "dir", dir)
	resp, err := c.api.ImageBuild(ctx, buildCtx, build.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: dockerfile,
		Remove:     true,
	})
	if err != nil {
		return BuildResult{}, &EngineError{Op: "build image", Err: err}
	}
	defer resp.Body.Close()

	result, err := drainImageStream(resp.Body)
	if err != nil {
		return BuildResult{}, &EngineError{Op: "build image", Err: err}
	}
	return result, nil
}

// drainImageStream consumes a pull/push/build progress stream, collecting
// output lines and the aux-reported image id. An error message embedded
// in the stream is returned as the error — the daemon reports most build
// and push failures this way, not through the HTTP status.
func drainImageStream(r io.Reader) (BuildResult, error) {
	var result BuildResult
	dec := json.NewDecoder(r)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return result, nil
			}
			return result, err
		}
		if msg.Error != nil {
			return result, msg.Error
		}
		if msg.Aux != nil {
			var aux struct {
				ID string `json:"ID"`
			}
			if err := json.Unmarshal(*msg.Aux, &aux); err == nil && aux.ID != "" {
				result.ID = aux.ID
			}
		}
		if line := strings.TrimSpace(msg.Stream); line != "" {
			result.Output = append(result.Output, line)
		} else if msg.Status != "" {
			result.Output = append(result.Output, msg.Status)
		}
	}
}

// anonymousRegistryAuth encodes an empty auth config. The engine requires
// the auth header on push even for anonymous access.
func anonymousRegistryAuth() string {
	return base64.URLEncoding.EncodeToString([]byte("{}"))
}
