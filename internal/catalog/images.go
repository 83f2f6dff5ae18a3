package catalog

import (
	"context"
	"fmt"

	"github.com/distribution/reference"

	"stevedore/internal/engine"
	"stevedore/internal/policy"
)

func (c *Catalog) imageOps() []Operation {
	repository := policy.Param{Type: "string", Required: true, Description: "image repository, e.g. nginx or ghcr.io/acme/api"}
	tag := policy.Param{Type: "string", Description: "image tag, default latest"}
	return []Operation{
		{
			Name:        "list_images",
			Description: "List local images",
			Params: map[string]policy.Param{
				"all": {Type: "boolean", Description: "include intermediate layers"},
			},
			handler: c.listImages,
		},
		{
			Name:        "pull_image",
			Description: "Pull an image from a registry",
			Params:      map[string]policy.Param{"repository": repository, "tag": tag},
			handler:     c.pullImage,
		},
		{
			Name:        "push_image",
			Description: "Push an image to a registry",
			Params:      map[string]policy.Param{"repository": repository, "tag": tag},
			handler:     c.pushImage,
		},
		{
			Name:        "build_image",
			Description: "Build an image from a local directory containing a Dockerfile",
			Params: map[string]policy.Param{
				"path":       {Type: "string", Required: true, Description: "build context directory"},
				"tag":        {Type: "string", Required: true, Description: "tag for the built image"},
				"dockerfile": {Type: "string", Description: "dockerfile path relative to the context, default Dockerfile"},
			},
			handler: c.buildImage,
		},
		{
			Name:        "remove_image",
			Description: "Remove a local image",
			Params: map[string]policy.Param{
				"image": {Type: "string", Required: true, Description: "image reference or id"},
				"force": {Type: "boolean", Description: "remove even if tagged in multiple repositories"},
			},
			handler: c.removeImage,
		},
	}
}

func (c *Catalog) listImages(ctx context.Context, args map[string]any) (any, error) {
	list, err := c.client.ListImages(ctx, boolArg(args, "all"))
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(list))
	for _, img := range list {
		out = append(out, map[string]any{
			"id":      img.ID,
			"tags":    img.Tags,
			"size":    img.Size,
			"created": img.Created,
		})
	}
	return out, nil
}

func (c *Catalog) pullImage(ctx context.Context, args map[string]any) (any, error) {
	ref, repo, tag, err := imageRef("pull_image", args)
	if err != nil {
		return nil, err
	}
	if err := c.client.PullImage(ctx, ref); err != nil {
		return nil, err
	}
	return map[string]any{"repository": repo, "tag": tag, "status": "pulled"}, nil
}

func (c *Catalog) pushImage(ctx context.Context, args map[string]any) (any, error) {
	ref, repo, tag, err := imageRef("push_image", args)
	if err != nil {
		return nil, err
	}
	if err := c.client.PushImage(ctx, ref); err != nil {
		return nil, err
	}
	return map[string]any{"repository": repo, "tag": tag, "status": "pushed"}, nil
}

// imageRef assembles the full reference from repository and tag
// arguments. An explicit tag argument wins over one embedded in the
// repository; an untagged repository defaults to latest.
func imageRef(op string, args map[string]any) (ref, repo, tag string, err error) {
	repo = stringArg(args, "repository")
	tag = stringArg(args, "tag")

	named, err := reference.ParseNormalizedNamed(repo)
	if err != nil {
		return "", "", "", &InvalidArgumentsError{Op: op, Field: "repository", Reason: fmt.Sprintf("invalid reference %q: %v", repo, err)}
	}
	if tag != "" {
		tagged, err := reference.WithTag(reference.TrimNamed(named), tag)
		if err != nil {
			return "", "", "", &InvalidArgumentsError{Op: op, Field: "tag", Reason: fmt.Sprintf("invalid tag %q: %v", tag, err)}
		}
		return tagged.String(), reference.FamiliarName(named), tag, nil
	}

	withTag := reference.TagNameOnly(named)
	tag = "latest"
	if tagged, ok := withTag.(reference.Tagged); ok {
		tag = tagged.Tag()
	}
	return withTag.String(), reference.FamiliarName(named), tag, nil
}

func (c *Catalog) buildImage(ctx context.Context, args map[string]any) (any, error) {
	const op = "build_image"
	tag := stringArg(args, "tag")
	if _, err := reference.ParseNormalizedNamed(tag); err != nil {
		return nil, &InvalidArgumentsError{Op: op, Field: "tag", Reason: fmt.Sprintf("invalid reference %q: %v", tag, err)}
	}

	result, err := c.client.BuildImage(ctx, stringArg(args, "path"), tag, stringArg(args, "dockerfile"))
	if err != nil {
		return nil, err
	}
	res := map[string]any{"tag": tag, "logs": result.Output}
	if result.ID != "" {
		res["id"] = engine.ShortID(result.ID)
	}
	return res, nil
}

func (c *Catalog) removeImage(ctx context.Context, args map[string]any) (any, error) {
	ref := stringArg(args, "image")
	if err := c.client.RemoveImage(ctx, ref, boolArg(args, "force")); err != nil {
		return nil, err
	}
	return map[string]any{"image": ref, "status": "removed"}, nil
}
