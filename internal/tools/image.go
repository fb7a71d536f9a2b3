package tools

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
)

// ImageSummary is the wire form of one image listing row.
type ImageSummary struct {
	ID      string   `json:"id"`
	Tags    []string `json:"tags"`
	Size    int64    `json:"size"`
	Created int64    `json:"created"`
}

func handleListImages(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	list, err := cli.ImageList(ctx, image.ListOptions{All: boolArg(args, "all")})
	if err != nil {
		return nil, dockerErr(err)
	}

	out := make([]ImageSummary, 0, len(list))
	for _, img := range list {
		out = append(out, ImageSummary{
			ID:      shortImageID(img.ID),
			Tags:    img.RepoTags,
			Size:    img.Size,
			Created: img.Created,
		})
	}
	return map[string]any{"images": out, "count": len(out)}, nil
}

// shortImageID trims the "sha256:" prefix and truncates like the docker
// CLI does.
func shortImageID(id string) string {
	const prefix = "sha256:"
	if len(id) > len(prefix) && id[:len(prefix)] == prefix {
		id = id[len(prefix):]
	}
	return shortID(id)
}

func handleInspectImage(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	ref := stringArg(args, "image")
	info, err := cli.ImageInspect(ctx, ref)
	if err != nil {
		return nil, dockerErr(err)
	}

	out := map[string]any{
		"id":      shortImageID(info.ID),
		"tags":    info.RepoTags,
		"size":    info.Size,
		"created": info.Created,
		"os":      info.Os,
		"arch":    info.Architecture,
	}
	if info.Config != nil {
		out["entrypoint"] = []string(info.Config.Entrypoint)
		out["cmd"] = []string(info.Config.Cmd)
		out["labels"] = info.Config.Labels
	}
	return out, nil
}

func handlePullImage(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	ref := stringArg(args, "image")
	if ref == "" {
		return nil, InvalidParam("image", "must not be empty")
	}

	reader, err := cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return nil, dockerErr(err)
	}
	defer reader.Close()

	// The pull only completes once the progress stream is drained.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return nil, Errf(CodeUnavailable, "pull interrupted: %v", err)
	}
	return map[string]any{"image": ref, "pulled": true}, nil
}

func handleBuildImage(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	path := stringArg(args, "path")
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFound("directory", path)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, InvalidParam("path", "build context must be a directory")
	}

	dockerfile := stringArg(args, "dockerfile")
	if _, err := os.Stat(filepath.Join(path, dockerfile)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFound("dockerfile", dockerfile)
		}
		return nil, err
	}

	buildCtx, err := tarBuildContext(path)
	if err != nil {
		return nil, fmt.Errorf("packing build context: %w", err)
	}

	opts := build.ImageBuildOptions{
		Dockerfile: dockerfile,
		NoCache:    boolArg(args, "no_cache"),
		PullParent: boolArg(args, "pull"),
		Remove:     true,
	}
	tag := stringArg(args, "tag")
	if tag != "" {
		opts.Tags = []string{tag}
	}

	resp, err := cli.ImageBuild(ctx, buildCtx, opts)
	if err != nil {
		return nil, dockerErr(err)
	}
	defer resp.Body.Close()

	// The body is a JSON message stream; a build failure arrives as an
	// in-stream error, not a transport error.
	var logs strings.Builder
	var imageID string
	dec := json.NewDecoder(resp.Body)
	for {
		var msg struct {
			Stream string `json:"stream"`
			Error  string `json:"error"`
			Aux    struct {
				ID string `json:"ID"`
			} `json:"aux"`
		}
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decoding build output: %w", err)
		}
		if msg.Error != "" {
			return nil, Errf(CodeInvalidParameter, "build failed: %s", strings.TrimSpace(msg.Error))
		}
		if int64(logs.Len()) < kit.Cfg.Limits.MaxReadBytes {
			logs.WriteString(msg.Stream)
		}
		if msg.Aux.ID != "" {
			imageID = msg.Aux.ID
		}
	}

	out := map[string]any{"built": true, "logs": logs.String()}
	if imageID != "" {
		out["image_id"] = shortImageID(imageID)
	}
	if tag != "" {
		out["tag"] = tag
	}
	return out, nil
}

// tarBuildContext packs a directory into the tar stream the build API
// expects. Entry names are relative to the context root.
func tarBuildContext(root string) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	tw := tar.NewWriter(buf)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}
		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		f, err := os.Open(path) // #nosec G304 -- path went through the sandbox
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

func handleRemoveImage(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	ref := stringArg(args, "image")
	force := boolArg(args, "force")

	deleted, err := cli.ImageRemove(ctx, ref, image.RemoveOptions{
		Force:         force,
		PruneChildren: true,
	})
	if err != nil {
		// The daemon answers with a conflict when the image backs a
		// container; dockerErr maps that to CONFLICT.
		return nil, dockerErr(err)
	}

	removed := make([]string, 0, len(deleted))
	for _, d := range deleted {
		if d.Deleted != "" {
			removed = append(removed, shortImageID(d.Deleted))
		}
	}
	return map[string]any{"image": ref, "removed": true, "deleted": removed}, nil
}

func handlePruneImages(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}

	pruneFilters := filters.NewArgs()
	if !boolArg(args, "all") {
		// Default prune removes dangling images only.
		pruneFilters.Add("dangling", "true")
	}
	report, err := cli.ImagesPrune(ctx, pruneFilters)
	if err != nil {
		return nil, dockerErr(err)
	}

	return map[string]any{
		"deleted_count":   len(report.ImagesDeleted),
		"reclaimed_bytes": report.SpaceReclaimed,
	}, nil
}
