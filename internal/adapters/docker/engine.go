// Package docker implements the snapshot engine on the Docker API. Each
// stage becomes one image build with the parent snapshot as its sole base.
package docker

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/larsclaussen/kiln/internal/adapters/fs"
	"github.com/larsclaussen/kiln/internal/core/domain"
	"github.com/larsclaussen/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Engine = (*Engine)(nil)

// Engine applies stages by building single-instruction images through the
// Docker daemon.
type Engine struct {
	cli    client.APIClient
	walker *fs.Walker
}

// NewEngine creates a new Engine talking to the daemon the environment
// points at.
func NewEngine(walker *fs.Walker) (*Engine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create docker client")
	}
	return &Engine{cli: cli, walker: walker}, nil
}

// NewEngineWithClient creates an Engine on an existing client.
func NewEngineWithClient(cli client.APIClient, walker *fs.Walker) *Engine {
	return &Engine{cli: cli, walker: walker}
}

// Apply executes one stage on top of parent and returns the new snapshot.
func (e *Engine) Apply(ctx context.Context, parent domain.Snapshot, stage *domain.Stage, opts ports.ApplyOptions) (domain.Snapshot, error) {
	if stage.Kind == domain.KindBase {
		return e.pullBase(ctx, stage, opts)
	}
	if parent.IsZero() {
		return domain.Snapshot{}, zerr.With(domain.ErrBaseStageNotFirst, "stage", stage.Name.String())
	}
	return e.build(ctx, parent, stage, opts)
}

// pullBase resolves the pinned base reference to a content-addressed image
// and records it as the initial snapshot.
func (e *Engine) pullBase(ctx context.Context, stage *domain.Stage, opts ports.ApplyOptions) (domain.Snapshot, error) {
	ref := stage.BaseRef.String()

	reader, err := e.cli.ImagePull(ctx, ref, types.ImagePullOptions{})
	if err != nil {
		return domain.Snapshot{}, zerr.With(zerr.Wrap(err, "failed to pull base image"), "ref", ref)
	}
	defer reader.Close() //nolint:errcheck // Best effort close in defer

	if _, err := drainStream(reader, opts.Output); err != nil {
		return domain.Snapshot{}, zerr.With(zerr.Wrap(err, "base image pull failed"), "ref", ref)
	}

	inspect, _, err := e.cli.ImageInspectWithRaw(ctx, ref)
	if err != nil {
		return domain.Snapshot{}, zerr.With(zerr.Wrap(err, "failed to inspect base image"), "ref", ref)
	}

	if opts.Ref != "" {
		if err := e.cli.ImageTag(ctx, inspect.ID, opts.Ref); err != nil {
			return domain.Snapshot{}, zerr.With(zerr.Wrap(err, "failed to tag base snapshot"), "ref", opts.Ref)
		}
	}

	return domain.Snapshot{
		ID:        domain.NewInternedString(inspect.ID),
		Ref:       domain.NewInternedString(opts.Ref),
		StageName: stage.Name,
	}, nil
}

// build renders the stage as a Dockerfile, assembles its minimal context,
// and runs one image build with the parent snapshot as base.
func (e *Engine) build(ctx context.Context, parent domain.Snapshot, stage *domain.Stage, opts ports.ApplyOptions) (domain.Snapshot, error) {
	dockerfile, err := renderStage(parent.Ref.String(), stage)
	if err != nil {
		return domain.Snapshot{}, err
	}

	buildContext, cleanup, err := e.assembleContext(stage, opts.Root, dockerfile)
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer cleanup()
	defer buildContext.Close() //nolint:errcheck // Best effort close in defer

	resp, err := e.cli.ImageBuild(ctx, buildContext, types.ImageBuildOptions{
		Tags:       []string{opts.Ref},
		Dockerfile: "Dockerfile",
		Remove:     true,
	})
	if err != nil {
		return domain.Snapshot{}, zerr.With(zerr.Wrap(err, "failed to start image build"), "stage", stage.Name.String())
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	imageID, err := drainStream(resp.Body, opts.Output)
	if err != nil {
		return domain.Snapshot{}, zerr.With(zerr.Wrap(err, "image build failed"), "stage", stage.Name.String())
	}

	if imageID == "" {
		inspect, _, err := e.cli.ImageInspectWithRaw(ctx, opts.Ref)
		if err != nil {
			return domain.Snapshot{}, zerr.With(zerr.Wrap(err, "failed to inspect built image"), "ref", opts.Ref)
		}
		imageID = inspect.ID
	}

	return domain.Snapshot{
		ID:        domain.NewInternedString(imageID),
		Ref:       domain.NewInternedString(opts.Ref),
		StageName: stage.Name,
	}, nil
}

// SnapshotExists reports whether a previously recorded snapshot is still
// present in the daemon.
func (e *Engine) SnapshotExists(ctx context.Context, snapshot domain.Snapshot) (bool, error) {
	_, _, err := e.cli.ImageInspectWithRaw(ctx, snapshot.ID.String())
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, "failed to inspect snapshot"), "id", snapshot.ID.String())
	}
	return true, nil
}

// Tag makes the snapshot addressable under the given target reference.
func (e *Engine) Tag(ctx context.Context, snapshot domain.Snapshot, target string) error {
	if err := e.cli.ImageTag(ctx, snapshot.ID.String(), target); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to tag snapshot"), "target", target)
	}
	return nil
}

// drainStream consumes a daemon JSON progress stream, forwarding readable
// progress to out and surfacing embedded errors. It returns the built image
// ID when the stream carries one in an aux record.
func drainStream(r io.Reader, out io.Writer) (string, error) {
	if out == nil {
		out = io.Discard
	}

	var imageID string
	dec := json.NewDecoder(r)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return imageID, nil
			}
			return "", zerr.Wrap(err, "failed to decode engine stream")
		}
		if msg.Error != nil {
			return "", zerr.New(msg.Error.Message)
		}
		if msg.Aux != nil {
			var result types.BuildResult
			if err := json.Unmarshal(*msg.Aux, &result); err == nil && result.ID != "" {
				imageID = result.ID
			}
			continue
		}
		if msg.Stream != "" {
			_, _ = io.WriteString(out, msg.Stream)
		} else if msg.Status != "" {
			_, _ = io.WriteString(out, msg.Status+"\n")
		}
	}
}
