package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/larsclaussen/kiln/internal/adapters/config"
	"github.com/larsclaussen/kiln/internal/adapters/fs"
	"github.com/larsclaussen/kiln/internal/adapters/git"
	"github.com/larsclaussen/kiln/internal/adapters/logger"
	"github.com/larsclaussen/kiln/internal/adapters/state"
	"github.com/larsclaussen/kiln/internal/adapters/telemetry"
	"github.com/larsclaussen/kiln/internal/app"
	"github.com/larsclaussen/kiln/internal/core/domain"
	"github.com/larsclaussen/kiln/internal/core/ports"
	"github.com/larsclaussen/kiln/internal/engine/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipeFixture = `version: "1"
image:
  name: geoapp
  tag: v3
base:
  ref: python:3.9-slim
system:
  packages:
    - gdal-bin
    - binutils
dependencies:
  manifest: requirements.txt
source:
  path: src
  workdir: /code
env:
  PYTHONUNBUFFERED: "1"
`

// fakeEngine stands in for the container daemon: snapshots it applied stay
// addressable across runs, like images in a real daemon.
type fakeEngine struct {
	applied []string
	tagged  []string
	images  map[string]bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{images: make(map[string]bool)}
}

func (e *fakeEngine) Apply(_ context.Context, _ domain.Snapshot, stage *domain.Stage, opts ports.ApplyOptions) (domain.Snapshot, error) {
	e.applied = append(e.applied, stage.Name.String())
	id := "sha256:" + stage.Name.String()
	e.images[id] = true
	return domain.Snapshot{
		ID:        domain.NewInternedString(id),
		Ref:       domain.NewInternedString(opts.Ref),
		StageName: stage.Name,
	}, nil
}

func (e *fakeEngine) SnapshotExists(_ context.Context, snapshot domain.Snapshot) (bool, error) {
	return e.images[snapshot.ID.String()], nil
}

func (e *fakeEngine) Tag(_ context.Context, _ domain.Snapshot, target string) error {
	e.tagged = append(e.tagged, target)
	return nil
}

// pipelineProvider composes the real loader, hasher, and store over a fake
// engine, matching the production wiring everywhere but the daemon.
func pipelineProvider(t *testing.T, eng *fakeEngine, root string) ComponentProvider {
	t.Helper()
	return func(_ context.Context) (*app.Components, error) {
		log := logger.NewWithWriter(new(bytes.Buffer))
		store, err := state.NewStore(filepath.Join(root, ".kiln", "state.json"))
		if err != nil {
			return nil, err
		}
		hasher := fs.NewHasher(fs.NewWalker())
		run := runner.NewRunner(eng, hasher, store, telemetry.NewNoOp())
		return &app.Components{
			App:       app.New(config.NewLoader(log), run, git.NewFetcher(), store, log),
			Logger:    log,
			Telemetry: telemetry.NewNoOp(),
		}, nil
	}
}

func writeFixtureTree(t *testing.T) (root, recipePath string) {
	t.Helper()
	root = t.TempDir()
	recipePath = filepath.Join(root, "kiln.yaml")
	require.NoError(t, os.WriteFile(recipePath, []byte(recipeFixture), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "requirements.txt"), []byte("Django==3.2\n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "manage.py"), []byte("print('ok')\n"), 0o600))
	return root, recipePath
}

func TestBuild_FullPipeline(t *testing.T) {
	root, recipePath := writeFixtureTree(t)
	eng := newFakeEngine()

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"build", "-c", recipePath}, stderr, pipelineProvider(t, eng, root))

	require.Equal(t, 0, exitCode, "stderr: %s", stderr.String())
	assert.Equal(t, []string{"base", "system-packages", "dependencies", "source", "runtime-config"}, eng.applied)
	assert.Equal(t, []string{"geoapp:v3"}, eng.tagged)
}

func TestBuild_SecondRunIsFullyCached(t *testing.T) {
	root, recipePath := writeFixtureTree(t)
	eng := newFakeEngine()

	first := run(context.Background(), []string{"build", "-c", recipePath}, new(bytes.Buffer), pipelineProvider(t, eng, root))
	require.Equal(t, 0, first)
	require.Len(t, eng.applied, 5)

	// Fresh components, persisted store: nothing changed, so nothing rebuilds.
	second := run(context.Background(), []string{"build", "-c", recipePath}, new(bytes.Buffer), pipelineProvider(t, eng, root))
	require.Equal(t, 0, second)
	assert.Len(t, eng.applied, 5)
	assert.Equal(t, []string{"geoapp:v3", "geoapp:v3"}, eng.tagged)
}

func TestBuild_SourceEditRebuildsTailOnly(t *testing.T) {
	root, recipePath := writeFixtureTree(t)
	eng := newFakeEngine()

	first := run(context.Background(), []string{"build", "-c", recipePath}, new(bytes.Buffer), pipelineProvider(t, eng, root))
	require.Equal(t, 0, first)

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "manage.py"), []byte("print('edited')\n"), 0o600))

	second := run(context.Background(), []string{"build", "-c", recipePath}, new(bytes.Buffer), pipelineProvider(t, eng, root))
	require.Equal(t, 0, second)
	assert.Equal(t, []string{
		"base", "system-packages", "dependencies", "source", "runtime-config",
		"source", "runtime-config",
	}, eng.applied)
}
