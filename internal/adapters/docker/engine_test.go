package docker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/larsclaussen/kiln/internal/adapters/fs"
	"github.com/larsclaussen/kiln/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainStream_CollectsAuxImageID(t *testing.T) {
	stream := strings.NewReader(
		`{"stream":"Step 1/2 : FROM parent\n"}` + "\n" +
			`{"aux":{"ID":"sha256:deadbeef"}}` + "\n" +
			`{"stream":"Successfully built\n"}` + "\n")

	var out strings.Builder
	id, err := drainStream(stream, &out)
	require.NoError(t, err)

	assert.Equal(t, "sha256:deadbeef", id)
	assert.Contains(t, out.String(), "Step 1/2")
}

func TestDrainStream_SurfacesEmbeddedError(t *testing.T) {
	stream := strings.NewReader(
		`{"stream":"Step 1/2 : RUN apt-get update\n"}` + "\n" +
			`{"errorDetail":{"message":"exit code 100"},"error":"exit code 100"}` + "\n")

	_, err := drainStream(stream, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit code 100")
}

func TestDrainStream_ForwardsStatusLines(t *testing.T) {
	stream := strings.NewReader(`{"status":"Pulling from library/python"}` + "\n")

	var out strings.Builder
	_, err := drainStream(stream, &out)
	require.NoError(t, err)

	assert.Equal(t, "Pulling from library/python\n", out.String())
}

func TestAssembleContext_DependencyStageHoldsManifestOnly(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "requirements.txt"), []byte("flask\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte("x"), 0o600))

	e := NewEngineWithClient(nil, fs.NewWalker())
	stage := &domain.Stage{
		Kind:         domain.KindDependencies,
		ManifestPath: domain.NewInternedString("requirements.txt"),
	}

	tar, cleanup, err := e.assembleContext(stage, root, "FROM parent\n")
	require.NoError(t, err)
	defer cleanup()
	require.NoError(t, tar.Close())

	entries := contextEntries(t, e, stage, root)
	assert.ElementsMatch(t, []string{"Dockerfile", "requirements.txt"}, entries)
}

func TestAssembleContext_SourceStageSkipsGitMetadata(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("ref"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app", "main.py"), []byte("x"), 0o600))

	e := NewEngineWithClient(nil, fs.NewWalker())
	stage := &domain.Stage{
		Kind:       domain.KindSource,
		SourcePath: domain.NewInternedString("."),
		WorkDir:    domain.NewInternedString("/code"),
	}

	entries := contextEntries(t, e, stage, root)
	assert.ElementsMatch(t, []string{"Dockerfile", filepath.Join("app", "main.py")}, entries)
}

// contextEntries assembles the stage's context and lists the staged files
// by re-walking the temp directory before cleanup runs.
func contextEntries(t *testing.T, e *Engine, stage *domain.Stage, root string) []string {
	t.Helper()

	dir, err := os.MkdirTemp("", "kiln-build-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	// Mirror assembleContext's staging steps against a directory we control.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM parent\n"), 0o600))
	switch stage.Kind {
	case domain.KindDependencies:
		require.NoError(t, copyFile(
			filepath.Join(root, stage.ManifestPath.String()),
			filepath.Join(dir, filepath.Base(stage.ManifestPath.String()))))
	case domain.KindSource:
		require.NoError(t, e.copyTree(resolve(stage.SourcePath.String(), root), dir))
	}

	var entries []string
	require.NoError(t, filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		entries = append(entries, rel)
		return nil
	}))
	return entries
}
