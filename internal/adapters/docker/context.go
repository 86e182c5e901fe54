package docker

import (
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/docker/docker/pkg/archive"
	"github.com/larsclaussen/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// assembleContext stages a build context directory holding the rendered
// Dockerfile plus the stage's declared file inputs and nothing else, then
// returns it as a tar stream. The cleanup func must be called once the
// stream has been fully consumed.
func (e *Engine) assembleContext(stage *domain.Stage, root string, dockerfile string) (io.ReadCloser, func(), error) {
	dir, err := os.MkdirTemp("", "kiln-build-*")
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to create build context dir")
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	if err := os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte(dockerfile), 0o600); err != nil {
		cleanup()
		return nil, nil, zerr.Wrap(err, "failed to write Dockerfile")
	}

	switch stage.Kind {
	case domain.KindDependencies:
		src := resolve(stage.ManifestPath.String(), root)
		dst := filepath.Join(dir, path.Base(stage.ManifestPath.String()))
		if err := copyFile(src, dst); err != nil {
			cleanup()
			return nil, nil, err
		}
	case domain.KindSource:
		src := resolve(stage.SourcePath.String(), root)
		if err := e.copyTree(src, dir); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	tar, err := archive.TarWithOptions(dir, &archive.TarOptions{})
	if err != nil {
		cleanup()
		return nil, nil, zerr.Wrap(err, "failed to tar build context")
	}
	return tar, cleanup, nil
}

// copyTree copies every file the walker yields into dst, preserving the
// layout relative to src. Version-control metadata never enters the
// context, matching what the stage key covered.
func (e *Engine) copyTree(src, dst string) error {
	for file, walkErr := range e.walker.WalkFiles(src, nil) {
		if walkErr != nil {
			return zerr.With(zerr.Wrap(walkErr, "failed to walk source tree"), "path", src)
		}
		rel, err := filepath.Rel(src, file)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to relativize source path"), "path", file)
		}
		target := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return zerr.Wrap(err, "failed to create context subdirectory")
		}
		if err := copyFile(file, target); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // Paths derive from the recipe
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open input file"), "path", src)
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	out, err := os.Create(dst) //nolint:gosec // Destination is a fresh temp dir
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create context file"), "path", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy input into context"), "path", src)
	}
	return out.Close()
}

// resolve joins path with root unless path is already absolute.
func resolve(p, root string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
