package fs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/larsclaussen/kiln/internal/core/domain"
	"github.com/larsclaussen/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes stage cache keys from stage definitions and declared
// file inputs.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeStageKey computes the cache key for a stage.
//
// The key covers, in order: the parent stage's key, the stage's definition
// fingerprint, and the content of the stage's declared file inputs. A stage
// with no file inputs (base, system packages, runtime config) is keyed by
// definition and ancestry alone, which is what keeps it cached across
// unrelated source edits.
func (h *Hasher) ComputeStageKey(stage *domain.Stage, parentKey string, root string) (string, error) {
	hasher := xxhash.New()

	_, _ = hasher.WriteString(parentKey)
	_, _ = hasher.Write([]byte{0})

	for _, token := range stage.Fingerprint() {
		_, _ = hasher.WriteString(token)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})

	switch stage.Kind {
	case domain.KindDependencies:
		if err := h.hashManifest(stage, root, hasher); err != nil {
			return "", err
		}
	case domain.KindSource:
		if err := h.hashSourceTree(stage, root, hasher); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// hashManifest folds the dependency manifest content into the digest.
// A missing manifest is the dedicated fatal error so the failure is
// attributable before source layering runs.
func (h *Hasher) hashManifest(stage *domain.Stage, root string, hasher *xxhash.Digest) error {
	path := resolve(stage.ManifestPath.String(), root)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return zerr.With(domain.ErrManifestNotFound, "path", path)
		}
		return zerr.With(zerr.Wrap(err, "failed to stat manifest"), "path", path)
	}

	return h.hashFile(path, hasher)
}

// hashSourceTree folds every file of the source tree into the digest.
// Files are hashed concurrently and folded in lexical path order so the
// result is deterministic.
func (h *Hasher) hashSourceTree(stage *domain.Stage, root string, hasher *xxhash.Digest) error {
	treeRoot := resolve(stage.SourcePath.String(), root)

	info, err := os.Stat(treeRoot)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return zerr.With(domain.ErrInputNotFound, "path", treeRoot)
		}
		return zerr.With(zerr.Wrap(err, "failed to stat source tree"), "path", treeRoot)
	}
	if !info.IsDir() {
		return h.hashFile(treeRoot, hasher)
	}

	var paths []string
	for path, err := range h.walker.WalkFiles(treeRoot, nil) {
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to walk source tree"), "path", treeRoot)
		}
		paths = append(paths, path)
	}
	slices.Sort(paths)

	sums := make([]uint64, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			sum, err := h.ComputeFileHash(path)
			if err != nil {
				return err
			}
			sums[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, path := range paths {
		rel, err := filepath.Rel(treeRoot, path)
		if err != nil {
			rel = path
		}
		_, _ = hasher.WriteString(rel)
		_, _ = hasher.Write([]byte{0})
		if err := binary.Write(hasher, binary.LittleEndian, sums[i]); err != nil {
			return zerr.Wrap(err, "failed to write hash to digest")
		}
	}

	return nil
}

func (h *Hasher) hashFile(path string, hasher *xxhash.Digest) error {
	_, _ = hasher.WriteString(filepath.Base(path))
	_, _ = hasher.Write([]byte{0})

	sum, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}
	if err := binary.Write(hasher, binary.LittleEndian, sum); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}

// resolve joins path with root unless path is already absolute.
func resolve(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
