package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/larsclaussen/kiln/internal/adapters/fs"
	"github.com/larsclaussen/kiln/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func fixtureRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "requirements.txt", "flask==2.0\n")
	writeFile(t, root, "app/main.py", "print('hello')\n")
	writeFile(t, root, "app/models.py", "class Node: pass\n")
	return root
}

func stages() (base, system, deps, source domain.Stage) {
	base = domain.Stage{
		Name:    domain.NewInternedString("base"),
		Kind:    domain.KindBase,
		BaseRef: domain.NewInternedString("python:3.9-slim"),
	}
	system = domain.Stage{
		Name:           domain.NewInternedString("system-packages"),
		Kind:           domain.KindSystemPackages,
		Packages:       domain.NewPackageSet([]string{"gdal-bin", "binutils"}),
		NonInteractive: true,
	}
	deps = domain.Stage{
		Name:         domain.NewInternedString("dependencies"),
		Kind:         domain.KindDependencies,
		ManifestPath: domain.NewInternedString("requirements.txt"),
	}
	source = domain.Stage{
		Name:       domain.NewInternedString("source"),
		Kind:       domain.KindSource,
		SourcePath: domain.NewInternedString("."),
		WorkDir:    domain.NewInternedString("/code"),
	}
	return base, system, deps, source
}

// chain computes the keys of the canonical four-stage pipeline in order.
func chain(t *testing.T, h *fs.Hasher, root string) (baseKey, systemKey, depsKey, sourceKey string) {
	t.Helper()
	base, system, deps, source := stages()

	var err error
	baseKey, err = h.ComputeStageKey(&base, "", root)
	require.NoError(t, err)
	systemKey, err = h.ComputeStageKey(&system, baseKey, root)
	require.NoError(t, err)
	depsKey, err = h.ComputeStageKey(&deps, systemKey, root)
	require.NoError(t, err)
	sourceKey, err = h.ComputeStageKey(&source, depsKey, root)
	require.NoError(t, err)
	return baseKey, systemKey, depsKey, sourceKey
}

func TestComputeStageKey_Deterministic(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())
	root := fixtureRoot(t)

	b1, s1, d1, src1 := chain(t, h, root)
	b2, s2, d2, src2 := chain(t, h, root)

	assert.Equal(t, b1, b2)
	assert.Equal(t, s1, s2)
	assert.Equal(t, d1, d2)
	assert.Equal(t, src1, src2)
}

func TestComputeStageKey_SourceEditLeavesEarlierStagesCached(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())
	root := fixtureRoot(t)

	b1, s1, d1, src1 := chain(t, h, root)

	writeFile(t, root, "app/main.py", "print('changed')\n")
	b2, s2, d2, src2 := chain(t, h, root)

	assert.Equal(t, b1, b2, "base key must not depend on source")
	assert.Equal(t, s1, s2, "system package key must not depend on source")
	assert.Equal(t, d1, d2, "dependency key must not depend on source")
	assert.NotEqual(t, src1, src2, "source key must change with the tree")
}

func TestComputeStageKey_ManifestEditLeavesSystemStagesCached(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())
	root := fixtureRoot(t)

	b1, s1, d1, _ := chain(t, h, root)

	writeFile(t, root, "requirements.txt", "flask==2.1\n")
	b2, s2, d2, _ := chain(t, h, root)

	assert.Equal(t, b1, b2)
	assert.Equal(t, s1, s2)
	assert.NotEqual(t, d1, d2, "dependency key must change with the manifest")
}

func TestComputeStageKey_PackageRelistingIsIdempotent(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())
	root := fixtureRoot(t)

	_, system, _, _ := stages()
	relisted := system
	relisted.Packages = domain.NewPackageSet([]string{"binutils", "gdal-bin", "binutils"})

	k1, err := h.ComputeStageKey(&system, "parent", root)
	require.NoError(t, err)
	k2, err := h.ComputeStageKey(&relisted, "parent", root)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
}

func TestComputeStageKey_ParentKeyPropagates(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())
	root := fixtureRoot(t)

	_, system, _, _ := stages()
	k1, err := h.ComputeStageKey(&system, "parent-a", root)
	require.NoError(t, err)
	k2, err := h.ComputeStageKey(&system, "parent-b", root)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2, "a changed parent must invalidate the stage")
}

func TestComputeStageKey_MissingManifestFails(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())
	root := t.TempDir()

	_, _, deps, _ := stages()
	_, err := h.ComputeStageKey(&deps, "parent", root)

	if !errors.Is(err, domain.ErrManifestNotFound) {
		t.Fatalf("expected ErrManifestNotFound, got %v", err)
	}
}

func TestComputeStageKey_MissingSourceTreeFails(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())
	root := t.TempDir()

	_, _, _, source := stages()
	source.SourcePath = domain.NewInternedString("does-not-exist")
	_, err := h.ComputeStageKey(&source, "parent", root)

	if !errors.Is(err, domain.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
}

func TestComputeStageKey_GitMetadataIgnored(t *testing.T) {
	h := fs.NewHasher(fs.NewWalker())
	root := fixtureRoot(t)

	_, _, _, source := stages()
	k1, err := h.ComputeStageKey(&source, "parent", root)
	require.NoError(t, err)

	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main\n")
	k2, err := h.ComputeStageKey(&source, "parent", root)
	require.NoError(t, err)

	assert.Equal(t, k1, k2, "version-control metadata must not affect the source key")
}
