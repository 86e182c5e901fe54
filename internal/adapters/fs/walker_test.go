package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/larsclaussen/kiln/internal/adapters/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkFiles_LexicalOrderSkipsVCS(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.txt", "b")
	writeFile(t, root, "a/one.py", "one")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main")

	walker := fs.NewWalker()

	var files []string
	for path, err := range walker.WalkFiles(root, nil) {
		require.NoError(t, err)
		files = append(files, path)
	}

	want := []string{
		filepath.Join(root, "a/one.py"),
		filepath.Join(root, "b.txt"),
	}
	assert.Equal(t, want, files)
}

func TestWalkFiles_SurfacesWalkErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "alpha/one.txt", "one")
	writeFile(t, root, "zulu/two.txt", "two")

	walker := fs.NewWalker()

	// Remove a not-yet-visited directory mid-walk so descending into it fails.
	var files []string
	var walkErr error
	for path, err := range walker.WalkFiles(root, nil) {
		if err != nil {
			walkErr = err
			break
		}
		files = append(files, path)
		require.NoError(t, os.RemoveAll(filepath.Join(root, "zulu")))
	}

	require.Error(t, walkErr)
	assert.Len(t, files, 1)
}
