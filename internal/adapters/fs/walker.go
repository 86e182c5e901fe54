// Package fs provides file system adapters for walking trees and computing
// stage cache keys.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields all regular files under root in lexical order, skipping
// version-control metadata and any directory or file matching an ignore
// pattern. Yielded paths start with root, as filepath.WalkDir produces them.
//
// A walk failure is yielded as the final pair's error. Callers must treat it
// as fatal: the files seen before it do not describe the whole tree.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			skip, action := w.skip(d, ignores)
			if action != nil {
				return action
			}
			if skip || d.IsDir() {
				return nil
			}

			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

// skip decides how to treat an entry: action is filepath.SkipDir for pruned
// directories, skip is true for files excluded by an ignore pattern.
func (w *Walker) skip(d fs.DirEntry, ignores []string) (skip bool, action error) {
	name := d.Name()

	if d.IsDir() && (name == ".git" || name == ".jj" || name == ".kiln") {
		return false, filepath.SkipDir
	}

	for _, ignore := range ignores {
		matched, _ := filepath.Match(ignore, name)
		if !matched {
			continue
		}
		if d.IsDir() {
			return false, filepath.SkipDir
		}
		return true, nil
	}

	return false, nil
}
