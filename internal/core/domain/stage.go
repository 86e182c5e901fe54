// Package domain contains the core domain models for the provisioning pipeline.
package domain

// StageKind identifies the kind of environment mutation a stage applies.
type StageKind string

const (
	// KindBase pins the immutable base environment the pipeline starts from.
	KindBase StageKind = "base"
	// KindSystemPackages installs OS-level packages and prunes installer caches.
	KindSystemPackages StageKind = "system-packages"
	// KindDependencies installs language-level dependencies from a manifest file.
	KindDependencies StageKind = "dependencies"
	// KindSource layers the application source tree into the environment.
	KindSource StageKind = "source"
	// KindRuntimeConfig applies process-wide environment variables.
	KindRuntimeConfig StageKind = "runtime-config"
)

// KnownKind reports whether k is one of the stage kinds the engine understands.
func KnownKind(k StageKind) bool {
	switch k {
	case KindBase, KindSystemPackages, KindDependencies, KindSource, KindRuntimeConfig:
		return true
	default:
		return false
	}
}

// Stage is one ordered, cacheable unit of environment mutation.
//
// A stage's cache validity depends only on its declared inputs (the fields
// relevant to its kind) and the key of the stage before it, never on
// unrelated files. The kind-specific fields are a union; only the fields
// matching Kind are meaningful.
type Stage struct {
	Name InternedString
	Kind StageKind

	// BaseRef is the pinned base image reference (KindBase).
	BaseRef InternedString

	// Packages is the normalized OS package set (KindSystemPackages).
	Packages PackageSet
	// NonInteractive suppresses installer prompts. Forced on for unattended
	// builds; the loader never produces a stage with this unset.
	NonInteractive bool

	// ManifestPath is the dependency manifest file, relative to the build
	// root (KindDependencies). The manifest content is this stage's only
	// file input.
	ManifestPath InternedString

	// SourcePath is the source tree root, relative to the build root unless
	// absolute (KindSource). Repo optionally names a git URL the tree is
	// fetched from before the build; when set, SourcePath is rewritten to
	// the checkout location.
	SourcePath InternedString
	Repo       InternedString
	// WorkDir is the fixed working directory the tree is layered into.
	WorkDir InternedString

	// Env is the runtime environment variable set (KindRuntimeConfig).
	Env EnvironmentSet
}

// Fingerprint returns the deterministic tokens describing the stage
// definition, independent of any file contents. Tokens for list-valued
// fields are emitted in normalized order so that definition order never
// influences cache keys.
func (s *Stage) Fingerprint() []string {
	tokens := []string{string(s.Kind), s.Name.String()}

	switch s.Kind {
	case KindBase:
		tokens = append(tokens, s.BaseRef.String())
	case KindSystemPackages:
		tokens = append(tokens, s.Packages.Names()...)
		if s.NonInteractive {
			tokens = append(tokens, "noninteractive")
		}
	case KindDependencies:
		tokens = append(tokens, s.ManifestPath.String())
	case KindSource:
		// A fetched tree lands in a fresh checkout directory each run, so the
		// repository URL stands in for the path to keep the key stable. The
		// tree content is covered separately by the key protocol.
		location := s.SourcePath.String()
		if s.Repo.String() != "" {
			location = s.Repo.String()
		}
		tokens = append(tokens, location, s.WorkDir.String())
	case KindRuntimeConfig:
		tokens = append(tokens, s.Env.Sorted()...)
	}

	return tokens
}
