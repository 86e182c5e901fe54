// Package config loads the kiln.yaml recipe and translates it into the
// domain pipeline.
package config

import (
	"os"

	"github.com/distribution/reference"
	"github.com/larsclaussen/kiln/internal/core/domain"
	"github.com/larsclaussen/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFilename is the recipe file kiln looks for when none is given.
	DefaultFilename = "kiln.yaml"
	// DefaultWorkdir is where the source tree is layered when the recipe
	// does not say otherwise.
	DefaultWorkdir = "/app"
	// DefaultTag is applied when the recipe names an image without a tag.
	DefaultTag = "latest"
)

var _ ports.ConfigLoader = (*FileLoader)(nil)

// FileLoader implements ports.ConfigLoader using a YAML recipe file.
type FileLoader struct {
	log ports.Logger
}

// NewLoader creates a new FileLoader.
func NewLoader(log ports.Logger) *FileLoader {
	return &FileLoader{log: log}
}

// Load reads the recipe at the given path and returns the stage pipeline.
func (l *FileLoader) Load(path string) (*domain.Pipeline, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read recipe file")
	}

	var recipe Recipe
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return nil, zerr.Wrap(err, "failed to parse recipe file")
	}

	if recipe.Image.Name == "" {
		l.log.Warn("recipe names no target image, result keeps its stage tag only")
	}

	return translate(&recipe)
}

// translate turns the recipe DTO into a validated pipeline. Every stage the
// recipe describes is appended in the fixed provisioning order; absent
// sections produce no stage.
func translate(recipe *Recipe) (*domain.Pipeline, error) {
	if recipe.Base.Ref == "" {
		return nil, zerr.With(domain.ErrBaseUnresolvable, "reason", "recipe names no base reference")
	}
	if _, err := reference.ParseNormalizedNamed(recipe.Base.Ref); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrBaseUnresolvable.Error()), "ref", recipe.Base.Ref)
	}

	pipeline := domain.NewPipeline(target(recipe.Image))

	if err := pipeline.Append(domain.Stage{
		Name:    domain.NewInternedString("base"),
		Kind:    domain.KindBase,
		BaseRef: domain.NewInternedString(recipe.Base.Ref),
	}); err != nil {
		return nil, err
	}

	if len(recipe.System.Packages) > 0 {
		if err := pipeline.Append(domain.Stage{
			Name:     domain.NewInternedString("system-packages"),
			Kind:     domain.KindSystemPackages,
			Packages: domain.NewPackageSet(recipe.System.Packages),
			// Unattended builds only. A prompt that blocks forever is worse
			// than any answer it could collect.
			NonInteractive: true,
		}); err != nil {
			return nil, err
		}
	}

	if recipe.Dependencies.Manifest != "" {
		if err := pipeline.Append(domain.Stage{
			Name:         domain.NewInternedString("dependencies"),
			Kind:         domain.KindDependencies,
			ManifestPath: domain.NewInternedString(recipe.Dependencies.Manifest),
		}); err != nil {
			return nil, err
		}
	}

	if recipe.Source.Path != "" || recipe.Source.Repo != "" {
		sourcePath := recipe.Source.Path
		if sourcePath == "" {
			sourcePath = "."
		}
		workdir := recipe.Source.Workdir
		if workdir == "" {
			workdir = DefaultWorkdir
		}
		if err := pipeline.Append(domain.Stage{
			Name:       domain.NewInternedString("source"),
			Kind:       domain.KindSource,
			SourcePath: domain.NewInternedString(sourcePath),
			Repo:       domain.NewInternedString(recipe.Source.Repo),
			WorkDir:    domain.NewInternedString(workdir),
		}); err != nil {
			return nil, err
		}
	}

	if len(recipe.Env) > 0 {
		env := domain.NewEnvironmentSet()
		for key, value := range recipe.Env {
			env.Set(key, value)
		}
		if err := pipeline.Append(domain.Stage{
			Name: domain.NewInternedString("runtime-config"),
			Kind: domain.KindRuntimeConfig,
			Env:  env,
		}); err != nil {
			return nil, err
		}
	}

	if err := pipeline.Validate(); err != nil {
		return nil, err
	}

	return pipeline, nil
}

func target(image ImageDTO) string {
	if image.Name == "" {
		return ""
	}
	tag := image.Tag
	if tag == "" {
		tag = DefaultTag
	}
	return image.Name + ":" + tag
}
