// Package app implements the application layer for kiln.
package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/larsclaussen/kiln/internal/core/domain"
	"github.com/larsclaussen/kiln/internal/core/ports"
	"github.com/larsclaussen/kiln/internal/engine/runner"
	"go.trai.ch/zerr"
)

// sourceStageName is the name the recipe loader gives the source stage.
const sourceStageName = "source"

// App represents the main application logic.
type App struct {
	loader  ports.ConfigLoader
	runner  *runner.Runner
	fetcher ports.SourceFetcher
	store   ports.StageRecordStore
	log     ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	run *runner.Runner,
	fetcher ports.SourceFetcher,
	store ports.StageRecordStore,
	log ports.Logger,
) *App {
	return &App{
		loader:  loader,
		runner:  run,
		fetcher: fetcher,
		store:   store,
		log:     log,
	}
}

// BuildOptions carries the settings of one build invocation.
type BuildOptions struct {
	// ConfigPath is the recipe file location. Its directory is the build root.
	ConfigPath string
	// Force bypasses cache reads.
	Force bool
	// Env holds KEY=VALUE overrides applied on top of the recipe's
	// runtime configuration. The final value wins over the recipe's.
	Env []string
}

// Build loads the recipe and executes the full pipeline, returning the final
// snapshot.
func (a *App) Build(ctx context.Context, opts BuildOptions) (domain.Snapshot, error) {
	pipeline, cleanup, err := a.prepare(ctx, opts.ConfigPath)
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer cleanup()

	for _, assignment := range opts.Env {
		key, value, ok := domain.ParseAssignment(assignment)
		if !ok {
			return domain.Snapshot{}, zerr.With(zerr.New("invalid environment override"), "assignment", assignment)
		}
		if err := pipeline.SetEnv(key, value); err != nil {
			return domain.Snapshot{}, err
		}
	}

	snapshot, err := a.runner.Run(ctx, pipeline, runner.Options{
		Root:  filepath.Dir(opts.ConfigPath),
		Force: opts.Force,
	})
	if err != nil {
		return domain.Snapshot{}, zerr.Wrap(err, "build failed")
	}

	a.log.Info("build complete: " + snapshot.ID.String())
	return snapshot, nil
}

// Plan loads the recipe and reports the cache state of every stage without
// touching the engine backend.
func (a *App) Plan(ctx context.Context, configPath string) ([]runner.PlannedStage, error) {
	pipeline, cleanup, err := a.prepare(ctx, configPath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return a.runner.Plan(ctx, pipeline, filepath.Dir(configPath))
}

// Clean clears the stage-record store. Snapshots in the engine are left
// alone; the next run simply recomputes and re-records.
func (a *App) Clean() error {
	if err := a.store.Prune(); err != nil {
		return zerr.Wrap(err, "failed to clean stage records")
	}
	a.log.Info("stage records cleared")
	return nil
}

// prepare loads the pipeline and, when the recipe names a remote repository,
// checks it out and points the source stage at the checkout. The returned
// cleanup removes the checkout and must always be called.
func (a *App) prepare(ctx context.Context, configPath string) (*domain.Pipeline, func(), error) {
	pipeline, err := a.loader.Load(configPath)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load recipe")
	}

	cleanup := func() {}
	stage := pipeline.Stage(domain.NewInternedString(sourceStageName))
	if stage != nil && stage.Repo.String() != "" {
		dir, err := os.MkdirTemp("", "kiln-src-*")
		if err != nil {
			return nil, nil, zerr.Wrap(err, "failed to create checkout dir")
		}
		cleanup = func() { _ = os.RemoveAll(dir) }

		a.log.Info("fetching source from " + stage.Repo.String())
		if err := a.fetcher.Fetch(ctx, stage.Repo.String(), dir); err != nil {
			cleanup()
			return nil, nil, err
		}
		stage.SourcePath = domain.NewInternedString(dir)
	}

	return pipeline, cleanup, nil
}
