package domain_test

import (
	"errors"
	"testing"

	"github.com/larsclaussen/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

func basePipeline(t *testing.T) *domain.Pipeline {
	t.Helper()
	p := domain.NewPipeline("webapp:latest")
	err := p.Append(domain.Stage{
		Name:    domain.NewInternedString("base"),
		Kind:    domain.KindBase,
		BaseRef: domain.NewInternedString("python:3.9-slim"),
	})
	if err != nil {
		t.Fatalf("failed to append base stage: %v", err)
	}
	return p
}

func TestPipeline_Append_DuplicateStage(t *testing.T) {
	p := basePipeline(t)

	err := p.Append(domain.Stage{
		Name: domain.NewInternedString("base"),
		Kind: domain.KindSource,
	})
	if err == nil {
		t.Fatal("expected error when adding duplicate stage, got nil")
	}
	if !errors.Is(err, domain.ErrStageAlreadyExists) {
		t.Errorf("expected ErrStageAlreadyExists, got %v", err)
	}

	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	meta := zErr.Metadata()
	if stage, ok := meta["stage"].(string); !ok || stage != "base" {
		t.Errorf("expected metadata stage=base, got %v", meta["stage"])
	}
}

func TestPipeline_Append_BaseMustComeFirst(t *testing.T) {
	p := domain.NewPipeline("webapp:latest")

	err := p.Append(domain.Stage{
		Name: domain.NewInternedString("source"),
		Kind: domain.KindSource,
	})
	if !errors.Is(err, domain.ErrBaseStageNotFirst) {
		t.Errorf("expected ErrBaseStageNotFirst for non-base first stage, got %v", err)
	}

	p = basePipeline(t)
	err = p.Append(domain.Stage{
		Name:    domain.NewInternedString("base-2"),
		Kind:    domain.KindBase,
		BaseRef: domain.NewInternedString("debian:bookworm"),
	})
	if !errors.Is(err, domain.ErrBaseStageNotFirst) {
		t.Errorf("expected ErrBaseStageNotFirst for second base stage, got %v", err)
	}
}

func TestPipeline_Append_UnknownKind(t *testing.T) {
	p := basePipeline(t)

	err := p.Append(domain.Stage{
		Name: domain.NewInternedString("mystery"),
		Kind: domain.StageKind("mystery"),
	})
	if !errors.Is(err, domain.ErrUnknownStageKind) {
		t.Errorf("expected ErrUnknownStageKind, got %v", err)
	}
}

func TestPipeline_Walk_PreservesOrder(t *testing.T) {
	p := basePipeline(t)

	stages := []domain.Stage{
		{
			Name:     domain.NewInternedString("system-packages"),
			Kind:     domain.KindSystemPackages,
			Packages: domain.NewPackageSet([]string{"gdal-bin", "binutils"}),
		},
		{
			Name:         domain.NewInternedString("dependencies"),
			Kind:         domain.KindDependencies,
			ManifestPath: domain.NewInternedString("requirements.txt"),
		},
		{
			Name:       domain.NewInternedString("source"),
			Kind:       domain.KindSource,
			SourcePath: domain.NewInternedString("."),
			WorkDir:    domain.NewInternedString("/code"),
		},
	}
	for _, s := range stages {
		if err := p.Append(s); err != nil {
			t.Fatalf("failed to append stage %s: %v", s.Name.String(), err)
		}
	}

	var walked []string
	for s := range p.Walk() {
		walked = append(walked, s.Name.String())
	}

	want := []string{"base", "system-packages", "dependencies", "source"}
	if len(walked) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(walked))
	}
	for i := range want {
		if walked[i] != want[i] {
			t.Errorf("stage %d: expected %s, got %s", i, want[i], walked[i])
		}
	}
}

func TestPipeline_Validate_Empty(t *testing.T) {
	p := domain.NewPipeline("")
	if err := p.Validate(); !errors.Is(err, domain.ErrPipelineEmpty) {
		t.Errorf("expected ErrPipelineEmpty, got %v", err)
	}
}

func TestPipeline_SetEnv_OverridesExistingStage(t *testing.T) {
	p := basePipeline(t)

	env := domain.NewEnvironmentSet()
	env.Set("PYTHONUNBUFFERED", "0")
	if err := p.Append(domain.Stage{
		Name: domain.NewInternedString("runtime-config"),
		Kind: domain.KindRuntimeConfig,
		Env:  env,
	}); err != nil {
		t.Fatalf("failed to append env stage: %v", err)
	}

	if err := p.SetEnv("PYTHONUNBUFFERED", "1"); err != nil {
		t.Fatalf("SetEnv returned error: %v", err)
	}

	stage := p.Stage(domain.NewInternedString("runtime-config"))
	if stage == nil {
		t.Fatal("runtime-config stage not found")
	}
	if v, _ := stage.Env.Get("PYTHONUNBUFFERED"); v != "1" {
		t.Errorf("expected last assignment to win, got %q", v)
	}
	if stage.Env.Len() != 1 {
		t.Errorf("expected a single key, got %d", stage.Env.Len())
	}
}

func TestPipeline_SetEnv_AppendsStageWhenMissing(t *testing.T) {
	p := basePipeline(t)

	if err := p.SetEnv("TZ", "UTC"); err != nil {
		t.Fatalf("SetEnv returned error: %v", err)
	}

	if p.Len() != 2 {
		t.Fatalf("expected runtime-config stage to be appended, len=%d", p.Len())
	}
	stage := p.Stage(domain.NewInternedString("runtime-config"))
	if stage == nil || stage.Kind != domain.KindRuntimeConfig {
		t.Fatal("expected appended runtime-config stage")
	}
	if v, _ := stage.Env.Get("TZ"); v != "UTC" {
		t.Errorf("expected TZ=UTC, got %q", v)
	}
}
