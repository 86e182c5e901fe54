package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// Pipeline is the explicit ordered stage list a build executes.
//
// The order is a strict linear sequence: each stage consumes the snapshot
// produced by the stage before it. No stage is re-entered.
type Pipeline struct {
	// Target is the reference the final snapshot is tagged with. Empty means
	// the resulting image keeps only its stage tag.
	Target InternedString

	stages []Stage
	names  map[InternedString]int
}

// NewPipeline creates an empty pipeline that will tag its result as target.
func NewPipeline(target string) *Pipeline {
	return &Pipeline{
		Target: NewInternedString(target),
		names:  make(map[InternedString]int),
	}
}

// Append adds a stage to the end of the pipeline.
// The first stage must be the base stage, and only the first may be.
func (p *Pipeline) Append(s Stage) error {
	if !KnownKind(s.Kind) {
		return zerr.With(ErrUnknownStageKind, "kind", string(s.Kind))
	}
	if _, exists := p.names[s.Name]; exists {
		return zerr.With(ErrStageAlreadyExists, "stage", s.Name.String())
	}
	if (len(p.stages) == 0) != (s.Kind == KindBase) {
		return zerr.With(ErrBaseStageNotFirst, "stage", s.Name.String())
	}

	p.names[s.Name] = len(p.stages)
	p.stages = append(p.stages, s)
	return nil
}

// Validate checks that the pipeline is executable.
func (p *Pipeline) Validate() error {
	if len(p.stages) == 0 {
		return ErrPipelineEmpty
	}
	return nil
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Walk returns an iterator yielding stages in execution order.
func (p *Pipeline) Walk() iter.Seq[Stage] {
	return func(yield func(Stage) bool) {
		for _, s := range p.stages {
			if !yield(s) {
				return
			}
		}
	}
}

// Stage returns a pointer to the named stage for controlled mutation before
// a run (env overrides, source checkout rewrites), or nil if absent.
// Callers must not change a stage's Name or Kind.
func (p *Pipeline) Stage(name InternedString) *Stage {
	idx, ok := p.names[name]
	if !ok {
		return nil
	}
	return &p.stages[idx]
}

// SetEnv applies a runtime environment assignment, overriding an earlier
// definition of the same key. If no runtime-config stage exists yet, one is
// appended so that command-line overrides work for recipes without an env
// block.
func (p *Pipeline) SetEnv(key, value string) error {
	for i := range p.stages {
		if p.stages[i].Kind == KindRuntimeConfig {
			p.stages[i].Env.Set(key, value)
			return nil
		}
	}

	env := NewEnvironmentSet()
	env.Set(key, value)
	return p.Append(Stage{
		Name: NewInternedString("runtime-config"),
		Kind: KindRuntimeConfig,
		Env:  env,
	})
}
