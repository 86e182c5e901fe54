package domain

import "go.trai.ch/zerr"

var (
	// ErrPipelineEmpty is returned when a pipeline contains no stages.
	ErrPipelineEmpty = zerr.New("pipeline has no stages")

	// ErrStageAlreadyExists is returned when adding a stage whose name is taken.
	ErrStageAlreadyExists = zerr.New("stage already exists")

	// ErrBaseStageNotFirst is returned when the base stage is missing or not
	// the first stage of the pipeline.
	ErrBaseStageNotFirst = zerr.New("base stage must be the first stage")

	// ErrUnknownStageKind is returned for a stage kind the engine does not understand.
	ErrUnknownStageKind = zerr.New("unknown stage kind")

	// ErrBaseUnresolvable is returned when the pinned base reference cannot be
	// parsed or resolved. It is fatal before any stage runs.
	ErrBaseUnresolvable = zerr.New("base reference not resolvable")

	// ErrManifestNotFound is returned when the dependency manifest file does
	// not exist. It is fatal before source layering is attempted.
	ErrManifestNotFound = zerr.New("dependency manifest not found")

	// ErrInputNotFound is returned when a declared stage input path does not exist.
	ErrInputNotFound = zerr.New("input not found")

	// ErrStageFailed wraps any stage execution failure; the whole run aborts
	// on the first occurrence, without retry.
	ErrStageFailed = zerr.New("stage execution failed")
)
