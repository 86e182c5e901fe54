package domain

// StageStatus represents the lifecycle state of a stage during a run.
type StageStatus string

const (
	// StatusPending indicates the stage is waiting for the stage before it.
	StatusPending StageStatus = "pending"
	// StatusRunning indicates the stage is currently executing.
	StatusRunning StageStatus = "running"
	// StatusCompleted indicates the stage executed successfully.
	StatusCompleted StageStatus = "completed"
	// StatusFailed indicates the stage execution failed.
	StatusFailed StageStatus = "failed"
	// StatusCached indicates the stage was skipped because a valid snapshot
	// was found for its cache key.
	StatusCached StageStatus = "cached"
)
