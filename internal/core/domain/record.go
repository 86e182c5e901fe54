package domain

import "time"

// StageRecord remembers the snapshot a stage produced for a given cache key.
// A later run whose stage computes the same key may reuse the snapshot
// instead of re-executing the stage.
type StageRecord struct {
	StageName   string    `json:"stage_name,omitzero"`
	CacheKey    string    `json:"cache_key,omitzero"`
	SnapshotID  string    `json:"snapshot_id,omitzero"`
	SnapshotRef string    `json:"snapshot_ref,omitzero"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}
