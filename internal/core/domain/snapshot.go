package domain

// Snapshot is an immutable environment state produced by a stage.
//
// Stages never mutate a snapshot in place: applying a stage to a parent
// snapshot yields a new one, and the final snapshot of a run is the
// Resulting Image.
type Snapshot struct {
	// ID is the content-addressed identifier assigned by the engine
	// (for the container engine backend, the image ID).
	ID InternedString

	// Ref is an addressable reference to the snapshot in the engine,
	// suitable for use as the parent of the next stage.
	Ref InternedString

	// StageName records which stage produced this snapshot.
	StageName InternedString
}

// IsZero reports whether the snapshot is the empty initial state that
// precedes the base stage.
func (s Snapshot) IsZero() bool {
	return s.ID.String() == "" && s.Ref.String() == ""
}
