package model

// Version constants for scoring and persisted records.
const (
	// ScoreVersion identifies the scoring algorithm that produced a Score.
	ScoreVersion = "DWCS_v1"

	// EngineVersion is the adherence engine version.
	EngineVersion = "0.1.0"
)
