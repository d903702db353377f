package ir

// Version constants for the action schema and engine.
const (
	// SchemaVersion is the action/collection encoding version.
	SchemaVersion = "1"

	// EngineVersion is the todoflux engine version.
	EngineVersion = "0.1.0"
)
