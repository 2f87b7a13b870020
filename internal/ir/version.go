package ir

// Version constants for IR schema and engine.
const (
	// SchemaVersion is the IR schema version this engine consumes.
	SchemaVersion = "1"

	// EngineVersion is the verdict engine version.
	EngineVersion = "0.1.0"
)
