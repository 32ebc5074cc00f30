package ir

// Version constants for the persisted document and the engine.
const (
	// DocumentVersion is the current persisted document version.
	//   0 - legacy browser shape (camelCase, flat point settings)
	//   1 - current shape without created_at
	//   2 - current shape
	DocumentVersion = 2

	// EngineVersion is the tiebreak engine version.
	EngineVersion = "0.1.0"
)
