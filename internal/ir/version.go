package ir

// Version constants for the instruction encoding and engine.
const (
	// IRVersion is the instruction encoding version. Bump it when the
	// meaning of Count/Target changes; program hashes include it.
	IRVersion = "1"

	// EngineVersion is the bfjit engine version.
	EngineVersion = "0.1.0"
)
