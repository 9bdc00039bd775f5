package ir

// Version constants for the query language and engine.
const (
	// LanguageVersion is the query language revision understood by the compiler.
	LanguageVersion = "1"

	// EngineVersion is the suiql engine version.
	EngineVersion = "0.1.0"
)
