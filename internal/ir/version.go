package ir

// Version constants for the record encoding and the recq binary.
const (
	// RecordVersion is the canonical record encoding version. It is part
	// of every record hash, so bumping it re-addresses stored records.
	RecordVersion = "1"

	// Version is the recq release version.
	Version = "0.1.0"
)
