package domain

// EdgeRecord is one normalized input row. Principal and Host are non-empty
// and upper-cased. DeclaredType is NodeUnknown when the row gave no type.
type EdgeRecord struct {
	Line         int
	Principal    string
	Scheme       Scheme
	Host         string
	DeclaredType NodeLabel
}

// Status is the terminal state of reconciling one record.
type Status uint8

const (
	StatusCreated Status = iota + 1
	StatusAlreadyExists
	StatusResolutionFailed
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusAlreadyExists:
		return "already_exists"
	case StatusResolutionFailed:
		return "resolution_failed"
	default:
		return "unknown"
	}
}

// Outcome is produced once per record and consumed only by the reporter.
type Outcome struct {
	Record EdgeRecord
	Status Status
	// Principal is the identifier actually sent to the store (SID domain suffix stripped).
	Principal   string
	AssumedType NodeLabel
	Attempts    int
}
