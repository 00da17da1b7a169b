package job

import "strings"

// Status is the lifecycle stage reported by the media backend.
// Values outside the known set are kept as-is and classify as CategoryUnknown.
type Status string

const (
	StatusConverting Status = "converting"
	StatusGenerating Status = "generating"
	StatusMerging    Status = "merging"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// Category groups statuses for presentation
type Category string

const (
	CategoryCompleted  Category = "completed"
	CategoryProcessing Category = "processing"
	CategoryFailed     Category = "failed"
	CategoryUnknown    Category = "unknown"
)

// Badge colors, matching the front end's utility classes
const (
	BadgePrimary     = "bg-primary"
	BadgeAccent      = "bg-accent"
	BadgeDestructive = "bg-destructive"
	BadgeMuted       = "bg-muted"
)

// String returns the raw status value
func (s Status) String() string {
	return string(s)
}

// Category maps the status to its presentation group. It never fails.
func (s Status) Category() Category {
	switch s.normalized() {
	case StatusDone:
		return CategoryCompleted
	case StatusConverting, StatusGenerating, StatusMerging:
		return CategoryProcessing
	case StatusError:
		return CategoryFailed
	default:
		return CategoryUnknown
	}
}

// BadgeColor maps the status to a badge color; unknown values get the neutral one.
func (s Status) BadgeColor() string {
	switch s.Category() {
	case CategoryCompleted:
		return BadgePrimary
	case CategoryProcessing:
		return BadgeAccent
	case CategoryFailed:
		return BadgeDestructive
	default:
		return BadgeMuted
	}
}

// IsDone reports whether the job finished successfully and its media can be fetched
func (s Status) IsDone() bool {
	return s.normalized() == StatusDone
}

// IsTerminal returns true once no further transitions are expected
func (s Status) IsTerminal() bool {
	c := s.Category()
	return c == CategoryCompleted || c == CategoryFailed
}

// IsKnown reports whether the status belongs to the recognized set
func (s Status) IsKnown() bool {
	return s.Category() != CategoryUnknown
}

func (s Status) normalized() Status {
	return Status(strings.ToLower(strings.TrimSpace(string(s))))
}
