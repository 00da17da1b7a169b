package job

import (
	"fmt"
	"math"
)

// Summary holds the aggregates derived from one job collection.
// Completed + Processing always equals Total; Failed is the subset of
// Processing that ended in error.
type Summary struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Processing  int     `json:"processing"`
	Failed      int     `json:"failed"`
	TotalSizeMB float64 `json:"total_size_mb"`
}

// Summarize derives a Summary. It has no side effects and keeps no state.
func Summarize(jobs []Job) Summary {
	s := Summary{Total: len(jobs)}
	for _, j := range jobs {
		if j.Status.IsDone() {
			s.Completed++
		} else {
			s.Processing++
		}
		if j.Status.Category() == CategoryFailed {
			s.Failed++
		}
		s.TotalSizeMB += j.FileSizeMB
	}
	return s
}

// TotalSize renders the summed size the way the dashboard shows it
func (s Summary) TotalSize() string {
	return FormatSize(s.TotalSizeMB)
}

// FormatSize renders megabytes with one decimal place, e.g. "12.3 MB"
func FormatSize(mb float64) string {
	if math.IsNaN(mb) || math.IsInf(mb, 0) {
		mb = 0
	}
	return fmt.Sprintf("%.1f MB", mb)
}
