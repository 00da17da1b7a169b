package view

import "time"

// DefaultRecentLimit is how many jobs the dashboard lists
const DefaultRecentLimit = 3

// Renderer turns poller state into view documents. It holds no job data.
type Renderer struct {
	links       Links
	recentLimit int
	now         func() time.Time
}

// NewRenderer creates a Renderer
func NewRenderer(links Links, recentLimit int) *Renderer {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Renderer{
		links:       links,
		recentLimit: recentLimit,
		now:         time.Now,
	}
}
