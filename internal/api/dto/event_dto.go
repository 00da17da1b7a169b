package dto

type ListEventsRequest struct {
	TaskID   string `form:"task_id"`
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListEventsResponse struct {
	Events     []EventDTO `json:"events"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type EventDTO struct {
	EventID    string `json:"event_id"`
	View       string `json:"view"`
	TaskID     string `json:"task_id"`
	Filename   string `json:"filename"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status"`
	ObservedAt string `json:"observed_at"`
}

type LibraryRequest struct {
	Query  string `form:"q"`
	Status string `form:"status"`
}

type RetryResponse struct {
	View   string `json:"view"`
	Status string `json:"status"`
}
