package transfer

type ScheduleRequest struct {
	PostID      int64  `json:"post_id"`
	ScheduledAt string `json:"scheduled_at"`
}

type CancelScheduleRequest struct {
	PostID int64 `json:"post_id"`
}

type ManualPublishRequest struct {
	Text       string `json:"text"`
	Visibility string `json:"visibility"`
	PostID     int64  `json:"postId"`
}

type RunSummary struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
	Total     int `json:"total"`
}
