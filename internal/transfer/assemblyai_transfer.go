package transfer

type TranscriptRequest struct {
	AudioURL string `json:"audio_url"`
}

type TranscriptResponse struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"` // queued, processing, completed, error
	Text     string  `json:"text"`
	Error    string  `json:"error"`
	AudioDur float64 `json:"audio_duration"`
}

type UploadResponse struct {
	UploadURL string `json:"upload_url"`
}
