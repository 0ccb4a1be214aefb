package dto

// VideoInfo is the per-request summary of a processed video.
type VideoInfo struct {
	Frames          int     `json:"frames"`
	ProcessedFrames int     `json:"processed_frames"`
	FPS             float64 `json:"fps"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Size            int64   `json:"size"`
}

// ProcessResponse is returned by the process endpoint.
type ProcessResponse struct {
	ID         string    `json:"id"`
	OutputPath string    `json:"output_path"`
	Info       VideoInfo `json:"info"`
}

// ProgressUpdate is streamed to WebSocket viewers while a video is processed.
type ProgressUpdate struct {
	JobID       string  `json:"job_id"`
	Frame       int     `json:"frame"`
	TotalFrames int     `json:"total_frames,omitempty"`
	Percent     float64 `json:"percent,omitempty"`
	Done        bool    `json:"done"`
}
