package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// Job records one processed upload: what came in, how the transform went,
// and where the side-by-side output ended up.
type Job struct {
	ID              string     `json:"id"`
	SourceName      string     `json:"source_name"`
	Status          JobStatus  `json:"status"`
	Frames          int        `json:"frames"`
	ProcessedFrames int        `json:"processed_frames"`
	FPS             float64    `json:"fps"`
	Width           int        `json:"width"`
	Height          int        `json:"height"`
	OutputName      string     `json:"output_name"`
	OutputSize      int64      `json:"output_size"`
	Error           string     `json:"error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// NewJob creates a pending job with a short unique id used in filenames.
func NewJob(sourceName string) *Job {
	return &Job{
		ID:         uuid.NewString()[:8],
		SourceName: sourceName,
		Status:     JobStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

func (j *Job) MarkProcessing() {
	j.Status = JobStatusProcessing
}

func (j *Job) MarkCompleted(outputName string, frames, processedFrames int, fps float64, width, height int, outputSize int64) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.OutputName = outputName
	j.Frames = frames
	j.ProcessedFrames = processedFrames
	j.FPS = fps
	j.Width = width
	j.Height = height
	j.OutputSize = outputSize
	j.CompletedAt = &now
}

func (j *Job) MarkFailed(errMsg string) {
	now := time.Now().UTC()
	j.Status = JobStatusFailed
	j.Error = errMsg
	j.CompletedAt = &now
}

// JobFilter contains filtering options for querying jobs.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}

// JobStats contains aggregate statistics about processed jobs.
type JobStats struct {
	TotalJobs        int            `json:"total_jobs"`
	PerStatus        map[string]int `json:"per_status"`
	TotalFrames      int64          `json:"total_frames"`
	TotalOutputBytes int64          `json:"total_output_bytes"`
}
