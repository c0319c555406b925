package domain

import "time"

// JobType enumerates generation job categories handled by the worker.
type JobType string

const (
	JobTypeScript       JobType = "SCRIPT_GEN"
	JobTypeCharacters   JobType = "CHARACTER_GEN"
	JobTypePhotos       JobType = "PHOTO_GEN"
	JobTypeSpeech       JobType = "SPEECH_GEN"
	JobTypeSegmentVideo JobType = "SEGMENT_VIDEO"
	JobTypeCompile      JobType = "COMPILE_VIDEO"
)

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"
)

// Job encapsulates one asynchronous generation unit claimed by the worker.
// SegmentIndex is -1 for jobs that are not tied to a single segment.
type Job struct {
	ID           string
	ProjectID    string
	DeviceID     string
	Type         JobType
	Status       JobStatus
	Provider     string
	SegmentIndex int
	PayloadJSON  []byte
	ResultJSON   []byte
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
