package model

import (
	"fmt"
	"strings"
)

// SourceKind says where a job's media bytes come from.
type SourceKind string

const (
	SourceKindFile  SourceKind = "FILE"
	SourceKindURL   SourceKind = "URL"
	SourceKindPhoto SourceKind = "PHOTO"
)

func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToUpper(s) {
	case string(SourceKindFile):
		return SourceKindFile, nil
	case string(SourceKindURL):
		return SourceKindURL, nil
	case string(SourceKindPhoto):
		return SourceKindPhoto, nil
	default:
		return SourceKindFile, fmt.Errorf("unknown source kind: %s", s)
	}
}

// JobState tracks a job through the pipeline. QUEUED jobs haven't been sent
// to TikTok yet; SUBMITTED jobs have a publish ID and are being polled.
type JobState string

const (
	JobStateQueued    JobState = "QUEUED"
	JobStateSubmitted JobState = "SUBMITTED"
	JobStateComplete  JobState = "COMPLETE"
	JobStateFailed    JobState = "FAILED"
)

func ParseJobState(s string) (JobState, error) {
	switch strings.ToUpper(s) {
	case string(JobStateQueued):
		return JobStateQueued, nil
	case string(JobStateSubmitted):
		return JobStateSubmitted, nil
	case string(JobStateComplete):
		return JobStateComplete, nil
	case string(JobStateFailed):
		return JobStateFailed, nil
	default:
		return JobStateQueued, fmt.Errorf("unknown job state: %s", s)
	}
}
