package model

import (
	"time"

	"github.com/cliprelay/publishbot/database/db"
)

// Job is one requested post making its way through the publish pipeline.
type Job struct {
	ID        string
	Kind      SourceKind
	MediaRef  string
	Title     string
	Privacy   string
	PublishID string
	State     JobState
	Enqueued  time.Time
}

func JobFromPublishJob(pj db.PublishJob) (*Job, error) {
	kind, err := ParseSourceKind(pj.SourceKind)
	if err != nil {
		return nil, err
	}
	state, err := ParseJobState(pj.State)
	if err != nil {
		return nil, err
	}
	return &Job{
		ID:        pj.ID,
		Kind:      kind,
		MediaRef:  pj.MediaRef,
		Title:     pj.Title,
		Privacy:   pj.PrivacyLevel,
		PublishID: pj.PublishID,
		State:     state,
		Enqueued:  pj.Enqueued,
	}, nil
}
