package watcher

import (
	"context"
	"time"

	"github.com/cliprelay/publishbot/database/db"
	"github.com/cliprelay/publishbot/model"
	"github.com/cliprelay/publishbot/tiktok"

	log "github.com/sirupsen/logrus"
)

type JobStore interface {
	GetJobsInState(ctx context.Context, state model.JobState) ([]model.Job, error)
	MarkTerminal(ctx context.Context, jobID string, state model.JobState) error
	RecordOutcome(ctx context.Context, jobID string, publishID string, outcomeType db.OutcomeType, errorCode string, errorMessage string, postID string) error
}

type StatusChecker interface {
	CheckPublishStatus(ctx context.Context, cred tiktok.Credential, publishID string) (*tiktok.PublishStatus, error)
}

type CredentialSource interface {
	Credential(ctx context.Context) (tiktok.Credential, error)
}

// Watcher polls every submitted job once per interval and records terminal
// outcomes. One shared scan loop instead of one goroutine per job keeps the
// request rate predictable against the status endpoint's rate limit.
type Watcher struct {
	checker  StatusChecker
	creds    CredentialSource
	store    JobStore
	interval time.Duration
	// Jobs older than this are failed rather than polled forever
	maxJobAge time.Duration
}

func NewWatcher(checker StatusChecker, creds CredentialSource, store JobStore, interval time.Duration, maxJobAge time.Duration) *Watcher {
	return &Watcher{
		checker:   checker,
		creds:     creds,
		store:     store,
		interval:  interval,
		maxJobAge: maxJobAge,
	}
}

func (w *Watcher) Watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			log.Debug("exiting Watcher by closing channel")
			return nil
		case <-time.After(w.interval):
			jobs, err := w.store.GetJobsInState(ctx, model.JobStateSubmitted)
			if err != nil {
				log.Errorf("error getting in-flight jobs: %v", err)
				return err
			}

			for _, job := range jobs {
				if err := w.checkJob(ctx, job); err != nil {
					log.WithField("jobID", job.ID).Errorf("error checking job: %v", err)
					// Context canceled errors are expected if the program is terminating, so stop the loop in that case
					if ctx.Err() == context.Canceled {
						return err
					}
				}
			}
		}
	}
}

func (w *Watcher) checkJob(ctx context.Context, job model.Job) error {
	cred, err := w.creds.Credential(ctx)
	if err != nil {
		return err
	}

	status, err := w.checker.CheckPublishStatus(ctx, cred, job.PublishID)
	if err != nil {
		return err
	}

	switch status.State {
	case tiktok.StateComplete:
		postID := ""
		if len(status.PostIDs) > 0 {
			postID = status.PostIDs[0]
		}
		log.WithField("jobID", job.ID).WithField("postID", postID).Info("publish complete")
		if err := w.store.RecordOutcome(ctx, job.ID, job.PublishID, db.OutcomeTypeComplete, "", "", postID); err != nil {
			return err
		}
		return w.store.MarkTerminal(ctx, job.ID, model.JobStateComplete)
	case tiktok.StateFailed:
		log.WithField("jobID", job.ID).WithField("reason", status.FailReason).Warn("publish failed")
		if err := w.store.RecordOutcome(ctx, job.ID, job.PublishID, db.OutcomeTypeFailed, status.FailReason, "publish job failed", ""); err != nil {
			return err
		}
		return w.store.MarkTerminal(ctx, job.ID, model.JobStateFailed)
	default:
		log.WithField("jobID", job.ID).WithField("state", status.State).Debug("still in flight, continuing...")
		// A job TikTok never finishes would otherwise be polled forever
		if w.maxJobAge > 0 && time.Since(job.Enqueued) > w.maxJobAge {
			log.WithField("jobID", job.ID).WithField("enqueued", job.Enqueued).Warn("job exceeded max age, abandoning")
			if err := w.store.RecordOutcome(ctx, job.ID, job.PublishID, db.OutcomeTypeFailed, "POLL_TIMEOUT", "gave up waiting for a terminal state", ""); err != nil {
				return err
			}
			return w.store.MarkTerminal(ctx, job.ID, model.JobStateFailed)
		}
		return nil
	}
}
