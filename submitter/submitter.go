package submitter

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lucsky/cuid"

	"github.com/cliprelay/publishbot/database/db"
	"github.com/cliprelay/publishbot/model"
	"github.com/cliprelay/publishbot/tiktok"

	log "github.com/sirupsen/logrus"
)

type JobStore interface {
	GetJobsInState(ctx context.Context, state model.JobState) ([]model.Job, error)
	MarkSubmitted(ctx context.Context, jobID string, publishID string) error
	MarkTerminal(ctx context.Context, jobID string, state model.JobState) error
	RecordOutcome(ctx context.Context, jobID string, publishID string, outcomeType db.OutcomeType, errorCode string, errorMessage string, postID string) error
}

type Publisher interface {
	QueryCreatorInfo(ctx context.Context, cred tiktok.Credential) (*tiktok.CreatorInfo, error)
	PublishCoercing(ctx context.Context, cred tiktok.Credential, req *tiktok.PostRequest, info *tiktok.CreatorInfo) (*tiktok.PublishSession, error)
}

type CredentialSource interface {
	Credential(ctx context.Context) (tiktok.Credential, error)
}

// Submitter drains queued jobs from the ledger and opens a publish session
// for each. Capability mismatches never fail a job here: requests are
// coerced to whatever the creator is allowed, since the ledger's job row is
// the caller's record of what was asked for.
type Submitter struct {
	publisher       Publisher
	creds           CredentialSource
	store           JobStore
	interval        time.Duration
	testModeEnabled bool
}

func NewSubmitter(publisher Publisher, creds CredentialSource, store JobStore, interval time.Duration, isTestMode bool) *Submitter {
	return &Submitter{
		publisher:       publisher,
		creds:           creds,
		store:           store,
		interval:        interval,
		testModeEnabled: isTestMode,
	}
}

func (s *Submitter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			log.Debug("exiting Submitter by closing channel")
			return nil
		case <-time.After(s.interval):
			jobs, err := s.store.GetJobsInState(ctx, model.JobStateQueued)
			if err != nil {
				log.Errorf("error getting work: %v", err)
				return err
			}
			if len(jobs) > 0 {
				log.Infof("found %d jobs to submit", len(jobs))
			}

			for _, job := range jobs {
				if err := s.submitJob(ctx, job); err != nil {
					log.WithField("jobID", job.ID).Errorf("error submitting job: %v", err)
					// Context canceled errors are expected if the program is terminating, so stop the loop in that case
					if ctx.Err() == context.Canceled {
						return err
					}
				}
			}
		}
	}
}

func (s *Submitter) submitJob(ctx context.Context, job model.Job) error {
	req, err := requestFromJob(job)
	if err != nil {
		// A malformed job can never submit, so fail it rather than
		// retrying it forever.
		s.failJob(ctx, job, "", "MALFORMED_JOB", err.Error())
		return err
	}

	if s.testModeEnabled {
		publishID := cuid.New()
		log.WithField("jobID", job.ID).Infof("Simulating submission with publish ID %s", publishID)
		return s.store.MarkSubmitted(ctx, job.ID, publishID)
	}

	cred, err := s.creds.Credential(ctx)
	if err != nil {
		return err
	}

	// Capabilities can change between posts, so each submission gets a
	// fresh snapshot.
	info, err := s.publisher.QueryCreatorInfo(ctx, cred)
	if err != nil {
		return err
	}

	session, err := s.publisher.PublishCoercing(ctx, cred, req, info)
	if err != nil {
		var sessionErr *tiktok.SessionError
		if errors.As(err, &sessionErr) {
			s.failJob(ctx, job, publishIDFromSession(session), sessionErr.Code, sessionErr.Message)
			return err
		}
		var uploadErr *tiktok.UploadError
		if errors.As(err, &uploadErr) {
			s.failJob(ctx, job, publishIDFromSession(session), "UPLOAD_FAILED", uploadErr.Error())
			return err
		}
		// Transport-level failures are worth retrying on the next scan
		return err
	}

	log.WithField("jobID", job.ID).WithField("publishID", session.PublishID).Info("job submitted")
	return s.store.MarkSubmitted(ctx, job.ID, session.PublishID)
}

func (s *Submitter) failJob(ctx context.Context, job model.Job, publishID string, code string, message string) {
	if err := s.store.RecordOutcome(ctx, job.ID, publishID, db.OutcomeTypeFailed, code, message, ""); err != nil {
		log.WithField("jobID", job.ID).Errorf("error recording failed outcome: %v", err)
	}
	if err := s.store.MarkTerminal(ctx, job.ID, model.JobStateFailed); err != nil {
		log.WithField("jobID", job.ID).Errorf("error marking job failed: %v", err)
	}
}

func publishIDFromSession(session *tiktok.PublishSession) string {
	if session == nil {
		return ""
	}
	return session.PublishID
}

func requestFromJob(job model.Job) (*tiktok.PostRequest, error) {
	privacy, err := tiktok.ParsePrivacyLevel(job.Privacy)
	if err != nil {
		return nil, err
	}

	req := &tiktok.PostRequest{
		Title:        job.Title,
		PrivacyLevel: privacy,
	}
	switch job.Kind {
	case model.SourceKindFile:
		req.Source = tiktok.FileSource{Path: job.MediaRef}
	case model.SourceKindURL:
		req.Source = tiktok.URLSource{URL: job.MediaRef}
	case model.SourceKindPhoto:
		req.Source = tiktok.PhotoSource{URLs: strings.Split(job.MediaRef, ",")}
	}
	return req, nil
}
