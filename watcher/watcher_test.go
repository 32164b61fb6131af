package watcher

import (
	"context"
	"testing"
	"time"

	"github.com/cliprelay/publishbot/database/db"
	"github.com/cliprelay/publishbot/model"
	"github.com/cliprelay/publishbot/tiktok"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockJobStore struct {
	mock.Mock
}

func (m *MockJobStore) GetJobsInState(ctx context.Context, state model.JobState) ([]model.Job, error) {
	args := m.Called(ctx, state)
	return args.Get(0).([]model.Job), args.Error(1)
}

func (m *MockJobStore) MarkTerminal(ctx context.Context, jobID string, state model.JobState) error {
	args := m.Called(ctx, jobID, state)
	return args.Error(0)
}

func (m *MockJobStore) RecordOutcome(ctx context.Context, jobID string, publishID string, outcomeType db.OutcomeType, errorCode string, errorMessage string, postID string) error {
	args := m.Called(ctx, jobID, publishID, outcomeType, errorCode, postID)
	return args.Error(0)
}

type MockStatusChecker struct {
	mock.Mock
}

func (m *MockStatusChecker) CheckPublishStatus(ctx context.Context, cred tiktok.Credential, publishID string) (*tiktok.PublishStatus, error) {
	args := m.Called(ctx, cred, publishID)
	return args.Get(0).(*tiktok.PublishStatus), args.Error(1)
}

type MockCredentialSource struct {
	mock.Mock
}

func (m *MockCredentialSource) Credential(ctx context.Context) (tiktok.Credential, error) {
	args := m.Called(ctx)
	return args.Get(0).(tiktok.Credential), args.Error(1)
}

func submittedJob() model.Job {
	return model.Job{
		ID:        "c1123lfgdsa023",
		Kind:      model.SourceKindFile,
		MediaRef:  "/videos/clip.mp4",
		PublishID: "pub123",
		State:     model.JobStateSubmitted,
		Enqueued:  time.Now(),
	}
}

func TestCheckJob(t *testing.T) {
	cred := tiktok.Credential{AccessToken: "tok"}

	t.Run("a completed job gets its post ID recorded", func(t *testing.T) {
		job := submittedJob()
		status := &tiktok.PublishStatus{PublishID: "pub123", State: tiktok.StateComplete, PostIDs: []string{"7123456789"}}

		mockCreds := new(MockCredentialSource)
		mockCreds.On("Credential", context.TODO()).Return(cred, nil)
		mockChecker := new(MockStatusChecker)
		mockChecker.On("CheckPublishStatus", context.TODO(), cred, "pub123").Return(status, nil)
		mockStore := new(MockJobStore)
		mockStore.On("RecordOutcome", context.TODO(), job.ID, "pub123", db.OutcomeTypeComplete, "", "7123456789").Return(nil)
		mockStore.On("MarkTerminal", context.TODO(), job.ID, model.JobStateComplete).Return(nil)

		w := NewWatcher(mockChecker, mockCreds, mockStore, time.Second, time.Hour)
		err := w.checkJob(context.TODO(), job)
		assert.NoErrorf(t, err, "expected no error but got %v", err)
		mockStore.AssertNumberOfCalls(t, "RecordOutcome", 1)
		mockStore.AssertNumberOfCalls(t, "MarkTerminal", 1)
	})

	t.Run("a failed job records the fail reason", func(t *testing.T) {
		job := submittedJob()
		status := &tiktok.PublishStatus{PublishID: "pub123", State: tiktok.StateFailed, FailReason: "video_format_check_failed"}

		mockCreds := new(MockCredentialSource)
		mockCreds.On("Credential", context.TODO()).Return(cred, nil)
		mockChecker := new(MockStatusChecker)
		mockChecker.On("CheckPublishStatus", context.TODO(), cred, "pub123").Return(status, nil)
		mockStore := new(MockJobStore)
		mockStore.On("RecordOutcome", context.TODO(), job.ID, "pub123", db.OutcomeTypeFailed, "video_format_check_failed", "").Return(nil)
		mockStore.On("MarkTerminal", context.TODO(), job.ID, model.JobStateFailed).Return(nil)

		w := NewWatcher(mockChecker, mockCreds, mockStore, time.Second, time.Hour)
		err := w.checkJob(context.TODO(), job)
		assert.NoErrorf(t, err, "expected no error but got %v", err)
		mockStore.AssertNumberOfCalls(t, "MarkTerminal", 1)
	})

	t.Run("an in-flight job is left alone", func(t *testing.T) {
		job := submittedJob()
		status := &tiktok.PublishStatus{PublishID: "pub123", State: tiktok.StateProcessingUpload}

		mockCreds := new(MockCredentialSource)
		mockCreds.On("Credential", context.TODO()).Return(cred, nil)
		mockChecker := new(MockStatusChecker)
		mockChecker.On("CheckPublishStatus", context.TODO(), cred, "pub123").Return(status, nil)
		mockStore := new(MockJobStore)

		w := NewWatcher(mockChecker, mockCreds, mockStore, time.Second, time.Hour)
		err := w.checkJob(context.TODO(), job)
		assert.NoErrorf(t, err, "expected no error but got %v", err)
		mockStore.AssertNumberOfCalls(t, "RecordOutcome", 0)
		mockStore.AssertNumberOfCalls(t, "MarkTerminal", 0)
	})

	t.Run("a job stuck past its max age is abandoned", func(t *testing.T) {
		job := submittedJob()
		job.Enqueued = time.Now().Add(-2 * time.Hour)
		status := &tiktok.PublishStatus{PublishID: "pub123", State: tiktok.StateProcessingUpload}

		mockCreds := new(MockCredentialSource)
		mockCreds.On("Credential", context.TODO()).Return(cred, nil)
		mockChecker := new(MockStatusChecker)
		mockChecker.On("CheckPublishStatus", context.TODO(), cred, "pub123").Return(status, nil)
		mockStore := new(MockJobStore)
		mockStore.On("RecordOutcome", context.TODO(), job.ID, "pub123", db.OutcomeTypeFailed, "POLL_TIMEOUT", "").Return(nil)
		mockStore.On("MarkTerminal", context.TODO(), job.ID, model.JobStateFailed).Return(nil)

		w := NewWatcher(mockChecker, mockCreds, mockStore, time.Second, time.Hour)
		err := w.checkJob(context.TODO(), job)
		assert.NoErrorf(t, err, "expected no error but got %v", err)
		mockStore.AssertNumberOfCalls(t, "RecordOutcome", 1)
		mockStore.AssertNumberOfCalls(t, "MarkTerminal", 1)
	})

	t.Run("a status check failure propagates without touching the ledger", func(t *testing.T) {
		job := submittedJob()

		mockCreds := new(MockCredentialSource)
		mockCreds.On("Credential", context.TODO()).Return(cred, nil)
		mockChecker := new(MockStatusChecker)
		mockChecker.On("CheckPublishStatus", context.TODO(), cred, "pub123").Return((*tiktok.PublishStatus)(nil), &tiktok.TransportError{Op: "POST /v2/post/publish/status/fetch/"})
		mockStore := new(MockJobStore)

		w := NewWatcher(mockChecker, mockCreds, mockStore, time.Second, time.Hour)
		err := w.checkJob(context.TODO(), job)
		assert.Error(t, err, "expected error but got none")
		mockStore.AssertNumberOfCalls(t, "RecordOutcome", 0)
	})
}
