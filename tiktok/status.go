package tiktok

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

type PublishState string

const (
	StateProcessingUpload   PublishState = "PROCESSING_UPLOAD"
	StateProcessingDownload PublishState = "PROCESSING_DOWNLOAD"
	StateSendToUserInbox    PublishState = "SEND_TO_USER_INBOX"
	StateComplete           PublishState = "PUBLISH_COMPLETE"
	StateFailed             PublishState = "FAILED"
)

// Terminal reports whether polling past this state is meaningful.
func (s PublishState) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// PublishStatus is one point-in-time snapshot of an asynchronous publish
// job. Each status fetch returns a fresh value.
type PublishStatus struct {
	PublishID       string
	State           PublishState
	FailReason      string
	PostIDs         []string
	UploadedBytes   int64
	DownloadedBytes int64
}

type statusFetchRequest struct {
	PublishID string `json:"publish_id"`
}

type statusFetchResponse struct {
	Data struct {
		Status     string `json:"status"`
		FailReason string `json:"fail_reason"`
		// The misspelling is TikTok's, not ours.
		PublicPostIDs   []int64 `json:"publicaly_available_post_id"`
		UploadedBytes   int64   `json:"uploaded_bytes"`
		DownloadedBytes int64   `json:"downloaded_bytes"`
	} `json:"data"`
	Error apiError `json:"error"`
}

// CheckPublishStatus performs a single status query for a publish job.
func (c *Client) CheckPublishStatus(ctx context.Context, cred Credential, publishID string) (*PublishStatus, error) {
	raw, err := c.send(ctx, cred, http.MethodPost, statusFetchPath, statusFetchRequest{PublishID: publishID}, true)
	if err != nil {
		return nil, err
	}

	var resp statusFetchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ParseError{Stage: "status fetch", Err: err}
	}
	if !resp.Error.ok() {
		return nil, &SessionError{Stage: "status fetch", Code: resp.Error.Code, Message: resp.Error.Message, LogID: resp.Error.LogID}
	}

	var postIDs []string
	for _, id := range resp.Data.PublicPostIDs {
		postIDs = append(postIDs, strconv.FormatInt(id, 10))
	}
	return &PublishStatus{
		PublishID:       publishID,
		State:           PublishState(resp.Data.Status),
		FailReason:      resp.Data.FailReason,
		PostIDs:         postIDs,
		UploadedBytes:   resp.Data.UploadedBytes,
		DownloadedBytes: resp.Data.DownloadedBytes,
	}, nil
}

/*
WaitForPublish polls a publish job until it reaches a terminal state and
returns that final snapshot. It sleeps for interval before each query, so a
job that completes on the first look still costs one interval. Cancellation
is cooperative through ctx: wrap it with a deadline to bound the wait,
otherwise the loop runs as long as the job stays in flight.
*/
func (c *Client) WaitForPublish(ctx context.Context, cred Credential, publishID string, interval time.Duration) (*PublishStatus, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
			status, err := c.CheckPublishStatus(ctx, cred, publishID)
			if err != nil {
				return nil, err
			}
			if status.State.Terminal() {
				return status, nil
			}
		}
	}
}
