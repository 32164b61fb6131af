package tiktok

import (
	"encoding/json"
)

// apiError is the error envelope every content-posting response carries.
// The API signals success with the literal code "ok"; an absent error object
// decodes to empty strings and counts as success too.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

func (e apiError) ok() bool {
	return e.Code == "" || e.Code == "ok"
}

// PublishSession is the remote-assigned handle for one publish attempt.
// UploadURL is only set for the local-file flow; for PULL_FROM_URL posts
// TikTok fetches the bytes itself.
type PublishSession struct {
	PublishID string
	UploadURL string
}

type sessionResponse struct {
	Data struct {
		PublishID string `json:"publish_id"`
		UploadURL string `json:"upload_url"`
	} `json:"data"`
	Error apiError `json:"error"`
}

// parseSession turns an init response into a PublishSession. wantUploadURL
// is set for the local-file flow, where a success response without an upload
// URL means the remote service broke its own contract.
func parseSession(stage string, raw []byte, wantUploadURL bool) (*PublishSession, error) {
	var resp sessionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ParseError{Stage: stage, Err: err}
	}
	if !resp.Error.ok() {
		return nil, &SessionError{Stage: stage, Code: resp.Error.Code, Message: resp.Error.Message, LogID: resp.Error.LogID}
	}
	if resp.Data.PublishID == "" {
		return nil, &SessionError{Stage: stage, Message: "no publish_id in response"}
	}
	if wantUploadURL && resp.Data.UploadURL == "" {
		return nil, &SessionError{Stage: stage, Message: "no upload_url in response for file upload"}
	}
	return &PublishSession{
		PublishID: resp.Data.PublishID,
		UploadURL: resp.Data.UploadURL,
	}, nil
}
