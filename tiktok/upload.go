package tiktok

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
)

// UploadFile PUTs the whole file to the session's upload URL in a single
// chunk. The upload URL is pre-signed, so no Authorization header is sent.
// A failed transfer comes back as an *UploadError; there is no resume, the
// caller starts a new session instead.
func (c *Client) UploadFile(ctx context.Context, src FileSource, session *PublishSession) error {
	if session.UploadURL == "" {
		return &ValidationError{Reason: "session has no upload URL"}
	}

	f, err := os.Open(src.Path)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("cannot open %s: %v", src.Path, err)}
	}
	defer f.Close()

	size := src.Size
	if size == 0 {
		stat, err := f.Stat()
		if err != nil {
			return &ValidationError{Reason: fmt.Sprintf("cannot stat %s: %v", src.Path, err)}
		}
		size = stat.Size()
	}
	if size == 0 {
		return &ValidationError{Reason: "cannot upload empty file"}
	}
	mimeType := src.MimeType
	if mimeType == "" {
		mimeType = DetectMimeType(src.Path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, session.UploadURL, f)
	if err != nil {
		return &UploadError{Err: err}
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", size-1, size))

	log.WithField("publishID", session.PublishID).WithField("bytes", size).Debug("uploading media")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &UploadError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UploadError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
