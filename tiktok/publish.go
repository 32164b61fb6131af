package tiktok

import (
	"context"
	"fmt"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
)

/*
Publish runs the full direct-post flow with strict capability checks: any
mismatch between the request and the creator's capabilities fails with a
*CapabilityError before anything is sent, and the request is never mutated.
On success the returned session carries the publish ID to poll on; for file
sources the bytes have already been uploaded by the time Publish returns.
*/
func (c *Client) Publish(ctx context.Context, cred Credential, req *PostRequest, info *CreatorInfo) (*PublishSession, error) {
	if err := validateAgainstCapabilities(req, info); err != nil {
		return nil, err
	}
	return c.PublishUnchecked(ctx, cred, req)
}

// PublishCoercing is Publish except capability mismatches are fixed in
// place instead of rejected: privacy falls back to SELF_ONLY and any
// interaction the creator has disabled is forced off on the request.
func (c *Client) PublishCoercing(ctx context.Context, cred Credential, req *PostRequest, info *CreatorInfo) (*PublishSession, error) {
	coerceToCapabilities(req, info)
	return c.PublishUnchecked(ctx, cred, req)
}

// PublishUnchecked skips capability validation entirely and goes straight to
// session creation. Use it when the caller has already validated, or wants
// the remote service to be the judge.
func (c *Client) PublishUnchecked(ctx context.Context, cred Credential, req *PostRequest) (*PublishSession, error) {
	switch src := req.Source.(type) {
	case FileSource:
		return c.publishFile(ctx, cred, req, src)
	case URLSource:
		raw, err := c.send(ctx, cred, http.MethodPost, videoInitPath, videoInitRequest{
			PostInfo:   req.postInfo(),
			SourceInfo: sourceInfo{Source: src.source(), VideoURL: src.URL},
		}, true)
		if err != nil {
			return nil, fmt.Errorf("creating pull-from-url session: %w", err)
		}
		return parseSession("video init", raw, false)
	case PhotoSource:
		raw, err := c.send(ctx, cred, http.MethodPost, contentInitPath, contentInitRequest{
			PostInfo:   req.postInfo(),
			SourceInfo: sourceInfo{Source: src.source(), PhotoCoverIndex: src.CoverIndex, PhotoImages: src.URLs},
			PostMode:   "DIRECT_POST",
			MediaType:  "PHOTO",
		}, true)
		if err != nil {
			return nil, fmt.Errorf("creating photo session: %w", err)
		}
		return parseSession("content init", raw, false)
	case nil:
		return nil, &ValidationError{Reason: "no media source"}
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported media source %T", src)}
	}
}

func (c *Client) publishFile(ctx context.Context, cred Credential, req *PostRequest, src FileSource) (*PublishSession, error) {
	if src.Size == 0 {
		stat, err := os.Stat(src.Path)
		if err != nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("cannot stat %s: %v", src.Path, err)}
		}
		src.Size = stat.Size()
	}
	if src.Size == 0 {
		return nil, &ValidationError{Reason: "cannot upload empty file"}
	}
	if src.MimeType == "" {
		src.MimeType = DetectMimeType(src.Path)
	}

	// The whole file goes up as one chunk, so chunk size is the file size.
	raw, err := c.send(ctx, cred, http.MethodPost, videoInitPath, videoInitRequest{
		PostInfo: req.postInfo(),
		SourceInfo: sourceInfo{
			Source:          src.source(),
			VideoSize:       src.Size,
			ChunkSize:       src.Size,
			TotalChunkCount: 1,
		},
	}, true)
	if err != nil {
		return nil, fmt.Errorf("creating upload session: %w", err)
	}
	session, err := parseSession("video init", raw, true)
	if err != nil {
		return nil, err
	}

	// One early status check so a session that is already dead surfaces
	// before we push bytes at it.
	status, err := c.CheckPublishStatus(ctx, cred, session.PublishID)
	if err != nil {
		return session, fmt.Errorf("pre-upload status check: %w", err)
	}
	if status.State == StateFailed {
		return session, &SessionError{Stage: "pre-upload status check", Code: status.FailReason, Message: "publish job failed before upload"}
	}
	log.WithField("publishID", session.PublishID).WithField("state", status.State).Debug("session created, starting upload")

	if err := c.UploadFile(ctx, src, session); err != nil {
		return session, err
	}
	return session, nil
}

func validateAgainstCapabilities(req *PostRequest, info *CreatorInfo) error {
	var violations []string
	if !info.AllowsPrivacy(req.PrivacyLevel) {
		violations = append(violations, fmt.Sprintf("privacy level %s not offered to this creator", req.PrivacyLevel))
	}
	if info.CommentDisabled && !req.DisableComment {
		violations = append(violations, "comments are disabled for this creator but not on the request")
	}
	if info.DuetDisabled && !req.DisableDuet {
		violations = append(violations, "duet is disabled for this creator but not on the request")
	}
	if info.StitchDisabled && !req.DisableStitch {
		violations = append(violations, "stitch is disabled for this creator but not on the request")
	}
	if len(violations) > 0 {
		return &CapabilityError{Violations: violations}
	}
	return nil
}

func coerceToCapabilities(req *PostRequest, info *CreatorInfo) {
	if !info.AllowsPrivacy(req.PrivacyLevel) {
		log.WithField("requested", req.PrivacyLevel).Debug("privacy level not allowed, coercing to SELF_ONLY")
		req.PrivacyLevel = PrivacySelfOnly
	}
	if info.CommentDisabled {
		req.DisableComment = true
	}
	if info.DuetDisabled {
		req.DisableDuet = true
	}
	if info.StitchDisabled {
		req.DisableStitch = true
	}
}
