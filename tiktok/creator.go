package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"golang.org/x/exp/maps"
)

var errNoPrivacyOptions = errors.New("creator info carries no privacy level options")

/*
CreatorInfo is what the account is allowed to publish right now. TikTok can
change these between posts (e.g. a creator turns comments off account-wide),
so a snapshot is only good for the publish attempt it was fetched for and is
never cached.
*/
type CreatorInfo struct {
	Nickname        string
	Username        string
	AvatarURL       string
	DuetDisabled    bool
	StitchDisabled  bool
	CommentDisabled bool
	MaxVideoSec     int
	PrivacyLevels   []PrivacyLevel
}

// AllowsPrivacy reports whether the creator may post at the given level.
func (ci *CreatorInfo) AllowsPrivacy(level PrivacyLevel) bool {
	for _, l := range ci.PrivacyLevels {
		if l == level {
			return true
		}
	}
	return false
}

type creatorInfoResponse struct {
	Data struct {
		CreatorNickname         string   `json:"creator_nickname"`
		CreatorUsername         string   `json:"creator_username"`
		CreatorAvatarURL        string   `json:"creator_avatar_url"`
		DuetDisabled            bool     `json:"duet_disabled"`
		StitchDisabled          bool     `json:"stitch_disabled"`
		CommentDisabled         bool     `json:"comment_disabled"`
		MaxVideoPostDurationSec int      `json:"max_video_post_duration_sec"`
		PrivacyLevelOptions     []string `json:"privacy_level_options"`
	} `json:"data"`
	Error apiError `json:"error"`
}

// QueryCreatorInfo fetches a fresh capability snapshot for the account the
// credential belongs to. Privacy options the client doesn't recognize are
// dropped so a new server-side level never leaks through to callers.
func (c *Client) QueryCreatorInfo(ctx context.Context, cred Credential) (*CreatorInfo, error) {
	raw, err := c.send(ctx, cred, http.MethodPost, creatorInfoPath, nil, true)
	if err != nil {
		return nil, err
	}

	var resp creatorInfoResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ParseError{Stage: "creator info", Err: err}
	}
	if !resp.Error.ok() {
		return nil, &SessionError{Stage: "creator info query", Code: resp.Error.Code, Message: resp.Error.Message, LogID: resp.Error.LogID}
	}
	if len(resp.Data.PrivacyLevelOptions) == 0 {
		return nil, &ParseError{Stage: "creator info", Err: errNoPrivacyOptions}
	}

	// Dedupe while filtering, then sort for a stable order
	levels := map[PrivacyLevel]struct{}{}
	for _, option := range resp.Data.PrivacyLevelOptions {
		level, err := ParsePrivacyLevel(option)
		if err != nil {
			continue
		}
		levels[level] = struct{}{}
	}
	recognized := maps.Keys(levels)
	sort.Slice(recognized, func(i, j int) bool {
		return recognized[i] < recognized[j]
	})

	return &CreatorInfo{
		Nickname:        resp.Data.CreatorNickname,
		Username:        resp.Data.CreatorUsername,
		AvatarURL:       resp.Data.CreatorAvatarURL,
		DuetDisabled:    resp.Data.DuetDisabled,
		StitchDisabled:  resp.Data.StitchDisabled,
		CommentDisabled: resp.Data.CommentDisabled,
		MaxVideoSec:     resp.Data.MaxVideoPostDurationSec,
		PrivacyLevels:   recognized,
	}, nil
}
