package tiktok

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

const creatorInfoBody = `{
	"data": {
		"creator_nickname": "Cool Creator",
		"creator_username": "coolcreator",
		"creator_avatar_url": "https://p16.example.com/avatar.jpeg",
		"duet_disabled": false,
		"stitch_disabled": true,
		"comment_disabled": false,
		"max_video_post_duration_sec": 300,
		"privacy_level_options": ["PUBLIC_TO_EVERYONE", "MUTUAL_FOLLOW_FRIENDS", "SELF_ONLY"]
	},
	"error": {"code": "ok", "message": "", "log_id": "202308200001"}
}`

func TestQueryCreatorInfo(t *testing.T) {
	t.Run("parses a full creator info response", func(t *testing.T) {
		var gotBody []byte
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			io.WriteString(w, creatorInfoBody)
		}))

		info, err := client.QueryCreatorInfo(context.Background(), Credential{AccessToken: "tok"})
		assert.NoError(t, err)
		assert.Equal(t, "Cool Creator", info.Nickname)
		assert.Equal(t, "coolcreator", info.Username)
		assert.Equal(t, "https://p16.example.com/avatar.jpeg", info.AvatarURL)
		assert.False(t, info.DuetDisabled)
		assert.True(t, info.StitchDisabled)
		assert.False(t, info.CommentDisabled)
		assert.Equal(t, 300, info.MaxVideoSec)
		assert.ElementsMatch(t, []PrivacyLevel{PrivacyPublic, PrivacyMutualFriends, PrivacySelfOnly}, info.PrivacyLevels)
		// The creator info query is an empty-body POST
		assert.Empty(t, gotBody)
	})

	t.Run("silently drops unrecognized privacy options", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"data":{"creator_nickname":"x","privacy_level_options":["SELF_ONLY","BOGUS_VALUE"]},"error":{"code":"ok"}}`)
		}))

		info, err := client.QueryCreatorInfo(context.Background(), Credential{AccessToken: "tok"})
		assert.NoError(t, err)
		assert.Equal(t, []PrivacyLevel{PrivacySelfOnly}, info.PrivacyLevels)
	})

	t.Run("missing privacy options is a parse error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"data":{"creator_nickname":"x"},"error":{"code":"ok"}}`)
		}))

		_, err := client.QueryCreatorInfo(context.Background(), Credential{AccessToken: "tok"})
		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("remote error code is preserved", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"data":{},"error":{"code":"access_token_invalid","message":"The access token is invalid","log_id":"log789"}}`)
		}))

		_, err := client.QueryCreatorInfo(context.Background(), Credential{AccessToken: "bad"})
		var sessionErr *SessionError
		assert.ErrorAs(t, err, &sessionErr)
		assert.Equal(t, "access_token_invalid", sessionErr.Code)
		assert.Equal(t, "log789", sessionErr.LogID)
	})
}

func TestAllowsPrivacy(t *testing.T) {
	info := &CreatorInfo{PrivacyLevels: []PrivacyLevel{PrivacySelfOnly, PrivacyFollowers}}
	assert.True(t, info.AllowsPrivacy(PrivacySelfOnly))
	assert.True(t, info.AllowsPrivacy(PrivacyFollowers))
	assert.False(t, info.AllowsPrivacy(PrivacyPublic))
}
