package tiktok

import (
	"fmt"
	"strings"
)

type PrivacyLevel string

const (
	PrivacyPublic        PrivacyLevel = "PUBLIC_TO_EVERYONE"
	PrivacyMutualFriends PrivacyLevel = "MUTUAL_FOLLOW_FRIENDS"
	PrivacyFollowers     PrivacyLevel = "FOLLOWER_OF_CREATOR"
	PrivacySelfOnly      PrivacyLevel = "SELF_ONLY"
)

func ParsePrivacyLevel(s string) (PrivacyLevel, error) {
	switch strings.ToUpper(s) {
	case string(PrivacyPublic):
		return PrivacyPublic, nil
	case string(PrivacyMutualFriends):
		return PrivacyMutualFriends, nil
	case string(PrivacyFollowers):
		return PrivacyFollowers, nil
	case string(PrivacySelfOnly):
		return PrivacySelfOnly, nil
	default:
		return PrivacySelfOnly, fmt.Errorf("unknown privacy level: %s", s)
	}
}
