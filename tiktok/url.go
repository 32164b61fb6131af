package tiktok

import (
	"errors"
	"fmt"
	"regexp"
)

func ConstructPostURL(username string, postID string) string {
	return fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", username, postID)
}

// Takes in a URL and extracts the username and post ID if it's a TikTok
// video URL. Return value order is username followed by post ID, followed
// by error.
func DeconstructPostURL(postURL string) (string, string, error) {
	r := regexp.MustCompile(`^https?://(?:www\.)?tiktok\.com/@(?P<Username>[\w.]+)/video/(?P<PostID>\d+)`)
	if r.MatchString(postURL) {
		matches := r.FindStringSubmatch(postURL)
		return matches[1], matches[2], nil
	}
	return "", "", errors.New("not a TikTok video URL")
}
