package tiktok

import (
	"path/filepath"
	"strings"
)

// MediaSource is the one-of describing where the bytes of a post come from.
type MediaSource interface {
	source() string
}

// FileSource is a video on local disk, uploaded by this process.
type FileSource struct {
	Path     string
	Size     int64
	MimeType string
}

// URLSource is a video TikTok pulls from a publicly reachable URL.
type URLSource struct {
	URL string
}

// PhotoSource is a photo carousel TikTok pulls from public URLs.
type PhotoSource struct {
	URLs       []string
	CoverIndex int
}

func (FileSource) source() string  { return "FILE_UPLOAD" }
func (URLSource) source() string   { return "PULL_FROM_URL" }
func (PhotoSource) source() string { return "PULL_FROM_URL" }

/*
PostRequest describes one post to publish. The caller owns it; the only code
path that writes to it after submission is PublishCoercing, which rewrites
privacy and the disable flags to whatever the creator's capabilities allow.
*/
type PostRequest struct {
	Title                 string
	Description           string
	PrivacyLevel          PrivacyLevel
	DisableComment        bool
	DisableDuet           bool
	DisableStitch         bool
	VideoCoverTimestampMS int
	BrandContentToggle    bool
	BrandOrganicToggle    bool
	IsAIGC                bool

	Source MediaSource
}

type postInfo struct {
	Title                 string `json:"title"`
	Description           string `json:"description,omitempty"`
	PrivacyLevel          string `json:"privacy_level"`
	DisableComment        bool   `json:"disable_comment"`
	DisableDuet           bool   `json:"disable_duet"`
	DisableStitch         bool   `json:"disable_stitch"`
	VideoCoverTimestampMs int    `json:"video_cover_timestamp_ms,omitempty"`
	BrandContentToggle    bool   `json:"brand_content_toggle"`
	BrandOrganicToggle    bool   `json:"brand_organic_toggle"`
	IsAIGC                bool   `json:"is_aigc"`
}

type sourceInfo struct {
	Source          string   `json:"source"`
	VideoSize       int64    `json:"video_size,omitempty"`
	ChunkSize       int64    `json:"chunk_size,omitempty"`
	TotalChunkCount int      `json:"total_chunk_count,omitempty"`
	VideoURL        string   `json:"video_url,omitempty"`
	PhotoCoverIndex int      `json:"photo_cover_index,omitempty"`
	PhotoImages     []string `json:"photo_images,omitempty"`
}

type videoInitRequest struct {
	PostInfo   postInfo   `json:"post_info"`
	SourceInfo sourceInfo `json:"source_info"`
}

type contentInitRequest struct {
	PostInfo   postInfo   `json:"post_info"`
	SourceInfo sourceInfo `json:"source_info"`
	PostMode   string     `json:"post_mode"`
	MediaType  string     `json:"media_type"`
}

func (r *PostRequest) postInfo() postInfo {
	return postInfo{
		Title:                 r.Title,
		Description:           r.Description,
		PrivacyLevel:          string(r.PrivacyLevel),
		DisableComment:        r.DisableComment,
		DisableDuet:           r.DisableDuet,
		DisableStitch:         r.DisableStitch,
		VideoCoverTimestampMs: r.VideoCoverTimestampMS,
		BrandContentToggle:    r.BrandContentToggle,
		BrandOrganicToggle:    r.BrandOrganicToggle,
		IsAIGC:                r.IsAIGC,
	}
}

// DetectMimeType guesses a video file's media type from its extension,
// falling back to video/mp4 since that's what TikTok almost always gets.
func DetectMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	default:
		return "video/mp4"
	}
}
