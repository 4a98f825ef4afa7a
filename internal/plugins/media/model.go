// Package media stores the images attached to diary entries: generated
// sketches and sketches imported from browser exports. Files live on disk
// under a year/month directory with a 300px thumbnail beside them; a row in
// media_files records ownership and type.
package media

import (
	"time"
)

// Sources of a stored image.
const (
	SourceSketch = "sketch"
	SourceImport = "import"
)

// ThumbnailSize is the longest edge of a generated thumbnail.
const ThumbnailSize = 300

// MediaFile is one stored image.
type MediaFile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Filename  string    `json:"-"` // relative to the media root, e.g. 2024/01/<id>.jpg
	Thumbnail string    `json:"-"` // relative path, empty when the original is small enough
	MimeType  string    `json:"mime_type"`
	FileSize  int64     `json:"file_size"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// URL is where the owner fetches the full image.
func (f *MediaFile) URL() string { return "/media/" + f.ID }

// ThumbURL is where the owner fetches the thumbnail.
func (f *MediaFile) ThumbURL() string { return "/media/" + f.ID + "/thumb" }

// StoreInput is an image to persist for a user.
type StoreInput struct {
	UserID string
	Data   []byte
	Source string
}

// mimeExtensions lists the accepted image types.
var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DetectMIME identifies an image by its magic bytes. Providers and old
// exports are not trusted to label their images correctly.
func DetectMIME(data []byte) (string, bool) {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "image/jpeg", true
	case len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n":
		return "image/png", true
	case len(data) >= 6 && (string(data[:6]) == "GIF87a" || string(data[:6]) == "GIF89a"):
		return "image/gif", true
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp", true
	}
	return "", false
}
