// Package classify resolves inbound media metadata to a content category,
// a destination bucket, and a collision-free storage key.
package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category determines the destination bucket and which detector runs.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryDocument Category = "document"
)

// Buckets maps content categories to destination bucket names.
type Buckets struct {
	Image    string
	Video    string
	Document string
}

type mapping struct {
	category   Category
	extensions []string
	mimeTypes  []string
}

// Resolution order matters: image and video are checked before the
// document catch-all.
var mappings = []mapping{
	{
		category:   CategoryImage,
		extensions: []string{"jpg", "jpeg", "png", "gif", "webp", "heic"},
		mimeTypes:  []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/heic"},
	},
	{
		category:   CategoryVideo,
		extensions: []string{"mp4", "mov", "avi", "mkv", "webm"},
		mimeTypes:  []string{"video/mp4", "video/quicktime", "video/x-msvideo", "video/x-matroska", "video/webm"},
	},
	{
		category:   CategoryDocument,
		extensions: []string{"pdf", "doc", "docx", "txt", "csv"},
		mimeTypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"text/plain",
			"text/csv",
		},
	},
}

// Classifier resolves file metadata against the configured buckets.
type Classifier struct {
	buckets Buckets
}

// New creates a Classifier writing to the given buckets.
func New(buckets Buckets) *Classifier {
	return &Classifier{buckets: buckets}
}

// Classify resolves (filename, mime) to an extension, a category, and a
// destination bucket. Extension match takes priority over mime match, and
// anything unmatched falls back to the document category; classification
// never rejects an upload.
func (c *Classifier) Classify(filename, mimeType string) (string, Category, string) {
	ext := Extension(filename, mimeType)

	if ext != "" {
		for _, m := range mappings {
			for _, known := range m.extensions {
				if ext == known {
					return ext, m.category, c.BucketFor(m.category)
				}
			}
		}
	}

	normalized := normalizeMime(mimeType)
	if normalized != "" {
		for _, m := range mappings {
			for _, known := range m.mimeTypes {
				if normalized == known {
					return ext, m.category, c.BucketFor(m.category)
				}
			}
		}
	}

	return ext, CategoryDocument, c.buckets.Document
}

// BucketFor returns the destination bucket for a category.
func (c *Classifier) BucketFor(cat Category) string {
	switch cat {
	case CategoryImage:
		return c.buckets.Image
	case CategoryVideo:
		return c.buckets.Video
	default:
		return c.buckets.Document
	}
}

// Fixed mime→extension table so file_extension stays deterministic across
// platforms (the host mime db orders image/jpeg as jpe on some systems).
var mimeExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"image/webp":      "webp",
	"image/heic":      "heic",
	"video/mp4":       "mp4",
	"video/quicktime": "mov",
	"video/x-msvideo": "avi",
	"video/x-matroska": "mkv",
	"video/webm":      "webm",
	"application/pdf": "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"text/plain": "txt",
	"text/csv":   "csv",
}

// Extension returns the lowercase extension from the filename suffix, or
// derives one from the mime type when the filename carries none.
func Extension(filename, mimeType string) string {
	if idx := strings.LastIndex(filename, "."); idx >= 0 && idx < len(filename)-1 {
		return strings.ToLower(filename[idx+1:])
	}
	return mimeExtensions[normalizeMime(mimeType)]
}

// normalizeMime lowercases a mime type and strips any ;-parameter suffix,
// so "Text/Plain; charset=utf-8" matches "text/plain".
func normalizeMime(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return mimeType
}

// MakeKey builds a storage key from the owner (user id, else session id),
// a unix timestamp, a short random component, and a sanitized base name.
// Two calls with identical inputs produce distinct keys; collisions are
// handled by upload overwrite semantics, not by checking the store.
func MakeKey(userID, sessionID, originalFilename string) string {
	identifier := userID
	if identifier == "" {
		identifier = sessionID
	}
	if identifier == "" {
		identifier = "unknown"
	}

	ext := Extension(originalFilename, "")
	if ext == "" {
		ext = "bin"
	}

	base := originalFilename
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		base = base[:idx]
	}
	base = sanitize(base)
	if base == "" {
		base = "file"
	}

	randomID := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%d_%s_%s.%s", identifier, time.Now().Unix(), randomID, base, ext)
}

// TempSessionID synthesizes an identifier for anonymous callers.
func TempSessionID() string {
	return "temp_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
		if b.Len() >= 50 {
			break
		}
	}
	return b.String()
}
