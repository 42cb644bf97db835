package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testBuckets = Buckets{
	Image:    "image-uploads",
	Video:    "video-uploads",
	Document: "text-uploads",
}

func TestClassify(t *testing.T) {
	t.Parallel()
	c := New(testBuckets)

	tests := []struct {
		name     string
		filename string
		mime     string
		wantExt  string
		wantCat  Category
		wantBkt  string
	}{
		{"jpeg by extension", "photo.jpg", "", "jpg", CategoryImage, "image-uploads"},
		{"png by mime only", "", "image/png", "png", CategoryImage, "image-uploads"},
		{"video by extension", "clip.MP4", "", "mp4", CategoryVideo, "video-uploads"},
		{"quicktime by mime", "", "video/quicktime", "mov", CategoryVideo, "video-uploads"},
		{"pdf document", "report.pdf", "application/pdf", "pdf", CategoryDocument, "text-uploads"},
		{"docx by mime", "", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "docx", CategoryDocument, "text-uploads"},
		{"csv", "data.csv", "text/csv", "csv", CategoryDocument, "text-uploads"},
		{"mime with parameters", "notes.txt", "text/plain; charset=utf-8", "txt", CategoryDocument, "text-uploads"},
		{"uppercase mime with parameters", "", "Image/PNG; some=param", "png", CategoryImage, "image-uploads"},
		{"unknown everything falls back to document", "mystery.xyz", "application/x-whatever", "xyz", CategoryDocument, "text-uploads"},
		{"no filename no mime", "", "", "", CategoryDocument, "text-uploads"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, cat, bucket := c.Classify(tt.filename, tt.mime)
			assert.Equal(t, tt.wantExt, ext)
			assert.Equal(t, tt.wantCat, cat)
			assert.Equal(t, tt.wantBkt, bucket)
		})
	}
}

// A filename extension outranks a contradicting mime type.
func TestClassify_ExtensionBeatsMime(t *testing.T) {
	t.Parallel()
	c := New(testBuckets)
	_, cat, bucket := c.Classify("photo.jpg", "video/mp4")
	assert.Equal(t, CategoryImage, cat)
	assert.Equal(t, "image-uploads", bucket)
}

func TestExtension(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "jpg", Extension("a.b.JPG", ""))
	assert.Equal(t, "", Extension("noext", ""))
	assert.Equal(t, "", Extension("trailingdot.", ""))
	assert.Equal(t, "pdf", Extension("", "application/pdf"))
	assert.Equal(t, "", Extension("", "application/x-unknown"))
}

// The mime-derived extension comes from a fixed table, not the host mime
// db, so image/jpeg never becomes jpe.
func TestExtension_DeterministicFromMime(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "jpg", Extension("", "image/jpeg"))
	assert.Equal(t, "jpg", Extension("", "IMAGE/JPEG; q=0.8"))
	assert.Equal(t, "mov", Extension("", "video/quicktime"))
	assert.Equal(t, "docx", Extension("", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
}

func TestNormalizeMime(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "text/plain", normalizeMime(" Text/Plain; charset=utf-8 "))
	assert.Equal(t, "image/jpeg", normalizeMime("image/jpeg"))
	assert.Equal(t, "", normalizeMime(""))
	assert.Equal(t, "", normalizeMime("   "))
}

func TestMakeKey(t *testing.T) {
	t.Parallel()

	key := MakeKey("user-1", "sess-1", "My Photo (1).jpg")
	assert.True(t, strings.HasPrefix(key, "user-1_"), "user id owns the key: %s", key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), "extension preserved: %s", key)
	assert.NotContains(t, key, " ")
	assert.NotContains(t, key, "(")

	sessionKey := MakeKey("", "sess-1", "clip.mp4")
	assert.True(t, strings.HasPrefix(sessionKey, "sess-1_"), "session id used when no user: %s", sessionKey)

	anonymous := MakeKey("", "", "clip.mp4")
	assert.True(t, strings.HasPrefix(anonymous, "unknown_"), "anonymous fallback: %s", anonymous)

	noExt := MakeKey("u", "", "README")
	assert.True(t, strings.HasSuffix(noExt, ".bin"), "missing extension defaults to bin: %s", noExt)
}

func TestMakeKey_Unique(t *testing.T) {
	t.Parallel()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		key := MakeKey("u", "", "same.jpg")
		if seen[key] {
			t.Fatalf("duplicate key produced: %s", key)
		}
		seen[key] = true
	}
}

func TestMakeKey_LongNameTruncated(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("a", 300) + ".pdf"
	key := MakeKey("u", "", long)
	base := strings.TrimSuffix(strings.SplitN(key, "_", 4)[3], ".pdf")
	assert.LessOrEqual(t, len(base), 50)
}

func TestTempSessionID(t *testing.T) {
	t.Parallel()
	id := TempSessionID()
	assert.True(t, strings.HasPrefix(id, "temp_"))
	assert.Len(t, id, len("temp_")+16)
	assert.NotEqual(t, id, TempSessionID())
}
