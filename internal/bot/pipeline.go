package bot

import (
	"context"
	"log/slog"

	"github.com/deepsift/deepsift/internal/classify"
	"github.com/deepsift/deepsift/internal/detector"
	"github.com/deepsift/deepsift/internal/extract"
	"github.com/deepsift/deepsift/internal/history"
	"github.com/deepsift/deepsift/internal/whatsapp"
)

// Collaborator interfaces consumed by the pipeline. The concrete types
// live in their own packages; the pipeline only needs these slices.
type (
	// MediaDownloader fetches inbound media bytes from the messaging API.
	MediaDownloader interface {
		DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, map[string]any, error)
	}
	// Uploader stores bytes and returns a public URL.
	Uploader interface {
		Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
	}
	// VideoDetector analyzes a video by public URL.
	VideoDetector interface {
		Detect(ctx context.Context, videoURL string) (detector.VideoResult, error)
	}
	// ImageDetector analyzes raw image bytes.
	ImageDetector interface {
		Detect(ctx context.Context, data []byte, mimeType string) (detector.ImageResult, error)
	}
	// TextDetector scores a text sample.
	TextDetector interface {
		Detect(ctx context.Context, text string) (detector.TextResult, error)
	}
)

// Pipeline runs media intake end to end: download, classify, upload,
// persist, detect, update, format. It never returns an error; every
// outcome is a user-facing reply.
type Pipeline struct {
	downloader MediaDownloader
	uploader   Uploader
	records    history.Writer
	classifier *classify.Classifier
	video      VideoDetector
	image      ImageDetector
	text       TextDetector
	logger     *slog.Logger
}

// NewPipeline creates an intake pipeline.
func NewPipeline(log *slog.Logger, downloader MediaDownloader, uploader Uploader, records history.Writer, classifier *classify.Classifier, video VideoDetector, image ImageDetector, text TextDetector) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		downloader: downloader,
		uploader:   uploader,
		records:    records,
		classifier: classifier,
		video:      video,
		image:      image,
		text:       text,
		logger:     log.With(slog.String("service", "intake")),
	}
}

// Run processes one accepted media message synchronously and returns the
// reply to send. The caller resolves category when it accepts the media;
// Run trusts it for bucket choice and detector dispatch so acceptance and
// dispatch can never disagree. recordCreated reports whether a Detection
// Record exists; the caller resets conversation mode only when it does.
func (p *Pipeline) Run(ctx context.Context, from string, media *whatsapp.Media, category classify.Category) (reply string, recordCreated bool) {
	data, detectedMime, _, err := p.downloader.DownloadMedia(ctx, media.ID)
	if err != nil {
		p.logger.Error("media download failed", slog.String("media_id", media.ID), slog.Any("error", err))
		return "❌ Download failed: I couldn't fetch your file from WhatsApp. Please try sending it again.", false
	}
	mimeType := detectedMime
	if mimeType == "" {
		mimeType = media.MimeType
	}

	ext := classify.Extension(media.Filename, mimeType)
	bucket := p.classifier.BucketFor(category)

	key := classify.MakeKey("", from, media.Filename)
	fileURL, err := p.uploader.Upload(ctx, bucket, key, data, mimeType)
	if err != nil {
		p.logger.Error("upload failed",
			slog.String("bucket", bucket),
			slog.String("key", key),
			slog.Any("error", err))
		return "❌ Upload failed: I couldn't store your file. Please try again.", false
	}

	record, err := p.records.Insert(ctx, history.InsertInput{
		SessionID:     from,
		FileURL:       fileURL,
		Filename:      key,
		FileType:      string(category),
		FileSize:      int64(len(data)),
		FileExtension: ext,
	})
	if err != nil {
		// The uploaded asset is retained; an orphan is tolerable here.
		p.logger.Error("persist detection record failed", slog.Any("error", err))
		return "❌ Metadata failed: your file was uploaded but I couldn't record it. Please try again.", false
	}

	switch category {
	case classify.CategoryVideo:
		return p.detectVideo(ctx, record, fileURL), true
	case classify.CategoryImage:
		return p.detectImage(ctx, record, data, mimeType), true
	default:
		return p.detectDocument(ctx, record, data, media.Filename, mimeType), true
	}
}

func (p *Pipeline) detectVideo(ctx context.Context, record history.Record, fileURL string) string {
	result, err := p.video.Detect(ctx, fileURL)
	if err != nil {
		p.failRecord(ctx, record.ID, err)
		return formatDetectionFailure(classify.CategoryVideo, err)
	}
	status := statusFor(result.Verdict)
	p.updateRecord(ctx, record.ID, status, toPercent(result.Confidence), map[string]any{
		"verdict":       string(result.Verdict),
		"layers":        result.Layers,
		"total_seconds": result.TotalSeconds,
	})
	return formatVideoReply(result)
}

func (p *Pipeline) detectImage(ctx context.Context, record history.Record, data []byte, mimeType string) string {
	result, err := p.image.Detect(ctx, data, mimeType)
	if err != nil {
		p.failRecord(ctx, record.ID, err)
		return formatDetectionFailure(classify.CategoryImage, err)
	}
	status := history.StatusReal
	if result.AIGenerated {
		status = history.StatusFake
	}
	p.updateRecord(ctx, record.ID, status, toPercent(result.Confidence), map[string]any{
		"label":        result.Label,
		"ai_generated": result.AIGenerated,
	})
	return formatImageReply(result)
}

func (p *Pipeline) detectDocument(ctx context.Context, record history.Record, data []byte, filename, mimeType string) string {
	text, meta, err := extract.Extract(data, filename, mimeType)
	if err != nil {
		p.failRecord(ctx, record.ID, err)
		return formatExtractionFailure(err)
	}
	if err := extract.Validate(text); err != nil {
		p.updateRecord(ctx, record.ID, history.StatusError, 0, map[string]any{
			"error":      err.Error(),
			"extraction": meta,
		})
		return formatExtractionInvalid(err)
	}

	result, err := p.text.Detect(ctx, text)
	if err != nil {
		p.failRecord(ctx, record.ID, err)
		return formatDetectionFailure(classify.CategoryDocument, err)
	}
	status := history.StatusReal
	if result.Prediction == "AI" {
		status = history.StatusFake
	}
	p.updateRecord(ctx, record.ID, status, toPercent(result.Confidence), map[string]any{
		"prediction": result.Prediction,
		"agreement":  result.Agreement,
		"extraction": meta,
	})
	return formatDocumentReply(result, meta, text)
}

// failRecord writes a detection failure into the record. A failure to
// write the failure is logged and swallowed, never escalated.
func (p *Pipeline) failRecord(ctx context.Context, id string, cause error) {
	p.updateRecord(ctx, id, history.StatusError, 0, map[string]any{
		"error": truncateError(cause),
	})
}

func (p *Pipeline) updateRecord(ctx context.Context, id string, status history.Status, confidence int, metadata map[string]any) {
	if err := p.records.UpdateResult(ctx, id, status, confidence, metadata); err != nil {
		p.logger.Warn("update detection record failed",
			slog.String("id", id),
			slog.String("status", string(status)),
			slog.Any("error", err))
	}
}

func statusFor(v detector.Verdict) history.Status {
	if v == detector.VerdictFake {
		return history.StatusFake
	}
	return history.StatusReal
}

func toPercent(confidence float64) int {
	pct := int(confidence*100 + 0.5)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
