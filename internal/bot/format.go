package bot

import (
	"fmt"
	"strings"

	"github.com/deepsift/deepsift/internal/classify"
	"github.com/deepsift/deepsift/internal/detector"
	"github.com/deepsift/deepsift/internal/extract"
)

const (
	errorTruncateLen = 200
	previewLen       = 120
)

func categoryIcon(cat classify.Category) string {
	switch cat {
	case classify.CategoryImage:
		return "🖼"
	case classify.CategoryVideo:
		return "🎥"
	default:
		return "📄"
	}
}

func formatVideoReply(result detector.VideoResult) string {
	var b strings.Builder
	b.WriteString("🎥 *Video Analysis Complete!*\n\n")
	b.WriteString(verdictHeadline(result.Verdict))
	fmt.Fprintf(&b, "📊 Confidence: %s\n\n", percent(result.Confidence))
	if len(result.Layers) > 0 {
		b.WriteString("*Layer breakdown:*\n")
		for _, layer := range result.Layers {
			fmt.Fprintf(&b, "• %s: %s (%s, %.1fs)\n",
				layer.Name, strings.ToUpper(layer.Verdict), percent(layer.Confidence), layer.ElapsedSeconds)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "⏱ Total analysis time: %.1fs", result.TotalSeconds)
	return b.String()
}

func formatImageReply(result detector.ImageResult) string {
	var b strings.Builder
	b.WriteString("🖼 *Image Analysis Complete!*\n\n")
	if result.AIGenerated {
		b.WriteString("🚨 *Verdict: AI-GENERATED*\n")
	} else {
		b.WriteString("✅ *Verdict: REAL*\n")
	}
	fmt.Fprintf(&b, "📊 Confidence: %s\n", percent(result.Confidence))
	fmt.Fprintf(&b, "🏷 Classification: %s", result.Label)
	return b.String()
}

func formatDocumentReply(result detector.TextResult, meta extract.Metadata, text string) string {
	var b strings.Builder
	b.WriteString("📄 *Document Analysis Complete!*\n\n")
	switch result.Prediction {
	case "AI":
		b.WriteString("🚨 *Verdict: AI-GENERATED*\n")
	case "Human":
		b.WriteString("✅ *Verdict: HUMAN-WRITTEN*\n")
	default:
		b.WriteString("❓ *Verdict: UNCERTAIN*\n")
	}
	fmt.Fprintf(&b, "📊 Confidence: %s\n", percent(result.Confidence))
	if result.Agreement != "" {
		fmt.Fprintf(&b, "🤝 Ensemble agreement: %s\n", result.Agreement)
	}
	fmt.Fprintf(&b, "🔍 Extraction: %s (%d words)\n", meta.Method, meta.WordCount)
	if preview := previewOf(text); preview != "" {
		fmt.Fprintf(&b, "\n_%s_", preview)
	}
	return b.String()
}

func formatTextReply(result detector.TextResult) string {
	var b strings.Builder
	b.WriteString("📝 *Text Analysis Complete!*\n\n")
	switch result.Prediction {
	case "AI":
		b.WriteString("🚨 *Verdict: AI-GENERATED*\n")
	case "Human":
		b.WriteString("✅ *Verdict: HUMAN-WRITTEN*\n")
	default:
		b.WriteString("❓ *Verdict: UNCERTAIN*\n")
	}
	fmt.Fprintf(&b, "📊 Confidence: %s", percent(result.Confidence))
	if result.Agreement != "" {
		fmt.Fprintf(&b, "\n🤝 Ensemble agreement: %s", result.Agreement)
	}
	return b.String()
}

// formatDetectionFailure reports a detector failure while still confirming
// the upload that preceded it.
func formatDetectionFailure(cat classify.Category, err error) string {
	return fmt.Sprintf("%s Your file was uploaded successfully, but analysis failed: %s\n\nPlease try again later.",
		categoryIcon(cat), truncateError(err))
}

// formatExtractionInvalid explains why a document produced no verdict.
// Extraction itself succeeded; the text failed validation.
func formatExtractionInvalid(reason error) string {
	return fmt.Sprintf("📄 Your document was uploaded and its text extracted, but no verdict is available: %s", truncateError(reason))
}

func formatExtractionFailure(err error) string {
	return fmt.Sprintf("📄 Your document was uploaded, but text extraction failed: %s\n\nNo verdict is available.", truncateError(err))
}

func verdictHeadline(v detector.Verdict) string {
	switch v {
	case detector.VerdictFake:
		return "🚨 *Verdict: FAKE*\n"
	case detector.VerdictReal:
		return "✅ *Verdict: REAL*\n"
	default:
		return "❓ *Verdict: UNCERTAIN*\n"
	}
}

func percent(confidence float64) string {
	return fmt.Sprintf("%d%%", int(confidence*100+0.5))
}

func previewOf(text string) string {
	trimmed := strings.Join(strings.Fields(text), " ")
	runes := []rune(trimmed)
	if len(runes) <= previewLen {
		return trimmed
	}
	return string(runes[:previewLen]) + "…"
}

func truncateError(err error) string {
	msg := err.Error()
	runes := []rune(msg)
	if len(runes) <= errorTruncateLen {
		return msg
	}
	return string(runes[:errorTruncateLen]) + "…"
}
