package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/entity"
)

const banner = "================================================================================"

// FormatTimestamp renders a seconds offset as an SRT clock string,
// HH:MM:SS,mmm. Components are truncated, never rounded.
func FormatTimestamp(seconds float64) string {
	whole := int(seconds)
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	millis := int((seconds - float64(whole)) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// GenerateSRT renders segments as an SRT subtitle track: a 1-based index, the
// start/end pair, the trimmed text and a blank separator per segment. An
// empty segment list yields an empty document.
func GenerateSRT(segments []entity.Segment) string {
	var sb strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatTimestamp(seg.Start),
			FormatTimestamp(seg.End),
			strings.TrimSpace(seg.Text))
	}
	return sb.String()
}

// GenerateReport renders the human-readable transcription report. The
// generation timestamp is taken at call time, injected so tests can pin it.
func GenerateReport(result *entity.TranscriptionResult, filename string, now time.Time) string {
	language := strings.ToUpper(result.Language)
	if language == "" {
		language = "AUTO-DETECTED"
	}

	doc := []string{
		banner,
		"VIDEO TRANSCRIPTION REPORT",
		banner,
		"",
		fmt.Sprintf("Filename: %s", filename),
		fmt.Sprintf("Transcription Date: %s", now.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Language: %s", language),
		"",
		banner,
		"FULL TRANSCRIPTION",
		banner,
		"",
		strings.TrimSpace(result.Text),
		"",
		banner,
		"TIMESTAMPED SEGMENTS",
		banner,
		"",
	}

	for _, seg := range result.Segments {
		doc = append(doc,
			fmt.Sprintf("[%s - %s]", FormatTimestamp(seg.Start), FormatTimestamp(seg.End)),
			strings.TrimSpace(seg.Text),
			"")
	}

	doc = append(doc, banner, "END OF TRANSCRIPTION", banner)

	return strings.Join(doc, "\n")
}

// MarshalResult serializes a result as pretty-printed JSON with non-ASCII
// text kept verbatim. The output is stable: unmarshal followed by marshal
// reproduces the same bytes.
func MarshalResult(result *entity.TranscriptionResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return nil, fmt.Errorf("encode transcription result: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalResult parses a document produced by MarshalResult.
func UnmarshalResult(data []byte) (*entity.TranscriptionResult, error) {
	var result entity.TranscriptionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode transcription result: %w", err)
	}
	return &result, nil
}
