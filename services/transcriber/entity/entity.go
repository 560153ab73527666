package entity

import "io"

// Segment is one time-bounded span of transcribed speech. Segments keep the
// engine's emission order; they are never re-sorted.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptionResult is the normalized output of one job. Duration is
// derived from the last segment's end, not reported by the engine.
type TranscriptionResult struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
	Duration float64   `json:"duration"`
}

// EngineResult is the raw engine output before normalization.
type EngineResult struct {
	Text     string
	Language string
	Segments []Segment
}

type TranscribeRequest struct {
	Filename string
	File     io.Reader
	Language string // language code, or "auto"/"" for detection
	Task     string // "transcribe" or "translate"; empty defaults to transcribe
}

type TranscribeResponse struct {
	Success       bool                 `json:"success"`
	Transcription *TranscriptionResult `json:"transcription"`
	Files         ArtifactSet          `json:"files"`
}

// ArtifactSet names the three files written for a successful job.
type ArtifactSet struct {
	Document  string `json:"document"`
	Subtitles string `json:"subtitles"`
	JSON      string `json:"json"`
}
