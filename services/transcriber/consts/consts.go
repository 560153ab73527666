package consts

const (
	// Task modes understood by the engine.
	TaskTranscribe = "transcribe"
	TaskTranslate  = "translate"

	// Language sentinels.
	LanguageAuto    = "auto"
	LanguageUnknown = "unknown"

	// Default upload size ceiling.
	MaxUploadBytes = 500 * 1024 * 1024 // 500MB

	// Artifact name suffixes, appended to the job identity.
	DocumentSuffix  = "_transcription.txt"
	SubtitlesSuffix = "_subtitles.srt"
	DataSuffix      = "_data.json"

	// Extracted audio parameters fed to ffmpeg.
	SampleRate = 16000
	Channels   = 1
)

// AllowedExtensions is the upload allow-list, lowercased.
var AllowedExtensions = map[string]bool{
	"mp4":  true,
	"avi":  true,
	"mov":  true,
	"mkv":  true,
	"webm": true,
	"mp3":  true,
	"wav":  true,
	"m4a":  true,
	"ogg":  true,
	"flac": true,
}

// VideoExtensions marks the allowed extensions that need audio extraction
// before transcription.
var VideoExtensions = map[string]bool{
	"mp4":  true,
	"avi":  true,
	"mov":  true,
	"mkv":  true,
	"webm": true,
}
