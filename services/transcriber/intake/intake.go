package intake

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/consts"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Ext returns the lowercased extension of filename without the leading dot,
// or "" when there is none.
func Ext(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Allowed reports whether the filename carries an extension from the upload
// allow-list. This is the single gate before any processing starts.
func Allowed(filename string) bool {
	ext := Ext(filename)
	return ext != "" && consts.AllowedExtensions[ext]
}

// IsVideo reports whether the filename needs audio extraction before
// transcription.
func IsVideo(filename string) bool {
	return consts.VideoExtensions[Ext(filename)]
}

// Sanitize reduces a client-supplied filename to a safe flat name: path
// components are stripped and anything outside [A-Za-z0-9_.-] collapses to a
// single underscore. Stored names double as retrieval keys, so they must not
// carry separators.
func Sanitize(filename string) string {
	name := strings.ReplaceAll(filename, "\\", "/")
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}
