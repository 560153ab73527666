package engine

import (
	"context"

	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/entity"
)

// Options carries the per-job knobs forwarded to the engine. An empty
// Language means the engine detects the language itself; Task values beyond
// transcribe/translate are passed through uninterpreted.
type Options struct {
	Task     string
	Language string
}

// Engine converts an audio file into timestamped text. Implementations are
// long-running blocking calls with no cancellation beyond ctx; callers
// serialize access when the backend is not reentrant.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (*entity.EngineResult, error)
}
