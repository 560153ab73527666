package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Gowthamnitro5/video-transcriber/pkg/gen"
	"github.com/Gowthamnitro5/video-transcriber/pkg/logger"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/artifact"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/consts"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/engine"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/entity"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/intake"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/media"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/storage"
)

// Client faults: the request itself is bad, nothing has been persisted yet.
var (
	ErrNoFile          = errors.New("no file provided")
	ErrEmptyFilename   = errors.New("no file selected")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Server faults surfaced after the upload is already on disk. The upload is
// retained either way.
var (
	ErrExtraction = errors.New("audio extraction failed")
	ErrEngine     = errors.New("transcription failed")
)

type Usecase interface {
	Transcribe(ctx context.Context, req *entity.TranscribeRequest) (*entity.TranscribeResponse, error)
	Fetch(ctx context.Context, name string) (string, error)
	Languages() map[string]string
}

type usecase struct {
	storage   storage.Storage
	engine    engine.Engine
	extractor media.Extractor
	jobIDs    gen.JobIDGenerator
	scratch   string

	// the engine is one shared instance and not assumed reentrant
	engineMu sync.Mutex
}

func New(stg storage.Storage, eng engine.Engine, ext media.Extractor, jobIDs gen.JobIDGenerator, scratchDir string) Usecase {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	return &usecase{
		storage:   stg,
		engine:    eng,
		extractor: ext,
		jobIDs:    jobIDs,
		scratch:   scratchDir,
	}
}

func (u *usecase) Transcribe(ctx context.Context, req *entity.TranscribeRequest) (*entity.TranscribeResponse, error) {
	if req == nil || req.File == nil {
		return nil, ErrNoFile
	}
	if req.Filename == "" {
		return nil, ErrEmptyFilename
	}
	if !intake.Allowed(req.Filename) {
		return nil, ErrUnsupportedType
	}

	filename := intake.Sanitize(req.Filename)
	jobID := u.jobIDs.Next()
	log := logger.FromContext(ctx).With("job_id", jobID, "filename", filename)

	uploadName := jobID + "_" + filename
	if err := u.storage.SaveUpload(ctx, uploadName, req.File); err != nil {
		return nil, fmt.Errorf("persist upload: %w", err)
	}
	uploadPath, err := u.storage.Resolve(uploadName)
	if err != nil {
		return nil, fmt.Errorf("resolve upload: %w", err)
	}

	inputPath := uploadPath
	var transientAudio string
	if intake.IsVideo(filename) {
		transientAudio = filepath.Join(u.scratch, jobID+"_audio.wav")
		// the transient WAV must not outlive the job on any exit path
		defer func() {
			if transientAudio != "" {
				os.Remove(transientAudio)
			}
		}()

		log.Info("extracting audio track", "audio_path", transientAudio)
		if err := u.extractor.Extract(ctx, uploadPath, transientAudio); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
		}
		inputPath = transientAudio
	}

	opts := engine.Options{Task: req.Task}
	if opts.Task == "" {
		opts.Task = consts.TaskTranscribe
	}
	if req.Language != "" && req.Language != consts.LanguageAuto {
		opts.Language = req.Language
	}

	log.Info("transcription started", "task", opts.Task, "language", req.Language)
	started := time.Now()

	u.engineMu.Lock()
	raw, err := u.engine.Transcribe(ctx, inputPath, opts)
	u.engineMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngine, err)
	}

	// drop the extracted audio before artifact generation; the deferred
	// remove above stays as the failure-path backstop
	if transientAudio != "" {
		os.Remove(transientAudio)
		transientAudio = ""
	}

	result := normalize(raw)
	log.Info("transcription finished",
		"language", result.Language,
		"segments", len(result.Segments),
		"duration_sec", result.Duration,
		"elapsed", time.Since(started))

	data, err := artifact.MarshalResult(result)
	if err != nil {
		return nil, err
	}

	files := entity.ArtifactSet{
		Document:  jobID + consts.DocumentSuffix,
		Subtitles: jobID + consts.SubtitlesSuffix,
		JSON:      jobID + consts.DataSuffix,
	}
	report := artifact.GenerateReport(result, filename, time.Now())
	if err := u.storage.SaveArtifact(ctx, files.Document, []byte(report)); err != nil {
		return nil, err
	}
	if err := u.storage.SaveArtifact(ctx, files.Subtitles, []byte(artifact.GenerateSRT(result.Segments))); err != nil {
		return nil, err
	}
	if err := u.storage.SaveArtifact(ctx, files.JSON, data); err != nil {
		return nil, err
	}

	return &entity.TranscribeResponse{
		Success:       true,
		Transcription: result,
		Files:         files,
	}, nil
}

func (u *usecase) Fetch(ctx context.Context, name string) (string, error) {
	return u.storage.Resolve(name)
}

func (u *usecase) Languages() map[string]string {
	return consts.SupportedLanguages
}

// normalize shapes the raw engine output: segment text is trimmed, the
// language falls back to "unknown" and the duration is derived from the last
// segment's end.
func normalize(raw *entity.EngineResult) *entity.TranscriptionResult {
	segments := make([]entity.Segment, 0, len(raw.Segments))
	for _, s := range raw.Segments {
		segments = append(segments, entity.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}

	language := raw.Language
	if language == "" {
		language = consts.LanguageUnknown
	}

	var duration float64
	if len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	return &entity.TranscriptionResult{
		Text:     raw.Text,
		Language: language,
		Segments: segments,
		Duration: duration,
	}
}
