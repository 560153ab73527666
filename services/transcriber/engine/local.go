package engine

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/entity"
)

//go:embed assets/whisper_local.py
var localScript []byte

// Local runs openai-whisper on this machine through a small Python helper
// that prints the result as JSON on stdout.
type Local struct {
	python  string
	model   string
	device  string // auto|cpu|cuda
	scratch string
}

func NewLocal(python, model, device, scratchDir string) *Local {
	if python == "" {
		python = "python3"
	}
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	return &Local{python: python, model: model, device: device, scratch: scratchDir}
}

type localOut struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (l *Local) Transcribe(ctx context.Context, audioPath string, opts Options) (*entity.EngineResult, error) {
	scriptPath := filepath.Join(l.scratch, "whisper_local.py")
	if err := os.WriteFile(scriptPath, localScript, 0o755); err != nil {
		return nil, fmt.Errorf("write helper script: %w", err)
	}
	defer os.Remove(scriptPath)

	args := []string{scriptPath,
		"--audio", audioPath,
		"--model", l.model,
		"--device", l.device,
		"--task", opts.Task,
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}

	cmd := exec.CommandContext(ctx, l.python, args...)
	cmd.Env = os.Environ()
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("whisper helper failed: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("run whisper helper: %w", err)
	}

	var parsed localOut
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse whisper helper output: %w", err)
	}

	result := &entity.EngineResult{Text: parsed.Text, Language: parsed.Language}
	for _, s := range parsed.Segments {
		result.Segments = append(result.Segments, entity.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return result, nil
}
