package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/consts"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/entity"
)

// OpenAI calls an OpenAI-compatible speech-to-text endpoint. verbose_json is
// requested so segment timings come back with the text.
type OpenAI struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	return &OpenAI{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		// transcriptions of long recordings run for a while
		client: &http.Client{Timeout: 60 * time.Minute},
	}
}

type verboseJSONResp struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (o *OpenAI) Transcribe(ctx context.Context, audioPath string, opts Options) (*entity.EngineResult, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", o.model); err != nil {
		return nil, err
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}
	if opts.Language != "" {
		if err := mw.WriteField("language", opts.Language); err != nil {
			return nil, err
		}
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	// translations is a separate endpoint in the OpenAI API
	endpoint := o.baseURL + "/audio/transcriptions"
	if opts.Task == consts.TaskTranslate {
		endpoint = o.baseURL + "/audio/translations"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcription API http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var parsed verboseJSONResp
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse transcription API response: %w", err)
	}

	result := &entity.EngineResult{Text: parsed.Text, Language: parsed.Language}
	for _, s := range parsed.Segments {
		result.Segments = append(result.Segments, entity.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return result, nil
}
