package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Gowthamnitro5/video-transcriber/pkg/gen"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/engine"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/entity"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/storage"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/usecase"
)

type fakeEngine struct {
	result *entity.EngineResult
	err    error
}

func (f *fakeEngine) Transcribe(ctx context.Context, audioPath string, opts engine.Options) (*entity.EngineResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeExtractor struct{}

func (fakeExtractor) Extract(ctx context.Context, src, dst string) error {
	return os.WriteFile(dst, []byte("RIFF fake wav"), 0o644)
}

func newTestServer(t *testing.T, eng engine.Engine, maxUploadBytes int64) (*httptest.Server, storage.Storage) {
	t.Helper()

	stg, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	usc := usecase.New(stg, eng, fakeExtractor{}, gen.JobID(), t.TempDir())
	h := NewHandler(usc, maxUploadBytes)

	router := chi.NewRouter()
	router.Get("/health", h.HealthHandler)
	router.Post("/transcribe", h.TranscribeHandler)
	router.Get("/download/{filename}", h.DownloadHandler)
	router.Get("/supported-languages", h.LanguagesHandler)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, stg
}

func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	return payload["error"]
}

func TestTranscribeEndToEnd(t *testing.T) {
	eng := &fakeEngine{result: &entity.EngineResult{
		Text:     "hello world",
		Language: "en",
		Segments: []entity.Segment{{Start: 0, End: 1.5, Text: " hello world "}},
	}}
	srv, stg := newTestServer(t, eng, 0)

	body, contentType := multipartUpload(t, "speech.mp3", "fake audio bytes", map[string]string{
		"language": "auto",
		"task":     "transcribe",
	})
	resp, err := http.Post(srv.URL+"/transcribe", contentType, body)
	if err != nil {
		t.Fatalf("POST /transcribe: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var payload entity.TranscribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !payload.Success {
		t.Error("success = false")
	}
	if payload.Transcription.Text != "hello world" || payload.Transcription.Duration != 1.5 {
		t.Errorf("transcription = %+v", payload.Transcription)
	}
	if payload.Transcription.Segments[0].Text != "hello world" {
		t.Errorf("segment text not trimmed: %+v", payload.Transcription.Segments)
	}

	// every returned artifact name must resolve to stored bytes
	for _, name := range []string{payload.Files.Document, payload.Files.Subtitles, payload.Files.JSON} {
		if _, err := stg.Resolve(name); err != nil {
			t.Errorf("artifact %q not retrievable: %v", name, err)
		}
	}
}

func TestDownloadReturnsStoredBytes(t *testing.T) {
	eng := &fakeEngine{result: &entity.EngineResult{
		Text:     "bonjour",
		Language: "fr",
		Segments: []entity.Segment{{Start: 0, End: 2, Text: "bonjour"}},
	}}
	srv, stg := newTestServer(t, eng, 0)

	body, contentType := multipartUpload(t, "speech.wav", "fake audio", nil)
	resp, err := http.Post(srv.URL+"/transcribe", contentType, body)
	if err != nil {
		t.Fatalf("POST /transcribe: %v", err)
	}
	var payload entity.TranscribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()

	dl, err := http.Get(srv.URL + "/download/" + payload.Files.Subtitles)
	if err != nil {
		t.Fatalf("GET /download: %v", err)
	}
	defer dl.Body.Close()

	if dl.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d", dl.StatusCode)
	}
	if cd := dl.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	got, err := io.ReadAll(dl.Body)
	if err != nil {
		t.Fatalf("read download body: %v", err)
	}

	path, err := stg.Resolve(payload.Files.Subtitles)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("downloaded bytes differ from stored artifact")
	}
}

func TestDownloadUnknownName(t *testing.T) {
	srv, _ := newTestServer(t, &fakeEngine{}, 0)

	resp, err := http.Get(srv.URL + "/download/never_written.txt")
	if err != nil {
		t.Fatalf("GET /download: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if msg := decodeError(t, resp); msg != "File not found" {
		t.Errorf("error = %q", msg)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	srv, _ := newTestServer(t, &fakeEngine{}, 0)

	body, contentType := multipartUpload(t, "", "", map[string]string{"task": "transcribe"})
	resp, err := http.Post(srv.URL+"/transcribe", contentType, body)
	if err != nil {
		t.Fatalf("POST /transcribe: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if msg := decodeError(t, resp); msg != "No file provided" {
		t.Errorf("error = %q", msg)
	}
}

func TestTranscribeDisallowedExtension(t *testing.T) {
	srv, _ := newTestServer(t, &fakeEngine{}, 0)

	body, contentType := multipartUpload(t, "archive.zip", "pk", nil)
	resp, err := http.Post(srv.URL+"/transcribe", contentType, body)
	if err != nil {
		t.Fatalf("POST /transcribe: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if msg := decodeError(t, resp); !strings.HasPrefix(msg, "Invalid file type. Allowed: ") {
		t.Errorf("error = %q", msg)
	}
}

func TestTranscribeOversizedUpload(t *testing.T) {
	srv, _ := newTestServer(t, &fakeEngine{}, 128)

	body, contentType := multipartUpload(t, "big.mp3", strings.Repeat("a", 4096), nil)
	resp, err := http.Post(srv.URL+"/transcribe", contentType, body)
	if err != nil {
		t.Fatalf("POST /transcribe: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", resp.StatusCode)
	}
}

func TestTranscribeEngineFault(t *testing.T) {
	srv, _ := newTestServer(t, &fakeEngine{err: context.DeadlineExceeded}, 0)

	body, contentType := multipartUpload(t, "speech.ogg", "fake audio", nil)
	resp, err := http.Post(srv.URL+"/transcribe", contentType, body)
	if err != nil {
		t.Fatalf("POST /transcribe: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if msg := decodeError(t, resp); !strings.HasPrefix(msg, "Transcription failed: ") {
		t.Errorf("error = %q", msg)
	}
}

func TestSupportedLanguages(t *testing.T) {
	srv, _ := newTestServer(t, &fakeEngine{}, 0)

	resp, err := http.Get(srv.URL + "/supported-languages")
	if err != nil {
		t.Fatalf("GET /supported-languages: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var langs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if langs["auto"] != "Auto-detect" || langs["en"] != "English" {
		t.Errorf("language table wrong: auto=%q en=%q", langs["auto"], langs["en"])
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &fakeEngine{}, 0)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	var payload map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload["status"] {
		t.Error("status = false")
	}
}
