package server

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Gowthamnitro5/video-transcriber/pkg/json"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/consts"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/entity"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/storage"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/usecase"
)

type handler struct {
	usecase        usecase.Usecase
	maxUploadBytes int64
}

type Handler interface {
	TranscribeHandler(w http.ResponseWriter, r *http.Request)
	DownloadHandler(w http.ResponseWriter, r *http.Request)
	LanguagesHandler(w http.ResponseWriter, r *http.Request)
	HealthHandler(w http.ResponseWriter, r *http.Request)
}

func NewHandler(usc usecase.Usecase, maxUploadBytes int64) Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = consts.MaxUploadBytes
	}
	return &handler{usecase: usc, maxUploadBytes: maxUploadBytes}
}

func (h *handler) TranscribeHandler(w http.ResponseWriter, r *http.Request) {
	// reject oversized requests while the body is still streaming in
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			json.WriteError(w, http.StatusRequestEntityTooLarge,
				fmt.Errorf("File too large. Maximum size: %d bytes", h.maxUploadBytes))
			return
		}
		json.WriteError(w, http.StatusBadRequest, errors.New("No file provided"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		json.WriteError(w, http.StatusBadRequest, errors.New("No file provided"))
		return
	}
	defer file.Close()

	resp, err := h.usecase.Transcribe(r.Context(), &entity.TranscribeRequest{
		Filename: header.Filename,
		File:     file,
		Language: r.FormValue("language"),
		Task:     r.FormValue("task"),
	})
	if err != nil {
		h.writeTranscribeError(w, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, resp)
}

func (h *handler) writeTranscribeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrNoFile):
		json.WriteError(w, http.StatusBadRequest, errors.New("No file provided"))
	case errors.Is(err, usecase.ErrEmptyFilename):
		json.WriteError(w, http.StatusBadRequest, errors.New("No file selected"))
	case errors.Is(err, usecase.ErrUnsupportedType):
		json.WriteError(w, http.StatusBadRequest,
			fmt.Errorf("Invalid file type. Allowed: %s", allowedList()))
	case errors.Is(err, usecase.ErrExtraction):
		json.WriteError(w, http.StatusInternalServerError, errors.New("Failed to extract audio from video"))
	default:
		json.WriteError(w, http.StatusInternalServerError, fmt.Errorf("Transcription failed: %v", err))
	}
}

func (h *handler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	path, err := h.usecase.Fetch(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		json.WriteError(w, http.StatusNotFound, errors.New("File not found"))
		return
	}
	if err != nil {
		json.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func (h *handler) LanguagesHandler(w http.ResponseWriter, r *http.Request) {
	json.WriteJSON(w, http.StatusOK, h.usecase.Languages())
}

func (h *handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	json.WriteJSON(w, http.StatusOK, map[string]bool{"status": true})
}

func allowedList() string {
	exts := make([]string, 0, len(consts.AllowedExtensions))
	for ext := range consts.AllowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
