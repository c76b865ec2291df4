package main

import (
	"encoding/base64"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/models"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
)

const audioContentType = "audio/mpeg"

// generateAudio speaks arbitrary text in the interviewer's voice.
func (app *application) generateAudio(w http.ResponseWriter, r *http.Request) {
	var req models.AudioGenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		app.interviewError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		app.interviewError(w, r, errors.Wrap(errBadRequest, "text is required"))
		return
	}

	audio, err := app.speech.Synthesize(r.Context(), req.Text)
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "speech synthesis failed", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusBadGateway, models.ErrorResponse{Detail: "Error generating audio"})
		return
	}
	app.writeJSON(w, r, http.StatusOK, models.AudioGenerateResponse{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		ContentType: audioContentType,
	})
}

// transcribeAudio turns the uploaded recording in the multipart field "file" into text.
func (app *application) transcribeAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		app.interviewError(w, r, errors.Join(errors.Wrap(errBadRequest, "multipart field file is required"), err))
		return
	}
	defer func(file multipart.File) {
		_ = file.Close()
	}(file)

	app.logger.LogAttrs(r.Context(), slog.LevelInfo, "transcribing audio",
		slog.String("filename", header.Filename), slog.Int64("size", header.Size))

	var text string
	if text, err = app.transcriber.Transcribe(r.Context(), header.Filename, file); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "transcription failed", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusBadGateway, models.ErrorResponse{Detail: "Error transcribing audio"})
		return
	}
	app.writeJSON(w, r, http.StatusOK, models.TranscriptionResponse{Transcription: text, Success: true})
}
