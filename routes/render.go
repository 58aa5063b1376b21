package routes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"vermux/compose"
	"vermux/logger"
	"vermux/utils"
)

var pipeline *compose.Pipeline

// Configure wires the synchronous render endpoint to a composition
// pipeline. Called once at startup.
func Configure(cfg compose.Config, engine compose.Engine) {
	pipeline = compose.NewPipeline(cfg, engine)
}

// composeRequestFromForm reads the upload parts and knobs shared by the
// sync and async endpoints. The video and audio parts are required.
func composeRequestFromForm(r *http.Request, dir string) (compose.Request, string, string, string, error) {
	videoFile, err := saveFormFile(r, "video", dir)
	if err != nil {
		return compose.Request{}, "", "", "", fmt.Errorf("video file required: %w", err)
	}
	audioFile, err := saveFormFile(r, "audio", dir)
	if err != nil {
		return compose.Request{}, "", "", "", fmt.Errorf("audio file required: %w", err)
	}

	subtitleFile := ""
	if _, _, err := r.FormFile("subtitles"); err == nil {
		subtitleFile, err = saveFormFile(r, "subtitles", dir)
		if err != nil {
			return compose.Request{}, "", "", "", fmt.Errorf("failed to save subtitles: %w", err)
		}
	}

	req := compose.Request{
		VideoPath:     filepath.Join(dir, videoFile),
		AudioPath:     filepath.Join(dir, audioFile),
		Caption:       r.FormValue("caption"),
		Quality:       r.FormValue("quality"),
		DurationMatch: r.FormValue("durationMatch"),
	}
	if subtitleFile != "" {
		req.SubtitlePath = filepath.Join(dir, subtitleFile)
	}
	return req, videoFile, audioFile, subtitleFile, nil
}

// statusForFailure maps a pipeline failure to an HTTP status for the
// synchronous endpoint.
func statusForFailure(err error) int {
	switch compose.KindOf(err) {
	case compose.KindValidation:
		return http.StatusBadRequest
	case compose.KindSubtitle:
		return http.StatusUnprocessableEntity
	case compose.KindEncodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// RenderHandler runs a composition synchronously and streams the rendered
// video back in the response.
func RenderHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Render request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	token, err := utils.GenerateToken()
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	dir, err := createJobDir(token)
	if err != nil {
		http.Error(w, "Failed to create work directory", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(dir)

	req, _, _, _, err := composeRequestFromForm(r, dir)
	if err != nil {
		logger.Warnf("Invalid render request %s: %v", token, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Infof("Starting synchronous render %s", token)
	result, err := pipeline.Run(r.Context(), req, dir)
	if err != nil {
		logger.Errorf("Render %s failed: %v", token, err)
		status := statusForFailure(err)
		body := map[string]string{
			"token": token,
			"error": err.Error(),
			"kind":  compose.KindOf(err).String(),
		}
		if diag := compose.DiagnosticsOf(err); diag != "" {
			body["diagnostics"] = diag
		}
		respondJSON(w, status, body)
		return
	}
	defer result.Cleanup()

	output, err := os.Open(result.OutputPath)
	if err != nil {
		logger.Errorf("Failed to open rendered output for %s: %v", token, err)
		http.Error(w, "Failed to open rendered output", http.StatusInternalServerError)
		return
	}
	defer output.Close()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Length", strconv.FormatInt(result.Size, 10))
	w.Header().Set("X-Render-Token", token)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, output); err != nil {
		// Client gone mid-stream, nothing left to report to it
		if !errors.Is(err, io.ErrClosedPipe) {
			logger.Warnf("Streaming render %s interrupted: %v", token, err)
		}
		return
	}

	logger.Infof("Render %s completed in %s (%d bytes)", token, result.Elapsed, result.Size)
}
