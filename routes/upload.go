package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"vermux/job"
	"vermux/logger"
	"vermux/models"
	"vermux/utils"
)

// UploadHandler accepts a composition request for asynchronous processing.
// The response carries the token used to poll status and fetch records.
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Upload request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

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

	req, videoFile, audioFile, subtitleFile, err := composeRequestFromForm(r, dir)
	if err != nil {
		os.RemoveAll(dir)
		logger.Warnf("Invalid upload request %s: %v", token, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The job envelope (deliveries, callback) rides in the "job" form field.
	var renderJob models.RenderJob
	if jobField := strings.TrimSpace(r.FormValue("job")); jobField != "" {
		if err := json.Unmarshal([]byte(jobField), &renderJob); err != nil {
			os.RemoveAll(dir)
			http.Error(w, fmt.Sprintf("Invalid job field: %v", err), http.StatusBadRequest)
			return
		}
	}

	instr := job.Instructions{
		Dir:           dir,
		Token:         token,
		VideoFile:     videoFile,
		AudioFile:     audioFile,
		SubtitleFile:  subtitleFile,
		Caption:       req.Caption,
		Quality:       req.Quality,
		DurationMatch: req.DurationMatch,
		Job:           renderJob,
	}

	if err := job.WriteInstructions(dir, instr); err != nil {
		os.RemoveAll(dir)
		logger.Errorf("Failed to write instructions for %s: %v", token, err)
		http.Error(w, "Failed to write instructions", http.StatusInternalServerError)
		return
	}

	job.AddPendingJob(dir)
	logger.Infof("Queued render job %s", token)

	respondJSON(w, http.StatusAccepted, map[string]string{
		"token":  token,
		"status": "pending",
	})
}
