package routes

import (
	"fmt"
	"net/http"

	"vermux/job"
	"vermux/logger"
)

// JobStatusResponse represents the job status response
type JobStatusResponse struct {
	Token string `json:"token"`
	State string `json:"state"`
}

// JobStatusHandler returns the status of a queued render job by token
func JobStatusHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Job status request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		logger.Warn("Missing token parameter in status request")
		http.Error(w, "Missing token parameter", http.StatusBadRequest)
		return
	}

	state, exists := job.GetState(token)
	if !exists {
		http.Error(w, fmt.Sprintf("Job with token %s not found", token), http.StatusNotFound)
		return
	}

	logger.Debugf("Job status: token=%s, state=%s", token, state)
	respondJSON(w, http.StatusOK, JobStatusResponse{Token: token, State: state.String()})
}
