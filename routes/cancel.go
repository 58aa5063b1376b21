package routes

import (
	"fmt"
	"net/http"

	"vermux/job"
	"vermux/logger"
)

// CancelJobHandler cancels a pending render job by token
func CancelJobHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Cancel job request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		logger.Warn("Missing token parameter in cancel request")
		http.Error(w, "Missing token parameter", http.StatusBadRequest)
		return
	}

	logger.Infof("Attempting to cancel job: %s", token)
	if err := job.Cancel(token); err != nil {
		logger.Errorf("Failed to cancel job %s: %v", token, err)
		if err.Error() == "job with token "+token+" not found" {
			http.Error(w, fmt.Sprintf("Job not found: %v", err), http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Cannot cancel job: %v", err), http.StatusConflict)
		}
		return
	}

	logger.Infof("Job cancelled successfully: %s", token)
	w.WriteHeader(http.StatusNoContent)
}
