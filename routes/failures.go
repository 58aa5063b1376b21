package routes

import (
	"net/http"

	"vermux/failures"
	"vermux/logger"
)

// FailureQueryHandler handles queries for render failures
func FailureQueryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token parameter required", http.StatusBadRequest)
		return
	}

	record, err := failures.Get(token)
	if err != nil {
		logger.Errorf("Failed to query failure for token %s: %v", token, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if record == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"token":   token,
			"status":  "not_found",
			"message": "No failure record found for this token",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":       record.Token,
		"status":      "failed",
		"kind":        record.Kind,
		"timestamp":   record.Timestamp,
		"error":       record.Error,
		"diagnostics": record.Diagnostics,
		"elapsed_ms":  record.ElapsedMS,
		"job_data":    record.JobData,
	})
}

// FailureListHandler handles listing all failures (admin endpoint)
func FailureListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	failuresList, err := failures.List()
	if err != nil {
		logger.Errorf("Failed to list failures: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"failures": failuresList,
		"count":    len(failuresList),
	})
}
