package routes

import (
	"net/http"

	"vermux/logger"
	"vermux/success"
)

// SuccessQueryHandler handles queries for completed renders
func SuccessQueryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token parameter required", http.StatusBadRequest)
		return
	}

	record, err := success.Get(token)
	if err != nil {
		logger.Errorf("Failed to query success for token %s: %v", token, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if record == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"token":   token,
			"status":  "not_found",
			"message": "No success record found for this token",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":      record.Token,
		"status":     "success",
		"timestamp":  record.Timestamp,
		"elapsed_ms": record.ElapsedMS,
		"size_bytes": record.SizeBytes,
		"deliveries": record.Deliveries,
		"job_data":   record.JobData,
	})
}

// SuccessListHandler handles listing all success records (admin endpoint)
func SuccessListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := success.List()
	if err != nil {
		logger.Errorf("Failed to list success records: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success_records": records,
		"count":           len(records),
	})
}
