package routes

import (
	"encoding/json"
	"net/http"

	"vermux/credentials"
	"vermux/logger"
	"vermux/utils"
)

// RegisterCredentialsHandler stores a delivery-credential map and returns
// the access key render jobs use to reference it.
func RegisterCredentialsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	keyString, err := utils.GenerateRandomHex(16)
	if err != nil {
		http.Error(w, "Failed to generate key", http.StatusInternalServerError)
		return
	}

	credsBody := make(map[string]string)
	if err := json.NewDecoder(r.Body).Decode(&credsBody); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := credentials.Store(keyString, credsBody); err != nil {
		logger.Errorf("Failed to store credentials: %v", err)
		http.Error(w, "Failed to store credentials", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"access_key": keyString,
	})
}
