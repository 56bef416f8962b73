package httpadapter

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeBotDisabled renders the envelope the messenger expects when a bot
// cannot serve a request.
func writeBotDisabled(w http.ResponseWriter, status int, statusMessage string) {
	writeJSON(w, status, map[string]interface{}{
		"reason": "bot_disabled",
		"error_data": map[string]string{
			"status_message": statusMessage,
		},
	})
}
