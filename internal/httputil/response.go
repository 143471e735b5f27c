package httputil

import (
	"encoding/json"
	"net/http"
)

// Envelope wraps every API response
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RespondJSON writes data inside a success envelope with the given status code.
// It marshals first, preventing partial responses if encoding fails after
// headers are sent.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Envelope{Success: true, Data: data})
}

// RespondMessage writes a success envelope carrying only a message
func RespondMessage(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: true, Message: message})
}

// RespondError writes a failure envelope
func RespondError(w http.ResponseWriter, status int, detail string) {
	write(w, status, Envelope{Success: false, Error: detail})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		// Fallback to plain text if JSON encoding fails
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}
