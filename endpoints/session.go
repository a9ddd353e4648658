package endpoints

import "net/http"

// EndSessionHandler discards a session and its history.
func (s *Server) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.Header.Get(SessionHeader)
	if id == "" {
		id = r.URL.Query().Get(SessionField)
	}
	if id == "" {
		http.Error(w, "Missing session id", http.StatusBadRequest)
		return
	}

	if !s.Sessions.End(id) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
