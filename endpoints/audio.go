package endpoints

import (
	"net/http"
	"strings"
)

// AudioHandler serves an archived upload (GET)
func (s *Server) AudioHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Archive == nil {
		http.Error(w, "Audio archive not configured", http.StatusNotFound)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, AudioPath)
	if key == "" {
		http.Error(w, "Missing audio key", http.StatusBadRequest)
		return
	}

	data, err := s.Archive.LoadAudio(r.Context(), key)
	if err != nil {
		s.Logger.Debug().Err(err).Str("key", key).Msg("archived audio not found")
		http.Error(w, "Audio not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "audio/webm")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("could not write archived audio")
	}
}
