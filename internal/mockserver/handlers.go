package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/internal/validate"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(validate.MaxUploadBytes + 4096); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = validate.MediaTypeForPath(header.Filename)
	}
	if err := validate.Check(mediaType, header.Size); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file: %s", err))
		return
	}

	s.mu.Lock()
	s.loaded = true
	s.docName = header.Filename
	s.mu.Unlock()

	s.logger.Debug("mock upload accepted",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)
	s.respondJSON(w, http.StatusOK, models.UploadResponse{Message: "File processed successfully"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	loaded := s.loaded
	docName := s.docName
	s.mu.Unlock()
	if !loaded {
		s.respondError(w, http.StatusBadRequest, "No document has been uploaded yet")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "Question cannot be empty")
		return
	}

	s.logger.Debug("mock ask",
		zap.String("question", question),
		zap.Int("history_turns", len(req.ChatHistory)),
	)
	s.respondJSON(w, http.StatusOK, models.AskResponse{
		Answer: fmt.Sprintf("Mock answer to %q based on %s.", question, docName),
		Context: []string{
			fmt.Sprintf("Excerpt from %s relevant to %q.", docName, question),
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response failed", zap.Error(err))
	}
}

// respondError writes a FastAPI-style {"detail": ...} error body, matching
// what the real backend produces.
func (s *Server) respondError(w http.ResponseWriter, status int, detail string) {
	s.respondJSON(w, status, map[string]string{"detail": detail})
}
