package server

import (
	"errors"
	"net/http"

	"github.com/claude/exlog/internal/models"
)

// writeError is the single error responder: validation failures map to 400
// with the violated field's message, unknown references to 404, and
// everything else (store rejections included) to 500. Handlers never
// recover; they forward here.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
		return
	}

	var nf *models.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
		return
	}

	s.log.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
