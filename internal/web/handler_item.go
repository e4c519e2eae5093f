package web

import "net/http"

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.ListItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		s.logger.Error("list items failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, s.toItems(items))
}
