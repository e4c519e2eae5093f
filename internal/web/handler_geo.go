package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vbonduro/ecoleta/internal/geo"
	"github.com/vbonduro/ecoleta/internal/service"
)

func (s *Server) handleListStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.service.States(r.Context())
	if err != nil {
		s.writeGeoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleListCities(w http.ResponseWriter, r *http.Request) {
	uf := strings.ToUpper(strings.TrimSpace(r.PathValue("uf")))
	if len(uf) != 2 {
		writeError(w, http.StatusBadRequest, "invalid uf")
		return
	}

	cities, err := s.service.Cities(r.Context(), uf)
	if err != nil {
		s.writeGeoError(w, err)
		return
	}
	if cities == nil {
		cities = []string{}
	}
	writeJSON(w, http.StatusOK, cities)
}

func (s *Server) writeGeoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGeoDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, geo.ErrUpstream):
		writeError(w, http.StatusBadGateway, "geography provider unavailable")
		s.logger.Warn("geo lookup failed", "error", err)
	default:
		writeError(w, http.StatusInternalServerError, "geography lookup failed")
		s.logger.Error("geo lookup failed", "error", err)
	}
}
