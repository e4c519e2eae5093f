package web

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/vbonduro/ecoleta/internal/domain"
	"github.com/vbonduro/ecoleta/internal/service"
)

// parseItemIDs accepts "1,2", repeated values and any mix of both.
// Empty segments are skipped.
func parseItemIDs(values []string) ([]int64, error) {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid item id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parseCoordinate(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (s *Server) handleListPoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ids, err := parseItemIDs(append(append([]string(nil), q["items"]...), q["items[]"]...))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := domain.PointFilter{
		UF:      strings.ToUpper(strings.TrimSpace(q.Get("uf"))),
		City:    strings.TrimSpace(q.Get("city")),
		ItemIDs: ids,
	}
	points, err := s.service.ListPoints(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list points")
		s.logger.Error("list points failed", "error", err)
		return
	}

	out := make([]pointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, s.toPoint(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPoint(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid point id")
		return
	}

	detail, err := s.service.GetPoint(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "point not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get point")
		s.logger.Error("get point failed", "point_id", id, "error", err)
		return
	}
	writeJSON(w, http.StatusOK, s.toPointDetail(detail))
}

func (s *Server) handleListPointItems(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid point id")
		return
	}

	ids, err := s.service.ListPointItemIDs(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "point not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list point items")
		s.logger.Error("list point items failed", "point_id", id, "error", err)
		return
	}

	out := make([]pointItemResponse, 0, len(ids))
	for _, itemID := range ids {
		out = append(out, pointItemResponse{ItemID: itemID})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePoint(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUpload {
		s.writeFormError(w, &http.MaxBytesError{Limit: s.maxUpload})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			s.writeFormError(w, err)
			return
		}
		if err := r.ParseForm(); err != nil {
			s.writeFormError(w, err)
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				s.logger.Warn("failed to remove multipart temp files", "error", err)
			}
		}()
	}

	verr := &service.ValidationError{}
	input := service.CreatePointInput{
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
		Phone: r.FormValue("phone"),
		City:  r.FormValue("city"),
		UF:    r.FormValue("uf"),
	}
	if strings.TrimSpace(input.Phone) == "" {
		input.Phone = r.FormValue("whatsapp")
	}

	if lat, ok := parseCoordinate(r.FormValue("latitude")); ok {
		input.Latitude = lat
	} else {
		verr.Add("latitude", "must be a number")
	}
	if lng, ok := parseCoordinate(r.FormValue("longitude")); ok {
		input.Longitude = lng
	} else {
		verr.Add("longitude", "must be a number")
	}

	ids, err := parseItemIDs(r.Form["items"])
	if err != nil {
		verr.Add("items", "must be a comma separated list of item ids")
	}
	input.ItemIDs = ids

	image, err := s.formImage(r)
	if errors.Is(err, errUnsupportedImage) {
		verr.Add("image", "must be a JPEG, PNG, GIF or WebP image")
	} else if err != nil {
		s.writeFormError(w, err)
		return
	}

	if len(verr.Fields) > 0 {
		input.Normalize().Validate(verr)
		writeValidationError(w, verr)
		return
	}

	detail, err := s.service.CreatePoint(r.Context(), input, image)
	if err != nil {
		var invalid *service.ValidationError
		if errors.As(err, &invalid) {
			writeValidationError(w, invalid)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create point")
		s.logger.Error("create point failed", "error", err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/points/%d", detail.Point.ID))
	writeJSON(w, http.StatusCreated, s.toPointDetail(detail))
}

func (s *Server) writeFormError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	s.logger.Debug("failed to parse form", "error", err)
	writeError(w, http.StatusBadRequest, "failed to parse form")
}

func (s *Server) handleDeletePoint(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid point id")
		return
	}

	err := s.service.DeletePoint(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "point not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete point")
		s.logger.Error("delete point failed", "point_id", id, "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
