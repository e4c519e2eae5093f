package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vbonduro/ecoleta/internal/domain"
	"github.com/vbonduro/ecoleta/internal/service"
)

type itemResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

type pointResponse struct {
	ID        int64     `json:"id"`
	Image     string    `json:"image"`
	ImageURL  string    `json:"image_url"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	City      string    `json:"city"`
	UF        string    `json:"uf"`
	CreatedAt time.Time `json:"created_at"`
}

type pointDetailResponse struct {
	Point pointResponse  `json:"point"`
	Items []itemResponse `json:"items"`
}

type pointItemResponse struct {
	ItemID int64 `json:"item_id"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// imageURL returns the public URL of a stored image, or "" for no image.
func (s *Server) imageURL(key string) string {
	if key == "" {
		return ""
	}
	return s.publicURL + "/uploads/" + url.PathEscape(key)
}

func (s *Server) toItem(item *domain.Item) itemResponse {
	return itemResponse{ID: item.ID, Title: item.Title, ImageURL: s.imageURL(item.Image)}
}

func (s *Server) toItems(items []*domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, s.toItem(item))
	}
	return out
}

func (s *Server) toPoint(p *domain.Point) pointResponse {
	return pointResponse{
		ID:        p.ID,
		Image:     p.Image,
		ImageURL:  s.imageURL(p.Image),
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		City:      p.City,
		UF:        p.UF,
		CreatedAt: p.CreatedAt,
	}
}

func (s *Server) toPointDetail(d *service.PointDetail) pointDetailResponse {
	return pointDetailResponse{Point: s.toPoint(d.Point), Items: s.toItems(d.Items)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeValidationError(w http.ResponseWriter, verr *service.ValidationError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields})
}

// parseID extracts the {id} path variable as a positive int64.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
