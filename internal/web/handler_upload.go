package web

import (
	"embed"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/vbonduro/ecoleta/internal/imagestore"
	"github.com/vbonduro/ecoleta/internal/service"
)

//go:embed icons/*.svg
var itemIcons embed.FS

var errUnsupportedImage = errors.New("unsupported image format")

// allowedImageTypes is the set of MIME types accepted for point images.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP has no WHATWG sniff signature and is checked separately.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// formImage reads the optional "image" file of a parsed multipart form.
// It returns nil when no file was sent.
func (s *Server) formImage(r *http.Request) (*service.Image, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	mimeType, ok := allowedImageMIME(data)
	if !ok {
		return nil, errUnsupportedImage
	}
	return &service.Image{Filename: uploadFilename(header), MimeType: mimeType, Data: data}, nil
}

func uploadFilename(header *multipart.FileHeader) string {
	if header == nil {
		return ""
	}
	return header.Filename
}

// handleGetUpload serves the embedded item icons and stored point images.
func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if icon, err := itemIcons.ReadFile(path.Join("icons", name)); err == nil {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		if _, err := w.Write(icon); err != nil {
			s.logger.Error("write icon failed", "name", name, "error", err)
		}
		return
	}

	reader, mimeType, err := s.images.Open(r.Context(), name)
	if err != nil {
		if !errors.Is(err, imagestore.ErrNotFound) {
			s.logger.Warn("open upload failed", "name", name, "error", err)
		}
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer closeWithLog(reader, "upload reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	// Stored names carry a random prefix and are never rewritten.
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write upload failed", "name", name, "error", err)
	}
}
