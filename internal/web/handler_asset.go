package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/renovo/internal/errs"
	"github.com/vbonduro/renovo/internal/tags"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniffing standard (and
// therefore the stdlib) does not include a WebP signature.
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

func (s *Server) handleRoomAssets(w http.ResponseWriter, r *http.Request) {
	result, err := s.assets.RoomAssets(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("room"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetTags(w http.ResponseWriter, r *http.Request) {
	merged, err := s.assets.Tags(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]tags.Catalogue{"tags": merged})
}

type setTagsRequest struct {
	Tags tags.Catalogue `json:"tags"`
}

func (s *Server) handleSetTags(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	var req setTagsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.projects.SetCustomTags(r.Context(), projectID, req.Tags); err != nil {
		s.writeError(w, r, err)
		return
	}
	merged, err := s.assets.Tags(r.Context(), projectID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]tags.Catalogue{"tags": merged})
}

func (s *Server) handleUploadBeforePhoto(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1<<20)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		s.writeError(w, r, errs.BadRequest("failed to parse form"))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, r, errs.BadRequest("image file required"))
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("read upload failed", "project_id", projectID, "error", err)
		s.writeError(w, r, err)
		return
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		s.writeError(w, r, errs.BadRequest("unsupported image format"))
		return
	}

	photo, err := s.assets.UploadBeforePhoto(r.Context(), projectID, strings.TrimSpace(r.FormValue("room")), imageData, mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

func (s *Server) handleDeleteBeforePhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := parseInt64Param(r, "photoID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.assets.DeleteBeforePhoto(r.Context(), chi.URLParam(r, "id"), photoID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	reader, mimeType, err := s.assets.OpenPhoto(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "storage_key", key, "error", err)
	}
}
