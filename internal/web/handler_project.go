package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/errs"
)

type createPropertyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var req createPropertyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	property, err := s.projects.CreateProperty(r.Context(), req.Name, req.Address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, property)
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	property, err := s.projects.GetProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

type setBlueprintRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleSetBlueprint(w http.ResponseWriter, r *http.Request) {
	var req setBlueprintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.projects.SetBlueprint(r.Context(), chi.URLParam(r, "id"), req.URL); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")
	if _, err := s.projects.GetProperty(r.Context(), propertyID); err != nil {
		s.writeError(w, r, err)
		return
	}
	roomList, err := s.projects.ListRooms(r.Context(), propertyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomList)
}

type createRoomRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	room, err := s.projects.AddRoom(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projectList, err := s.projects.ListProjects(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectList)
}

type createProjectRequest struct {
	PropertyID string `json:"propertyId"`
	Title      string `json:"title"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	title := strings.TrimSpace(req.Title)
	if req.PropertyID == "" || title == "" {
		s.writeError(w, r, errs.BadRequest("propertyId and title are required"))
		return
	}
	project, err := s.projects.CreateProject(r.Context(), req.PropertyID, title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	details, err := s.projects.GetProjectDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

type roomDesignRequest struct {
	Renderings        []string `json:"renderings"`
	Drawings          []string `json:"drawings"`
	InspirationImages []string `json:"inspirationImages"`
}

func (s *Server) handleSetRoomDesign(w http.ResponseWriter, r *http.Request) {
	var req roomDesignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	design := domain.RoomDesign{
		ProjectID:         chi.URLParam(r, "id"),
		RoomID:            chi.URLParam(r, "roomID"),
		Renderings:        req.Renderings,
		Drawings:          req.Drawings,
		InspirationImages: req.InspirationImages,
	}
	if err := s.projects.SetRoomDesign(r.Context(), design); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddDesignAsset(w http.ResponseWriter, r *http.Request) {
	var asset domain.DesignAsset
	if err := decodeJSON(w, r, &asset); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.projects.AddDesignAsset(r.Context(), chi.URLParam(r, "id"), asset); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

type inspirationRequest struct {
	Images []string `json:"images"`
}

func (s *Server) handleSetInspiration(w http.ResponseWriter, r *http.Request) {
	var req inspirationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.projects.SetInspirationImages(r.Context(), chi.URLParam(r, "id"), req.Images); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}
