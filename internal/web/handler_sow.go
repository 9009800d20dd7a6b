package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/errs"
	"github.com/vbonduro/renovo/internal/service"
)

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	sess, err := s.sows.Get(chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) writeSession(w http.ResponseWriter, status int, sess *service.Session) {
	writeJSON(w, status, sess.View())
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sows.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sows.Close(chi.URLParam(r, "sid")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddWorkArea(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var area domain.WorkArea
	if err := decodeJSON(w, r, &area); err != nil {
		s.writeError(w, r, err)
		return
	}
	area.Name = strings.TrimSpace(area.Name)
	if area.Type == "" {
		area.Type = domain.WorkAreaPrimary
	}
	if area.ID == "" {
		area.ID = uuid.NewString()
	}
	if err := validateWorkArea(area); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !sess.Container.AddWorkAreaIfAbsent(area) {
		s.writeError(w, r, duplicateID("work area", area.ID))
		return
	}
	s.writeSession(w, http.StatusCreated, sess)
}

func (s *Server) handleUpdateWorkArea(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var patch domain.WorkAreaPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "itemID")
	current, found := findByID(sess.Container.Snapshot().WorkAreas, id, workAreaID)
	if !found {
		s.writeError(w, r, errs.NotFound("work area"))
		return
	}
	if err := validateWorkArea(patch.Apply(current)); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Container.UpdateWorkArea(id, patch)
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleRemoveWorkArea(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Container.RemoveWorkArea(chi.URLParam(r, "itemID"))
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleAddLaborItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var item domain.LaborItem
	if err := decodeJSON(w, r, &item); err != nil {
		s.writeError(w, r, err)
		return
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.AffectedAreaIDs == nil {
		item.AffectedAreaIDs = []string{}
	}
	if err := validateLaborItem(s.catalog, item, sess.Container.Snapshot().WorkAreas); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !sess.Container.AddLaborItemIfAbsent(item) {
		s.writeError(w, r, duplicateID("labor item", item.ID))
		return
	}
	s.writeSession(w, http.StatusCreated, sess)
}

func (s *Server) handleUpdateLaborItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var patch domain.LaborItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "itemID")
	snap := sess.Container.Snapshot()
	current, found := findByID(snap.LaborItems, id, laborItemID)
	if !found {
		s.writeError(w, r, errs.NotFound("labor item"))
		return
	}
	merged := patch.Apply(current)
	if patch.AffectedAreaIDs == nil {
		// references left dangling by an earlier area removal stay as they are
		merged.AffectedAreaIDs = nil
	}
	if err := validateLaborItem(s.catalog, merged, snap.WorkAreas); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Container.UpdateLaborItem(id, patch)
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleRemoveLaborItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Container.RemoveLaborItem(chi.URLParam(r, "itemID"))
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleAddMaterialItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var item domain.MaterialItem
	if err := decodeJSON(w, r, &item); err != nil {
		s.writeError(w, r, err)
		return
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if err := validateMaterialItem(s.catalog, item); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !sess.Container.AddMaterialItemIfAbsent(item) {
		s.writeError(w, r, duplicateID("material item", item.ID))
		return
	}
	s.writeSession(w, http.StatusCreated, sess)
}

func (s *Server) handleUpdateMaterialItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var patch domain.MaterialItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "itemID")
	current, found := findByID(sess.Container.Snapshot().MaterialItems, id, materialItemID)
	if !found {
		s.writeError(w, r, errs.NotFound("material item"))
		return
	}
	if err := validateMaterialItem(s.catalog, patch.Apply(current)); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Container.UpdateMaterialItem(id, patch)
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleRemoveMaterialItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Container.RemoveMaterialItem(chi.URLParam(r, "itemID"))
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleWizardNext(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Wizard.Next()
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleWizardBack(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Wizard.Back()
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleWizardFinish(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sows.Finish(chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sows.Save(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, http.StatusOK, sess)
}
