package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/errs"
	"github.com/vbonduro/renovo/internal/notify"
	"github.com/vbonduro/renovo/internal/sow"
)

// sowLoader reads the saved statement of work a session starts from.
type sowLoader interface {
	LoadSOW(ctx context.Context, projectID string) (domain.SOWData, int64, error)
}

// Session is one user's SOW editing session: a container plus the wizard
// walking through it.
type Session struct {
	ID        string
	ProjectID string
	Container *sow.Container
	Wizard    *sow.Wizard

	mu       sync.Mutex
	lastUsed time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// LaborItemView is a labor item with its area references resolved to the
// current area names.
type LaborItemView struct {
	domain.LaborItem
	AffectedAreas []string `json:"affectedAreas"`
}

type SessionView struct {
	ID            string                `json:"id"`
	ProjectID     string                `json:"projectId"`
	Step          sow.Step              `json:"step"`
	CanSave       bool                  `json:"canSave"`
	Finished      bool                  `json:"finished"`
	Dirty         bool                  `json:"dirty"`
	Version       int64                 `json:"version"`
	WorkAreas     []domain.WorkArea     `json:"workAreas"`
	LaborItems    []LaborItemView       `json:"laborItems"`
	MaterialItems []domain.MaterialItem `json:"materialItems"`
}

// View renders the session state for clients.
func (s *Session) View() SessionView {
	snap := s.Container.Snapshot()
	labor := make([]LaborItemView, 0, len(snap.LaborItems))
	for _, l := range snap.LaborItems {
		labor = append(labor, LaborItemView{
			LaborItem:     l,
			AffectedAreas: sow.ResolveAreaNames(snap.WorkAreas, l.AffectedAreaIDs),
		})
	}
	return SessionView{
		ID:            s.ID,
		ProjectID:     s.ProjectID,
		Step:          s.Wizard.Current(),
		CanSave:       s.Wizard.CanSave(),
		Finished:      s.Wizard.Finished(),
		Dirty:         s.Container.Dirty(),
		Version:       s.Container.Version(),
		WorkAreas:     snap.WorkAreas,
		LaborItems:    labor,
		MaterialItems: snap.MaterialItems,
	}
}

type SOWService struct {
	loader      sowLoader
	saver       sow.Saver
	notifier    notify.Notifier
	idleTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSOWService(loader sowLoader, saver sow.Saver, notifier notify.Notifier, idleTimeout time.Duration, logger *slog.Logger) *SOWService {
	return &SOWService{
		loader:      loader,
		saver:       saver,
		notifier:    notifier,
		idleTimeout: idleTimeout,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// Open starts a session seeded with the project's saved SOW.
func (s *SOWService) Open(ctx context.Context, projectID string) (*Session, error) {
	data, version, err := s.loader.LoadSOW(ctx, projectID)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Container: sow.NewContainer(projectID, data, version, s.saver, s.notifier, s.logger),
		Wizard:    sow.NewWizard(),
		lastUsed:  s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("sow session opened", "session_id", sess.ID, "project_id", projectID, "version", version)
	return sess, nil
}

func (s *SOWService) Get(id string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, errs.NotFound("sow session")
	}
	sess.touch(s.now())
	return sess, nil
}

// Close discards the session. Unsaved edits are lost.
func (s *SOWService) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return errs.NotFound("sow session")
	}
	s.logger.Info("sow session closed", "session_id", id, "project_id", sess.ProjectID, "dirty", sess.Container.Dirty())
	return nil
}

// Save persists the session's SOW. Saving is only offered at the review step.
func (s *SOWService) Save(ctx context.Context, id string) (*Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !sess.Wizard.CanSave() {
		return nil, fmt.Errorf("save at %s: %w", sess.Wizard.Current(), errs.ErrInvalidStep)
	}
	if err := sess.Container.Save(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// Finish closes out the wizard. It does not save; a session finished with
// unsaved edits stays dirty.
func (s *SOWService) Finish(id string) (*Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := sess.Wizard.Finish(); err != nil {
		return nil, err
	}
	if sess.Container.Dirty() {
		s.logger.Warn("sow wizard finished with unsaved changes", "session_id", id, "project_id", sess.ProjectID)
	}
	return sess, nil
}

// PruneIdle drops sessions not used within the idle timeout and returns how
// many were dropped.
func (s *SOWService) PruneIdle() int {
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	var pruned []*Session
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			pruned = append(pruned, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range pruned {
		s.logger.Info("sow session expired", "session_id", sess.ID, "project_id", sess.ProjectID, "dirty", sess.Container.Dirty())
	}
	return len(pruned)
}

// RunPruner calls PruneIdle every interval until ctx is done.
func (s *SOWService) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PruneIdle()
		}
	}
}

func (s *SOWService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
