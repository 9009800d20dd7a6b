// Package sow holds the statement-of-work editing state for one session and
// the wizard that walks a user through it.
package sow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/errs"
	"github.com/vbonduro/renovo/internal/notify"
)

// Saver persists a whole SOW snapshot for a project. It must fail with
// errs.ErrVersionConflict when the stored preferences are no longer at
// expectedVersion, and return the new version on success.
type Saver interface {
	SaveSOW(ctx context.Context, projectID string, data domain.SOWData, expectedVersion int64) (int64, error)
}

// Container is the only sanctioned mutation surface for a SOW. Mutations
// replace the collections instead of editing them in place, and never
// validate: callers supply complete records with unique ids.
type Container struct {
	mu       sync.RWMutex
	data     domain.SOWData
	version  int64
	revision uint64
	savedRev uint64

	// saveMu orders overlapping saves from this container by call order.
	saveMu sync.Mutex

	projectID string
	saver     Saver
	notifier  notify.Notifier
	logger    *slog.Logger
}

// NewContainer starts a session from initial, as read at version.
func NewContainer(projectID string, initial domain.SOWData, version int64, saver Saver, notifier notify.Notifier, logger *slog.Logger) *Container {
	return &Container{
		data:      initial.Clone(),
		version:   version,
		projectID: projectID,
		saver:     saver,
		notifier:  notifier,
		logger:    logger,
	}
}

func (c *Container) ProjectID() string {
	return c.projectID
}

// Version is the preferences version the container's state is based on.
func (c *Container) Version() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Dirty reports whether there are mutations not yet saved.
func (c *Container) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision != c.savedRev
}

// Snapshot returns a deep copy of the current state.
func (c *Container) Snapshot() domain.SOWData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Clone()
}

func (c *Container) mutate(fn func(d *domain.SOWData) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn(&c.data) {
		c.revision++
	}
}

func (c *Container) AddWorkArea(item domain.WorkArea) {
	c.mutate(func(d *domain.SOWData) bool {
		d.WorkAreas = appendCopy(d.WorkAreas, item)
		return true
	})
}

func (c *Container) AddLaborItem(item domain.LaborItem) {
	item.AffectedAreaIDs = append([]string{}, item.AffectedAreaIDs...)
	c.mutate(func(d *domain.SOWData) bool {
		d.LaborItems = appendCopy(d.LaborItems, item)
		return true
	})
}

func (c *Container) AddMaterialItem(item domain.MaterialItem) {
	item = domain.MaterialItemPatch{Details: &item.Details}.Apply(item)
	c.mutate(func(d *domain.SOWData) bool {
		d.MaterialItems = appendCopy(d.MaterialItems, item)
		return true
	})
}

// AddWorkAreaIfAbsent appends item unless an area with its id already exists.
// The check and the insert happen under one lock; it reports whether item was
// added.
func (c *Container) AddWorkAreaIfAbsent(item domain.WorkArea) bool {
	var added bool
	c.mutate(func(d *domain.SOWData) bool {
		if containsID(d.WorkAreas, item.ID, func(w domain.WorkArea) string { return w.ID }) {
			return false
		}
		d.WorkAreas = appendCopy(d.WorkAreas, item)
		added = true
		return true
	})
	return added
}

func (c *Container) AddLaborItemIfAbsent(item domain.LaborItem) bool {
	item.AffectedAreaIDs = append([]string{}, item.AffectedAreaIDs...)
	var added bool
	c.mutate(func(d *domain.SOWData) bool {
		if containsID(d.LaborItems, item.ID, func(l domain.LaborItem) string { return l.ID }) {
			return false
		}
		d.LaborItems = appendCopy(d.LaborItems, item)
		added = true
		return true
	})
	return added
}

func (c *Container) AddMaterialItemIfAbsent(item domain.MaterialItem) bool {
	item = domain.MaterialItemPatch{Details: &item.Details}.Apply(item)
	var added bool
	c.mutate(func(d *domain.SOWData) bool {
		if containsID(d.MaterialItems, item.ID, func(m domain.MaterialItem) string { return m.ID }) {
			return false
		}
		d.MaterialItems = appendCopy(d.MaterialItems, item)
		added = true
		return true
	})
	return added
}

// UpdateWorkArea shallow-merges patch into the area with id. Unknown ids are
// ignored. Labor items keep referencing the area by id, so a rename shows up
// wherever names are resolved.
func (c *Container) UpdateWorkArea(id string, patch domain.WorkAreaPatch) {
	c.mutate(func(d *domain.SOWData) bool {
		var ok bool
		d.WorkAreas, ok = updateByID(d.WorkAreas, id, func(w domain.WorkArea) string { return w.ID }, patch.Apply)
		return ok
	})
}

func (c *Container) UpdateLaborItem(id string, patch domain.LaborItemPatch) {
	c.mutate(func(d *domain.SOWData) bool {
		var ok bool
		d.LaborItems, ok = updateByID(d.LaborItems, id, func(l domain.LaborItem) string { return l.ID }, patch.Apply)
		return ok
	})
}

func (c *Container) UpdateMaterialItem(id string, patch domain.MaterialItemPatch) {
	c.mutate(func(d *domain.SOWData) bool {
		var ok bool
		d.MaterialItems, ok = updateByID(d.MaterialItems, id, func(m domain.MaterialItem) string { return m.ID }, patch.Apply)
		return ok
	})
}

// RemoveWorkArea drops the area with id. Labor items that reference it keep
// the dangling id; it simply resolves to no name.
func (c *Container) RemoveWorkArea(id string) {
	c.mutate(func(d *domain.SOWData) bool {
		var ok bool
		d.WorkAreas, ok = removeByID(d.WorkAreas, id, func(w domain.WorkArea) string { return w.ID })
		return ok
	})
}

func (c *Container) RemoveLaborItem(id string) {
	c.mutate(func(d *domain.SOWData) bool {
		var ok bool
		d.LaborItems, ok = removeByID(d.LaborItems, id, func(l domain.LaborItem) string { return l.ID })
		return ok
	})
}

func (c *Container) RemoveMaterialItem(id string) {
	c.mutate(func(d *domain.SOWData) bool {
		var ok bool
		d.MaterialItems, ok = removeByID(d.MaterialItems, id, func(m domain.MaterialItem) string { return m.ID })
		return ok
	})
}

// AffectedAreaNames resolves a labor item's area ids to the current area
// names, in the item's order. Ids of removed areas are skipped.
func (c *Container) AffectedAreaNames(item domain.LaborItem) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ResolveAreaNames(c.data.WorkAreas, item.AffectedAreaIDs)
}

func ResolveAreaNames(areas []domain.WorkArea, ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		for _, w := range areas {
			if w.ID == id {
				names = append(names, w.Name)
				break
			}
		}
	}
	return names
}

// Save writes the whole current snapshot to the project's preferences. On
// success the container adopts the new version. On failure the in-memory
// state is left as it was, a destructive notification is emitted and the
// error is returned; nothing is retried.
func (c *Container) Save(ctx context.Context) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.RLock()
	snapshot := c.data.Clone()
	expected := c.version
	rev := c.revision
	c.mu.RUnlock()

	c.logger.Info("sow save started", "project_id", c.projectID, "version", expected,
		"work_areas", len(snapshot.WorkAreas), "labor_items", len(snapshot.LaborItems), "material_items", len(snapshot.MaterialItems))

	newVersion, err := c.saver.SaveSOW(ctx, c.projectID, snapshot, expected)
	if err != nil {
		c.logger.Error("sow save failed", "project_id", c.projectID, "version", expected, "error", err)
		c.notifier.Notify(ctx, notify.Failure(c.projectID, "Failed to save statement of work", describe(err)))
		return fmt.Errorf("failed to save statement of work: %w", err)
	}

	c.mu.Lock()
	c.version = newVersion
	c.savedRev = rev
	c.mu.Unlock()

	c.logger.Info("sow save complete", "project_id", c.projectID, "version", newVersion)
	c.notifier.Notify(ctx, notify.Success(c.projectID, "Statement of work saved", ""))
	return nil
}

func describe(err error) error {
	if errors.Is(err, errs.ErrVersionConflict) {
		return errors.New("the project was changed elsewhere; reload it and apply your edits again")
	}
	return err
}

func appendCopy[T any](s []T, item T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return append(out, item)
}

func containsID[T any](s []T, id string, idOf func(T) string) bool {
	for _, item := range s {
		if idOf(item) == id {
			return true
		}
	}
	return false
}

func updateByID[T any](s []T, id string, idOf func(T) string, apply func(T) T) ([]T, bool) {
	for i := range s {
		if idOf(s[i]) == id {
			out := make([]T, len(s))
			copy(out, s)
			out[i] = apply(s[i])
			return out, true
		}
	}
	return s, false
}

func removeByID[T any](s []T, id string, idOf func(T) string) ([]T, bool) {
	out := make([]T, 0, len(s))
	for _, item := range s {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	if len(out) == len(s) {
		return s, false
	}
	return out, true
}
