package web

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/vbonduro/renovo/internal/catalog"
	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/errs"
)

// The SOW container accepts anything; these checks apply the form rules
// clients see against the catalogue.

func validateWorkArea(a domain.WorkArea) error {
	if strings.TrimSpace(a.Name) == "" {
		return errs.BadRequest("work area name is required")
	}
	switch a.Type {
	case domain.WorkAreaPrimary, domain.WorkAreaSecondary:
		return nil
	default:
		return errs.BadRequest(fmt.Sprintf("unknown work area type %q", a.Type))
	}
}

func validateLaborItem(cat *catalog.Catalog, l domain.LaborItem, areas []domain.WorkArea) error {
	if l.Category == "" {
		return errs.BadRequest("labor category is required")
	}
	if _, ok := cat.Labor[l.Category]; !ok {
		return errs.BadRequest(fmt.Sprintf("unknown labor category %q", l.Category))
	}
	if !cat.ValidLaborSubcategory(l.Category, l.Subcategory) {
		return errs.BadRequest(fmt.Sprintf("unknown subcategory %q for %s", l.Subcategory, l.Category))
	}
	for _, id := range l.AffectedAreaIDs {
		if !slices.ContainsFunc(areas, func(a domain.WorkArea) bool { return a.ID == id }) {
			return errs.BadRequest(fmt.Sprintf("unknown work area %q", id))
		}
	}
	return nil
}

func validateMaterialItem(cat *catalog.Catalog, m domain.MaterialItem) error {
	if m.Category == "" {
		return errs.BadRequest("material category is required")
	}
	if _, ok := cat.Materials[m.Category]; !ok {
		return errs.BadRequest(fmt.Sprintf("unknown material category %q", m.Category))
	}
	if unknown := cat.UnknownDetails(m.Category, m.Details); len(unknown) > 0 {
		return errs.BadRequest(fmt.Sprintf("unknown %s properties: %s", m.Category, strings.Join(unknown, ", ")))
	}
	if m.Quantity < 0 {
		return errs.BadRequest("quantity must not be negative")
	}
	return nil
}

func duplicateID(kind, id string) error {
	return errs.NewApiErr(http.StatusConflict, fmt.Sprintf("%s %q already exists", kind, id))
}

func findByID[T any](items []T, id string, idOf func(T) string) (T, bool) {
	for _, it := range items {
		if idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func workAreaID(a domain.WorkArea) string         { return a.ID }
func laborItemID(l domain.LaborItem) string       { return l.ID }
func materialItemID(m domain.MaterialItem) string { return m.ID }
