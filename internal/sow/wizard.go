package sow

import (
	"fmt"
	"sync"

	"github.com/vbonduro/renovo/internal/errs"
)

type Step string

const (
	StepWorkAreas Step = "work-areas"
	StepLabor     Step = "labor"
	StepMaterials Step = "materials"
	StepReview    Step = "review"
)

// Steps is the fixed, linear wizard order.
var Steps = []Step{StepWorkAreas, StepLabor, StepMaterials, StepReview}

// Wizard tracks the active step. Finishing does not save; saving is a
// separate action offered at the review step.
type Wizard struct {
	mu       sync.Mutex
	current  Step
	finished bool
}

func NewWizard() *Wizard {
	return &Wizard{current: StepWorkAreas}
}

func (w *Wizard) Current() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Wizard) Finished() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finished
}

// Next advances one step; it is a no-op at review.
func (w *Wizard) Next() Step {
	return w.move(1)
}

// Back moves one step backward; it is a no-op at work-areas.
func (w *Wizard) Back() Step {
	return w.move(-1)
}

func (w *Wizard) move(delta int) Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := indexOf(w.current) + delta
	if i >= 0 && i < len(Steps) {
		w.current = Steps[i]
	}
	return w.current
}

// CanSave reports whether the save action is offered at the current step.
func (w *Wizard) CanSave() bool {
	return w.Current() == StepReview
}

// Finish marks the wizard done. It is only available at review.
func (w *Wizard) Finish() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current != StepReview {
		return fmt.Errorf("finish at %s: %w", w.current, errs.ErrInvalidStep)
	}
	w.finished = true
	return nil
}

func indexOf(s Step) int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return 0
}
