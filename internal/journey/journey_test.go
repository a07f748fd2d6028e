package journey

import (
	"errors"
	"testing"

	"dealdesk/pkg/types"
)

func TestNewProgressShape(t *testing.T) {
	p := NewProgress("user1", types.RoleSeller)

	if p.CurrentStep != 0 {
		t.Fatalf("expected current step 0, got %d", p.CurrentStep)
	}
	if len(p.Steps) != StepCount {
		t.Fatalf("expected %d steps, got %d", StepCount, len(p.Steps))
	}
	for i, step := range p.Steps {
		if step.ID != i {
			t.Fatalf("steps[%d].ID = %d, want %d", i, step.ID, i)
		}
		if step.Completed {
			t.Fatalf("steps[%d] unexpectedly completed", i)
		}
		if step.CompletedAt != nil {
			t.Fatalf("steps[%d] unexpectedly has CompletedAt", i)
		}
	}
}

func TestCompleteStepAdvancesCurrent(t *testing.T) {
	p := NewProgress("user1", types.RoleSeller)

	changed, err := CompleteStep(p, 0, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatal("expected change")
	}
	if p.CurrentStep != 1 {
		t.Fatalf("expected current step 1, got %d", p.CurrentStep)
	}
	if !p.Steps[0].Completed || p.Steps[0].CompletedAt == nil {
		t.Fatal("step 0 should be completed with a timestamp")
	}
}

func TestCompleteStepScenario(t *testing.T) {
	// Seller at step 2 with the first two steps done.
	p := NewProgress("seller", types.RoleSeller)
	for i := 0; i < 2; i++ {
		if _, err := CompleteStep(p, i, true); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	if p.CurrentStep != 2 {
		t.Fatalf("setup: expected current step 2, got %d", p.CurrentStep)
	}

	if _, err := CompleteStep(p, 2, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.CurrentStep != 3 {
		t.Fatalf("expected current step 3, got %d", p.CurrentStep)
	}
	if !p.Steps[2].Completed {
		t.Fatal("step 2 should be completed")
	}
}

func TestCompleteStepBehindCurrentDoesNotRegress(t *testing.T) {
	p := NewProgress("user1", types.RoleBuyer)
	for i := 0; i < 3; i++ {
		if _, err := CompleteStep(p, i, true); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	// Re-completing an already-passed step must not move current.
	if _, err := CompleteStep(p, 1, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.CurrentStep != 3 {
		t.Fatalf("expected current step 3, got %d", p.CurrentStep)
	}

	// Clearing a passed step is refused: it stays completed.
	changed, err := CompleteStep(p, 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatal("clearing a passed step should be a no-op")
	}
	if !p.Steps[1].Completed {
		t.Fatal("passed step must stay completed")
	}
	if p.CurrentStep != 3 {
		t.Fatalf("current step regressed to %d", p.CurrentStep)
	}
}

func TestCompleteStepCapsAtFinal(t *testing.T) {
	p := NewProgress("user1", types.RoleSeller)
	for i := 0; i < StepCount; i++ {
		if _, err := CompleteStep(p, i, true); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	if p.CurrentStep != FinalStep {
		t.Fatalf("expected current step capped at %d, got %d", FinalStep, p.CurrentStep)
	}
	if !p.Steps[FinalStep].Completed {
		t.Fatal("final step should be completed")
	}
}

func TestCompleteStepFalseDoesNotAdvance(t *testing.T) {
	p := NewProgress("user1", types.RoleSeller)

	if _, err := CompleteStep(p, 0, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.CurrentStep != 0 {
		t.Fatalf("expected current step 0, got %d", p.CurrentStep)
	}
}

func TestCompleteStepRejectsOutOfRange(t *testing.T) {
	p := NewProgress("user1", types.RoleSeller)

	for _, stepID := range []int{-1, StepCount, 99} {
		_, err := CompleteStep(p, stepID, true)
		var verr *types.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("step %d: expected validation error, got %v", stepID, err)
		}
	}
}

func TestMarkVisitedIdempotent(t *testing.T) {
	p := NewProgress("user1", types.RoleBuyer)

	changed, err := MarkVisited(p, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatal("first visit should change state")
	}

	changed, err = MarkVisited(p, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatal("second visit should be a no-op")
	}
	if len(p.VisitedSteps) != 1 {
		t.Fatalf("expected one visited step, got %d", len(p.VisitedSteps))
	}

	// Visits never touch completion or the current step.
	if p.CurrentStep != 0 || p.Steps[4].Completed {
		t.Fatal("visit must not affect completion state")
	}
}

func TestStepLabels(t *testing.T) {
	if got := StepLabel(types.RoleSeller, 0); got != "Messages" {
		t.Fatalf("unexpected seller label: %q", got)
	}
	if got := StepLabel(types.RoleBuyer, 1); got != "Non-Disclosure Agreement" {
		t.Fatalf("unexpected buyer label: %q", got)
	}
	if got := StepLabel(types.RoleBroker, 1); got != "Listing Agreement" {
		t.Fatalf("broker should see the seller sequence, got %q", got)
	}
	if got := StepLabel(types.RoleSeller, 42); got != "Unknown" {
		t.Fatalf("unexpected out-of-range label: %q", got)
	}
}
