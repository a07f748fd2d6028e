// Package journey holds the step-progress state machine shared by the seller
// and buyer flows. The journey is strictly linear: a fixed sequence of steps,
// a current step index that only moves forward, and per-step completion
// flags. All persistence lives in internal/store; this package only applies
// transitions to an in-memory Progress.
package journey

import (
	"time"

	"dealdesk/pkg/types"
)

const (
	// StepCount is the fixed length of both the seller and buyer journeys.
	StepCount = 11
	// FinalStep is the last valid step index.
	FinalStep = StepCount - 1
)

var sellerStepLabels = [StepCount]string{
	"Messages",
	"Listing Agreement",
	"Seller Questionnaire",
	"Financial Statements",
	"CBR / CIM",
	"Buyer Activity",
	"Purchase Contract",
	"Due Diligence",
	"Pre-Closing",
	"Closing Documents",
	"After the Sale",
}

var buyerStepLabels = [StepCount]string{
	"Messages",
	"Non-Disclosure Agreement",
	"Financial Statement",
	"CBR / CIM Review",
	"Listing Details",
	"Purchase Offer",
	"Due Diligence",
	"Financing",
	"Pre-Closing",
	"Closing Documents",
	"After the Sale",
}

// StepLabel names a step for a role. Brokers and agents see the seller
// sequence, which is the one they shepherd.
func StepLabel(role types.Role, stepID int) string {
	if stepID < 0 || stepID >= StepCount {
		return "Unknown"
	}
	if role == types.RoleBuyer {
		return buyerStepLabels[stepID]
	}
	return sellerStepLabels[stepID]
}

// NewProgress builds the lazily-initialized Progress record for a user:
// current step zero, every step incomplete, steps[i].ID == i.
func NewProgress(userID string, role types.Role) *types.Progress {
	steps := make([]types.StepRecord, StepCount)
	for i := range steps {
		steps[i] = types.StepRecord{ID: i}
	}
	now := time.Now()
	return &types.Progress{
		UserID:       userID,
		Role:         role,
		CurrentStep:  0,
		Steps:        steps,
		VisitedSteps: []int{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ValidStep reports whether stepID is inside the journey.
func ValidStep(stepID int) bool {
	return stepID >= 0 && stepID < StepCount
}

// CompleteStep applies an "update step" action to the progress record.
//
// Rules:
//   - steps[stepID].Completed is set to completed, stamping CompletedAt on
//     the false -> true transition;
//   - when stepID == CurrentStep and completed is true, CurrentStep advances
//     to stepID+1, capped at FinalStep;
//   - completed=false never regresses CurrentStep, and a step the user has
//     already moved past stays completed.
//
// Returns true when anything changed.
func CompleteStep(p *types.Progress, stepID int, completed bool) (bool, error) {
	if !ValidStep(stepID) {
		return false, types.NewValidationError("stepId", "out of range")
	}

	// Passed steps stay satisfied even if the caller tries to clear them.
	if !completed && stepID < p.CurrentStep {
		return false, nil
	}

	step := &p.Steps[stepID]
	changed := false

	if step.Completed != completed {
		step.Completed = completed
		if completed {
			now := time.Now()
			step.CompletedAt = &now
		} else {
			step.CompletedAt = nil
		}
		changed = true
	}

	if completed && stepID == p.CurrentStep && p.CurrentStep < FinalStep {
		p.CurrentStep = stepID + 1
		changed = true
	}

	if changed {
		p.UpdatedAt = time.Now()
	}

	return changed, nil
}

// MarkVisited records that a step's page was viewed. Idempotent; never
// touches completion state or the current step.
func MarkVisited(p *types.Progress, stepID int) (bool, error) {
	if !ValidStep(stepID) {
		return false, types.NewValidationError("stepId", "out of range")
	}

	if p.Visited(stepID) {
		return false, nil
	}

	p.VisitedSteps = append(p.VisitedSteps, stepID)
	p.UpdatedAt = time.Now()
	return true, nil
}
