package types

import "time"

// StepRecord is one entry in the fixed-length journey step sequence. The
// slice is persisted as a jsonb column, insertion order equals step order.
type StepRecord struct {
	ID          int        `json:"id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Progress struct {
	UserID            string       `db:"user_id" json:"userId"`
	Role              Role         `db:"role" json:"role"`
	CurrentStep       int          `db:"current_step" json:"currentStep"`
	Steps             []StepRecord `db:"steps" json:"steps"`
	VisitedSteps      []int        `db:"visited_steps" json:"visitedSteps"`
	SelectedListingID *string      `db:"selected_listing_id" json:"selectedListingId,omitempty"`
	CreatedAt         time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time    `db:"updated_at" json:"updatedAt"`
}

// Visited reports whether the step was previously recorded by a page visit.
func (p *Progress) Visited(stepID int) bool {
	for _, v := range p.VisitedSteps {
		if v == stepID {
			return true
		}
	}
	return false
}
