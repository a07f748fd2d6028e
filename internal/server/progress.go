package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dealdesk/internal/events"
	"dealdesk/internal/journey"
	"dealdesk/pkg/types"
)

// stepPayload is a step record plus the gate verdict and the role's label
// for the step.
type stepPayload struct {
	ID          int        `json:"id"`
	Label       string     `json:"label"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Accessible  bool       `json:"accessible"`
}

type progressPayload struct {
	CurrentStep       int           `json:"currentStep"`
	Steps             []stepPayload `json:"steps"`
	VisitedSteps      []int         `json:"visitedSteps"`
	SelectedListingID *string       `json:"selectedListingId,omitempty"`
}

func progressResponse(p *types.Progress) progressPayload {
	steps := make([]stepPayload, len(p.Steps))
	for i, step := range p.Steps {
		steps[i] = stepPayload{
			ID:          step.ID,
			Label:       journey.StepLabel(p.Role, step.ID),
			Completed:   step.Completed,
			CompletedAt: step.CompletedAt,
			Accessible:  journey.Accessible(step.ID, &p.CurrentStep),
		}
	}

	return progressPayload{
		CurrentStep:       p.CurrentStep,
		Steps:             steps,
		VisitedSteps:      p.VisitedSteps,
		SelectedListingID: p.SelectedListingID,
	}
}

// progressForUser fetches the user's progress record, lazily creating it on
// first access.
func (s *Service) progressForUser(ctx context.Context, userID string, role types.Role) (*types.Progress, error) {
	progress, err := s.progressRepo.ProgressByUser(ctx, userID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, types.ErrProgressNotFound) {
		return nil, err
	}

	progress = journey.NewProgress(userID, role)
	if err := s.progressRepo.CreateProgress(ctx, progress); err != nil {
		return nil, err
	}

	return progress, nil
}

func (s *Service) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain user")
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	progress, err := s.progressForUser(ctx, userID, role)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to load progress")
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"progress": progressResponse(progress)})
}

type updateStepRequest struct {
	StepID    *int  `json:"stepId"`
	Completed *bool `json:"completed"`
}

func (s *Service) handlePostProgressStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	var req updateStepRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if req.StepID == nil {
		s.respondError(w, types.NewValidationError("stepId", "required"))
		return
	}

	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	progress, err := s.progressForUser(ctx, userID, role)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to load progress")
		s.respondError(w, err)
		return
	}

	changed, err := journey.CompleteStep(progress, *req.StepID, completed)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if changed {
		if err := s.progressRepo.UpdateProgress(ctx, progress); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Error("failed to persist progress")
			s.respondError(w, err)
			return
		}

		s.bus.Publish(events.ProgressChanged{
			UserID:      userID,
			Role:        role,
			StepID:      *req.StepID,
			CurrentStep: progress.CurrentStep,
			At:          time.Now(),
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"progress": progressResponse(progress)})
}

type visitStepRequest struct {
	StepID *int `json:"stepId"`
}

func (s *Service) handlePostProgressVisit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	var req visitStepRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if req.StepID == nil {
		s.respondError(w, types.NewValidationError("stepId", "required"))
		return
	}

	progress, err := s.progressForUser(ctx, userID, role)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to load progress")
		s.respondError(w, err)
		return
	}

	changed, err := journey.MarkVisited(progress, *req.StepID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if changed {
		if err := s.progressRepo.UpdateProgress(ctx, progress); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Error("failed to persist visit")
			s.respondError(w, err)
			return
		}

		s.bus.Publish(events.ProgressChanged{
			UserID:      userID,
			Role:        role,
			StepID:      *req.StepID,
			CurrentStep: progress.CurrentStep,
			At:          time.Now(),
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"progress": progressResponse(progress)})
}
