package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Progress struct {
	TotalQuestions    int   `json:"total_questions"`
	AnsweredQuestions int   `json:"answered_questions"`
	CurrentStage      Stage `json:"current_stage"`
	Stage1Completed   bool  `json:"stage1_completed"`
	Stage2Completed   bool  `json:"stage2_completed"`
	Stage3Completed   bool  `json:"stage3_completed"`
	IsCompleted       bool  `json:"is_completed"`
}

type Status struct {
	IsCompleted bool     `json:"is_completed"`
	Progress    Progress `json:"progress"`
}

// DefaultProgress is reported whenever progress cannot be computed. It may
// under-report, never over-report.
func DefaultProgress() Progress {
	return Progress{CurrentStage: Stage1}
}

// GetProgress computes the snapshot for one organization. It does not check
// membership.
func (s *Service) GetProgress(ctx context.Context, orgID uuid.UUID) (Progress, error) {
	var (
		fields     []Field
		completion SetupCompletion
		found      bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fields, err = s.store.ListFields(gctx, orgID)
		return err
	})
	g.Go(func() error {
		c, err := s.store.GetCompletion(gctx, orgID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		completion, found = c, true
		return nil
	})
	if err := g.Wait(); err != nil {
		return DefaultProgress(), fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return assemble(fields, completion, found)
}

func assemble(fields []Field, completion SetupCompletion, found bool) (Progress, error) {
	cls := Classify(fields)
	if err := cls.Validate(); err != nil {
		return DefaultProgress(), err
	}
	answered := 0
	for _, f := range fields {
		if f.IsAnswered() {
			answered++
		}
	}
	p := Progress{
		TotalQuestions:    len(fields),
		AnsweredQuestions: answered,
		CurrentStage:      cls.Stage,
		Stage1Completed:   cls.Stage1Completed,
		Stage2Completed:   cls.Stage2Completed,
		Stage3Completed:   cls.Stage3Completed,
		IsCompleted:       found && completion.IsCompleted(),
	}
	return p, nil
}

// GetOnboardingStatus never mutates. Datastore failures collapse to the
// default snapshot; only a definite NotFound or AccessDenied is returned.
func (s *Service) GetOnboardingStatus(ctx context.Context, userID int64, orgID uuid.UUID) (Status, error) {
	def := Status{Progress: DefaultProgress()}
	if err := s.Authorize(ctx, userID, orgID); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccessDenied) {
			return def, err
		}
		s.log.Warn("onboarding status authorization lookup failed", "organization_id", orgID.String(), "error", err)
		return def, nil
	}
	p, err := s.GetProgress(ctx, orgID)
	if err != nil {
		s.log.Warn("onboarding progress fell back to default", "organization_id", orgID.String(), "error", err)
		return def, nil
	}
	return Status{IsCompleted: p.IsCompleted, Progress: p}, nil
}
