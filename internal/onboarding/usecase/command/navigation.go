package command

import (
	"context"
	"fmt"

	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/internal/onboarding/session"
)

// Direction selects a relative move through the wizard
type Direction string

const (
	DirectionNone     Direction = ""
	DirectionNext     Direction = "next"
	DirectionPrevious Direction = "previous"
)

// GoToStepCommand moves the wizard either to Step or one step in Direction
type GoToStepCommand struct {
	VendorID  string
	Step      domain.Step
	Direction Direction
}

// GoToStepHandler handles wizard navigation
type GoToStepHandler struct {
	sessions *session.Registry
}

func NewGoToStepHandler(sessions *session.Registry) *GoToStepHandler {
	return &GoToStepHandler{sessions: sessions}
}

func (h *GoToStepHandler) Handle(ctx context.Context, cmd GoToStepCommand) (domain.State, error) {
	s := h.sessions.Get(ctx, cmd.VendorID)

	var err error
	switch cmd.Direction {
	case DirectionNext:
		err = s.GoToNextStep(ctx)
	case DirectionPrevious:
		err = s.GoToPreviousStep(ctx)
	case DirectionNone:
		err = s.GoToStep(ctx, cmd.Step)
	default:
		err = fmt.Errorf("%w: unknown direction %q", session.ErrInvalidTransition, cmd.Direction)
	}
	return s.State(), err
}

// CompleteCommand finishes the onboarding
type CompleteCommand struct {
	VendorID string
}

// CompleteHandler handles onboarding completion
type CompleteHandler struct {
	sessions *session.Registry
}

func NewCompleteHandler(sessions *session.Registry) *CompleteHandler {
	return &CompleteHandler{sessions: sessions}
}

func (h *CompleteHandler) Handle(ctx context.Context, cmd CompleteCommand) (domain.State, error) {
	s := h.sessions.Get(ctx, cmd.VendorID)
	if err := s.Complete(ctx); err != nil {
		return s.State(), err
	}
	completions.Inc()
	return s.State(), nil
}

// ResetCommand throws the whole onboarding away
type ResetCommand struct {
	VendorID string
}

// ResetHandler resets the session and clears its stored snapshot
type ResetHandler struct {
	sessions *session.Registry
	images   domain.ImageStore
}

func NewResetHandler(sessions *session.Registry, images domain.ImageStore) *ResetHandler {
	return &ResetHandler{sessions: sessions, images: images}
}

func (h *ResetHandler) Handle(ctx context.Context, cmd ResetCommand) (domain.State, error) {
	s := h.sessions.Get(ctx, cmd.VendorID)
	staged := s.ProductView().Images

	if err := s.Reset(ctx); err != nil {
		return s.State(), err
	}
	s.Clear(ctx)
	releaseImages(ctx, h.images, staged)
	return s.State(), nil
}
