package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/pkg/logger"
)

var errBadSnapshot = errors.New("malformed onboarding snapshot")

// Save writes the current state to the store. Failures are logged only.
func (s *Session) Save(ctx context.Context) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.persist(ctx, s.State())
}

// Load restores the last saved state. Missing or malformed snapshots leave the
// session untouched; the return value reports whether a snapshot was applied.
func (s *Session) Load(ctx context.Context) bool {
	if s.deps.Store == nil {
		return false
	}

	raw, err := s.deps.Store.Load(ctx, s.vendorID)
	if err != nil {
		logger.ForVendor(ctx, s.vendorID).Warn().Err(err).Msg("Failed to load onboarding state")
		return false
	}
	if len(raw) == 0 {
		return false
	}

	state, err := decodeSnapshot(raw)
	if err != nil {
		logger.ForVendor(ctx, s.vendorID).Warn().Err(err).Msg("Ignoring stored onboarding state")
		return false
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return false
	}
	s.state = state
	snapshot, version := s.stampLocked()
	s.mu.Unlock()

	s.publish(ctx, snapshot, version, false)
	return true
}

// Clear removes the stored snapshot. The in-memory state is kept.
func (s *Session) Clear(ctx context.Context) {
	if s.deps.Store == nil {
		return
	}
	if err := s.deps.Store.Delete(ctx, s.vendorID); err != nil {
		logger.ForVendor(ctx, s.vendorID).Warn().Err(err).Msg("Failed to clear onboarding state")
	}
}

func (s *Session) persist(ctx context.Context, state domain.State) {
	if s.deps.Store == nil {
		return
	}

	raw, err := json.Marshal(state)
	if err != nil {
		logger.ForVendor(ctx, s.vendorID).Warn().Err(err).Msg("Failed to encode onboarding state")
		return
	}
	if err := s.deps.Store.Save(ctx, s.vendorID, raw); err != nil {
		logger.ForVendor(ctx, s.vendorID).Warn().Err(err).Msg("Failed to save onboarding state")
	}
}

type snapshot struct {
	CurrentStep *domain.Step        `json:"currentStep"`
	ShopID      string              `json:"shopId"`
	ShopData    *domain.ShopRequest `json:"shopData"`
	Products    json.RawMessage     `json:"products"`
}

func decodeSnapshot(raw []byte) (domain.State, error) {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.State{}, err
	}
	if snap.CurrentStep == nil || !snap.CurrentStep.Valid() {
		return domain.State{}, errBadSnapshot
	}

	products := bytes.TrimSpace(snap.Products)
	if len(products) == 0 || products[0] != '[' {
		return domain.State{}, errBadSnapshot
	}

	state := domain.State{CurrentStep: *snap.CurrentStep, ShopID: snap.ShopID, ShopData: snap.ShopData}
	if err := json.Unmarshal(products, &state.Products); err != nil {
		return domain.State{}, err
	}
	if state.Products == nil {
		state.Products = []domain.ProductSummary{}
	}
	if state.CurrentStep.NeedsShop() != (state.ShopID != "") {
		return domain.State{}, errBadSnapshot
	}
	return state, nil
}
