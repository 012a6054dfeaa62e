package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/internal/onboarding/wizard"
	"github.com/esouk/onboarding/pkg/logger"
	"github.com/esouk/onboarding/pkg/validation"
)

// Dependencies are the collaborators a session talks to. Store, Events and
// Images are optional. Images is where staged shop logos are released.
type Dependencies struct {
	Shops    domain.ShopCreator
	Products domain.ProductCreator
	Store    domain.StateStore
	Events   domain.EventPublisher
	Images   domain.ImageStore
}

// Session owns the onboarding wizard of one vendor
type Session struct {
	mu       sync.Mutex
	vendorID string
	deps     Dependencies

	state       domain.State
	pendingShop *domain.ShopRequest
	product     *wizard.ProductAssembly
	inFlight    bool
	version     uint64 // bumped under mu for every state change

	// pubMu orders publication; published is the last version handed out
	pubMu     sync.Mutex
	published uint64

	subject *Subject
}

func New(vendorID string, deps Dependencies) *Session {
	state := domain.NewState()
	return &Session{
		vendorID: vendorID,
		deps:     deps,
		state:    state,
		product:  wizard.NewProductAssembly(),
		subject:  NewSubject(state),
	}
}

func (s *Session) VendorID() string { return s.vendorID }

// State returns a copy of the current state
func (s *Session) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe delivers the current state and then every change
func (s *Session) Subscribe() *Subscription {
	return s.subject.Subscribe()
}

// Close ends all subscriptions of this session
func (s *Session) Close() {
	s.subject.Close()
}

// PendingShop returns the shop data awaiting confirmation, if any
func (s *Session) PendingShop() *domain.ShopRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingShop == nil {
		return nil
	}
	shop := *s.pendingShop
	return &shop
}

// ValidateShop normalizes a shop form and checks it against the form rules
func ValidateShop(req domain.ShopRequest) (domain.ShopRequest, error) {
	req = normalizeShop(req)
	if err := validation.Struct(req); err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidShop, err)
	}
	return req, nil
}

// PrepareShop validates the shop form and holds it until ConfirmShop. The
// session owns req.Logo from here on: it is released when the form is
// rejected, replaced, cancelled or turned into a shop.
func (s *Session) PrepareShop(ctx context.Context, req domain.ShopRequest) error {
	req, err := ValidateShop(req)
	if err != nil {
		s.releaseLogo(ctx, req.Logo)
		return err
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.releaseLogo(ctx, req.Logo)
		return ErrRequestInFlight
	}
	if s.state.ShopID != "" {
		s.mu.Unlock()
		s.releaseLogo(ctx, req.Logo)
		return ErrInvalidTransition
	}
	replaced := s.pendingShop
	s.pendingShop = &req
	s.mu.Unlock()

	if replaced != nil && !sameLogo(replaced.Logo, req.Logo) {
		s.releaseLogo(ctx, replaced.Logo)
	}

	shop := req
	shop.Logo = nil
	s.emit(ctx, domain.Event{Type: domain.EventShopReady, Shop: &shop})
	return nil
}

// CancelShop drops the pending shop data and its staged logo
func (s *Session) CancelShop(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrRequestInFlight
	}
	dropped := s.pendingShop
	s.pendingShop = nil
	s.mu.Unlock()

	if dropped != nil {
		s.releaseLogo(ctx, dropped.Logo)
	}
	return nil
}

// ConfirmShop creates the shop prepared with PrepareShop. The pending data is
// taken for the duration of the call; a failed attempt puts it back, logo
// included, for a retry.
func (s *Session) ConfirmShop(ctx context.Context) (*domain.ShopCreated, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	if s.pendingShop == nil {
		s.mu.Unlock()
		return nil, ErrNoPendingShop
	}
	req := *s.pendingShop
	s.pendingShop = nil
	s.mu.Unlock()

	created, err := s.createShop(ctx, req)

	s.mu.Lock()
	newer := s.pendingShop
	if err == nil {
		s.pendingShop = nil
	} else if newer == nil {
		s.pendingShop = &req
	}
	s.mu.Unlock()

	replaced := newer != nil && !sameLogo(newer.Logo, req.Logo)
	if err != nil {
		if replaced {
			s.releaseLogo(ctx, req.Logo)
		}
		return nil, err
	}
	s.releaseLogo(ctx, req.Logo)
	if replaced {
		s.releaseLogo(ctx, newer.Logo)
	}
	return created, nil
}

// CreateShop validates and creates a shop in one call. The staged logo of req
// is released once the call is over, whatever its outcome.
func (s *Session) CreateShop(ctx context.Context, req domain.ShopRequest) (*domain.ShopCreated, error) {
	defer s.releaseLogo(ctx, req.Logo)
	return s.createShop(ctx, req)
}

// createShop sends the shop to the backend and moves the wizard to ADD_PRODUCTS.
// On failure the state is left as it was.
func (s *Session) createShop(ctx context.Context, req domain.ShopRequest) (*domain.ShopCreated, error) {
	req, err := ValidateShop(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	if s.state.ShopID != "" {
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	s.inFlight = true
	s.mu.Unlock()

	created, err := s.deps.Shops.CreateShop(ctx, req)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.mu.Unlock()
		logger.ForVendor(ctx, s.vendorID).Warn().Err(err).Msg("Shop creation failed")
		return nil, err
	}
	if created == nil || strings.TrimSpace(created.ID) == "" {
		s.mu.Unlock()
		return nil, ErrEmptyShopID
	}

	shop := req
	shop.Logo = nil
	s.state.ShopID = created.ID
	s.state.ShopData = &shop
	s.state.CurrentStep = domain.StepAddProducts
	snapshot, version := s.stampLocked()
	s.mu.Unlock()

	logger.ForVendor(ctx, s.vendorID).Info().Str("shop_id", created.ID).Msg("Shop created")
	s.changed(ctx, snapshot, version)
	return created, nil
}

// EditProduct runs fn against the product wizard and returns its view afterwards.
// Edits are refused while a submission is in flight.
func (s *Session) EditProduct(fn func(a *wizard.ProductAssembly) error) (wizard.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return s.product.View(), ErrRequestInFlight
	}
	err := fn(s.product)
	return s.product.View(), err
}

// ProductView returns the product wizard as it stands
func (s *Session) ProductView() wizard.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.product.View()
}

// AddProduct submits the product being assembled. On success its summary is
// appended to the state and the wizard starts over for the next product; on
// failure everything entered stays in place for a retry.
func (s *Session) AddProduct(ctx context.Context) (domain.ProductSummary, error) {
	summary, _, err := s.SubmitProduct(ctx)
	return summary, err
}

// SubmitProduct is AddProduct that also returns the images sent with the
// accepted product, so the caller can release exactly those.
func (s *Session) SubmitProduct(ctx context.Context) (domain.ProductSummary, []domain.ImageRef, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return domain.ProductSummary{}, nil, ErrRequestInFlight
	}
	submission, err := s.product.Payload(s.state.ShopID)
	if err != nil {
		s.mu.Unlock()
		return domain.ProductSummary{}, nil, err
	}
	s.inFlight = true
	s.mu.Unlock()

	created, err := s.deps.Products.CreateProduct(ctx, submission)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.product.Reject(err)
		s.mu.Unlock()
		logger.ForVendor(ctx, s.vendorID).Warn().Err(err).Str("product", submission.Name).Msg("Product submission failed")
		return domain.ProductSummary{}, nil, err
	}

	summary := s.product.Accept(submission, created)
	s.state.Products = append(s.state.Products, summary)
	snapshot, version := s.stampLocked()
	s.mu.Unlock()

	logger.ForVendor(ctx, s.vendorID).Info().
		Str("product_id", summary.ID).
		Int("variants", summary.VariantCount).
		Int("total_stock", summary.TotalStock).
		Msg("Product added")

	s.changed(ctx, snapshot, version)
	s.emit(ctx, domain.Event{Type: domain.EventProductAdded, ShopID: snapshot.ShopID, Product: &summary, Products: len(snapshot.Products)})
	return summary, submission.Images, nil
}

// GoToStep moves the wizard to step. Entering ADD_PRODUCTS or COMPLETED needs a
// shop; going back to CREATE_SHOP forgets it.
func (s *Session) GoToStep(ctx context.Context, step domain.Step) error {
	s.mu.Lock()
	snapshot, version, err := s.moveLocked(step)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.changed(ctx, snapshot, version)
	return nil
}

// GoToNextStep advances one step, stopping at COMPLETED
func (s *Session) GoToNextStep(ctx context.Context) error {
	s.mu.Lock()
	if s.state.CurrentStep >= domain.StepCompleted {
		s.mu.Unlock()
		return nil
	}
	snapshot, version, err := s.moveLocked(s.state.CurrentStep + 1)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.changed(ctx, snapshot, version)
	return nil
}

// GoToPreviousStep goes back one step, stopping at CREATE_SHOP
func (s *Session) GoToPreviousStep(ctx context.Context) error {
	s.mu.Lock()
	if s.state.CurrentStep <= domain.StepCreateShop {
		s.mu.Unlock()
		return nil
	}
	snapshot, version, err := s.moveLocked(s.state.CurrentStep - 1)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.changed(ctx, snapshot, version)
	return nil
}

// Complete finishes the onboarding
func (s *Session) Complete(ctx context.Context) error {
	s.mu.Lock()
	snapshot, version, err := s.moveLocked(domain.StepCompleted)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	logger.ForVendor(ctx, s.vendorID).Info().Int("products", len(snapshot.Products)).Msg("Onboarding completed")
	s.changed(ctx, snapshot, version)
	s.emit(ctx, domain.Event{Type: domain.EventCompleted, ShopID: snapshot.ShopID, Products: len(snapshot.Products)})
	return nil
}

func (s *Session) moveLocked(step domain.Step) (domain.State, uint64, error) {
	if !step.Valid() {
		return domain.State{}, 0, ErrInvalidTransition
	}
	if s.inFlight {
		return domain.State{}, 0, ErrRequestInFlight
	}
	if step.NeedsShop() && s.state.ShopID == "" {
		return domain.State{}, 0, ErrInvalidTransition
	}
	if !step.NeedsShop() {
		s.state.ShopID = ""
		s.state.ShopData = nil
	}
	s.state.CurrentStep = step
	snapshot, version := s.stampLocked()
	return snapshot, version, nil
}

// IsOnboardingComplete is true once completed with a shop and at least one product
func (s *Session) IsOnboardingComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return IsComplete(s.state)
}

// ProgressPercentage reports wizard progress between 0 and 100
func (s *Session) ProgressPercentage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress(s.state)
}

// Reset returns the session to a fresh wizard
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrRequestInFlight
	}
	dropped := s.pendingShop
	s.state = domain.NewState()
	s.pendingShop = nil
	s.product.ResetForNewProduct()
	snapshot, version := s.stampLocked()
	s.mu.Unlock()

	if dropped != nil {
		s.releaseLogo(ctx, dropped.Logo)
	}
	s.changed(ctx, snapshot, version)
	return nil
}

func (s *Session) releaseLogo(ctx context.Context, logo *domain.ImageRef) {
	if logo == nil || logo.Key == "" || s.deps.Images == nil {
		return
	}
	if err := s.deps.Images.Delete(ctx, logo.Key); err != nil {
		logger.ForVendor(ctx, s.vendorID).Warn().Err(err).Str("key", logo.Key).Msg("Failed to release staged logo")
	}
}

func sameLogo(a, b *domain.ImageRef) bool {
	return a != nil && b != nil && a.Key == b.Key
}

// stampLocked copies the state under a new version. The caller holds mu.
func (s *Session) stampLocked() (domain.State, uint64) {
	s.version++
	return s.state.Clone(), s.version
}

// changed publishes and saves a snapshot unless a newer version already went
// out. Snapshots are published one at a time, in version order.
func (s *Session) changed(ctx context.Context, snapshot domain.State, version uint64) {
	s.publish(ctx, snapshot, version, true)
}

func (s *Session) publish(ctx context.Context, snapshot domain.State, version uint64, save bool) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	if version <= s.published {
		return
	}
	s.published = version
	s.subject.Next(snapshot)
	if save {
		s.persist(ctx, snapshot)
	}
}

func (s *Session) emit(ctx context.Context, event domain.Event) {
	if s.deps.Events == nil {
		return
	}
	event.VendorID = s.vendorID
	if err := s.deps.Events.Publish(ctx, event); err != nil {
		logger.ForVendor(ctx, s.vendorID).Warn().Err(err).Str("event_type", string(event.Type)).Msg("Failed to publish onboarding event")
	}
}

// IsComplete reports whether state is a finished onboarding
func IsComplete(state domain.State) bool {
	return state.CurrentStep == domain.StepCompleted && state.ShopID != "" && len(state.Products) > 0
}

// Progress computes the wizard progress of state between 0 and 100
func Progress(state domain.State) int {
	pct := (int(state.CurrentStep) - 1) * 50
	if state.CurrentStep == domain.StepAddProducts {
		pct += min(10*len(state.Products), 40)
	}
	return max(0, min(pct, 100))
}

func normalizeShop(req domain.ShopRequest) domain.ShopRequest {
	req.BrandName = strings.TrimSpace(req.BrandName)
	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)
	req.CategoryName = strings.TrimSpace(req.CategoryName)
	req.InstagramLink = strings.TrimSpace(req.InstagramLink)
	req.FacebookLink = strings.TrimSpace(req.FacebookLink)
	return req
}
