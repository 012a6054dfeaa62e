//go:build wireinject
// +build wireinject

package onboarding

import (
	"github.com/google/wire"

	"github.com/esouk/onboarding/internal/onboarding/client"
	"github.com/esouk/onboarding/internal/onboarding/delivery/http"
	"github.com/esouk/onboarding/internal/onboarding/domain"
	"github.com/esouk/onboarding/internal/onboarding/repository"
	"github.com/esouk/onboarding/internal/onboarding/session"
	"github.com/esouk/onboarding/internal/onboarding/usecase/command"
	"github.com/esouk/onboarding/internal/onboarding/usecase/query"
	"github.com/esouk/onboarding/pkg/backend"
)

// ProvideSessionDependencies wires the backend client, store and publisher into sessions
func ProvideSessionDependencies(api *backend.Client, images domain.ImageStore, store repository.Store, events domain.EventPublisher) session.Dependencies {
	backendClient := client.NewBackendClient(api, images)
	return session.Dependencies{
		Shops:    backendClient,
		Products: backendClient,
		Store:    store,
		Events:   events,
		Images:   images,
	}
}

// Command Handlers Providers
func ProvideCreateShopHandler(sessions *session.Registry, images domain.ImageStore) *command.CreateShopHandler {
	return command.NewCreateShopHandler(sessions, images)
}

func ProvidePrepareShopHandler(sessions *session.Registry, images domain.ImageStore) *command.PrepareShopHandler {
	return command.NewPrepareShopHandler(sessions, images)
}

func ProvideConfirmShopHandler(sessions *session.Registry) *command.ConfirmShopHandler {
	return command.NewConfirmShopHandler(sessions)
}

func ProvideCancelShopHandler(sessions *session.Registry) *command.CancelShopHandler {
	return command.NewCancelShopHandler(sessions)
}

func ProvideEditProductHandler(sessions *session.Registry) *command.EditProductHandler {
	return command.NewEditProductHandler(sessions)
}

func ProvideAttachImageHandler(sessions *session.Registry, images domain.ImageStore) *command.AttachImageHandler {
	return command.NewAttachImageHandler(sessions, images)
}

func ProvideRemoveImageHandler(sessions *session.Registry, images domain.ImageStore) *command.RemoveImageHandler {
	return command.NewRemoveImageHandler(sessions, images)
}

func ProvideSubmitProductHandler(sessions *session.Registry, images domain.ImageStore) *command.SubmitProductHandler {
	return command.NewSubmitProductHandler(sessions, images)
}

func ProvideResetProductHandler(sessions *session.Registry, images domain.ImageStore) *command.ResetProductHandler {
	return command.NewResetProductHandler(sessions, images)
}

func ProvideGoToStepHandler(sessions *session.Registry) *command.GoToStepHandler {
	return command.NewGoToStepHandler(sessions)
}

func ProvideCompleteHandler(sessions *session.Registry) *command.CompleteHandler {
	return command.NewCompleteHandler(sessions)
}

func ProvideResetHandler(sessions *session.Registry, images domain.ImageStore) *command.ResetHandler {
	return command.NewResetHandler(sessions, images)
}

// Query Handlers Providers
func ProvideGetStateHandler(sessions *session.Registry) *query.GetStateHandler {
	return query.NewGetStateHandler(sessions)
}

func ProvideGetProgressHandler(sessions *session.Registry) *query.GetProgressHandler {
	return query.NewGetProgressHandler(sessions)
}

func ProvideGetProductHandler(sessions *session.Registry) *query.GetProductHandler {
	return query.NewGetProductHandler(sessions)
}

// Wire sets
var SessionSet = wire.NewSet(
	ProvideSessionDependencies,
	session.NewRegistry,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreateShopHandler,
	ProvidePrepareShopHandler,
	ProvideConfirmShopHandler,
	ProvideCancelShopHandler,
	ProvideEditProductHandler,
	ProvideAttachImageHandler,
	ProvideRemoveImageHandler,
	ProvideSubmitProductHandler,
	ProvideResetProductHandler,
	ProvideGoToStepHandler,
	ProvideCompleteHandler,
	ProvideResetHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetStateHandler,
	ProvideGetProgressHandler,
	ProvideGetProductHandler,
)

var AllHandlersSet = wire.NewSet(
	SessionSet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(api *backend.Client, images domain.ImageStore, store repository.Store, events domain.EventPublisher) (*http.OnboardingHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewOnboardingHandlerWithDI,
	)
	return nil, nil
}
