//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"linkscope-backend/application/commands/bus"
	"linkscope-backend/application/ports"
	querybus "linkscope-backend/application/queries/bus"
	appservices "linkscope-backend/application/services"
	"linkscope-backend/infrastructure/config"
	"linkscope-backend/interfaces/http/rest"
	"linkscope-backend/interfaces/websocket"
	"linkscope-backend/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Clock      ports.Clock
	Metrics    *observability.Metrics
	Hub        *websocket.Hub
	Source     ports.FindingSource
	Service    *appservices.InvestigationService
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Router     *rest.Router
}

// SuperSet is the main provider set containing all providers.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideClock,
	ProvideMetrics,
	ProvideBuilder,
	ProvideReconciler,
	ProvideHub,
	ProvideFramePublisher,
	ProvideFindingSource,
	ProvideFindingSink,
	ProvideInvestigationService,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container.
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
