package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"linkscope-backend/application/commands"
	"linkscope-backend/application/commands/bus"
	commandhandlers "linkscope-backend/application/commands/handlers"
	"linkscope-backend/application/ports"
	"linkscope-backend/application/queries"
	querybus "linkscope-backend/application/queries/bus"
	queryhandlers "linkscope-backend/application/queries/handlers"
	appservices "linkscope-backend/application/services"
	domainservices "linkscope-backend/domain/services"
	"linkscope-backend/infrastructure/config"
	"linkscope-backend/infrastructure/findings"
	"linkscope-backend/interfaces/http/rest"
	"linkscope-backend/interfaces/websocket"
	"linkscope-backend/pkg/observability"
	"linkscope-backend/pkg/utils"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideClock supplies the wall clock as the logical clock.
func ProvideClock() ports.Clock {
	return utils.SystemClock{}
}

// ProvideMetrics registers the Prometheus instruments on the default
// registry, which promhttp serves at /metrics.
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics(prometheus.DefaultRegisterer)
}

// ProvideBuilder creates the graph builder with the default extractors.
func ProvideBuilder(logger *zap.Logger) *domainservices.Builder {
	return domainservices.NewBuilder(logger)
}

// ProvideReconciler creates the snapshot reconciler.
func ProvideReconciler(cfg *config.Config, logger *zap.Logger) *domainservices.Reconciler {
	return domainservices.NewReconciler(cfg.SeedRadius, logger)
}

// ProvideHub creates the websocket broadcast hub.
func ProvideHub(logger *zap.Logger) *websocket.Hub {
	return websocket.NewHub(logger)
}

// ProvideFramePublisher exposes the hub through its port.
func ProvideFramePublisher(hub *websocket.Hub) ports.FramePublisher {
	return hub
}

// ProvideFindingSource selects the finding source implementation.
func ProvideFindingSource(cfg *config.Config, logger *zap.Logger) (ports.FindingSource, error) {
	switch cfg.SourceMode {
	case config.SourceMemory:
		return findings.NewMemorySource(logger), nil
	case config.SourceHTTP:
		return findings.NewHTTPSource(cfg.SourceBaseURL, cfg.SourceTimeout, cfg.SourceMaxFailures, logger), nil
	default:
		return nil, fmt.Errorf("unknown finding source mode %q", cfg.SourceMode)
	}
}

// ProvideFindingSink exposes the write side when the source has one. A nil
// sink makes the ingestion endpoint answer 503.
func ProvideFindingSink(source ports.FindingSource) ports.FindingSink {
	if sink, ok := source.(ports.FindingSink); ok {
		return sink
	}
	return nil
}

// ProvideInvestigationService wires the session orchestrator.
func ProvideInvestigationService(
	cfg *config.Config,
	builder *domainservices.Builder,
	reconciler *domainservices.Reconciler,
	source ports.FindingSource,
	sink ports.FindingSink,
	publisher ports.FramePublisher,
	clock ports.Clock,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *appservices.InvestigationService {
	opts := appservices.Options{
		FrameInterval: cfg.FrameInterval,
		BloomMillis:   cfg.BloomMillis,
		DefaultWidth:  cfg.DefaultWidth,
		DefaultHeight: cfg.DefaultHeight,
	}
	return appservices.NewInvestigationService(
		builder, reconciler, cfg.Tuning,
		source, sink, publisher, clock,
		metrics, logger, opts,
	)
}

// ProvideCommandBus creates the command bus with all handlers registered.
func ProvideCommandBus(service *appservices.InvestigationService, logger *zap.Logger) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()
	logging := bus.LoggingMiddleware(logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.StartInvestigationCommand{}, commandhandlers.NewStartInvestigationHandler(service)},
		{commands.CloseInvestigationCommand{}, commandhandlers.NewCloseInvestigationHandler(service)},
		{commands.IngestFindingsCommand{}, commandhandlers.NewIngestFindingsHandler(service)},
		{commands.RebuildGraphCommand{}, commandhandlers.NewRebuildGraphHandler(service)},
		{commands.PointerCommand{}, commandhandlers.NewPointerHandler(service)},
		{commands.LinkModeCommand{}, commandhandlers.NewLinkModeHandler(service)},
		{commands.ResizeViewportCommand{}, commandhandlers.NewResizeViewportHandler(service)},
	}
	for _, reg := range registrations {
		if err := commandBus.Register(reg.cmd, bus.Wrap(reg.handler, logging)); err != nil {
			return nil, err
		}
	}
	return commandBus, nil
}

// ProvideQueryBus creates the query bus with all handlers registered.
func ProvideQueryBus(service *appservices.InvestigationService) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetFrameQuery{}, queryhandlers.NewGetFrameHandler(service)},
		{queries.ListInvestigationsQuery{}, queryhandlers.NewListInvestigationsHandler(service)},
		{queries.GetGraphStatsQuery{}, queryhandlers.NewGetGraphStatsHandler(service)},
	}
	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, reg.handler); err != nil {
			return nil, err
		}
	}
	return queryBus, nil
}

// ProvideRouter creates the configured HTTP router.
func ProvideRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	hub *websocket.Hub,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(commandBus, queryBus, hub, cfg, logger)
}
