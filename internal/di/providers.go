package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"foresight/internal/domain/models"
	drepo "foresight/internal/domain/repository"
	"foresight/internal/handler/api"
	"foresight/internal/indicator"
	internalrepo "foresight/internal/repository"
	"foresight/internal/stream"
	"foresight/internal/usecase"
	"foresight/pkg/cache"
	pkgch "foresight/pkg/clickhouse"
	"foresight/pkg/config"
	xhttp "foresight/pkg/http"
	pkgkafka "foresight/pkg/kafka"
	"foresight/pkg/logger"
	"foresight/pkg/metrics"
	"foresight/pkg/queue"
	"foresight/pkg/server"
)

const initTimeout = 10 * time.Second

// ProvideLogger creates the service logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideMetricsServer creates the standalone scrape listener for services
// without an API server, or nil when metrics are disabled.
func ProvideMetricsServer(cfg *config.Config) *metrics.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.NewServer(cfg.Metrics.Port, cfg.Metrics.Path)
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideRedisClient creates the shared Redis client.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// ProvideQueueTransport creates the Redis-backed queue transport.
func ProvideQueueTransport(lgr *logger.Logger, client *redis.Client, cfg *config.Config) drepo.QueueTransport {
	return queue.NewRedisTransport(lgr, client, queue.WithKeyPrefix(cfg.Redis.KeyPrefix))
}

// ProvideCache creates the response cache on the shared Redis client.
func ProvideCache(client *redis.Client) cache.Service {
	return cache.NewRedisCache(client, "foresight:cache")
}

// ProvideTickStore creates and initializes the raw tick store.
func ProvideTickStore(chClient *pkgch.Client, cfg *config.Config) (drepo.TickStore, error) {
	store := internalrepo.NewClickHouseTickStore(chClient.DB(), cfg.ClickHouse.Database)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("tick store init: %w", err)
	}
	return store, nil
}

// ProvideSubscriptionRegistry creates and initializes the registry.
func ProvideSubscriptionRegistry(chClient *pkgch.Client, cfg *config.Config) (drepo.SubscriptionRegistry, error) {
	reg := internalrepo.NewClickHouseSubscriptionRegistry(chClient.DB(), cfg.ClickHouse.Database)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := reg.Init(ctx); err != nil {
		return nil, fmt.Errorf("subscription registry init: %w", err)
	}
	return reg, nil
}

// ProvideResultStore creates and initializes the indicator result store.
func ProvideResultStore(chClient *pkgch.Client, cfg *config.Config) (drepo.ResultStore, error) {
	store := internalrepo.NewClickHouseResultStore(chClient.DB(), cfg.ClickHouse.Database)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("result store init: %w", err)
	}
	return store, nil
}

// ProvideTickSource selects the tick source from config.
func ProvideTickSource(cfg *config.Config, lgr *logger.Logger) (drepo.TickSource, error) {
	switch cfg.Stream.Source {
	case "randomwalk":
		return stream.NewRandomWalkSource(cfg.Stream.Instrument, cfg.Stream.Interval), nil
	case "websocket":
		return stream.NewWebsocketSource(
			cfg.Stream.Websocket.URL,
			cfg.Stream.Websocket.Token,
			cfg.Stream.Instrument,
			cfg.Stream.Websocket.ReconnectDelay,
			cfg.Stream.Websocket.PingInterval,
			lgr,
		), nil
	case "kafka":
		return stream.NewKafkaSource(
			cfg.Kafka.Brokers,
			cfg.Kafka.Topic,
			cfg.Kafka.Consumer.GroupID,
			cfg.Kafka.Consumer.MinBytes,
			cfg.Kafka.Consumer.MaxBytes,
			lgr,
		), nil
	default:
		return nil, fmt.Errorf("unknown stream source '%s'", cfg.Stream.Source)
	}
}

// ProvideMirrorProducer creates the Kafka mirror producer, or nil when
// mirroring is disabled.
func ProvideMirrorProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Stream.MirrorToKafka || len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithBatchSize(cfg.Stream.BatchSize),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideTickCollector creates the ingestion use case.
func ProvideTickCollector(
	source drepo.TickSource,
	store drepo.TickStore,
	m drepo.Metrics,
	lgr *logger.Logger,
	producer *pkgkafka.Producer,
	cfg *config.Config,
) *usecase.TickCollector {
	opts := []usecase.CollectorOption{
		usecase.WithBatch(cfg.Stream.BatchSize, 2*time.Second),
	}
	if producer != nil {
		opts = append(opts, usecase.WithMirror(producer, cfg.Kafka.Topic))
	}
	return usecase.NewTickCollector(source, store, m, lgr, opts...)
}

// ProvideWindowCycle creates the window scheduler use case.
func ProvideWindowCycle(
	registry drepo.SubscriptionRegistry,
	ticks drepo.TickStore,
	transport drepo.QueueTransport,
	m drepo.Metrics,
	lgr *logger.Logger,
	cfg *config.Config,
) *usecase.WindowCycle {
	return usecase.NewWindowCycle(registry, ticks, transport, m, lgr, cfg.Window.Cadence)
}

// ProvideIndicator selects the indicator component from config.
func ProvideIndicator(cfg *config.Config) (indicator.Indicator, error) {
	switch cfg.Indicator.Component {
	case "moving_average":
		return indicator.NewMovingAverage(), nil
	case "instrument_pricing":
		return indicator.NewInstrumentPricing(), nil
	default:
		return nil, fmt.Errorf("unknown indicator component '%s'", cfg.Indicator.Component)
	}
}

// ProvideIndicatorLoop creates the poll-compute-persist use case.
func ProvideIndicatorLoop(
	ind indicator.Indicator,
	registry drepo.SubscriptionRegistry,
	transport drepo.QueueTransport,
	results drepo.ResultStore,
	m drepo.Metrics,
	lgr *logger.Logger,
	cfg *config.Config,
) (*usecase.IndicatorLoop, error) {
	timescale, err := models.ParseTimescale(cfg.Indicator.Timescale)
	if err != nil {
		return nil, err
	}
	selection, err := models.ParsePriceSelection(cfg.Indicator.Selection)
	if err != nil {
		return nil, err
	}
	return usecase.NewIndicatorLoop(
		ind, registry, transport, results, m, lgr,
		cfg.Indicator.Instrument,
		timescale,
		selection,
		cfg.Indicator.PollInterval,
		cfg.Indicator.MaxBatch,
	), nil
}

// ProvideLatestHandler creates the read-side HTTP handler.
func ProvideLatestHandler(lgr *logger.Logger, results drepo.ResultStore, c cache.Service) *api.LatestHandler {
	return api.NewLatestHandler(lgr, results, c)
}

// ProvideHTTPServer creates the HTTP server with routes registered.
func ProvideHTTPServer(handler *api.LatestHandler, cfg *config.Config) *xhttp.Server {
	return xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.Path),
	)
}

// ProvideStreamApp assembles the tick ingestion service.
func ProvideStreamApp(
	cfg *config.Config,
	lgr *logger.Logger,
	collector *usecase.TickCollector,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	msrv *metrics.Server,
) *server.App {
	app := server.New("stream", lgr).
		AddRunner("tick_collector", collector).
		AddCloser("clickhouse", chClient.Close)
	if producer != nil {
		app.AddCloser("kafka_producer", producer.Close)
	}
	if msrv != nil {
		app.AddRunner("metrics", msrv)
	}
	return app
}

// ProvideWindowApp assembles the window scheduler service.
func ProvideWindowApp(
	cfg *config.Config,
	lgr *logger.Logger,
	cycle *usecase.WindowCycle,
	chClient *pkgch.Client,
	redisClient *redis.Client,
	msrv *metrics.Server,
) *server.App {
	app := server.New("window", lgr).
		AddRunner("window_cycle", cycle).
		AddCloser("clickhouse", chClient.Close).
		AddCloser("redis", redisClient.Close)
	if msrv != nil {
		app.AddRunner("metrics", msrv)
	}
	return app
}

// ProvideIndicatorApp assembles one indicator service.
func ProvideIndicatorApp(
	cfg *config.Config,
	lgr *logger.Logger,
	loop *usecase.IndicatorLoop,
	chClient *pkgch.Client,
	redisClient *redis.Client,
	msrv *metrics.Server,
) (*server.App, error) {
	// Queue creation and registry upsert happen before the loop starts; a
	// failure here is a startup failure.
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := loop.Register(ctx); err != nil {
		return nil, fmt.Errorf("indicator register: %w", err)
	}

	app := server.New("indicator", lgr).
		AddRunner("indicator_loop", loop).
		AddCloser("clickhouse", chClient.Close).
		AddCloser("redis", redisClient.Close)
	if msrv != nil {
		app.AddRunner("metrics", msrv)
	}
	return app, nil
}

// ProvideAPIApp assembles the read-side HTTP service.
func ProvideAPIApp(
	cfg *config.Config,
	lgr *logger.Logger,
	httpServer *xhttp.Server,
	chClient *pkgch.Client,
	redisClient *redis.Client,
) *server.App {
	return server.New("api", lgr).
		SetHTTPServer(httpServer).
		SetShutdownTimeout(cfg.Server.ShutdownTimeout).
		AddCloser("clickhouse", chClient.Close).
		AddCloser("redis", redisClient.Close)
}
