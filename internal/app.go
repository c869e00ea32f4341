package internal

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	logger_adapter "bayut-parser-service/internal/adapters/logger"
	postgres_adapter "bayut-parser-service/internal/adapters/postgres"
	rabbitmq_adapter "bayut-parser-service/internal/adapters/rabbitmq"
	"bayut-parser-service/internal/adapters/rest"
	"bayut-parser-service/internal/configs"
	"bayut-parser-service/internal/constants"
	"bayut-parser-service/internal/core/port"
	"bayut-parser-service/internal/core/usecase"
	fluentlogger "bayut-parser-service/pkg/fluent_logger"
	"bayut-parser-service/pkg/postgres"
	"bayut-parser-service/pkg/rabbitmq/rabbitmq_common"
	"bayut-parser-service/pkg/rabbitmq/rabbitmq_consumer"
	"bayut-parser-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 15 * time.Second

// App – структура приложения
type App struct {
	config        *configs.AppConfig
	dbPool        *pgxpool.Pool
	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher
	fluentClient  *fluent.Fluent
	logger        port.LoggerPort

	server *rest.Server
	// nil, если очередь задач отключена
	searchTasksListener port.EventListenerPort
}

// NewApp создает приложение и связывает все зависимости.
// PostgreSQL и RabbitMQ подключаются, только если они заданы в конфигурации.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}

	// --- 1. ЛОГГЕРЫ ---
	baseLogger, err := app.initLoggers()
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	app.logger = appLogger

	// при ошибке сборки освобождаем уже созданные ресурсы
	ok := false
	defer func() {
		if !ok {
			app.closeResources()
		}
	}()

	// --- 2. КОНВЕЙЕР ПОИСКА ---
	pipeline, err := NewPipeline(appConfig.Bayut)
	if err != nil {
		appLogger.Error("Failed to build search pipeline", err, nil)
		return nil, err
	}
	appLogger.Info("Search pipeline initialized.", port.Fields{
		"base_url":           appConfig.Bayut.BaseURL,
		"detail_concurrency": appConfig.Bayut.DetailConcurrency,
		"chained_query":      appConfig.Bayut.ChainedQuery,
	})

	// --- 3. ИСХОДЯЩИЕ АДАПТЕРЫ ---
	var history port.SearchHistoryPort
	if appConfig.Database.URL != "" {
		dbPool, err := postgres.NewClient(context.Background(), postgres.Config{
			DatabaseURL:    appConfig.Database.URL,
			ConnectTimeout: 10 * time.Second,
		})
		if err != nil {
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		app.dbPool = dbPool

		repo, err := postgres_adapter.NewPostgresSearchHistoryRepository(dbPool)
		if err != nil {
			return nil, err
		}
		history = repo
		appLogger.Info("Successfully connected to PostgreSQL pool!", nil)
	} else {
		appLogger.Warn("DATABASE_URL is not set, search history is disabled", nil)
	}

	var (
		publisher port.ListingsPublisherPort
		reporter  port.TaskReporterPort
	)
	if appConfig.RabbitMQ.Enabled {
		connManagerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
		connManager, err := rabbitmq_common.NewConnectionManager(
			rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger),
		)
		if err != nil {
			appLogger.Error("Failed to create connection manager", err, nil)
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}
		app.connManager = connManager
		appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

		producerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
		eventProducer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			ExchangeName:             constants.ParserExchange,
			ExchangeType:             constants.ParserExchangeType,
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(producerLogger),
		}, connManager)
		if err != nil {
			appLogger.Error("Failed to create event producer", err, nil)
			return nil, fmt.Errorf("failed to create event producer: %w", err)
		}
		app.eventProducer = eventProducer

		listingsAdapter, err := rabbitmq_adapter.NewListingsPublisherAdapter(eventProducer, constants.RoutingKeyListingsFound)
		if err != nil {
			return nil, err
		}
		reportAdapter, err := rabbitmq_adapter.NewTaskReporterAdapter(eventProducer, constants.RoutingKeyTaskResults)
		if err != nil {
			return nil, err
		}
		publisher, reporter = listingsAdapter, reportAdapter
		appLogger.Info("RabbitMQ Event Producer initialized.", nil)
	} else {
		appLogger.Warn("RabbitMQ is disabled, search tasks are accepted only via REST", nil)
	}

	// --- 4. USE CASES ---
	runSearchUC := usecase.NewRunSearchUseCase(pipeline.Search, history, publisher, reporter)
	getSearchUC := usecase.NewGetSearchUseCase(history)
	appLogger.Info("All use cases initialized.", nil)

	// --- 5. ВХОДЯЩИЕ АДАПТЕРЫ ---
	if appConfig.RabbitMQ.Enabled {
		tasksConsumerCfg := rabbitmq_consumer.ConsumerConfig{
			Config:                rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			QueueName:             constants.QueueSearchTasks,
			RoutingKeyForBind:     constants.RoutingKeySearchTasks,
			ExchangeNameForBind:   constants.ParserExchange,
			PrefetchCount:         1,
			DurableQueue:          true,
			ConsumerTag:           "bayut-search-tasks-adapter",
			DeclareQueue:          true,
			MaxConcurrentHandlers: 1,

			// Ретраи: ожидание в отдельной очереди, затем общая "свалка"
			EnableRetryMechanism: true,
			RetryExchange:        constants.QueueSearchTasks + "_retry_ex",
			RetryQueue:           constants.QueueSearchTasks + "_retry_wait_10s",
			RetryTTL:             constants.SearchTasksRetryTTL,
			FinalDLXExchange:     constants.FinalDLXExchangeForSearchTasks,
			FinalDLQ:             constants.FinalDLQForSearchTasks,
			FinalDLQRoutingKey:   constants.FinalDLQRoutingKeyForSearchTasks,
			MaxRetries:           constants.SearchTasksMaxRetries,
		}
		listener, err := rabbitmq_adapter.NewSearchTasksConsumerAdapter(
			tasksConsumerCfg, runSearchUC, appConfig.RabbitMQ.TaskTimeout, baseLogger, app.connManager,
		)
		if err != nil {
			appLogger.Error("Failed to initialize Search Tasks Listener", err, nil)
			return nil, err
		}
		app.searchTasksListener = listener
		appLogger.Info("Search Tasks Listener initialized.", nil)
	}

	handlers := rest.NewSearchHandlers(runSearchUC, getSearchUC, pipeline.Classifier)
	app.server = rest.NewServer(rest.ServerConfig{
		Port:           appConfig.HTTP.Port,
		AllowedOrigins: appConfig.HTTP.AllowedOrigins,
	}, handlers, baseLogger)

	ok = true
	return app, nil
}

// initLoggers собирает stdout и, если включен, Fluent Bit логгер
func (a *App) initLoggers() (port.LoggerPort, error) {
	cfg := a.config

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    ParseLogLevel(cfg.StdoutLogger.Level),
		IsJSON:   cfg.StdoutLogger.JSON,
		UseColor: cfg.StdoutLogger.Color,
	})
	activeLoggers := []port.LoggerPort{stdoutLogger}

	if cfg.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, ParseLogLevel(cfg.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		a.fluentClient = fluentClient
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"component":      "app",
		"active_loggers": len(activeLoggers),
		"fluent_enabled": cfg.FluentBit.Enabled,
	})
	return baseLogger, nil
}

// Run запускает компоненты и блокируется до сигнала или падения одного из них
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup
	componentErrors := make(chan error, 2)

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			a.logger.Error("REST server shutdown failed", err, nil)
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		a.closeResources()
	}()

	a.logger.Info("Application is starting...", nil)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.server.Start(); err != nil {
			componentErrors <- fmt.Errorf("rest server error: %w", err)
		}
	}()

	if a.searchTasksListener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener_name": "Search Tasks Listener"})
			listenerLogger.Info("Starting listener...", nil)

			if err := a.searchTasksListener.Start(appCtx); err != nil {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				componentErrors <- fmt.Errorf("search tasks listener error: %w", err)
			} else {
				listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case err := <-componentErrors:
		a.logger.Error("A critical component failed, shutting down", err, nil)
		runErr = err
	}

	cancelApp()
	return runErr
}

// closeResources закрывает то, что успело открыться. Порядок обратный созданию.
func (a *App) closeResources() {
	logf := func(msg string, err error) {
		if a.logger != nil {
			a.logger.Error(msg, err, nil)
		} else {
			log.Printf("App: %s: %v\n", msg, err)
		}
	}

	if a.searchTasksListener != nil {
		if err := a.searchTasksListener.Close(); err != nil {
			logf("Error closing search tasks listener", err)
		}
	}
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			logf("Error closing event producer", err)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			logf("Error closing RabbitMQ connection manager", err)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		if a.logger != nil {
			a.logger.Info("PostgreSQL pool closed.", nil)
		}
	}

	if a.logger != nil {
		a.logger.Info("Application shut down gracefully.", nil)
	}

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			log.Printf("App: Error closing fluent client: %v\n", err)
		}
	}
}
