// Package app provides the dependency injection container assembling the
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	otelmetric "go.opentelemetry.io/otel/metric"

	analyticsHTTP "github.com/allisson/privmetrics/internal/analytics/http"
	analyticsUseCase "github.com/allisson/privmetrics/internal/analytics/usecase"
	auditHTTP "github.com/allisson/privmetrics/internal/audit/http"
	auditUseCase "github.com/allisson/privmetrics/internal/audit/usecase"
	budgetHTTP "github.com/allisson/privmetrics/internal/budget/http"
	budgetUseCase "github.com/allisson/privmetrics/internal/budget/usecase"
	"github.com/allisson/privmetrics/internal/config"
	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
	cryptoService "github.com/allisson/privmetrics/internal/crypto/service"
	cryptoUseCase "github.com/allisson/privmetrics/internal/crypto/usecase"
	"github.com/allisson/privmetrics/internal/database"
	internalHTTP "github.com/allisson/privmetrics/internal/http"
	"github.com/allisson/privmetrics/internal/metrics"
	tokenizationHTTP "github.com/allisson/privmetrics/internal/tokenization/http"
	tokenizationUseCase "github.com/allisson/privmetrics/internal/tokenization/usecase"
)

// Container holds all application dependencies and provides methods to access
// them. Components are created lazily on first access.
type Container struct {
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Crypto
	kmsService  cryptoService.KMSService
	aeadManager cryptoService.AEADManager
	keyManager  cryptoService.KeyManager
	keysetRepo  cryptoUseCase.KeysetRepository
	keysetUC    cryptoUseCase.KeysetUseCase
	keysetChain *cryptoDomain.KeysetChain

	// Repositories
	auditEntryRepo    auditUseCase.AuditEntryRepository
	budgetAccountRepo budgetUseCase.BudgetAccountRepository
	tokenRecordRepo   tokenizationUseCase.TokenRecordRepository
	eventRepo         analyticsUseCase.EventRepository

	// Use cases
	auditChainUC   auditUseCase.AuditChainUseCase
	budgetUC       budgetUseCase.BudgetUseCase
	tokenizationUC tokenizationUseCase.TokenizationUseCase
	analyticsUC    analyticsUseCase.AnalyticsUseCase

	// Servers
	httpServer    *internalHTTP.Server
	metricsServer *internalHTTP.MetricsServer

	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	kmsServiceInit      sync.Once
	aeadManagerInit     sync.Once
	keyManagerInit      sync.Once
	keysetRepoInit      sync.Once
	keysetUCInit        sync.Once
	keysetChainInit     sync.Once
	auditEntryRepoInit  sync.Once
	budgetRepoInit      sync.Once
	tokenRecordRepoInit sync.Once
	eventRepoInit       sync.Once
	auditChainUCInit    sync.Once
	budgetUCInit        sync.Once
	tokenizationUCInit  sync.Once
	analyticsUCInit     sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := database.Connect(database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			c.initErrors["db"] = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		c.db = db
	})
	if err, exists := c.initErrors["db"]; exists {
		return nil, err
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if err, exists := c.initErrors["txManager"]; exists {
		return nil, err
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are
// disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	c.metricsProviderInit.Do(func() {
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if err, exists := c.initErrors["metricsProvider"]; exists {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. When metrics are
// disabled a no-op implementation is returned so decorators stay wired.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = bm
	})
	if err, exists := c.initErrors["businessMetrics"]; exists {
		return nil, err
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API server with all routes wired.
func (c *Container) HTTPServer(ctx context.Context) (*internalHTTP.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer(ctx)
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if err, exists := c.initErrors["httpServer"]; exists {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics
// are disabled.
func (c *Container) MetricsServer() (*internalHTTP.MetricsServer, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		c.metricsServer = internalHTTP.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if err, exists := c.initErrors["metricsServer"]; exists {
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.keysetChain != nil {
		c.keysetChain.Close()
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initHTTPServer wires the area handlers and builds the API server.
func (c *Container) initHTTPServer(ctx context.Context) (*internalHTTP.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}

	tokenizationUC, err := c.TokenizationUseCase(ctx)
	if err != nil {
		return nil, err
	}

	analyticsUC, err := c.AnalyticsUseCase(ctx)
	if err != nil {
		return nil, err
	}

	budgetUC, err := c.BudgetUseCase()
	if err != nil {
		return nil, err
	}

	auditChainUC, err := c.AuditChainUseCase(ctx)
	if err != nil {
		return nil, err
	}

	logger := c.Logger()
	handlers := internalHTTP.Handlers{
		Tokenization: tokenizationHTTP.NewTokenizationHandler(tokenizationUC, logger),
		Analytics:    analyticsHTTP.NewAnalyticsHandler(analyticsUC, logger),
		Budget:       budgetHTTP.NewBudgetHandler(budgetUC, logger),
		Audit:        auditHTTP.NewAuditHandler(auditChainUC, logger),
	}

	var meterProvider otelmetric.MeterProvider
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if metricsProvider != nil {
		meterProvider = metricsProvider.MeterProvider()
	}

	return internalHTTP.NewServer(db, c.config, logger, handlers, meterProvider), nil
}

// initLogger creates a JSON logger honoring the configured log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}
