// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	authHTTP "github.com/sentimeter/sentimeter/internal/auth/http"
	authService "github.com/sentimeter/sentimeter/internal/auth/service"
	authUseCase "github.com/sentimeter/sentimeter/internal/auth/usecase"
	"github.com/sentimeter/sentimeter/internal/config"
	"github.com/sentimeter/sentimeter/internal/database"
	"github.com/sentimeter/sentimeter/internal/http"
	"github.com/sentimeter/sentimeter/internal/metrics"
	predictionHTTP "github.com/sentimeter/sentimeter/internal/prediction/http"
	predictionRepository "github.com/sentimeter/sentimeter/internal/prediction/repository"
	predictionService "github.com/sentimeter/sentimeter/internal/prediction/service"
	predictionUseCase "github.com/sentimeter/sentimeter/internal/prediction/usecase"
	userRepository "github.com/sentimeter/sentimeter/internal/user/repository"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Repositories
	userRepo       authUseCase.UserRepository
	predictionRepo predictionUseCase.PredictionRepository

	// Services
	authService authService.AuthService
	classifier  predictionService.Classifier

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Use Cases
	authUseCase       authUseCase.UseCase
	predictionUseCase predictionUseCase.UseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                    sync.Mutex
	loggerInit            sync.Once
	dbInit                sync.Once
	txManagerInit         sync.Once
	userRepoInit          sync.Once
	predictionRepoInit    sync.Once
	authServiceInit       sync.Once
	classifierInit        sync.Once
	metricsProviderInit   sync.Once
	businessMetricsInit   sync.Once
	authUseCaseInit       sync.Once
	predictionUseCaseInit sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
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
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		txManager, err := c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
			return
		}
		c.txManager = txManager
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// UserRepository returns the user repository instance.
func (c *Container) UserRepository() (authUseCase.UserRepository, error) {
	c.userRepoInit.Do(func() {
		repo, err := c.initUserRepository()
		if err != nil {
			c.initErrors["userRepo"] = err
			return
		}
		c.userRepo = repo
	})
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// PredictionRepository returns the prediction repository instance.
func (c *Container) PredictionRepository() (predictionUseCase.PredictionRepository, error) {
	c.predictionRepoInit.Do(func() {
		repo, err := c.initPredictionRepository()
		if err != nil {
			c.initErrors["predictionRepo"] = err
			return
		}
		c.predictionRepo = repo
	})
	if storedErr, exists := c.initErrors["predictionRepo"]; exists {
		return nil, storedErr
	}
	return c.predictionRepo, nil
}

// AuthService returns the token signing and verification service.
func (c *Container) AuthService() (authService.AuthService, error) {
	c.authServiceInit.Do(func() {
		svc, err := c.initAuthService()
		if err != nil {
			c.initErrors["authService"] = err
			return
		}
		c.authService = svc
	})
	if storedErr, exists := c.initErrors["authService"]; exists {
		return nil, storedErr
	}
	return c.authService, nil
}

// Classifier returns the sentiment classifier instance.
func (c *Container) Classifier() predictionService.Classifier {
	c.classifierInit.Do(func() {
		c.classifier = predictionService.NewRuleClassifier()
	})
	return c.classifier
}

// MetricsProvider returns the metrics provider instance.
// Returns nil without error when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// Returns a no-op implementation when metrics are disabled.
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
		business, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		c.businessMetrics = business
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// AuthUseCase returns the auth use case instance.
func (c *Container) AuthUseCase() (authUseCase.UseCase, error) {
	c.authUseCaseInit.Do(func() {
		useCase, err := c.initAuthUseCase()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}
		c.authUseCase = useCase
	})
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.authUseCase, nil
}

// PredictionUseCase returns the prediction use case instance.
func (c *Container) PredictionUseCase() (predictionUseCase.UseCase, error) {
	c.predictionUseCaseInit.Do(func() {
		useCase, err := c.initPredictionUseCase()
		if err != nil {
			c.initErrors["predictionUseCase"] = err
			return
		}
		c.predictionUseCase = useCase
	})
	if storedErr, exists := c.initErrors["predictionUseCase"]; exists {
		return nil, storedErr
	}
	return c.predictionUseCase, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance.
// Returns nil without error when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
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

// initLogger creates and configures a structured logger based on the log level.
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

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initUserRepository creates the user repository instance.
func (c *Container) initUserRepository() (authUseCase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	switch c.config.DBDriver {
	case "sqlite":
		return userRepository.NewSQLiteUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initPredictionRepository creates the prediction repository instance.
func (c *Container) initPredictionRepository() (predictionUseCase.PredictionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for prediction repository: %w", err)
	}

	switch c.config.DBDriver {
	case "sqlite":
		return predictionRepository.NewSQLitePredictionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuthService creates the token service. An empty AUTH_SECRET is a
// startup-fatal condition.
func (c *Container) initAuthService() (authService.AuthService, error) {
	if c.config.AuthSecret == "" {
		return nil, fmt.Errorf("AUTH_SECRET must be set")
	}

	svc, err := authService.NewAuthService(
		[]byte(c.config.AuthSecret),
		c.config.AuthTokenLifetime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	return svc, nil
}

// initAuthUseCase creates the auth use case with all its dependencies.
func (c *Container) initAuthUseCase() (authUseCase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for auth use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for auth use case: %w", err)
	}

	auth, err := c.AuthService()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth service for auth use case: %w", err)
	}

	useCase, err := authUseCase.NewAuthUseCase(txManager, userRepo, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth use case: %w", err)
	}

	return useCase, nil
}

// initPredictionUseCase creates the prediction use case with all its
// dependencies, wrapped with metrics instrumentation.
func (c *Container) initPredictionUseCase() (predictionUseCase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for prediction use case: %w", err)
	}

	predictionRepo, err := c.PredictionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction repository for prediction use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for prediction use case: %w", err)
	}

	useCase := predictionUseCase.NewPredictionUseCase(txManager, predictionRepo, c.Classifier())
	return predictionUseCase.NewPredictionUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	auth, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for http server: %w", err)
	}

	prediction, err := c.PredictionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction use case for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	router := http.NewRouter(http.RouterDeps{
		Config:            c.config,
		Logger:            logger,
		AuthHandler:       authHTTP.NewAuthHandler(auth, logger),
		PredictionHandler: predictionHTTP.NewPredictionHandler(prediction, logger),
		AuthMiddleware:    authHTTP.AuthenticationMiddleware(auth, logger),
		MetricsProvider:   metricsProvider,
		DB:                db,
	})

	return http.NewServer(c.config.ServerHost, c.config.ServerPort, logger, router), nil
}
