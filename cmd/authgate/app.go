package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/avkern/authgate/internal/auth"
	"github.com/avkern/authgate/internal/auth/apikey"
	"github.com/avkern/authgate/internal/auth/token"
	"github.com/avkern/authgate/internal/authz"
	"github.com/avkern/authgate/internal/config"
	"github.com/avkern/authgate/internal/middleware"
	"github.com/avkern/authgate/internal/observability"
	"github.com/avkern/authgate/internal/secrets"
)

// tokenSecretName is the secret name the signing secret is stored under
// when resolved through a secrets source.
const tokenSecretName = "token-signing-key"

// application wires the authentication pipeline into HTTP and gRPC
// servers.
type application struct {
	cfg           *config.Config
	logger        observability.Logger
	authenticator auth.Authenticator
	gate          authz.Gate
	keys          apikey.Service
	store         apikey.Store

	httpServer    *http.Server
	metricsServer *http.Server
	grpcServer    *grpc.Server
}

// newApplication builds the full pipeline from configuration.
func newApplication(cfg *config.Config, logger observability.Logger) (*application, error) {
	app := &application{
		cfg:    cfg,
		logger: logger,
		gate: authz.NewGate(
			authz.WithGateLogger(logger),
			authz.WithGateMetrics(authz.NewMetrics("authgate")),
		),
	}

	codec, err := buildCodec(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := app.buildKeyService(); err != nil {
		return nil, err
	}

	strategies, err := auth.BuildStrategies(&cfg.Auth, codec, app.keys)
	if err != nil {
		return nil, fmt.Errorf("failed to build strategies: %w", err)
	}

	app.authenticator, err = auth.NewAuthenticator(&cfg.Auth, strategies,
		auth.WithAuthenticatorLogger(logger),
		auth.WithAuthenticatorMetrics(auth.NewMetrics("authgate")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build authenticator: %w", err)
	}

	app.buildServers()

	return app, nil
}

// buildCodec resolves the signing secret and constructs the token
// codec. Returns a nil codec when token authentication is disabled.
func buildCodec(cfg *config.Config, logger observability.Logger) (token.Codec, error) {
	if !cfg.Auth.IsTokenEnabled() {
		return nil, nil
	}

	secret, err := resolveSigningSecret(cfg, logger)
	if err != nil {
		return nil, err
	}

	return token.NewCodec(cfg.Auth.Token, secret,
		token.WithCodecLogger(logger),
		token.WithCodecMetrics(token.NewMetrics("authgate")),
	)
}

// resolveSigningSecret fetches the token signing secret. A configured
// secretEnv takes precedence; otherwise the configured secrets source
// is consulted. The secret value itself is never logged.
func resolveSigningSecret(cfg *config.Config, logger observability.Logger) ([]byte, error) {
	if env := cfg.Auth.Token.SecretEnv; env != "" {
		value := os.Getenv(env)
		if value == "" {
			return nil, fmt.Errorf("signing secret environment variable %s is not set", env)
		}
		return []byte(value), nil
	}

	source, err := secrets.NewSource(cfg.Secrets, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build secrets source: %w", err)
	}

	value, err := source.Get(context.Background(), tokenSecretName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve signing secret: %w", err)
	}

	logger.Info("signing secret resolved",
		observability.String("source", string(source.Type())),
	)

	return []byte(value), nil
}

// buildKeyService constructs the API key store and service when API key
// authentication is enabled.
func (app *application) buildKeyService() error {
	if !app.cfg.Auth.IsAPIKeyEnabled() {
		return nil
	}

	store, err := apikey.BuildStore(app.cfg.Auth.APIKey, app.logger)
	if err != nil {
		return fmt.Errorf("failed to build key store: %w", err)
	}
	app.store = store

	hasher, err := apikey.NewHasher(app.cfg.Auth.APIKey.GetEffectiveHashAlgorithm())
	if err != nil {
		return fmt.Errorf("failed to build hasher: %w", err)
	}

	app.keys, err = apikey.NewService(store, hasher,
		apikey.WithServiceLogger(app.logger),
		apikey.WithServiceMetrics(apikey.NewMetrics("authgate")),
	)
	if err != nil {
		return fmt.Errorf("failed to build key service: %w", err)
	}

	return nil
}

// buildServers assembles the HTTP handler chain and the servers.
func (app *application) buildServers() {
	chain := middleware.NewChain(
		middleware.RequestID(),
		middleware.Recovery(app.logger),
		middleware.Logging(app.logger),
	)

	if app.cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			int(app.cfg.RateLimit.RequestsPerSecond),
			app.cfg.RateLimit.Burst,
			app.cfg.RateLimit.PerClient,
			middleware.WithRateLimiterLogger(app.logger),
		)
		chain.Use(limiter.Middleware())
	}

	chain.Use(app.authenticator.HTTPMiddleware())

	app.httpServer = &http.Server{
		Addr:         app.cfg.Server.HTTPAddr,
		Handler:      chain.Then(app.routes()),
		ReadTimeout:  app.cfg.Server.ReadTimeout,
		WriteTimeout: app.cfg.Server.WriteTimeout,
		IdleTimeout:  app.cfg.Server.IdleTimeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	app.metricsServer = &http.Server{
		Addr:         app.cfg.Server.MetricsAddr,
		Handler:      metricsMux,
		ReadTimeout:  app.cfg.Server.ReadTimeout,
		WriteTimeout: app.cfg.Server.WriteTimeout,
	}

	app.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(auth.UnaryInterceptor(app.authenticator)),
		grpc.ChainStreamInterceptor(auth.StreamInterceptor(app.authenticator)),
	)
	healthpb.RegisterHealthServer(app.grpcServer, health.NewServer())
}

// reloadSeeds applies a reloaded configuration to the running key
// store. Only the seeded key set is hot-reloadable; listener and
// pipeline changes require a restart.
func (app *application) reloadSeeds(cfg *config.Config) {
	if app.store == nil || cfg.Auth.APIKey == nil {
		return
	}

	if apikey.ReloadSeeds(app.store, cfg.Auth.APIKey) {
		app.logger.Info("reloaded seeded api keys",
			observability.Int("count", len(cfg.Auth.APIKey.Keys)),
		)
		return
	}

	app.logger.Warn("key store does not support seed reload")
}

// serveGRPC listens and serves the gRPC server.
func (app *application) serveGRPC() error {
	lis, err := net.Listen("tcp", app.cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.cfg.Server.GRPCAddr, err)
	}

	app.logger.Info("grpc server listening",
		observability.String("addr", app.cfg.Server.GRPCAddr),
	)

	return app.grpcServer.Serve(lis)
}
