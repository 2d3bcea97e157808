package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/rl1809/bookstore/internal/adapter/handler"
	"github.com/rl1809/bookstore/internal/adapter/messaging"
	"github.com/rl1809/bookstore/internal/adapter/middleware"
	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/config"
	"github.com/rl1809/bookstore/internal/core/service"
	"github.com/rl1809/bookstore/internal/port"
)

// repositories groups the table-backed ports, all served by one store.
type repositories interface {
	port.UserRepository
	port.BookRepository
	port.CategoryRepository
	port.OrderRepository
}

func main() {
	envFile := flag.String("env", ".env", "optional env file loaded before reading the environment")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := cfg.NewLogger(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	var (
		repos repositories
		db    *sql.DB
	)
	switch cfg.DBDriver {
	case config.DriverMemory:
		repos = storage.NewMemoryStore()
		log.Warn().Msg("using in-memory storage, data is lost on restart")
	default:
		if cfg.MigrateOnStart {
			if err := storage.Migrate(cfg.MySQLDSN()); err != nil {
				log.Fatal().Err(err).Msg("failed to migrate mysql")
			}
			log.Info().Msg("schema migrated")
		}

		db, err = sql.Open("mysql", cfg.MySQLDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect mysql")
		}
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
		db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ping mysql")
		}
		log.Info().Str("database", cfg.MySQLDatabase).Msg("connected to mysql")
		repos = storage.NewMySQLAdapter(db)
	}

	// Initialize cart store
	var (
		carts port.CartStore
		rdb   *redis.Client
	)
	switch cfg.CartBackend {
	case config.CartRedis:
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
		carts = storage.NewRedisCartStore(rdb, log)
	default:
		carts = storage.NewMemoryCartStore()
	}

	// Initialize event publisher
	var events port.EventPublisher = messaging.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		pub, err := messaging.NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect rabbitmq")
		}
		log.Info().Str("exchange", cfg.RabbitMQExchange).Msg("connected to rabbitmq")
		events = pub
	}

	// Initialize services
	hasher, err := service.NewPasswordHasher(cfg.PasswordHashing)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid password hashing mode")
	}
	if cfg.UsingDefaultSecret() {
		log.Warn().Msg("JWT_SECRET not set, signing tokens with the development secret")
	}

	userService := service.NewUserService(repos, hasher)
	catalogService := service.NewCatalogService(repos, repos)
	cartService := service.NewCartService(repos, repos, carts, events, log)
	orderService := service.NewOrderService(repos)

	// Initialize gRPC server
	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		grpcServer = grpc.NewServer()
		handler.RegisterCartServiceServer(grpcServer, handler.NewGRPCHandler(catalogService, cartService, log))

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to listen")
		}

		go func() {
			log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
			if err := grpcServer.Serve(lis); err != nil {
				log.Error().Err(err).Msg("gRPC server error")
			}
		}()
	}

	// Initialize HTTP server
	stopCleanup := make(chan struct{})
	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
		limiter.StartCleanup(time.Minute, stopCleanup)
	}

	secret := cfg.Secret()
	httpHandler := handler.NewHTTPHandler(
		userService,
		catalogService,
		cartService,
		orderService,
		middleware.NewTokenIssuer(secret, cfg.JWTTTL),
		log,
	)
	router := handler.NewRouter(httpHandler, middleware.NewAuthenticator(secret, log), handler.RouterOptions{
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins(),
		RateLimiter:    limiter,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Stop HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown")
	}
	close(stopCleanup)
	log.Info().Msg("HTTP server stopped")

	// Stop gRPC server
	if grpcServer != nil {
		grpcServer.GracefulStop()
		log.Info().Msg("gRPC server stopped")
	}

	// Close connections
	if err := events.Close(); err != nil {
		log.Warn().Err(err).Msg("closing event publisher")
	}
	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	log.Info().Msg("connections closed")
}
