package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/motorent/backend/internal/api"
	"github.com/motorent/backend/internal/config"
	"github.com/motorent/backend/internal/platform/logger"
	"github.com/motorent/backend/internal/platform/postgres"
	"github.com/motorent/backend/internal/service"
	"github.com/motorent/backend/internal/service/auth"
)

// application holds the composed dependencies of the server process.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	router http.Handler
}

// newApplication loads configuration, connects to the database, applies
// pending migrations, and wires the store, service, and API layers.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.RunMigrations(ctx, db, log); err != nil {
		db.Close()
		return nil, err
	}

	userStore := postgres.NewPostgresUserStore(db, log)
	carStore := postgres.NewPostgresCarStore(db, log)
	rentalStore := postgres.NewPostgresRentalStore(db, log)
	paymentStore := postgres.NewPostgresPaymentStore(db, log)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	passwordHasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	passwordVerifier := auth.NewBcryptVerifier()

	userService, err := service.NewUserService(userStore, passwordHasher, passwordVerifier, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	carService, err := service.NewCarService(carStore, rentalStore, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create car service: %w", err)
	}
	rentalService, err := service.NewRentalService(db, rentalStore, carStore, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create rental service: %w", err)
	}
	paymentService, err := service.NewPaymentService(db, paymentStore, rentalStore, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create payment service: %w", err)
	}

	router := api.NewRouter(api.RouterDeps{
		UserService:    userService,
		CarService:     carService,
		RentalService:  rentalService,
		PaymentService: paymentService,
		JWTService:     jwtService,
		Logger:         log,
	})

	return &application{
		config: cfg,
		logger: log,
		db:     db,
		router: router,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
	}
}
