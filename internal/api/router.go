package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apimiddleware "github.com/motorent/backend/internal/api/middleware"
	"github.com/motorent/backend/internal/service"
	"github.com/motorent/backend/internal/service/auth"
)

// RouterDeps carries the services the router needs to build handlers.
type RouterDeps struct {
	UserService    service.UserService
	CarService     service.CarService
	RentalService  service.RentalService
	PaymentService service.PaymentService
	JWTService     auth.JWTService
	Logger         *slog.Logger
}

// NewRouter creates the application router with all routes and
// middleware. Authentication endpoints and car browsing are public;
// everything else under /api requires a bearer token.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.NewTraceMiddleware(log))

	authHandler := NewAuthHandler(deps.UserService, deps.JWTService, log)
	userHandler := NewUserHandler(deps.UserService, log)
	carHandler := NewCarHandler(deps.CarService, log)
	rentalHandler := NewRentalHandler(deps.RentalService, log)
	paymentHandler := NewPaymentHandler(deps.PaymentService, log)
	authMiddleware := apimiddleware.NewAuthMiddleware(deps.JWTService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Car browsing is public so prospective renters can see the fleet
		r.Get("/cars", carHandler.ListCars)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// User management
			r.Get("/users", userHandler.ListUsers)
			r.Get("/users/{id}", userHandler.GetUser)
			r.Put("/users/{id}", userHandler.UpdateUser)
			r.Delete("/users/{id}", userHandler.DeleteUser)

			// Fleet management
			r.Post("/cars", carHandler.CreateCar)
			r.Get("/cars/{id}", carHandler.GetCar)
			r.Put("/cars/{id}", carHandler.UpdateCar)
			r.Delete("/cars/{id}", carHandler.DeleteCar)

			// Rental lifecycle
			r.Post("/rentals", rentalHandler.CreateRental)
			r.Get("/rentals", rentalHandler.ListRentals)
			r.Get("/rentals/{id}", rentalHandler.GetRental)
			r.Put("/rentals/{id}", rentalHandler.UpdateRental)
			r.Delete("/rentals/{id}", rentalHandler.CancelRental)
			r.Post("/rentals/{id}/complete", rentalHandler.CompleteRental)

			// Payment lifecycle
			r.Post("/payments", paymentHandler.CreatePayment)
			r.Get("/payments", paymentHandler.ListPayments)
			r.Get("/payments/{id}", paymentHandler.GetPayment)
			r.Put("/payments/{id}", paymentHandler.UpdatePayment)
			r.Delete("/payments/{id}", paymentHandler.DeletePayment)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
