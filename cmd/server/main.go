package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"rentacar/internal/api"
	"rentacar/internal/auth"
	"rentacar/internal/config"
	"rentacar/internal/repository"
	"rentacar/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

func main() {
	godotenv.Load()
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	reservationRepo := repository.NewReservationRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	supportRepo := repository.NewSupportRepository(db)
	consultationRepo := repository.NewConsultationRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)
	jobRepo := repository.NewJobRepository(db)

	sender := service.NewSenderService()
	bookingSvc := service.NewBookingService(reservationRepo, vehicleRepo, sender, cfg)
	vehicleSvc := service.NewVehicleService(vehicleRepo, cfg)
	supportSvc := service.NewSupportService(supportRepo, cfg)
	consultationSvc := service.NewConsultationService(consultationRepo, cfg)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret)
	jobSvc := service.NewJobService(jobRepo)

	bookingHandler := api.NewBookingHandler(bookingSvc)
	vehicleHandler := api.NewVehicleHandler(vehicleSvc)
	supportHandler := api.NewSupportHandler(supportSvc, consultationSvc)
	adminHandler := api.NewAdminHandler(bookingSvc, supportSvc, consultationSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/availability", bookingHandler.CheckAvailability).Methods("POST")
	r.HandleFunc("/api/bookings", bookingHandler.CreateBooking).Methods("POST")
	r.HandleFunc("/api/bookings", bookingHandler.ListBookings).Methods("GET")
	r.HandleFunc("/api/bookings/{number}", bookingHandler.GetBooking).Methods("GET")
	r.HandleFunc("/api/vehicles", vehicleHandler.ListVehicles).Methods("GET")
	r.HandleFunc("/api/vehicles/{id}", vehicleHandler.GetVehicle).Methods("GET")
	r.HandleFunc("/api/vehicles/{id}/booked-dates", bookingHandler.BookedDates).Methods("GET")
	r.HandleFunc("/api/vehicles/{id}/quote", bookingHandler.Quote).Methods("GET")
	r.HandleFunc("/api/brands", vehicleHandler.ListBrands).Methods("GET")
	r.HandleFunc("/api/categories", vehicleHandler.ListCategories).Methods("GET")
	r.HandleFunc("/api/locations", vehicleHandler.ListLocations).Methods("GET")
	r.HandleFunc("/api/support/posts", supportHandler.ListPosts).Methods("GET")
	r.HandleFunc("/api/support/posts", supportHandler.CreatePost).Methods("POST")
	r.HandleFunc("/api/support/posts/{id}", supportHandler.GetPost).Methods("GET")
	r.HandleFunc("/api/support/posts/{id}/verify", supportHandler.VerifyPostPassword).Methods("POST")
	r.HandleFunc("/api/consultations", supportHandler.CreateConsultation).Methods("POST")
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(cfg.JWTSecret))
	admin.HandleFunc("/reservations", adminHandler.ListReservations).Methods("GET")
	admin.HandleFunc("/reservations/{number}/status", adminHandler.UpdateReservationStatus).Methods("PUT")
	admin.HandleFunc("/consultations", adminHandler.ListConsultations).Methods("GET")
	admin.HandleFunc("/consultations/{id}/read", adminHandler.MarkConsultationRead).Methods("PUT")
	admin.HandleFunc("/consultations/{id}/status", adminHandler.UpdateConsultationStatus).Methods("PUT")
	admin.HandleFunc("/support/posts", adminHandler.ListModerationQueue).Methods("GET")
	admin.HandleFunc("/support/posts", adminHandler.CreateNotice).Methods("POST")
	admin.HandleFunc("/support/posts/{id}/status", adminHandler.ModeratePost).Methods("PUT")
	admin.HandleFunc("/support/posts/{id}", adminHandler.DeletePost).Methods("DELETE")
	admin.HandleFunc("/admins", adminAuthHandler.CreateAdmin).Methods("POST")

	// Lifecycle sweeps: activate started rentals, complete finished ones,
	// drop stale pending reservations the admin never confirmed.
	c := cron.New()
	c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
		defer cancel()
		if err := jobSvc.ActivateStartedReservations(ctx); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
		if err := jobSvc.CompleteFinishedReservations(ctx); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	})
	c.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
		defer cancel()
		deleted, err := jobSvc.DeleteOldPendingReservations(ctx, time.Now().UTC().Add(-cfg.PendingMaxAge))
		if err != nil {
			log.Printf("Cron Job error: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("Cron Job: deleted %d stale pending reservations", deleted)
		}
	})
	c.Start()

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{getAllowedOrigin()}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler(handlers.LoggingHandler(os.Stdout, r))))
}

func getAllowedOrigin() string {
	if origin := os.Getenv("ALLOWED_ORIGIN"); origin != "" {
		return origin
	}
	return "*"
}
