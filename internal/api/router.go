package api

import (
	"github.com/tripfolio/tripfolio-api/internal/service"
	"github.com/tripfolio/tripfolio-api/internal/stats"

	"github.com/gorilla/mux"
)

// NewRouter creates a new HTTP router
func NewRouter(svc service.ServiceInterface, authSvc service.AuthInterface, statsCollector *stats.Collector) *mux.Router {
	handler := NewHandler(svc)
	authHandler := NewAuthHandler(authSvc)
	statsHandler := NewStatsHandler(statsCollector)

	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1, public
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	v1.HandleFunc("/entities", handler.ListEntities).Methods("GET")
	v1.HandleFunc("/entities/{id}", handler.GetEntity).Methods("GET")
	v1.HandleFunc("/entities/{id}/checkins", handler.ListCheckIns).Methods("GET")
	v1.HandleFunc("/{entityType}/{id}/photos", handler.ListPhotos).Methods("GET")
	v1.HandleFunc("/photos/search", handler.SearchPhotos).Methods("GET")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	// API v1, token required
	secured := router.PathPrefix("/api/v1").Subrouter()
	secured.Use(AuthMiddleware(authSvc))
	secured.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	secured.HandleFunc("/entities", handler.CreateEntity).Methods("POST")
	secured.HandleFunc("/entities/{id}", handler.UpdateEntity).Methods("PUT")
	secured.HandleFunc("/entities/{id}", handler.DeleteEntity).Methods("DELETE")
	secured.HandleFunc("/entities/{id}/visit", handler.RecordVisit).Methods("PATCH")
	secured.HandleFunc("/{entityType}/{id}/photos", handler.AddPhotos).Methods("POST")
	secured.HandleFunc("/{entityType}/{id}/photos", handler.RemovePhotos).Methods("DELETE")
	secured.HandleFunc("/{entityType}/{id}/photos", handler.ReconcilePhotos).Methods("PUT")
	secured.HandleFunc("/checkins", handler.CreateCheckIn).Methods("POST")

	return router
}
