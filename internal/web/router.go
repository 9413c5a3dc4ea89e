// Package web serves the daemon's local HTTP API.
package web

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/manav03panchal/babyreminder/internal/service"
)

// API wires the routes to a backend.
type API struct {
	backend service.Backend
	health  func() any
	metrics func() any
}

// NewAPI creates the API over backend.
func NewAPI(backend service.Backend) *API {
	return &API{backend: backend}
}

// WithHealth serves fn's result on GET /health.
func (a *API) WithHealth(fn func() any) *API {
	a.health = fn
	return a
}

// WithMetrics serves fn's result on GET /metrics.
func (a *API) WithMetrics(fn func() any) *API {
	a.metrics = fn
	return a
}

// NewRouter builds the route table.
func (a *API) NewRouter() *mux.Router {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(logRequests)

	r.HandleFunc("/health", a.getHealth).Methods("GET")
	r.HandleFunc("/metrics", a.getMetrics).Methods("GET")
	r.HandleFunc("/status", a.getStatus).Methods("GET")

	r.HandleFunc("/events", a.postEvent).Methods("POST")
	r.HandleFunc("/actions/{action}", a.postAction).Methods("POST")

	r.HandleFunc("/devices", a.listDevices).Methods("GET")
	r.HandleFunc("/devices", a.addDevice).Methods("POST")
	r.HandleFunc("/devices/{name}", a.removeDevice).Methods("DELETE")

	r.HandleFunc("/rules", a.listRules).Methods("GET")
	r.HandleFunc("/rules", a.addRule).Methods("POST")
	r.HandleFunc("/rules/check", a.checkWindow).Methods("GET")
	r.HandleFunc("/rules/migrate", a.migrateRules).Methods("POST")
	r.HandleFunc("/rules/{id}", a.deleteRule).Methods("DELETE")

	r.HandleFunc("/settings", a.getSettings).Methods("GET")
	r.HandleFunc("/settings", a.updateSettings).Methods("PUT", "PATCH")

	r.HandleFunc("/webhooks", a.listWebhooks).Methods("GET")
	r.HandleFunc("/webhooks", a.addWebhook).Methods("POST")
	r.HandleFunc("/webhooks/{name}", a.removeWebhook).Methods("DELETE")
	r.HandleFunc("/webhooks/{name}/enable", a.enableWebhook).Methods("POST")
	r.HandleFunc("/webhooks/{name}/disable", a.disableWebhook).Methods("POST")
	r.HandleFunc("/webhooks/{name}/test", a.testWebhook).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, service.ErrorResponse{Error: "no such endpoint"})
	})
	return r
}
