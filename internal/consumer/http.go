package consumer

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds inbound push bodies; events are small.
const maxBodyBytes = 1 << 20

// ServiceInfo identifies the consumer service in health responses.
type ServiceInfo struct {
	Name string
}

// NewRouter builds the HTTP surface of a consumer service: the push
// endpoint for each subscription, the subscription descriptor endpoint,
// and a health probe.
//
// Push responses follow the broker's contract: 200 commits, 400 routes to
// the dead-letter store, 500 triggers redelivery.
func NewRouter(info ServiceInfo, subs []Subscription, consumers map[string]*Consumer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": info.Name,
		}, logger)
	})

	r.Get("/dapr/subscribe", func(w http.ResponseWriter, req *http.Request) {
		logger.Info("subscription descriptor requested", "subscriptions", len(subs))
		writeJSON(w, http.StatusOK, subs, logger)
	})

	for _, sub := range subs {
		c, ok := consumers[sub.Route]
		if !ok {
			logger.Error("no consumer registered for subscription route", "route", sub.Route)
			continue
		}
		r.Post(sub.Route, pushHandler(c, logger))
	}

	return r
}

// pushHandler adapts a Consumer to the broker's push delivery protocol.
func pushHandler(c *Consumer, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
		if err != nil {
			logger.Error("failed to read push body", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read request body"}, logger)
			return
		}

		result, handleErr := c.Handle(req.Context(), body)
		switch result {
		case ResultAck:
			w.WriteHeader(http.StatusOK)
		case ResultPermanentFailure:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": handleErr.Error()}, logger)
		case ResultTransientFailure:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": handleErr.Error()}, logger)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}
