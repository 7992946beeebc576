package handler

import (
	"detectionview/internal/logger"
	"detectionview/internal/service"
	"io"
	"net/http"
)

// PageHandler serves the full page with the current cards in the container.
func PageHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		io.WriteString(w, manager.Container().Document())
	}
}

// FragmentHandler serves only the container's children.
func FragmentHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		io.WriteString(w, manager.Container().InnerHTML())
	}
}

// TextHandler serves a plain-text rendition of the cards.
func TextHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		io.WriteString(w, manager.Container().Text())
	}
}

// RefreshHandler queues one fetch-and-render cycle on POST.
func RefreshHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := manager.Refresh(r.Context()); err != nil {
			logger.Warning("Manual refresh not queued: %v", err)
			http.Error(w, "Refresh not queued", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}
