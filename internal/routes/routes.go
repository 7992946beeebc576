package routes

import (
	"detectionview/internal/handler"
	"detectionview/internal/logger"
	"detectionview/internal/service"
	hub "detectionview/internal/service/websocket"
	"net/http"
)

// SetupRoutes registers the page, view, refresh, viewer websocket and log endpoints.
func SetupRoutes(manager *service.Manager, hubService *hub.HubService, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Page and container views
	mux.HandleFunc("/", handler.PageHandler(manager))
	mux.HandleFunc("/view/detections", handler.FragmentHandler(manager))
	mux.HandleFunc("/view/text", handler.TextHandler(manager))

	// API endpoints
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(hubService, log))
	mux.HandleFunc("/api/refresh", handler.RefreshHandler(manager, log))

	// Log endpoints
	for name, file := range map[string]string{
		"info":    logger.InfoFile,
		"warning": logger.WarningFile,
		"error":   logger.ErrorFile,
	} {
		mux.HandleFunc("/logs/"+name, handler.ShowLogsHandler(log, file))
		mux.HandleFunc("/logs/"+name+"/clear", handler.ClearLogsHandler(log, file))
	}

	return mux
}
