package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             int
	UpstreamURL      string        // Base URL serving GET /detections
	PushURL          string        // Websocket URL of the notification channel
	PushProtocol     string        // "socketio" or "json"
	PushEvent        string        // Event name that triggers a refresh
	FetchTimeout     time.Duration // 0 disables the client timeout
	ReconnectDelay   time.Duration // Pause before re-dialing the push channel
	PollInterval     time.Duration // 0 disables periodic refresh
	RefreshQueueSize int
	LogDirectory     string
}

func Load() *Config {
	// .env is optional; fall back to the process environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		Port:             getEnvAsInt("PORT", 8080),
		UpstreamURL:      getEnv("UPSTREAM_URL", "http://localhost:5000"),
		PushURL:          getEnv("PUSH_URL", "ws://localhost:5000/socket.io/?EIO=4&transport=websocket"),
		PushProtocol:     getEnv("PUSH_PROTOCOL", "socketio"),
		PushEvent:        getEnv("PUSH_EVENT", "new_detection"),
		FetchTimeout:     getEnvAsDuration("FETCH_TIMEOUT", 10*time.Second),
		ReconnectDelay:   getEnvAsDuration("RECONNECT_DELAY", 5*time.Second),
		PollInterval:     getEnvAsDuration("POLL_INTERVAL", 0),
		RefreshQueueSize: getEnvAsInt("REFRESH_QUEUE_SIZE", 100),
		LogDirectory:     getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("1m30s") or plain seconds ("30").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
