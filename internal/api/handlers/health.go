package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"authbase/internal/platform/database"
)

type HealthHandler struct {
	db    *database.DB
	redis *redis.Client
}

func NewHealthHandler(db *database.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := h.db.DB.Ping(); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
	} else {
		checks["database"] = "healthy"
	}

	if err := h.redis.Ping(r.Context()).Err(); err != nil {
		checks["redis"] = "unhealthy: " + err.Error()
	} else {
		checks["redis"] = "healthy"
	}

	status := "healthy"
	for _, check := range checks {
		if strings.HasPrefix(check, "unhealthy") {
			status = "degraded"
			break
		}
	}

	response := struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
