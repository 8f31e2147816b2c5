package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const healthPingTimeout = 5 * time.Second

type connUsage struct {
	Open     int32 `json:"open"`
	Idle     int32 `json:"idle"`
	InUse    int32 `json:"in_use"`
	Capacity int32 `json:"capacity"`
}

func poolUsage(pool *pgxpool.Pool) connUsage {
	s := pool.Stat()
	return connUsage{
		Open:     s.TotalConns(),
		Idle:     s.IdleConns(),
		InUse:    s.AcquiredConns(),
		Capacity: s.MaxConns(),
	}
}

// HealthHandler reports whether the database answers a ping, along with
// connection usage for operators.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status":      "unavailable",
				"database":    "unreachable",
				"error":       err.Error(),
				"connections": poolUsage(pool),
			})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"database":    "up",
			"connections": poolUsage(pool),
		})
	}
}
