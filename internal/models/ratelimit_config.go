package models

import "time"

// RatelimitConfig holds the rate limit applied to API routes.
// Rate uses ulule/limiter formatted notation, e.g. "5-S" or "100-M".
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
