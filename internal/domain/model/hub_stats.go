package model

import "time"

// HubStats is a point-in-time snapshot of the session registry, exposed on
// the stats endpoint and consumed by the monitor command.
type HubStats struct {
	TotalUsers       int           `json:"total_users"`
	TotalConnections int           `json:"total_connections"`
	Uptime           time.Duration `json:"uptime"`
}
