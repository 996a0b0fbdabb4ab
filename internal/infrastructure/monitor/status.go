package monitor

import "time"

type Status struct {
	PostgreSQL   bool      `json:"postgresql"`
	Redis        bool      `json:"redis"`
	Activity     bool      `json:"activity_log"`
	ActivitySize int       `json:"activity_entries"`
	LastCheck    time.Time `json:"last_check"`
}
