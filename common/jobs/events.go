package jobs

import "time"

// DatasetEvent announces that a new enriched table was written.
type DatasetEvent struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Rows        int       `json:"rows"`
	GeneratedAt time.Time `json:"generated_at"`
}
