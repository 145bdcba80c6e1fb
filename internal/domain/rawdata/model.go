package rawdata

import "time"

// Payload is an unmodified provider response kept for audit and replay.
type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}

const (
	EntityGeneralInfo  = "bootstrap_static"
	EntityFixtures     = "fixtures"
	EntityPlayerDetail = "element_summary"
)
