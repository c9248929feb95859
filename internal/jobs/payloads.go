package jobs

import "time"

// CatalogSnapshotPayload records what triggered the snapshot. The worker
// always reloads the full catalog, so the payload carries no book data.
type CatalogSnapshotPayload struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requestedAt"`
	RequestID   string    `json:"requestId,omitempty"`
}
