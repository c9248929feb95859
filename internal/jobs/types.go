package jobs

type JobType string

const (
	// JobCatalogSnapshot rewrites the catalog mirror file from the book store.
	JobCatalogSnapshot JobType = "catalog.snapshot"
)

// CatalogSnapshotKey coalesces snapshot requests while one is still pending.
const CatalogSnapshotKey = "catalog:snapshot"

func (t JobType) IsValid() bool {
	switch t {
	case JobCatalogSnapshot:
		return true
	default:
		return false
	}
}
