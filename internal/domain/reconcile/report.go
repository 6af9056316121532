// Package reconcile audits divergence between the object store and the
// metadata table.
package reconcile

import "time"

// Record is the metadata-row projection the reconciler works from.
type Record struct {
	FileID   string  `json:"file_id"`
	Key      string  `json:"key"`
	ItemID   *string `json:"item_id,omitempty"`
	Size     int64   `json:"size"`
	Detached bool    `json:"detached"`
}

// StorageOrphan is an object physically present in the store with no
// metadata row pointing at it.
type StorageOrphan struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// DBOrphan is a metadata row whose owner or physical file is gone.
type DBOrphan struct {
	FileID string  `json:"file_id"`
	Key    string  `json:"key"`
	ItemID *string `json:"item_id,omitempty"`
	Size   int64   `json:"size"`
	Reason string  `json:"reason"` // "owner-deleted" or "file-missing"
}

// UnassignedRecord is a metadata row with no owning item reference.
type UnassignedRecord struct {
	FileID string `json:"file_id"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
}

// Report is the point-in-time audit produced by one reconciliation run. It
// is never persisted. Classification is a partition: a key appears in at
// most one of the three lists.
type Report struct {
	StorageOrphans []StorageOrphan    `json:"storage_orphans"`
	DBOrphans      []DBOrphan         `json:"db_orphans"`
	Unassigned     []UnassignedRecord `json:"unassigned"`

	ScannedObjects int   `json:"scanned_objects"`
	ScannedRecords int   `json:"scanned_records"`
	WastedBytes    int64 `json:"wasted_bytes"`

	// ListingFailed marks a run where the physical listing could not be
	// obtained and the storage-side comparisons were skipped.
	ListingFailed bool      `json:"listing_failed"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// RecordRef identifies one metadata row for cleanup by (key, owner) pair.
// A nil ItemID matches rows whose owner column is NULL.
type RecordRef struct {
	Key    string  `json:"key"`
	ItemID *string `json:"item_id,omitempty"`
}

// CleanupFailure records one item that could not be deleted.
type CleanupFailure struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// CleanupResult reports both sides of a cleanup pass so the caller can
// reconcile.
type CleanupResult struct {
	Deleted []string         `json:"deleted"`
	Failed  []CleanupFailure `json:"failed"`
	Skipped []string         `json:"skipped,omitempty"`
}
