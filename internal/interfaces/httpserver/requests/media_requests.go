package requests

import (
	"github.com/heavybid/auction-media/internal/domain/media"
	"github.com/heavybid/auction-media/internal/domain/reconcile"
)

// AttachRequest binds a freshly uploaded storage key to a new asset group.
type AttachRequest struct {
	StorageKey   string  `json:"storage_key" binding:"required"`
	OriginalName string  `json:"original_name" binding:"required"`
	MimeType     *string `json:"mime_type"`
	SizeBytes    *int64  `json:"size_bytes"`
	ItemID       *string `json:"item_id"`
	Priority     int     `json:"priority"`
}

// ToDomain converts the request to domain input
func (r *AttachRequest) ToDomain() media.AttachInput {
	return media.AttachInput{
		StorageKey:   r.StorageKey,
		OriginalName: r.OriginalName,
		MimeType:     r.MimeType,
		SizeBytes:    r.SizeBytes,
		ItemID:       r.ItemID,
		Priority:     r.Priority,
	}
}

// CleanupFilesRequest lists storage keys to physically delete.
type CleanupFilesRequest struct {
	Keys    []string `json:"keys" binding:"required"`
	Confirm bool     `json:"confirm"`
}

// CleanupRecordRef identifies one metadata row by its (key, owner) pair. A
// nil item_id matches rows whose owner column is NULL.
type CleanupRecordRef struct {
	Key    string  `json:"key" binding:"required"`
	ItemID *string `json:"item_id"`
}

// CleanupRecordsRequest lists metadata rows to delete.
type CleanupRecordsRequest struct {
	Records []CleanupRecordRef `json:"records" binding:"required"`
}

// ToDomain converts record refs to domain form
func (r *CleanupRecordsRequest) ToDomain() []reconcile.RecordRef {
	refs := make([]reconcile.RecordRef, 0, len(r.Records))
	for _, rec := range r.Records {
		refs = append(refs, reconcile.RecordRef{Key: rec.Key, ItemID: rec.ItemID})
	}
	return refs
}
