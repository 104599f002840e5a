package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Record represents one item fetched during a crawl, with the raw response
// and whatever could be parsed out of it.
//
// Design decision: We store both raw bytes and parsed content because:
// 1. Raw bytes are needed for binary analysis (EXIF in images, etc.)
// 2. Parsed menu entries drive further crawling and the link audit
// 3. The hash allows deduplication and change detection between crawls
type Record struct {
	// URL is the canonical gopher URL of the item.
	URL string `json:"url"`

	// Host is the server the item was fetched from.
	Host string `json:"host"`

	// Port is the TCP port the item was fetched from.
	Port int `json:"port"`

	// Selector is the selector that was requested.
	Selector string `json:"selector"`

	// Type is the item type the response was fetched as.
	// ItemNone means the generic menu/text path was used.
	Type ItemType `json:"type"`

	// Size is the total response size in bytes, before truncation.
	Size int `json:"size"`

	// Entries contains the parsed menu entries for menu responses.
	// Nil for image and binary responses.
	Entries []MenuEntry `json:"entries,omitempty"`

	// Snapshot is the decoded text of menu/text responses.
	// Limited to MaxSnapshotSize bytes to prevent memory issues.
	// Useful for text-based audit checks (emails, addresses).
	Snapshot string `json:"snapshot,omitempty"`

	// Raw contains the raw response bytes.
	// Limited to MaxRecordSize bytes.
	// Used for binary analysis (EXIF extraction, etc.).
	Raw []byte `json:"-"` // Excluded from JSON to reduce report size

	// Hash is the SHA-256 hash of the raw content.
	// Used for deduplication and change detection.
	Hash string `json:"hash,omitempty"`

	// FetchedAt is when the item was fetched.
	FetchedAt time.Time `json:"fetched_at"`

	// Elapsed is how long the fetch took, connection to close.
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`

	// Error holds the fetch error message for items that could not be
	// retrieved. Empty on success.
	Error string `json:"error,omitempty"`
}

// MaxSnapshotSize is the maximum size of the text snapshot in bytes.
// We limit this to prevent memory issues with very large text items.
const MaxSnapshotSize = 512 * 1024 // 512 KB

// MaxRecordSize is the maximum size of raw content to store per record.
// Larger responses are truncated to this size.
const MaxRecordSize = 5 * 1024 * 1024 // 5 MB

// ComputeHash calculates and sets the SHA-256 hash of the record's raw content.
// This should be called after setting the Raw field.
func (r *Record) ComputeHash() {
	if len(r.Raw) == 0 {
		r.Hash = ""
		return
	}

	hash := sha256.Sum256(r.Raw)
	r.Hash = hex.EncodeToString(hash[:])
}

// Failed returns true if the item could not be fetched.
func (r *Record) Failed() bool {
	return r.Error != ""
}

// IsMenu returns true if the record holds a gopher menu.
func (r *Record) IsMenu() bool {
	return r.Type == ItemMenu || (r.Type == ItemNone && len(r.Entries) > 0)
}

// IsImage returns true if the record holds image data.
func (r *Record) IsImage() bool {
	return r.Type.IsImage()
}

// TruncateSnapshot ensures the snapshot doesn't exceed MaxSnapshotSize.
// Call this after setting the snapshot to enforce the size limit.
func (r *Record) TruncateSnapshot() {
	if len(r.Snapshot) > MaxSnapshotSize {
		r.Snapshot = r.Snapshot[:MaxSnapshotSize]
	}
}

// TruncateRaw ensures the raw content doesn't exceed MaxRecordSize.
// Call this after setting Raw to enforce the size limit.
func (r *Record) TruncateRaw() {
	if len(r.Raw) > MaxRecordSize {
		r.Raw = r.Raw[:MaxRecordSize]
	}
}
