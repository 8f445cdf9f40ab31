// Package statuses persists UploadStatus records, one row per item id.
//
// Page statuses and document submission statuses share the row layout and
// live in separate tables; pick one with the Table argument of
// NewSQLiteRepository. Writes are upserts: a new transition overwrites the
// previous record and no history is kept. A missing row means the item was
// never attempted.
package statuses
