// Package documents keeps the ordered view of scanned documents, creates and
// deletes them, and caches the document type catalog.
package documents
