// Package models defines the client-side records of the capture engine:
// documents, their pages, upload statuses and the reference data fetched
// from the document service.
package models
