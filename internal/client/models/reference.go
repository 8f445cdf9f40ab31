package models

import "time"

// Department groups document types.
type Department struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DocumentType is cached locally per department.
type DocumentType struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DepartmentCode string `json:"department"`
}

// Folder is a destination for documents. Only folders the user picked are
// stored; LastUsed orders the history.
type Folder struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"externalId"`
	Name       string    `json:"name"`
	LastUsed   time.Time `json:"-"`
}
