package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is a multi-page capture destined for one folder.
type Document struct {
	// ID is generated at creation and never changes.
	ID       string
	TypeID   string
	FolderID string
	// CreatedAt defines storage order.
	CreatedAt time.Time
	// PageIDs lists the pages in ordinal order.
	PageIDs []string
}

// Page is a single scanned image of a document. Pages are immutable once
// created.
type Page struct {
	ID         string
	DocumentID string
	// ImageRef is the blob key of the raw image payload.
	ImageRef string
	Index    int
}

// NewDocument builds a document with pageCount pages. Each page's ImageRef
// is "<document id>/<page id>".
func NewDocument(typeID, folderID string, now time.Time, pageCount int) (Document, []Page) {
	doc := Document{
		ID:        uuid.NewString(),
		TypeID:    typeID,
		FolderID:  folderID,
		CreatedAt: now.UTC(),
		PageIDs:   make([]string, 0, pageCount),
	}

	pages := make([]Page, pageCount)
	for i := range pages {
		id := uuid.NewString()
		pages[i] = Page{
			ID:         id,
			DocumentID: doc.ID,
			ImageRef:   doc.ID + "/" + id,
			Index:      i,
		}
		doc.PageIDs = append(doc.PageIDs, id)
	}

	return doc, pages
}
