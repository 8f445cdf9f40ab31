// Package documents provides the SQLite persistence of Document records.
//
// Pages are stored by the pages repository; PageIDs of a loaded Document are
// left empty here and filled in by the storage facade.
//
//	repo := documents.NewSQLiteRepository(db)
//	_ = repo.Save(ctx, &doc)
//	all, _ := repo.GetAll(ctx) // creation order
package documents
