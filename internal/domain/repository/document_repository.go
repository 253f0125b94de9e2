package repository

import "github.com/pharmabill/pharmabill-api/internal/domain/entity"

// DocumentRepository is the port for documents and their item lists. The item
// list is owned by the document: ReplaceItems swaps the whole set on edit.
type DocumentRepository interface {
	GetByID(id string) (*entity.Document, error)
	// GetByIDForUpdate locks the document row for the duration of the
	// enclosing transaction.
	GetByIDForUpdate(id string) (*entity.Document, error)
	Create(doc *entity.Document) error
	Update(doc *entity.Document) error
	ReplaceItems(docID string, items []entity.DocumentItem) error
	UpdateItemReturnedQuantity(itemID string, returnedQuantity int64) error
	Delete(id string) error
	// ListReturns returns the return documents recorded against a document.
	ListReturns(originalDocID string) ([]*entity.Document, error)
	// CountByBatch counts document items referencing a batch; a batch may be
	// hard-deleted only when this is zero.
	CountByBatch(batchID string) (int64, error)
}
