package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sciencejournal/models"
	"sciencejournal/repository"
	"sciencejournal/storage"
)

// DocumentService löst Dokument-IDs in gespeicherte PDFs auf.
type DocumentService struct {
	Documents *repository.DocumentRepository
	Store     storage.DocumentStore
	Logger    *zap.Logger
}

func NewDocumentService(documents *repository.DocumentRepository, store storage.DocumentStore, logger *zap.Logger) *DocumentService {
	return &DocumentService{Documents: documents, Store: store, Logger: logger}
}

func (s *DocumentService) GetDocument(ctx context.Context, id uuid.UUID) (*models.PaperDocument, error) {
	doc, err := s.Documents.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err)
	}
	return doc, nil
}

// OpenDocument liefert den Datensatz und einen geöffneten Stream. Der
// Aufrufer muss das Objekt schließen. Fehlt Datensatz oder Datei, kommt
// ErrNotFound.
func (s *DocumentService) OpenDocument(ctx context.Context, id uuid.UUID) (*models.PaperDocument, *storage.Object, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.Store.Open(ctx, doc.DocumentName)
	if errors.Is(err, storage.ErrNotFound) {
		s.Logger.Warn("Document row exists but file is missing",
			zap.String("document_id", id.String()),
			zap.String("document", doc.DocumentName))
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return doc, obj, nil
}
