package document

import (
	"context"
	goerrors "errors"
	"io"
	"log/slog"

	"github.com/avaldivia/document-routing/internal"
	"github.com/avaldivia/document-routing/internal/core/events"
	"github.com/avaldivia/document-routing/internal/storage"
)

type Repository interface {
	Create(d *Document) error
	GetByID(id int64) (*Document, error)
	GetByDepartment(departmentID int64, limit, offset int) ([]*Document, error)
	Update(d *Document) error
	Delete(id int64) error
	CountReferences(id int64) (int64, error)
}

type Service struct {
	repo     Repository
	files    storage.FileStorage
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, files storage.FileStorage, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		files:    files,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateDocument registers a document for the actor's department. The
// repository assigns the registration number and document code inside its own
// transaction, so by the time this returns both are final.
func (s *Service) CreateDocument(ctx context.Context, actor internal.Actor, dto CreateDocumentDTO) (*Document, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("document validation failed", "error", err)
		return nil, err
	}

	if !actor.HasDepartment() {
		return nil, ErrNoDepartment
	}

	doc := &Document{
		Name:                  dto.Name,
		Subject:               dto.Subject,
		PageCount:             dto.PageCount,
		CreatedByDepartmentID: actor.DepartmentID,
		RegisteredByUserID:    actor.UserID,
	}

	if err := s.repo.Create(doc); err != nil {
		s.logger.Error("failed to register document",
			"error", err,
			"department_id", actor.DepartmentID)
		return nil, err
	}

	s.eventBus.Publish(ctx, events.NewDocumentRegisteredEvent(
		doc.ID, doc.DocCode, doc.CreatedByDepartmentID, doc.RegistrationNumber))

	s.logger.Info("document registered",
		"document_id", doc.ID,
		"doc_code", doc.DocCode,
		"registration_number", doc.RegistrationNumber,
		"department_id", doc.CreatedByDepartmentID)

	return doc, nil
}

func (s *Service) GetDocumentByID(id int64) (*Document, error) {
	return s.repo.GetByID(id)
}

// GetDocuments lists a department's registry page. A zero departmentID falls
// back to the actor's own department.
func (s *Service) GetDocuments(actor internal.Actor, departmentID int64, limit, offset int) ([]*Document, error) {
	if departmentID == 0 {
		if !actor.HasDepartment() {
			return nil, ErrNoDepartment
		}
		departmentID = actor.DepartmentID
	}
	return s.repo.GetByDepartment(departmentID, limit, offset)
}

func (s *Service) UpdateDocument(id int64, actor internal.Actor, dto UpdateDocumentDTO) (*Document, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("document validation failed", "error", err, "document_id", id)
		return nil, err
	}

	doc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc.CreatedByDepartmentID != actor.DepartmentID {
		return nil, ErrNotOwnerDepartment
	}

	doc.Name = dto.Name
	doc.Subject = dto.Subject
	doc.PageCount = dto.PageCount

	if err := s.repo.Update(doc); err != nil {
		s.logger.Error("failed to update document", "error", err, "document_id", id)
		return nil, err
	}

	s.logger.Info("document updated", "document_id", id)
	return doc, nil
}

// AttachFile stores the uploaded file and records its path on the document,
// replacing any previously attached file.
func (s *Service) AttachFile(ctx context.Context, id int64, actor internal.Actor, fileName string, content io.Reader) (*Document, error) {
	doc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc.CreatedByDepartmentID != actor.DepartmentID {
		return nil, ErrNotOwnerDepartment
	}

	path, err := s.files.Save(ctx, fileName, content)
	if err != nil {
		s.logger.Error("failed to store document file", "error", err, "document_id", id)
		return nil, err
	}

	previous := doc.FilePath
	doc.FilePath = &path
	if err := s.repo.Update(doc); err != nil {
		// Keep storage consistent with the record we failed to update.
		if cleanupErr := s.files.Delete(ctx, path); cleanupErr != nil {
			s.logger.Warn("failed to remove orphaned file", "error", cleanupErr, "path", path)
		}
		return nil, err
	}

	if previous != nil {
		if err := s.files.Delete(ctx, *previous); err != nil && !goerrors.Is(err, storage.ErrFileNotFound) {
			s.logger.Warn("failed to remove replaced file", "error", err, "path", *previous)
		}
	}

	s.logger.Info("document file attached", "document_id", id, "path", path)
	return doc, nil
}

// DeleteDocument removes an unreferenced document together with its stored
// file. Documents that already appear in a derivation or the charge book stay.
func (s *Service) DeleteDocument(ctx context.Context, id int64, actor internal.Actor) error {
	doc, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if doc.CreatedByDepartmentID != actor.DepartmentID {
		return ErrNotOwnerDepartment
	}

	refs, err := s.repo.CountReferences(id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrDocumentReferenced
	}

	if doc.FilePath != nil {
		if err := s.files.Delete(ctx, *doc.FilePath); err != nil && !goerrors.Is(err, storage.ErrFileNotFound) {
			s.logger.Error("failed to remove document file", "error", err, "document_id", id)
			return err
		}
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete document", "error", err, "document_id", id)
		return err
	}

	s.logger.Info("document deleted", "document_id", id, "doc_code", doc.DocCode)
	return nil
}
