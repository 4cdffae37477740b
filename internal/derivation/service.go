package derivation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avaldivia/document-routing/internal"
	"github.com/avaldivia/document-routing/internal/chargebook"
	"github.com/avaldivia/document-routing/internal/core/events"
	"github.com/avaldivia/document-routing/internal/department"
	"github.com/avaldivia/document-routing/internal/document"
)

type Repository interface {
	CreateWithDetail(d *Derivation, detail *Detail) error
	GetByID(id int64) (*Derivation, error)
	GetInbox(departmentID int64, limit, offset int) ([]*Derivation, error)
	GetOutbox(departmentID int64, limit, offset int) ([]*Derivation, error)
	Receive(d *Derivation, detail *Detail, entry *chargebook.Entry) error
	Reject(d *Derivation, detail *Detail) error
	UpdateDestination(id int64, destinationDepartmentID int64) error
	AppendDetail(detail *Detail) error
	Delete(id int64) error
	HasChargeBookEntry(documentID, departmentID int64) (bool, error)
}

// DocumentGetter is the slice of the document service the workflow needs.
type DocumentGetter interface {
	GetDocumentByID(id int64) (*document.Document, error)
}

// DepartmentGetter resolves department names for timeline messages.
type DepartmentGetter interface {
	GetDepartmentByID(id int64) (*department.Department, error)
}

type Service struct {
	repo        Repository
	documents   DocumentGetter
	departments DepartmentGetter
	eventBus    *events.EventBus
	logger      *slog.Logger
}

func NewService(repo Repository, documents DocumentGetter, departments DepartmentGetter, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		documents:   documents,
		departments: departments,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Derive sends a document to another department. The actor's department must
// either have registered the document or hold a charge book entry for it
// (re-derivation after receipt).
func (s *Service) Derive(ctx context.Context, actor internal.Actor, dto CreateDerivationDTO) (*Derivation, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("derivation validation failed", "error", err)
		return nil, err
	}

	if !actor.HasDepartment() {
		return nil, ErrNoDepartment
	}
	if dto.DestinationDepartmentID == actor.DepartmentID {
		return nil, ErrSameDepartment
	}

	doc, err := s.documents.GetDocumentByID(dto.DocumentID)
	if err != nil {
		return nil, err
	}

	if doc.CreatedByDepartmentID != actor.DepartmentID {
		holds, err := s.repo.HasChargeBookEntry(doc.ID, actor.DepartmentID)
		if err != nil {
			return nil, err
		}
		if !holds {
			return nil, ErrNotCustodian
		}
	}

	if _, err := s.departments.GetDepartmentByID(dto.DestinationDepartmentID); err != nil {
		return nil, err
	}

	comment := dto.Comments
	if comment == "" {
		comment = s.sendMessage(doc.DocCode, actor.DepartmentID, dto.DestinationDepartmentID)
	}

	d := &Derivation{
		DocumentID:              doc.ID,
		OriginDepartmentID:      actor.DepartmentID,
		DestinationDepartmentID: dto.DestinationDepartmentID,
		CreatedByUserID:         actor.UserID,
		Status:                  StatusSent,
	}
	detail := &Detail{
		Status:   StatusSent,
		Comments: comment,
		UserID:   actor.UserID,
	}

	if err := s.repo.CreateWithDetail(d, detail); err != nil {
		s.logger.Error("failed to create derivation",
			"error", err,
			"document_id", doc.ID,
			"destination_department_id", dto.DestinationDepartmentID)
		return nil, err
	}

	s.eventBus.Publish(ctx, events.NewDocumentDerivedEvent(
		d.ID, d.DocumentID, d.OriginDepartmentID, d.DestinationDepartmentID, actor.UserID))

	s.logger.Info("document derived",
		"derivation_id", d.ID,
		"document_id", d.DocumentID,
		"origin_department_id", d.OriginDepartmentID,
		"destination_department_id", d.DestinationDepartmentID)

	return d, nil
}

// Receive confirms custody: appends the Recibido detail, flips the status and
// writes the charge book entry in one transaction.
func (s *Service) Receive(ctx context.Context, id int64, actor internal.Actor, dto ReceiveDerivationDTO) (*chargebook.Entry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if d.DestinationDepartmentID != actor.DepartmentID {
		return nil, ErrNotDestination
	}
	if d.Status != StatusSent {
		return nil, ErrAlreadyResolved
	}

	holds, err := s.repo.HasChargeBookEntry(d.DocumentID, actor.DepartmentID)
	if err != nil {
		return nil, err
	}
	if holds {
		return nil, ErrAlreadyInChargeBook
	}

	detail := &Detail{
		DerivationID: d.ID,
		Status:       StatusReceived,
		Comments:     "Documento recibido",
		UserID:       actor.UserID,
	}
	entry := &chargebook.Entry{
		DocumentID:         d.DocumentID,
		SenderDepartmentID: d.OriginDepartmentID,
		SenderUserID:       d.CreatedByUserID,
		ReceiverUserID:     actor.UserID,
		DepartmentID:       actor.DepartmentID,
		Notes:              dto.Notes,
	}

	if err := s.repo.Receive(d, detail, entry); err != nil {
		s.logger.Error("failed to receive derivation", "error", err, "derivation_id", id)
		return nil, err
	}

	s.eventBus.Publish(ctx, events.NewDerivationReceivedEvent(
		d.ID, d.DocumentID, actor.DepartmentID, entry.ID, entry.RegistrationNumber))

	s.logger.Info("derivation received",
		"derivation_id", d.ID,
		"document_id", d.DocumentID,
		"charge_book_entry_id", entry.ID,
		"registration_number", entry.RegistrationNumber)

	return entry, nil
}

// Reject refuses custody with a reason. Any charge book entry the department
// holds for the document is removed in the same transaction.
func (s *Service) Reject(ctx context.Context, id int64, actor internal.Actor, dto RejectDerivationDTO) (*Derivation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if d.DestinationDepartmentID != actor.DepartmentID {
		return nil, ErrNotDestination
	}
	if d.IsTerminal() {
		return nil, ErrAlreadyResolved
	}

	detail := &Detail{
		DerivationID: d.ID,
		Status:       StatusRejected,
		Comments:     dto.Reason,
		UserID:       actor.UserID,
	}

	if err := s.repo.Reject(d, detail); err != nil {
		s.logger.Error("failed to reject derivation", "error", err, "derivation_id", id)
		return nil, err
	}

	s.eventBus.Publish(ctx, events.NewDerivationRejectedEvent(
		d.ID, d.DocumentID, actor.DepartmentID, dto.Reason))

	s.logger.Info("derivation rejected", "derivation_id", d.ID, "document_id", d.DocumentID)

	return s.repo.GetByID(id)
}

// Edit changes the destination or appends a comment while the derivation is
// still pending. Comment edits never overwrite history: they append a
// Modificado detail and leave the status untouched.
func (s *Service) Edit(id int64, actor internal.Actor, dto UpdateDerivationDTO) (*Derivation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if d.OriginDepartmentID != actor.DepartmentID {
		return nil, ErrNotOriginDepartment
	}
	if d.Status != StatusSent {
		return nil, ErrAlreadyResolved
	}

	if dto.DestinationDepartmentID != nil {
		dest := *dto.DestinationDepartmentID
		if dest == d.OriginDepartmentID {
			return nil, ErrSameDepartment
		}
		if _, err := s.departments.GetDepartmentByID(dest); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateDestination(d.ID, dest); err != nil {
			s.logger.Error("failed to update derivation destination", "error", err, "derivation_id", id)
			return nil, err
		}
	}

	if dto.Comments != "" {
		detail := &Detail{
			DerivationID: d.ID,
			Status:       StatusModified,
			Comments:     dto.Comments,
			UserID:       actor.UserID,
		}
		if err := s.repo.AppendDetail(detail); err != nil {
			s.logger.Error("failed to append derivation detail", "error", err, "derivation_id", id)
			return nil, err
		}
	}

	s.logger.Info("derivation updated", "derivation_id", id)
	return s.repo.GetByID(id)
}

// Delete withdraws a pending mistake. Only the origin department may do it
// and only shortly after creation.
func (s *Service) Delete(id int64, actor internal.Actor) error {
	d, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if d.OriginDepartmentID != actor.DepartmentID {
		return ErrNotOriginDepartment
	}
	if time.Since(d.CreatedAt) > DeleteWindow {
		return ErrDeleteWindowClosed
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete derivation", "error", err, "derivation_id", id)
		return err
	}

	s.logger.Info("derivation deleted", "derivation_id", id)
	return nil
}

func (s *Service) GetDerivationByID(id int64) (*Derivation, error) {
	return s.repo.GetByID(id)
}

// GetInbox lists derivations targeting the actor's department.
func (s *Service) GetInbox(actor internal.Actor, limit, offset int) ([]*Derivation, error) {
	if !actor.HasDepartment() {
		return nil, ErrNoDepartment
	}
	return s.repo.GetInbox(actor.DepartmentID, limit, offset)
}

// GetOutbox lists derivations originating from the actor's department.
func (s *Service) GetOutbox(actor internal.Actor, limit, offset int) ([]*Derivation, error) {
	if !actor.HasDepartment() {
		return nil, ErrNoDepartment
	}
	return s.repo.GetOutbox(actor.DepartmentID, limit, offset)
}

func (s *Service) sendMessage(docCode string, originID, destinationID int64) string {
	origin := s.departmentName(originID)
	destination := s.departmentName(destinationID)
	return fmt.Sprintf("Documento %s enviado de %s a %s", docCode, origin, destination)
}

func (s *Service) departmentName(id int64) string {
	dept, err := s.departments.GetDepartmentByID(id)
	if err != nil {
		return fmt.Sprintf("departamento %d", id)
	}
	return dept.Name
}
