package chargebook

import (
	"log/slog"
	"time"

	"github.com/avaldivia/document-routing/internal"
)

type Repository interface {
	GetByID(id int64) (*Entry, error)
	GetByDepartment(departmentID int64, limit, offset int) ([]*Entry, error)
	Delete(id int64) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetEntries lists the actor's department ledger, newest first.
func (s *Service) GetEntries(actor internal.Actor, limit, offset int) ([]*Entry, error) {
	if !actor.HasDepartment() {
		return nil, ErrNotOwnerDepartment
	}
	return s.repo.GetByDepartment(actor.DepartmentID, limit, offset)
}

func (s *Service) GetEntryByID(id int64, actor internal.Actor) (*Entry, error) {
	entry, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if entry.DepartmentID != actor.DepartmentID {
		return nil, ErrNotOwnerDepartment
	}
	return entry, nil
}

// DeleteEntry removes a receipt recorded by mistake. Only the owning
// department may do it, and only within the deletion window; after that the
// ledger is settled and removal goes through a rejection instead.
func (s *Service) DeleteEntry(id int64, actor internal.Actor) error {
	entry, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if entry.DepartmentID != actor.DepartmentID {
		return ErrNotOwnerDepartment
	}
	if time.Since(entry.CreatedAt) > DeleteWindow {
		return ErrDeleteWindowClosed
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete charge book entry", "error", err, "entry_id", id)
		return err
	}

	s.logger.Info("charge book entry deleted",
		"entry_id", id,
		"document_id", entry.DocumentID,
		"department_id", entry.DepartmentID)
	return nil
}
