package postgres

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avaldivia/document-routing/internal/chargebook"
	chargebookDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/chargebook"
	derivationDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/derivation"
	documentDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/document"
	"github.com/avaldivia/document-routing/internal/derivation"
)

type DerivationRepository struct {
	db *gorm.DB
}

func NewDerivationRepository(db *gorm.DB) derivation.Repository {
	return &DerivationRepository{db: db}
}

// CreateWithDetail inserts the derivation together with its opening detail
// and marks the document as derived, all in one transaction.
func (r *DerivationRepository) CreateWithDetail(d *derivation.Derivation, detail *derivation.Detail) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		dm := derivation.ToDataModel(d)
		dm.ID = 0
		if err := tx.Omit("Details").Create(dm).Error; err != nil {
			return err
		}

		detailDM := derivation.DetailToDataModel(detail)
		detailDM.ID = 0
		detailDM.DerivationID = dm.ID
		if err := tx.Create(detailDM).Error; err != nil {
			return err
		}

		if err := tx.Model(&documentDatamodel.Document{}).
			Where("id = ?", dm.DocumentID).
			Update("is_derived", true).Error; err != nil {
			return err
		}

		*d = *derivation.FromDataModel(dm)
		*detail = *derivation.DetailFromDataModel(detailDM)
		return nil
	})
}

func (r *DerivationRepository) GetByID(id int64) (*derivation.Derivation, error) {
	var dm derivationDatamodel.Derivation
	err := r.db.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("derivation_details.created_at ASC, derivation_details.id ASC")
	}).Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, derivation.ErrDerivationNotFound
		}
		return nil, err
	}
	return derivation.FromDataModel(&dm), nil
}

func (r *DerivationRepository) GetInbox(departmentID int64, limit, offset int) ([]*derivation.Derivation, error) {
	return r.list("destination_department_id = ?", departmentID, limit, offset)
}

func (r *DerivationRepository) GetOutbox(departmentID int64, limit, offset int) ([]*derivation.Derivation, error) {
	return r.list("origin_department_id = ?", departmentID, limit, offset)
}

func (r *DerivationRepository) list(where string, departmentID int64, limit, offset int) ([]*derivation.Derivation, error) {
	var dms []*derivationDatamodel.Derivation
	err := r.db.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("derivation_details.created_at ASC, derivation_details.id ASC")
	}).Where(where, departmentID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return derivation.FromDataModelSlice(dms), nil
}

// Receive appends the Recibido detail, flips the status and writes the charge
// book entry atomically. The status update is guarded at SQL level so two
// concurrent receivers cannot both succeed; a numbering collision on the
// charge book is retried once with a fresh sequence read.
func (r *DerivationRepository) Receive(d *derivation.Derivation, detail *derivation.Detail, entry *chargebook.Entry) error {
	err := r.receiveOnce(d, detail, entry)
	if err != nil && isDuplicateKey(err) {
		if isEntryPresenceConflict(err) {
			return derivation.ErrAlreadyInChargeBook
		}
		err = r.receiveOnce(d, detail, entry)
		if err != nil && isDuplicateKey(err) {
			if isEntryPresenceConflict(err) {
				return derivation.ErrAlreadyInChargeBook
			}
			return derivation.ErrEntryNumberConflict
		}
	}
	return err
}

func (r *DerivationRepository) receiveOnce(d *derivation.Derivation, detail *derivation.Detail, entry *chargebook.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&derivationDatamodel.Derivation{}).
			Where("id = ? AND status = ?", d.ID, derivation.StatusSent).
			Updates(map[string]interface{}{
				"status":     derivation.StatusReceived,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return derivation.ErrAlreadyResolved
		}

		detailDM := derivation.DetailToDataModel(detail)
		detailDM.ID = 0
		if err := tx.Create(detailDM).Error; err != nil {
			return err
		}

		registrationNumber, err := nextEntryNumber(tx, entry.DepartmentID)
		if err != nil {
			return err
		}

		entryDM := chargebook.ToDataModel(entry)
		entryDM.ID = 0
		entryDM.RegistrationNumber = registrationNumber
		if err := tx.Create(entryDM).Error; err != nil {
			return err
		}

		*detail = *derivation.DetailFromDataModel(detailDM)
		*entry = *chargebook.FromDataModel(entryDM)
		d.Status = derivation.StatusReceived
		return nil
	})
}

// Reject appends the Rechazado detail, flips the status and removes the
// department's charge book entry for the document if one exists.
func (r *DerivationRepository) Reject(d *derivation.Derivation, detail *derivation.Detail) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&derivationDatamodel.Derivation{}).
			Where("id = ? AND status NOT IN ?", d.ID, []string{derivation.StatusReceived, derivation.StatusRejected}).
			Updates(map[string]interface{}{
				"status":     derivation.StatusRejected,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return derivation.ErrAlreadyResolved
		}

		detailDM := derivation.DetailToDataModel(detail)
		detailDM.ID = 0
		if err := tx.Create(detailDM).Error; err != nil {
			return err
		}

		if err := tx.Where("document_id = ? AND department_id = ?", d.DocumentID, d.DestinationDepartmentID).
			Delete(&chargebookDatamodel.ChargeBook{}).Error; err != nil {
			return err
		}

		*detail = *derivation.DetailFromDataModel(detailDM)
		d.Status = derivation.StatusRejected
		return nil
	})
}

func (r *DerivationRepository) UpdateDestination(id int64, destinationDepartmentID int64) error {
	return r.db.Model(&derivationDatamodel.Derivation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"destination_department_id": destinationDepartmentID,
			"updated_at":                time.Now(),
		}).Error
}

func (r *DerivationRepository) AppendDetail(detail *derivation.Detail) error {
	dm := derivation.DetailToDataModel(detail)
	dm.ID = 0
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*detail = *derivation.DetailFromDataModel(dm)
	return nil
}

// Delete removes the derivation and its timeline.
func (r *DerivationRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("derivation_id = ?", id).
			Delete(&derivationDatamodel.DerivationDetail{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&derivationDatamodel.Derivation{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return derivation.ErrDerivationNotFound
		}
		return nil
	})
}

func (r *DerivationRepository) HasChargeBookEntry(documentID, departmentID int64) (bool, error) {
	var count int64
	err := r.db.Model(&chargebookDatamodel.ChargeBook{}).
		Where("document_id = ? AND department_id = ?", documentID, departmentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// nextEntryNumber reads the department's highest charge book number, locking
// that row on dialects that support it.
func nextEntryNumber(tx *gorm.DB, departmentID int64) (int64, error) {
	q := tx.Where("department_id = ?", departmentID).
		Order("registration_number DESC")
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var last chargebookDatamodel.ChargeBook
	err := q.First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.RegistrationNumber + 1, nil
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// isEntryPresenceConflict distinguishes "this department already holds the
// document" from a numbering race, by the violated index.
func isEntryPresenceConflict(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "idx_charge_books_doc_dept") ||
		strings.Contains(msg, "charge_books.document_id")
}
