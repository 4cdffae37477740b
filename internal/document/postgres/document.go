package postgres

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	chargebookDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/chargebook"
	derivationDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/derivation"
	documentDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/document"
	"github.com/avaldivia/document-routing/internal/document"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) document.Repository {
	return &DocumentRepository{db: db}
}

// Create assigns the department registration number and the global document
// code inside a single transaction. Concurrent registrations in the same
// department serialize on a row lock over the department's newest document;
// if two transactions still collide on the unique indexes, the insert is
// retried once with fresh sequence reads before giving up.
func (r *DocumentRepository) Create(d *document.Document) error {
	err := r.createOnce(d)
	if err != nil && isDuplicateKey(err) {
		err = r.createOnce(d)
		if err != nil && isDuplicateKey(err) {
			return document.ErrSequenceConflict
		}
	}
	return err
}

func (r *DocumentRepository) createOnce(d *document.Document) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		registrationNumber, err := nextRegistrationNumber(tx, d.CreatedByDepartmentID)
		if err != nil {
			return err
		}

		seq, err := nextCodeSequence(tx)
		if err != nil {
			return err
		}

		dm := document.ToDataModel(d)
		dm.ID = 0
		dm.RegistrationNumber = registrationNumber
		dm.DocCode = document.FormatDocCode(time.Now(), seq)

		if err := tx.Create(dm).Error; err != nil {
			return err
		}

		*d = *document.FromDataModel(dm)
		return nil
	})
}

// nextRegistrationNumber reads the department's highest registration number,
// locking that row on dialects that support it so concurrent writers queue.
func nextRegistrationNumber(tx *gorm.DB, departmentID int64) (int64, error) {
	q := tx.Where("created_by_department_id = ?", departmentID).
		Order("registration_number DESC")
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var last documentDatamodel.Document
	err := q.First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.RegistrationNumber + 1, nil
}

// nextCodeSequence derives the global sequence from the trailing digits of
// the newest document code.
func nextCodeSequence(tx *gorm.DB) (int64, error) {
	var last documentDatamodel.Document
	err := tx.Select("doc_code").Order("id DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	code := last.DocCode
	if len(code) < document.DocCodeSeqDigits {
		return 1, nil
	}
	seq, err := strconv.ParseInt(code[len(code)-document.DocCodeSeqDigits:], 10, 64)
	if err != nil {
		return 1, nil
	}
	return seq + 1, nil
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

func (r *DocumentRepository) GetByID(id int64) (*document.Document, error) {
	var dm documentDatamodel.Document
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, document.ErrDocumentNotFound
		}
		return nil, err
	}
	return document.FromDataModel(&dm), nil
}

func (r *DocumentRepository) GetByDepartment(departmentID int64, limit, offset int) ([]*document.Document, error) {
	var dms []*documentDatamodel.Document
	err := r.db.Where("created_by_department_id = ?", departmentID).
		Order("registration_number DESC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return document.FromDataModelSlice(dms), nil
}

func (r *DocumentRepository) Update(d *document.Document) error {
	d.UpdatedAt = time.Now()
	return r.db.Model(&documentDatamodel.Document{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"name":       d.Name,
			"subject":    d.Subject,
			"page_count": d.PageCount,
			"file_path":  d.FilePath,
			"updated_at": d.UpdatedAt,
		}).Error
}

func (r *DocumentRepository) Delete(id int64) error {
	result := r.db.Where("id = ?", id).Delete(&documentDatamodel.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

// CountReferences reports how many derivations and charge book entries point
// at the document.
func (r *DocumentRepository) CountReferences(id int64) (int64, error) {
	var derivations int64
	if err := r.db.Model(&derivationDatamodel.Derivation{}).
		Where("document_id = ?", id).
		Count(&derivations).Error; err != nil {
		return 0, err
	}

	var entries int64
	if err := r.db.Model(&chargebookDatamodel.ChargeBook{}).
		Where("document_id = ?", id).
		Count(&entries).Error; err != nil {
		return 0, err
	}

	return derivations + entries, nil
}
