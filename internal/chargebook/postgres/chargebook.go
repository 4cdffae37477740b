package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/avaldivia/document-routing/internal/chargebook"
	chargebookDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/chargebook"
)

type ChargeBookRepository struct {
	db *gorm.DB
}

func NewChargeBookRepository(db *gorm.DB) chargebook.Repository {
	return &ChargeBookRepository{db: db}
}

type entryRow struct {
	ID                   int64
	DocumentID           int64
	SenderDepartmentID   int64
	SenderUserID         int64
	ReceiverUserID       int64
	DepartmentID         int64
	RegistrationNumber   int64
	Notes                string
	CreatedAt            time.Time
	DocCode              string
	DocumentName         string
	SenderDepartmentName string
}

func (row *entryRow) toEntry() *chargebook.Entry {
	return &chargebook.Entry{
		ID:                   row.ID,
		DocumentID:           row.DocumentID,
		SenderDepartmentID:   row.SenderDepartmentID,
		SenderUserID:         row.SenderUserID,
		ReceiverUserID:       row.ReceiverUserID,
		DepartmentID:         row.DepartmentID,
		RegistrationNumber:   row.RegistrationNumber,
		Notes:                row.Notes,
		CreatedAt:            row.CreatedAt,
		DocCode:              row.DocCode,
		DocumentName:         row.DocumentName,
		SenderDepartmentName: row.SenderDepartmentName,
	}
}

const entrySelect = `charge_books.*,
	documents.doc_code AS doc_code,
	documents.name AS document_name,
	departments.name AS sender_department_name`

func (r *ChargeBookRepository) GetByID(id int64) (*chargebook.Entry, error) {
	var row entryRow
	err := r.db.Model(&chargebookDatamodel.ChargeBook{}).
		Select(entrySelect).
		Joins("JOIN documents ON documents.id = charge_books.document_id").
		Joins("JOIN departments ON departments.id = charge_books.sender_department_id").
		Where("charge_books.id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, chargebook.ErrEntryNotFound
		}
		return nil, err
	}
	return row.toEntry(), nil
}

func (r *ChargeBookRepository) GetByDepartment(departmentID int64, limit, offset int) ([]*chargebook.Entry, error) {
	var rows []entryRow
	err := r.db.Model(&chargebookDatamodel.ChargeBook{}).
		Select(entrySelect).
		Joins("JOIN documents ON documents.id = charge_books.document_id").
		Joins("JOIN departments ON departments.id = charge_books.sender_department_id").
		Where("charge_books.department_id = ?", departmentID).
		Order("charge_books.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*chargebook.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toEntry()
	}
	return entries, nil
}

func (r *ChargeBookRepository) Delete(id int64) error {
	result := r.db.Where("id = ?", id).Delete(&chargebookDatamodel.ChargeBook{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return chargebook.ErrEntryNotFound
	}
	return nil
}
