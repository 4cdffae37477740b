package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeDocumentRegistered = "document.registered"
	EventTypeDocumentDerived    = "document.derived"
	EventTypeDerivationReceived = "derivation.received"
	EventTypeDerivationRejected = "derivation.rejected"
)

type DocumentRegisteredEvent struct {
	BaseEvent
	DocumentID         int64  `json:"document_id"`
	DocCode            string `json:"doc_code"`
	DepartmentID       int64  `json:"department_id"`
	RegistrationNumber int64  `json:"registration_number"`
}

func NewDocumentRegisteredEvent(documentID int64, docCode string, departmentID, registrationNumber int64) *DocumentRegisteredEvent {
	return &DocumentRegisteredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDocumentRegistered,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"document_id":         documentID,
				"doc_code":            docCode,
				"department_id":       departmentID,
				"registration_number": registrationNumber,
			},
		},
		DocumentID:         documentID,
		DocCode:            docCode,
		DepartmentID:       departmentID,
		RegistrationNumber: registrationNumber,
	}
}

type DocumentDerivedEvent struct {
	BaseEvent
	DerivationID            int64 `json:"derivation_id"`
	DocumentID              int64 `json:"document_id"`
	OriginDepartmentID      int64 `json:"origin_department_id"`
	DestinationDepartmentID int64 `json:"destination_department_id"`
	UserID                  int64 `json:"user_id"`
}

func NewDocumentDerivedEvent(derivationID, documentID, originDeptID, destDeptID, userID int64) *DocumentDerivedEvent {
	return &DocumentDerivedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDocumentDerived,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"derivation_id":             derivationID,
				"document_id":               documentID,
				"origin_department_id":      originDeptID,
				"destination_department_id": destDeptID,
				"user_id":                   userID,
			},
		},
		DerivationID:            derivationID,
		DocumentID:              documentID,
		OriginDepartmentID:      originDeptID,
		DestinationDepartmentID: destDeptID,
		UserID:                  userID,
	}
}

type DerivationReceivedEvent struct {
	BaseEvent
	DerivationID       int64 `json:"derivation_id"`
	DocumentID         int64 `json:"document_id"`
	DepartmentID       int64 `json:"department_id"`
	ChargeBookEntryID  int64 `json:"charge_book_entry_id"`
	RegistrationNumber int64 `json:"registration_number"`
}

func NewDerivationReceivedEvent(derivationID, documentID, departmentID, entryID, registrationNumber int64) *DerivationReceivedEvent {
	return &DerivationReceivedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDerivationReceived,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"derivation_id":        derivationID,
				"document_id":          documentID,
				"department_id":        departmentID,
				"charge_book_entry_id": entryID,
				"registration_number":  registrationNumber,
			},
		},
		DerivationID:       derivationID,
		DocumentID:         documentID,
		DepartmentID:       departmentID,
		ChargeBookEntryID:  entryID,
		RegistrationNumber: registrationNumber,
	}
}

type DerivationRejectedEvent struct {
	BaseEvent
	DerivationID int64  `json:"derivation_id"`
	DocumentID   int64  `json:"document_id"`
	DepartmentID int64  `json:"department_id"`
	Reason       string `json:"reason"`
}

func NewDerivationRejectedEvent(derivationID, documentID, departmentID int64, reason string) *DerivationRejectedEvent {
	return &DerivationRejectedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDerivationRejected,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"derivation_id": derivationID,
				"document_id":   documentID,
				"department_id": departmentID,
				"reason":        reason,
			},
		},
		DerivationID: derivationID,
		DocumentID:   documentID,
		DepartmentID: departmentID,
		Reason:       reason,
	}
}
