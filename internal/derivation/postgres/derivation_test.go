package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avaldivia/document-routing/internal/chargebook"
	"github.com/avaldivia/document-routing/internal/derivation"
)

func TestDerivationRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Derivation Repository Suite")
}

type SQLiteDocument struct {
	ID                    int64 `gorm:"primaryKey"`
	DocCode               string
	RegistrationNumber    int64
	Name                  string
	CreatedByDepartmentID int64 `gorm:"column:created_by_department_id"`
	RegisteredByUserID    int64 `gorm:"column:registered_by_user_id"`
	IsDerived             bool  `gorm:"column:is_derived"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (SQLiteDocument) TableName() string {
	return "documents"
}

type SQLiteDerivation struct {
	ID                      int64 `gorm:"primaryKey"`
	DocumentID              int64 `gorm:"column:document_id"`
	OriginDepartmentID      int64 `gorm:"column:origin_department_id"`
	DestinationDepartmentID int64 `gorm:"column:destination_department_id"`
	CreatedByUserID         int64 `gorm:"column:created_by_user_id"`
	Status                  string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (SQLiteDerivation) TableName() string {
	return "derivations"
}

type SQLiteDerivationDetail struct {
	ID           int64 `gorm:"primaryKey"`
	DerivationID int64 `gorm:"column:derivation_id"`
	Status       string
	Comments     string
	UserID       int64 `gorm:"column:user_id"`
	CreatedAt    time.Time
}

func (SQLiteDerivationDetail) TableName() string {
	return "derivation_details"
}

type SQLiteChargeBook struct {
	ID                 int64 `gorm:"primaryKey"`
	DocumentID         int64 `gorm:"column:document_id;uniqueIndex:idx_charge_books_doc_dept"`
	SenderDepartmentID int64 `gorm:"column:sender_department_id"`
	SenderUserID       int64 `gorm:"column:sender_user_id"`
	ReceiverUserID     int64 `gorm:"column:receiver_user_id"`
	DepartmentID       int64 `gorm:"column:department_id;uniqueIndex:idx_charge_books_doc_dept;uniqueIndex:idx_charge_books_regnum_dept"`
	RegistrationNumber int64 `gorm:"column:registration_number;uniqueIndex:idx_charge_books_regnum_dept"`
	Notes              string
	CreatedAt          time.Time
}

func (SQLiteChargeBook) TableName() string {
	return "charge_books"
}

var _ = Describe("DerivationRepository", func() {
	var (
		db   *gorm.DB
		repo derivation.Repository
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteDocument{}, &SQLiteDerivation{}, &SQLiteDerivationDetail{}, &SQLiteChargeBook{})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Create(&SQLiteDocument{ID: 10, DocCode: "DOC02012026101500000000001", Name: "Oficio 001", CreatedByDepartmentID: 1, RegisteredByUserID: 1}).Error).To(Succeed())

		repo = NewDerivationRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	send := func() *derivation.Derivation {
		d := &derivation.Derivation{
			DocumentID:              10,
			OriginDepartmentID:      1,
			DestinationDepartmentID: 2,
			CreatedByUserID:         1,
			Status:                  derivation.StatusSent,
		}
		detail := &derivation.Detail{
			Status:   derivation.StatusSent,
			Comments: "Documento enviado",
			UserID:   1,
		}
		Expect(repo.CreateWithDetail(d, detail)).To(Succeed())
		return d
	}

	receive := func(d *derivation.Derivation) *chargebook.Entry {
		detail := &derivation.Detail{
			DerivationID: d.ID,
			Status:       derivation.StatusReceived,
			Comments:     "Documento recibido",
			UserID:       2,
		}
		entry := &chargebook.Entry{
			DocumentID:         d.DocumentID,
			SenderDepartmentID: d.OriginDepartmentID,
			SenderUserID:       d.CreatedByUserID,
			ReceiverUserID:     2,
			DepartmentID:       d.DestinationDepartmentID,
		}
		Expect(repo.Receive(d, detail, entry)).To(Succeed())
		return entry
	}

	Describe("CreateWithDetail", func() {
		It("persists the derivation with its opening detail", func() {
			d := send()

			stored, err := repo.GetByID(d.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(derivation.StatusSent))
			Expect(stored.Details).To(HaveLen(1))
			Expect(stored.Details[0].Comments).To(Equal("Documento enviado"))
		})

		It("marks the document as derived", func() {
			send()

			var doc SQLiteDocument
			Expect(db.First(&doc, 10).Error).To(Succeed())
			Expect(doc.IsDerived).To(BeTrue())
		})
	})

	Describe("Receive", func() {
		It("flips the status and numbers the charge book entry", func() {
			d := send()

			entry := receive(d)

			Expect(entry.ID).NotTo(BeZero())
			Expect(entry.RegistrationNumber).To(Equal(int64(1)))

			stored, err := repo.GetByID(d.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(derivation.StatusReceived))
			Expect(stored.Details).To(HaveLen(2))
		})

		It("numbers entries sequentially per department", func() {
			Expect(db.Create(&SQLiteDocument{ID: 11, DocCode: "DOC02012026101600000000002", Name: "Oficio 002", CreatedByDepartmentID: 1, RegisteredByUserID: 1}).Error).To(Succeed())

			first := send()
			receive(first)

			second := &derivation.Derivation{
				DocumentID:              11,
				OriginDepartmentID:      1,
				DestinationDepartmentID: 2,
				CreatedByUserID:         1,
				Status:                  derivation.StatusSent,
			}
			Expect(repo.CreateWithDetail(second, &derivation.Detail{Status: derivation.StatusSent, UserID: 1})).To(Succeed())

			entry := receive(second)

			Expect(entry.RegistrationNumber).To(Equal(int64(2)))
		})

		It("refuses to receive twice", func() {
			d := send()
			receive(d)

			err := repo.Receive(d,
				&derivation.Detail{DerivationID: d.ID, Status: derivation.StatusReceived, UserID: 2},
				&chargebook.Entry{DocumentID: d.DocumentID, DepartmentID: d.DestinationDepartmentID, SenderDepartmentID: 1, SenderUserID: 1, ReceiverUserID: 2})

			Expect(err).To(Equal(derivation.ErrAlreadyResolved))
		})
	})

	Describe("Reject", func() {
		It("flips the status and records the reason", func() {
			d := send()

			detail := &derivation.Detail{
				DerivationID: d.ID,
				Status:       derivation.StatusRejected,
				Comments:     "Documento incompleto",
				UserID:       2,
			}
			Expect(repo.Reject(d, detail)).To(Succeed())

			stored, err := repo.GetByID(d.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(derivation.StatusRejected))
			Expect(stored.Details[len(stored.Details)-1].Comments).To(Equal("Documento incompleto"))
		})

		It("removes the destination's charge book entry", func() {
			d := send()
			receive(d)

			// receive flipped the status, so reopen it to exercise the cleanup
			Expect(db.Model(&SQLiteDerivation{}).Where("id = ?", d.ID).Update("status", derivation.StatusSent).Error).To(Succeed())

			Expect(repo.Reject(d, &derivation.Detail{DerivationID: d.ID, Status: derivation.StatusRejected, Comments: "devuelto", UserID: 2})).To(Succeed())

			holds, err := repo.HasChargeBookEntry(d.DocumentID, d.DestinationDepartmentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(holds).To(BeFalse())
		})

		It("refuses a terminal derivation", func() {
			d := send()
			receive(d)

			err := repo.Reject(d, &derivation.Detail{DerivationID: d.ID, Status: derivation.StatusRejected, UserID: 2})

			Expect(err).To(Equal(derivation.ErrAlreadyResolved))
		})
	})

	Describe("Delete", func() {
		It("removes the derivation and its timeline", func() {
			d := send()

			Expect(repo.Delete(d.ID)).To(Succeed())

			_, err := repo.GetByID(d.ID)
			Expect(err).To(Equal(derivation.ErrDerivationNotFound))

			var count int64
			Expect(db.Model(&SQLiteDerivationDetail{}).Where("derivation_id = ?", d.ID).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})
	})

	Describe("Inbox and Outbox", func() {
		It("filters by destination and origin", func() {
			send()

			inbox, err := repo.GetInbox(2, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(inbox).To(HaveLen(1))

			outbox, err := repo.GetOutbox(1, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(outbox).To(HaveLen(1))

			none, err := repo.GetInbox(1, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(none).To(BeEmpty())
		})
	})
})
