package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	chargebookDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/chargebook"
	derivationDatamodel "github.com/avaldivia/document-routing/internal/core/datamodel/derivation"
	"github.com/avaldivia/document-routing/internal/document"
)

func TestDocumentRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Document Repository Suite")
}

type SQLiteDocument struct {
	ID                    int64   `gorm:"primaryKey"`
	DocCode               string  `gorm:"column:doc_code;uniqueIndex"`
	RegistrationNumber    int64   `gorm:"column:registration_number;uniqueIndex:idx_documents_regnum_dept"`
	Name                  string  `gorm:"not null"`
	Subject               string  `gorm:"column:subject"`
	PageCount             int     `gorm:"column:page_count"`
	FilePath              *string `gorm:"column:file_path"`
	CreatedByDepartmentID int64   `gorm:"column:created_by_department_id;uniqueIndex:idx_documents_regnum_dept"`
	RegisteredByUserID    int64   `gorm:"column:registered_by_user_id"`
	IsDerived             bool    `gorm:"column:is_derived"`
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

type SQLiteChargeBook struct {
	ID                 int64 `gorm:"primaryKey"`
	DocumentID         int64 `gorm:"column:document_id"`
	SenderDepartmentID int64 `gorm:"column:sender_department_id"`
	SenderUserID       int64 `gorm:"column:sender_user_id"`
	ReceiverUserID     int64 `gorm:"column:receiver_user_id"`
	DepartmentID       int64 `gorm:"column:department_id"`
	RegistrationNumber int64 `gorm:"column:registration_number"`
	Notes              string
	CreatedAt          time.Time
}

func (SQLiteChargeBook) TableName() string {
	return "charge_books"
}

var _ = Describe("DocumentRepository", func() {
	var (
		db   *gorm.DB
		repo document.Repository
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteDocument{}, &SQLiteDerivation{}, &SQLiteChargeBook{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewDocumentRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	register := func(departmentID int64, name string) *document.Document {
		doc := &document.Document{
			Name:                  name,
			Subject:               "asunto",
			PageCount:             1,
			CreatedByDepartmentID: departmentID,
			RegisteredByUserID:    1,
		}
		err := repo.Create(doc)
		Expect(err).NotTo(HaveOccurred())
		return doc
	}

	Describe("Create", func() {
		It("starts each department's numbering at one", func() {
			doc := register(1, "Oficio A")

			Expect(doc.ID).NotTo(BeZero())
			Expect(doc.RegistrationNumber).To(Equal(int64(1)))
		})

		It("increments the registration number within a department", func() {
			register(1, "Oficio A")
			second := register(1, "Oficio B")

			Expect(second.RegistrationNumber).To(Equal(int64(2)))
		})

		It("keeps department sequences independent", func() {
			register(1, "Oficio A")
			register(1, "Oficio B")
			other := register(2, "Memo A")

			Expect(other.RegistrationNumber).To(Equal(int64(1)))
		})

		It("builds document codes from a single global sequence", func() {
			first := register(1, "Oficio A")
			second := register(2, "Memo A")

			Expect(first.DocCode).To(HavePrefix("DOC"))
			Expect(first.DocCode).To(HaveSuffix("00000000001"))
			Expect(second.DocCode).To(HaveSuffix("00000000002"))
		})
	})

	Describe("GetByDepartment", func() {
		It("returns only the department's documents, newest numbering first", func() {
			register(1, "Oficio A")
			register(1, "Oficio B")
			register(2, "Memo A")

			docs, err := repo.GetByDepartment(1, 10, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(2))
			Expect(docs[0].RegistrationNumber).To(Equal(int64(2)))
			Expect(docs[1].RegistrationNumber).To(Equal(int64(1)))
		})
	})

	Describe("Update", func() {
		It("changes mutable fields only", func() {
			doc := register(1, "Oficio A")
			doc.Name = "Oficio A corregido"
			doc.PageCount = 5

			err := repo.Update(doc)
			Expect(err).NotTo(HaveOccurred())

			stored, err := repo.GetByID(doc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Name).To(Equal("Oficio A corregido"))
			Expect(stored.PageCount).To(Equal(5))
			Expect(stored.DocCode).To(Equal(doc.DocCode))
		})
	})

	Describe("CountReferences", func() {
		It("counts derivations and charge book entries", func() {
			doc := register(1, "Oficio A")

			Expect(db.Create(&SQLiteDerivation{DocumentID: doc.ID, OriginDepartmentID: 1, DestinationDepartmentID: 2, CreatedByUserID: 1, Status: "Enviado"}).Error).To(Succeed())
			Expect(db.Create(&SQLiteChargeBook{DocumentID: doc.ID, SenderDepartmentID: 1, SenderUserID: 1, ReceiverUserID: 2, DepartmentID: 2, RegistrationNumber: 1}).Error).To(Succeed())

			count, err := repo.CountReferences(doc.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})
	})

	Describe("Delete", func() {
		It("removes the record", func() {
			doc := register(1, "Oficio A")

			Expect(repo.Delete(doc.ID)).To(Succeed())

			_, err := repo.GetByID(doc.ID)
			Expect(err).To(Equal(document.ErrDocumentNotFound))
		})

		It("reports a missing record", func() {
			Expect(repo.Delete(99)).To(Equal(document.ErrDocumentNotFound))
		})
	})

	It("satisfies the datamodel table names", func() {
		Expect(derivationDatamodel.Derivation{}.TableName()).To(Equal(SQLiteDerivation{}.TableName()))
		Expect(chargebookDatamodel.ChargeBook{}.TableName()).To(Equal(SQLiteChargeBook{}.TableName()))
	})
})
