package derivation_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/avaldivia/document-routing/internal"
	"github.com/avaldivia/document-routing/internal/chargebook"
	"github.com/avaldivia/document-routing/internal/core/events"
	"github.com/avaldivia/document-routing/internal/department"
	"github.com/avaldivia/document-routing/internal/derivation"
	"github.com/avaldivia/document-routing/internal/document"
)

func TestDerivationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Derivation Service Suite")
}

type chargeKey struct {
	documentID   int64
	departmentID int64
}

type mockDerivationRepository struct {
	derivations map[int64]*derivation.Derivation
	entries     map[chargeKey]*chargebook.Entry
	entrySeq    map[int64]int64
	nextID      int64
	nextEntryID int64
	createError error
}

func newMockDerivationRepository() *mockDerivationRepository {
	return &mockDerivationRepository{
		derivations: make(map[int64]*derivation.Derivation),
		entries:     make(map[chargeKey]*chargebook.Entry),
		entrySeq:    make(map[int64]int64),
		nextID:      1,
		nextEntryID: 1,
	}
}

func (m *mockDerivationRepository) CreateWithDetail(d *derivation.Derivation, detail *derivation.Detail) error {
	if m.createError != nil {
		return m.createError
	}
	d.ID = m.nextID
	m.nextID++
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	detail.DerivationID = d.ID
	detail.CreatedAt = d.CreatedAt
	d.Details = []derivation.Detail{*detail}
	copied := *d
	m.derivations[d.ID] = &copied
	return nil
}

func (m *mockDerivationRepository) GetByID(id int64) (*derivation.Derivation, error) {
	d, ok := m.derivations[id]
	if !ok {
		return nil, derivation.ErrDerivationNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *mockDerivationRepository) GetInbox(departmentID int64, limit, offset int) ([]*derivation.Derivation, error) {
	var result []*derivation.Derivation
	for _, d := range m.derivations {
		if d.DestinationDepartmentID == departmentID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockDerivationRepository) GetOutbox(departmentID int64, limit, offset int) ([]*derivation.Derivation, error) {
	var result []*derivation.Derivation
	for _, d := range m.derivations {
		if d.OriginDepartmentID == departmentID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockDerivationRepository) Receive(d *derivation.Derivation, detail *derivation.Detail, entry *chargebook.Entry) error {
	stored, ok := m.derivations[d.ID]
	if !ok {
		return derivation.ErrDerivationNotFound
	}
	if stored.Status != derivation.StatusSent {
		return derivation.ErrAlreadyResolved
	}
	key := chargeKey{entry.DocumentID, entry.DepartmentID}
	if _, exists := m.entries[key]; exists {
		return derivation.ErrAlreadyInChargeBook
	}

	stored.Status = derivation.StatusReceived
	stored.Details = append(stored.Details, *detail)

	entry.ID = m.nextEntryID
	m.nextEntryID++
	m.entrySeq[entry.DepartmentID]++
	entry.RegistrationNumber = m.entrySeq[entry.DepartmentID]
	entry.CreatedAt = time.Now()
	copied := *entry
	m.entries[key] = &copied

	d.Status = stored.Status
	return nil
}

func (m *mockDerivationRepository) Reject(d *derivation.Derivation, detail *derivation.Detail) error {
	stored, ok := m.derivations[d.ID]
	if !ok {
		return derivation.ErrDerivationNotFound
	}
	if stored.Status == derivation.StatusReceived || stored.Status == derivation.StatusRejected {
		return derivation.ErrAlreadyResolved
	}

	stored.Status = derivation.StatusRejected
	stored.Details = append(stored.Details, *detail)
	delete(m.entries, chargeKey{stored.DocumentID, stored.DestinationDepartmentID})

	d.Status = stored.Status
	return nil
}

func (m *mockDerivationRepository) UpdateDestination(id int64, destinationDepartmentID int64) error {
	stored, ok := m.derivations[id]
	if !ok {
		return derivation.ErrDerivationNotFound
	}
	stored.DestinationDepartmentID = destinationDepartmentID
	return nil
}

func (m *mockDerivationRepository) AppendDetail(detail *derivation.Detail) error {
	stored, ok := m.derivations[detail.DerivationID]
	if !ok {
		return derivation.ErrDerivationNotFound
	}
	stored.Details = append(stored.Details, *detail)
	return nil
}

func (m *mockDerivationRepository) Delete(id int64) error {
	if _, ok := m.derivations[id]; !ok {
		return derivation.ErrDerivationNotFound
	}
	delete(m.derivations, id)
	return nil
}

func (m *mockDerivationRepository) HasChargeBookEntry(documentID, departmentID int64) (bool, error) {
	_, ok := m.entries[chargeKey{documentID, departmentID}]
	return ok, nil
}

type mockDocumentGetter struct {
	documents map[int64]*document.Document
}

func (m *mockDocumentGetter) GetDocumentByID(id int64) (*document.Document, error) {
	d, ok := m.documents[id]
	if !ok {
		return nil, document.ErrDocumentNotFound
	}
	return d, nil
}

type mockDepartmentGetter struct {
	departments map[int64]*department.Department
}

func (m *mockDepartmentGetter) GetDepartmentByID(id int64) (*department.Department, error) {
	d, ok := m.departments[id]
	if !ok {
		return nil, department.ErrDepartmentNotFound
	}
	return d, nil
}

var _ = Describe("Derivation Service", func() {
	var (
		repo    *mockDerivationRepository
		docs    *mockDocumentGetter
		depts   *mockDepartmentGetter
		service *derivation.Service
		ctx     context.Context

		mesaActor internal.Actor
		rrhhActor internal.Actor
		tesoActor internal.Actor
	)

	BeforeEach(func() {
		repo = newMockDerivationRepository()
		docs = &mockDocumentGetter{documents: map[int64]*document.Document{
			10: {ID: 10, DocCode: "DOC02012026101500000000001", Name: "Oficio 001", CreatedByDepartmentID: 1},
		}}
		depts = &mockDepartmentGetter{departments: map[int64]*department.Department{
			1: {ID: 1, Name: "Mesa de Partes"},
			2: {ID: 2, Name: "Recursos Humanos"},
			3: {ID: 3, Name: "Tesorería"},
		}}
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		service = derivation.NewService(repo, docs, depts, events.NewEventBus(logger), logger)
		ctx = context.Background()

		mesaActor = internal.Actor{UserID: 1, DepartmentID: 1}
		rrhhActor = internal.Actor{UserID: 2, DepartmentID: 2}
		tesoActor = internal.Actor{UserID: 3, DepartmentID: 3}
	})

	derive := func() *derivation.Derivation {
		d, err := service.Derive(ctx, mesaActor, derivation.CreateDerivationDTO{
			DocumentID:              10,
			DestinationDepartmentID: 2,
		})
		Expect(err).NotTo(HaveOccurred())
		return d
	}

	Describe("Derive", func() {
		It("creates the derivation in Enviado state with an opening detail", func() {
			d := derive()

			Expect(d.Status).To(Equal(derivation.StatusSent))
			Expect(d.OriginDepartmentID).To(Equal(int64(1)))
			Expect(d.DestinationDepartmentID).To(Equal(int64(2)))
			Expect(d.Details).To(HaveLen(1))
			Expect(d.Details[0].Status).To(Equal(derivation.StatusSent))
		})

		It("names sender and destination in the default comment", func() {
			d := derive()

			Expect(d.Details[0].Comments).To(ContainSubstring("Mesa de Partes"))
			Expect(d.Details[0].Comments).To(ContainSubstring("Recursos Humanos"))
			Expect(d.Details[0].Comments).To(ContainSubstring(docs.documents[10].DocCode))
		})

		It("keeps an explicit comment untouched", func() {
			d, err := service.Derive(ctx, mesaActor, derivation.CreateDerivationDTO{
				DocumentID:              10,
				DestinationDepartmentID: 2,
				Comments:                "Atender con urgencia",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Details[0].Comments).To(Equal("Atender con urgencia"))
		})

		It("rejects origin equal to destination", func() {
			_, err := service.Derive(ctx, mesaActor, derivation.CreateDerivationDTO{
				DocumentID:              10,
				DestinationDepartmentID: 1,
			})

			Expect(err).To(Equal(derivation.ErrSameDepartment))
		})

		It("refuses a department that does not hold the document", func() {
			_, err := service.Derive(ctx, rrhhActor, derivation.CreateDerivationDTO{
				DocumentID:              10,
				DestinationDepartmentID: 3,
			})

			Expect(err).To(Equal(derivation.ErrNotCustodian))
		})

		It("allows re-derivation by a department holding a charge book entry", func() {
			d := derive()
			_, err := service.Receive(ctx, d.ID, rrhhActor, derivation.ReceiveDerivationDTO{})
			Expect(err).NotTo(HaveOccurred())

			redirected, err := service.Derive(ctx, rrhhActor, derivation.CreateDerivationDTO{
				DocumentID:              10,
				DestinationDepartmentID: 3,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(redirected.OriginDepartmentID).To(Equal(int64(2)))
			Expect(redirected.Status).To(Equal(derivation.StatusSent))
		})
	})

	Describe("Receive", func() {
		It("flips the status and writes the charge book entry", func() {
			d := derive()

			entry, err := service.Receive(ctx, d.ID, rrhhActor, derivation.ReceiveDerivationDTO{Notes: "conforme"})

			Expect(err).NotTo(HaveOccurred())
			Expect(entry.DepartmentID).To(Equal(int64(2)))
			Expect(entry.SenderDepartmentID).To(Equal(int64(1)))
			Expect(entry.ReceiverUserID).To(Equal(int64(2)))
			Expect(entry.RegistrationNumber).To(Equal(int64(1)))

			stored, err := service.GetDerivationByID(d.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(derivation.StatusReceived))
		})

		It("refuses a department other than the destination", func() {
			d := derive()

			_, err := service.Receive(ctx, d.ID, tesoActor, derivation.ReceiveDerivationDTO{})

			Expect(err).To(Equal(derivation.ErrNotDestination))
		})

		It("refuses an already resolved derivation", func() {
			d := derive()
			_, err := service.Receive(ctx, d.ID, rrhhActor, derivation.ReceiveDerivationDTO{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Receive(ctx, d.ID, rrhhActor, derivation.ReceiveDerivationDTO{})

			Expect(err).To(Equal(derivation.ErrAlreadyResolved))
		})

		It("refuses a second custody entry for the same document", func() {
			first := derive()
			_, err := service.Receive(ctx, first.ID, rrhhActor, derivation.ReceiveDerivationDTO{})
			Expect(err).NotTo(HaveOccurred())

			second := derive()
			_, err = service.Receive(ctx, second.ID, rrhhActor, derivation.ReceiveDerivationDTO{})

			Expect(err).To(Equal(derivation.ErrAlreadyInChargeBook))
		})

		It("numbers entries per receiving department", func() {
			docs.documents[11] = &document.Document{ID: 11, DocCode: "DOC02012026101500000000002", Name: "Oficio 002", CreatedByDepartmentID: 1}

			first := derive()
			_, err := service.Receive(ctx, first.ID, rrhhActor, derivation.ReceiveDerivationDTO{})
			Expect(err).NotTo(HaveOccurred())

			second, err := service.Derive(ctx, mesaActor, derivation.CreateDerivationDTO{
				DocumentID:              11,
				DestinationDepartmentID: 2,
			})
			Expect(err).NotTo(HaveOccurred())

			entry, err := service.Receive(ctx, second.ID, rrhhActor, derivation.ReceiveDerivationDTO{})

			Expect(err).NotTo(HaveOccurred())
			Expect(entry.RegistrationNumber).To(Equal(int64(2)))
		})
	})

	Describe("Reject", func() {
		It("requires a reason", func() {
			d := derive()

			_, err := service.Reject(ctx, d.ID, rrhhActor, derivation.RejectDerivationDTO{})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(422))
		})

		It("appends the rejection with its reason and flips the status", func() {
			d := derive()

			rejected, err := service.Reject(ctx, d.ID, rrhhActor, derivation.RejectDerivationDTO{Reason: "Documento incompleto"})

			Expect(err).NotTo(HaveOccurred())
			Expect(rejected.Status).To(Equal(derivation.StatusRejected))
			last := rejected.Details[len(rejected.Details)-1]
			Expect(last.Status).To(Equal(derivation.StatusRejected))
			Expect(last.Comments).To(Equal("Documento incompleto"))
		})

		It("refuses a terminal derivation", func() {
			d := derive()
			_, err := service.Receive(ctx, d.ID, rrhhActor, derivation.ReceiveDerivationDTO{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Reject(ctx, d.ID, rrhhActor, derivation.RejectDerivationDTO{Reason: "tarde"})

			Expect(err).To(Equal(derivation.ErrAlreadyResolved))
		})

		It("refuses a department other than the destination", func() {
			d := derive()

			_, err := service.Reject(ctx, d.ID, tesoActor, derivation.RejectDerivationDTO{Reason: "no corresponde"})

			Expect(err).To(Equal(derivation.ErrNotDestination))
		})
	})

	Describe("Edit", func() {
		It("changes the destination while pending", func() {
			d := derive()
			dest := int64(3)

			updated, err := service.Edit(d.ID, mesaActor, derivation.UpdateDerivationDTO{DestinationDepartmentID: &dest})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.DestinationDepartmentID).To(Equal(int64(3)))
			Expect(updated.Status).To(Equal(derivation.StatusSent))
		})

		It("appends comment edits as Modificado details", func() {
			d := derive()

			updated, err := service.Edit(d.ID, mesaActor, derivation.UpdateDerivationDTO{Comments: "Se corrige el asunto"})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Details).To(HaveLen(2))
			last := updated.Details[len(updated.Details)-1]
			Expect(last.Status).To(Equal(derivation.StatusModified))
			Expect(last.Comments).To(Equal("Se corrige el asunto"))
			Expect(updated.Status).To(Equal(derivation.StatusSent))
		})

		It("refuses edits from outside the origin department", func() {
			d := derive()

			_, err := service.Edit(d.ID, rrhhActor, derivation.UpdateDerivationDTO{Comments: "ajuste"})

			Expect(err).To(Equal(derivation.ErrNotOriginDepartment))
		})

		It("refuses edits once resolved", func() {
			d := derive()
			_, err := service.Receive(ctx, d.ID, rrhhActor, derivation.ReceiveDerivationDTO{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Edit(d.ID, mesaActor, derivation.UpdateDerivationDTO{Comments: "tarde"})

			Expect(err).To(Equal(derivation.ErrAlreadyResolved))
		})

		It("refuses pointing the derivation back at its origin", func() {
			d := derive()
			dest := int64(1)

			_, err := service.Edit(d.ID, mesaActor, derivation.UpdateDerivationDTO{DestinationDepartmentID: &dest})

			Expect(err).To(Equal(derivation.ErrSameDepartment))
		})
	})

	Describe("Delete", func() {
		It("withdraws a fresh derivation", func() {
			d := derive()

			Expect(service.Delete(d.ID, mesaActor)).To(Succeed())

			_, err := service.GetDerivationByID(d.ID)
			Expect(err).To(Equal(derivation.ErrDerivationNotFound))
		})

		It("refuses deletion after the window closes", func() {
			d := derive()
			repo.derivations[d.ID].CreatedAt = time.Now().Add(-3 * time.Hour)

			err := service.Delete(d.ID, mesaActor)

			Expect(err).To(Equal(derivation.ErrDeleteWindowClosed))
		})

		It("refuses deletion from outside the origin department", func() {
			d := derive()

			err := service.Delete(d.ID, rrhhActor)

			Expect(err).To(Equal(derivation.ErrNotOriginDepartment))
		})
	})

	Describe("Inbox and Outbox", func() {
		It("splits derivations by direction", func() {
			derive()

			inbox, err := service.GetInbox(rrhhActor, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(inbox).To(HaveLen(1))

			outbox, err := service.GetOutbox(mesaActor, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(outbox).To(HaveLen(1))

			empty, err := service.GetInbox(mesaActor, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(empty).To(BeEmpty())
		})

		It("requires a department", func() {
			_, err := service.GetInbox(internal.Actor{UserID: 9}, 10, 0)

			Expect(err).To(Equal(derivation.ErrNoDepartment))
		})
	})

	It("surfaces repository failures on create", func() {
		repo.createError = fmt.Errorf("db down")

		_, err := service.Derive(ctx, mesaActor, derivation.CreateDerivationDTO{
			DocumentID:              10,
			DestinationDepartmentID: 2,
		})

		Expect(err).To(MatchError("db down"))
	})
})
