package employee_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/avaldivia/document-routing/internal"
	"github.com/avaldivia/document-routing/internal/department"
	"github.com/avaldivia/document-routing/internal/employee"
)

func TestEmployeeService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Service Suite")
}

type mockEmployeeRepository struct {
	employees   map[int64]*employee.Employee
	linkedUsers map[int64]bool
	nextID      int64
	createError error
}

func newMockEmployeeRepository() *mockEmployeeRepository {
	return &mockEmployeeRepository{
		employees:   make(map[int64]*employee.Employee),
		linkedUsers: make(map[int64]bool),
		nextID:      1,
	}
}

func (m *mockEmployeeRepository) Create(emp *employee.Employee) error {
	if m.createError != nil {
		return m.createError
	}
	emp.ID = m.nextID
	m.nextID++
	copied := *emp
	m.employees[emp.ID] = &copied
	return nil
}

func (m *mockEmployeeRepository) GetByID(id int64) (*employee.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *mockEmployeeRepository) GetByDepartment(departmentID int64, limit, offset int) ([]*employee.Employee, error) {
	var result []*employee.Employee
	for _, e := range m.employees {
		if e.DepartmentID == departmentID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockEmployeeRepository) GetAll(limit, offset int) ([]*employee.Employee, error) {
	var result []*employee.Employee
	for _, e := range m.employees {
		result = append(result, e)
	}
	return result, nil
}

func (m *mockEmployeeRepository) ExistsByDNI(dni string, excludeID int64) (bool, error) {
	for _, e := range m.employees {
		if e.DNI == dni && e.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEmployeeRepository) Update(emp *employee.Employee) error {
	copied := *emp
	m.employees[emp.ID] = &copied
	return nil
}

func (m *mockEmployeeRepository) Delete(id int64) error {
	if _, ok := m.employees[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *mockEmployeeRepository) HasLinkedUser(id int64) (bool, error) {
	return m.linkedUsers[id], nil
}

type mockDepartmentChecker struct {
	departments map[int64]*department.Department
}

func (m *mockDepartmentChecker) GetDepartmentByID(id int64) (*department.Department, error) {
	d, ok := m.departments[id]
	if !ok {
		return nil, department.ErrDepartmentNotFound
	}
	return d, nil
}

var _ = Describe("Employee Service", func() {
	var (
		repo    *mockEmployeeRepository
		service *employee.Service
	)

	validDTO := func() employee.CreateEmployeeDTO {
		return employee.CreateEmployeeDTO{
			DNI:          "47215836",
			Names:        "María Elena",
			Surnames:     "Quispe Huamán",
			Gender:       "F",
			Phone:        "987654321",
			DepartmentID: 1,
		}
	}

	BeforeEach(func() {
		repo = newMockEmployeeRepository()
		departments := &mockDepartmentChecker{departments: map[int64]*department.Department{
			1: {ID: 1, Name: "Mesa de Partes"},
			2: {ID: 2, Name: "Tesorería"},
		}}
		service = employee.NewService(repo, departments, slog.New(slog.NewTextHandler(os.Stdout, nil)))
	})

	Describe("CreateEmployee", func() {
		It("creates an active employee", func() {
			emp, err := service.CreateEmployee(validDTO())

			Expect(err).NotTo(HaveOccurred())
			Expect(emp.ID).NotTo(BeZero())
			Expect(emp.IsActive).To(BeTrue())
			Expect(emp.DepartmentID).To(Equal(int64(1)))
		})

		It("rejects a DNI that is not eight digits", func() {
			dto := validDTO()
			dto.DNI = "1234"

			_, err := service.CreateEmployee(dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(422))
		})

		It("rejects an unknown gender code", func() {
			dto := validDTO()
			dto.Gender = "X"

			_, err := service.CreateEmployee(dto)

			Expect(err).To(HaveOccurred())
			_, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
		})

		It("rejects a duplicate DNI", func() {
			_, err := service.CreateEmployee(validDTO())
			Expect(err).NotTo(HaveOccurred())

			dto := validDTO()
			dto.Names = "Otra Persona"
			_, err = service.CreateEmployee(dto)

			Expect(err).To(Equal(employee.ErrDNITaken))
		})

		It("rejects a missing department", func() {
			dto := validDTO()
			dto.DepartmentID = 99

			_, err := service.CreateEmployee(dto)

			Expect(err).To(Equal(department.ErrDepartmentNotFound))
		})

		It("propagates repository failures", func() {
			repo.createError = errors.New("connection reset")

			_, err := service.CreateEmployee(validDTO())

			Expect(err).To(MatchError("connection reset"))
		})
	})

	Describe("UpdateEmployee", func() {
		It("moves an employee to another department", func() {
			emp, err := service.CreateEmployee(validDTO())
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.UpdateEmployee(emp.ID, employee.UpdateEmployeeDTO{
				Names:        emp.Names,
				Surnames:     emp.Surnames,
				Gender:       emp.Gender,
				Phone:        emp.Phone,
				DepartmentID: 2,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.DepartmentID).To(Equal(int64(2)))
		})

		It("refuses a move to a missing department", func() {
			emp, err := service.CreateEmployee(validDTO())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateEmployee(emp.ID, employee.UpdateEmployeeDTO{
				Names:        emp.Names,
				Surnames:     emp.Surnames,
				Gender:       emp.Gender,
				DepartmentID: 99,
			})

			Expect(err).To(Equal(department.ErrDepartmentNotFound))
		})

		It("deactivates an employee", func() {
			emp, err := service.CreateEmployee(validDTO())
			Expect(err).NotTo(HaveOccurred())

			inactive := false
			updated, err := service.UpdateEmployee(emp.ID, employee.UpdateEmployeeDTO{
				Names:        emp.Names,
				Surnames:     emp.Surnames,
				Gender:       emp.Gender,
				DepartmentID: emp.DepartmentID,
				IsActive:     &inactive,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
		})
	})

	Describe("DeleteEmployee", func() {
		It("refuses while a user account links to the employee", func() {
			emp, err := service.CreateEmployee(validDTO())
			Expect(err).NotTo(HaveOccurred())
			repo.linkedUsers[emp.ID] = true

			err = service.DeleteEmployee(emp.ID)

			Expect(err).To(Equal(employee.ErrEmployeeLinked))
		})

		It("removes an unlinked employee", func() {
			emp, err := service.CreateEmployee(validDTO())
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteEmployee(emp.ID)).To(Succeed())

			_, err = service.GetEmployeeByID(emp.ID)
			Expect(err).To(Equal(employee.ErrEmployeeNotFound))
		})
	})

	Describe("GetEmployees", func() {
		It("filters by department when one is given", func() {
			_, err := service.CreateEmployee(validDTO())
			Expect(err).NotTo(HaveOccurred())

			other := validDTO()
			other.DNI = "58326147"
			other.DepartmentID = 2
			_, err = service.CreateEmployee(other)
			Expect(err).NotTo(HaveOccurred())

			scoped, err := service.GetEmployees(2, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(scoped).To(HaveLen(1))

			all, err := service.GetEmployees(0, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})
	})
})
