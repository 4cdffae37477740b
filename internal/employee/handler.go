package employee

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/avaldivia/document-routing/internal/department"
	"github.com/avaldivia/document-routing/internal/transport"
	"github.com/avaldivia/document-routing/pkg/logger"
)

type ServiceAPI interface {
	CreateEmployee(dto CreateEmployeeDTO) (*Employee, error)
	GetEmployeeByID(id int64) (*Employee, error)
	GetEmployees(departmentID int64, limit, offset int) ([]*Employee, error)
	UpdateEmployee(id int64, dto UpdateEmployeeDTO) (*Employee, error)
	DeleteEmployee(id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var dto CreateEmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	emp, err := h.Service.CreateEmployee(dto)
	if err != nil {
		h.Logger.Error("CreateEmployee: service error", "error", err)
		switch err {
		case ErrDNITaken:
			h.WriteError(w, http.StatusConflict, "dni already registered")
		case department.ErrDepartmentNotFound:
			h.WriteError(w, http.StatusNotFound, "department not found")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteJSON(w, http.StatusCreated, emp)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee ID")
		return
	}

	emp, err := h.Service.GetEmployeeByID(id)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, "employee not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0
	var departmentID int64

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	if deptStr := r.URL.Query().Get("department_id"); deptStr != "" {
		if d, err := strconv.ParseInt(deptStr, 10, 64); err == nil && d > 0 {
			departmentID = d
		}
	}

	employees, err := h.Service.GetEmployees(departmentID, limit, offset)
	if err != nil {
		h.Logger.Error("ListEmployees: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list employees")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"employees": employees,
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee ID")
		return
	}

	var dto UpdateEmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	emp, err := h.Service.UpdateEmployee(id, dto)
	if err != nil {
		h.Logger.Error("UpdateEmployee: service error", "error", err, "employee_id", id)
		switch err {
		case ErrEmployeeNotFound:
			h.WriteError(w, http.StatusNotFound, "employee not found")
		case department.ErrDepartmentNotFound:
			h.WriteError(w, http.StatusNotFound, "department not found")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee ID")
		return
	}

	if err := h.Service.DeleteEmployee(id); err != nil {
		h.Logger.Error("DeleteEmployee: service error", "error", err, "employee_id", id)
		switch err {
		case ErrEmployeeNotFound:
			h.WriteError(w, http.StatusNotFound, "employee not found")
		case ErrEmployeeLinked:
			h.WriteError(w, http.StatusConflict, "employee is linked to a user account")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
