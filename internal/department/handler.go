package department

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/avaldivia/document-routing/internal/transport"
	"github.com/avaldivia/document-routing/pkg/logger"
)

type ServiceAPI interface {
	CreateDepartment(dto CreateDepartmentDTO) (*Department, error)
	GetDepartmentByID(id int64) (*Department, error)
	GetDepartments(limit, offset int) ([]*Department, error)
	UpdateDepartment(id int64, dto UpdateDepartmentDTO) (*Department, error)
	DeleteDepartment(id int64) error
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

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dept, err := h.Service.CreateDepartment(dto)
	if err != nil {
		h.Logger.Error("CreateDepartment: service error", "error", err)
		switch err {
		case ErrDepartmentNameTaken:
			h.WriteError(w, http.StatusConflict, "department name already in use")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteJSON(w, http.StatusCreated, dept)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid department ID")
		return
	}

	dept, err := h.Service.GetDepartmentByID(id)
	if err != nil {
		if err == ErrDepartmentNotFound {
			h.WriteError(w, http.StatusNotFound, "department not found")
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	departments, err := h.Service.GetDepartments(limit, offset)
	if err != nil {
		h.Logger.Error("ListDepartments: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list departments")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"departments": departments,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid department ID")
		return
	}

	var dto UpdateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dept, err := h.Service.UpdateDepartment(id, dto)
	if err != nil {
		h.Logger.Error("UpdateDepartment: service error", "error", err, "department_id", id)
		switch err {
		case ErrDepartmentNotFound:
			h.WriteError(w, http.StatusNotFound, "department not found")
		case ErrDepartmentNameTaken:
			h.WriteError(w, http.StatusConflict, "department name already in use")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid department ID")
		return
	}

	if err := h.Service.DeleteDepartment(id); err != nil {
		h.Logger.Error("DeleteDepartment: service error", "error", err, "department_id", id)
		switch err {
		case ErrDepartmentNotFound:
			h.WriteError(w, http.StatusNotFound, "department not found")
		case ErrDepartmentInUse:
			h.WriteError(w, http.StatusConflict, "department is still referenced")
		default:
			h.HandleServiceError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

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

	return limit, offset
}
