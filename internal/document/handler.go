package document

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/avaldivia/document-routing/internal"
	"github.com/avaldivia/document-routing/internal/transport"
	"github.com/avaldivia/document-routing/pkg/logger"
)

const maxUploadBytes = 32 << 20

type ServiceAPI interface {
	CreateDocument(ctx context.Context, actor internal.Actor, dto CreateDocumentDTO) (*Document, error)
	GetDocumentByID(id int64) (*Document, error)
	GetDocuments(actor internal.Actor, departmentID int64, limit, offset int) ([]*Document, error)
	UpdateDocument(id int64, actor internal.Actor, dto UpdateDocumentDTO) (*Document, error)
	AttachFile(ctx context.Context, id int64, actor internal.Actor, fileName string, content io.Reader) (*Document, error)
	DeleteDocument(ctx context.Context, id int64, actor internal.Actor) error
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

func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateDocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.Service.CreateDocument(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Error("CreateDocument: service error", "error", err)
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document ID")
		return
	}

	doc, err := h.Service.GetDocumentByID(id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)

	var departmentID int64
	if deptStr := r.URL.Query().Get("department_id"); deptStr != "" {
		id, err := strconv.ParseInt(deptStr, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid department_id")
			return
		}
		departmentID = id
	}

	documents, err := h.Service.GetDocuments(actor, departmentID, limit, offset)
	if err != nil {
		h.Logger.Error("ListDocuments: service error", "error", err)
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": documents,
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document ID")
		return
	}

	var dto UpdateDocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.Service.UpdateDocument(id, actor, dto)
	if err != nil {
		h.Logger.Error("UpdateDocument: service error", "error", err, "document_id", id)
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) UploadDocumentFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	doc, err := h.Service.AttachFile(r.Context(), id, actor, header.Filename, file)
	if err != nil {
		h.Logger.Error("UploadDocumentFile: service error", "error", err, "document_id", id)
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document ID")
		return
	}

	if err := h.Service.DeleteDocument(r.Context(), id, actor); err != nil {
		h.Logger.Error("DeleteDocument: service error", "error", err, "document_id", id)
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case ErrDocumentNotFound:
		h.WriteError(w, http.StatusNotFound, "document not found")
	case ErrNoDepartment, ErrNotOwnerDepartment:
		h.WriteError(w, http.StatusForbidden, err.Error())
	case ErrDocumentReferenced, ErrSequenceConflict:
		h.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.HandleServiceError(w, err)
	}
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
