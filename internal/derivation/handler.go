package derivation

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/avaldivia/document-routing/internal"
	"github.com/avaldivia/document-routing/internal/chargebook"
	"github.com/avaldivia/document-routing/internal/department"
	"github.com/avaldivia/document-routing/internal/document"
	"github.com/avaldivia/document-routing/internal/transport"
	"github.com/avaldivia/document-routing/pkg/logger"
)

type ServiceAPI interface {
	Derive(ctx context.Context, actor internal.Actor, dto CreateDerivationDTO) (*Derivation, error)
	Receive(ctx context.Context, id int64, actor internal.Actor, dto ReceiveDerivationDTO) (*chargebook.Entry, error)
	Reject(ctx context.Context, id int64, actor internal.Actor, dto RejectDerivationDTO) (*Derivation, error)
	Edit(id int64, actor internal.Actor, dto UpdateDerivationDTO) (*Derivation, error)
	Delete(id int64, actor internal.Actor) error
	GetDerivationByID(id int64) (*Derivation, error)
	GetInbox(actor internal.Actor, limit, offset int) ([]*Derivation, error)
	GetOutbox(actor internal.Actor, limit, offset int) ([]*Derivation, error)
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

func (h *Handler) CreateDerivation(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateDerivationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.Service.Derive(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Error("CreateDerivation: service error", "error", err)
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) GetDerivation(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid derivation ID")
		return
	}

	d, err := h.Service.GetDerivationByID(id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	h.listDerivations(w, r, h.Service.GetInbox)
}

func (h *Handler) Outbox(w http.ResponseWriter, r *http.Request) {
	h.listDerivations(w, r, h.Service.GetOutbox)
}

func (h *Handler) listDerivations(w http.ResponseWriter, r *http.Request, list func(internal.Actor, int, int) ([]*Derivation, error)) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)
	derivations, err := list(actor, limit, offset)
	if err != nil {
		h.Logger.Error("listDerivations: service error", "error", err)
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"derivations": derivations,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) ReceiveDerivation(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid derivation ID")
		return
	}

	var dto ReceiveDerivationDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	entry, err := h.Service.Receive(r.Context(), id, actor, dto)
	if err != nil {
		h.Logger.Error("ReceiveDerivation: service error", "error", err, "derivation_id", id)
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) RejectDerivation(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid derivation ID")
		return
	}

	var dto RejectDerivationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.Service.Reject(r.Context(), id, actor, dto)
	if err != nil {
		h.Logger.Error("RejectDerivation: service error", "error", err, "derivation_id", id)
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) UpdateDerivation(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid derivation ID")
		return
	}

	var dto UpdateDerivationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.Service.Edit(id, actor, dto)
	if err != nil {
		h.Logger.Error("UpdateDerivation: service error", "error", err, "derivation_id", id)
		h.writeDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) DeleteDerivation(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.idParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid derivation ID")
		return
	}

	if err := h.Service.Delete(id, actor); err != nil {
		h.Logger.Error("DeleteDerivation: service error", "error", err, "derivation_id", id)
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case ErrDerivationNotFound, document.ErrDocumentNotFound, department.ErrDepartmentNotFound:
		h.WriteError(w, http.StatusNotFound, err.Error())
	case ErrNoDepartment, ErrNotCustodian, ErrNotOriginDepartment, ErrNotDestination:
		h.WriteError(w, http.StatusForbidden, err.Error())
	case ErrSameDepartment:
		h.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case ErrAlreadyResolved, ErrAlreadyInChargeBook, ErrDeleteWindowClosed, ErrEntryNumberConflict:
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
