package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/autosetup/internal/api/middleware"
	"github.com/edvin/autosetup/internal/api/request"
	"github.com/edvin/autosetup/internal/api/response"
	"github.com/edvin/autosetup/internal/core"
	"github.com/edvin/autosetup/internal/model"
)

// AutoSetup serves the trigger entry endpoints.
type AutoSetup struct {
	svc *core.AutoSetupService
}

// NewAutoSetup creates an AutoSetup handler backed by svc.
func NewAutoSetup(svc *core.AutoSetupService) *AutoSetup {
	return &AutoSetup{svc: svc}
}

// callbackURL prefers the body field over the X-Callback-URL header.
func callbackURL(r *http.Request, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return mw.CallbackURLFromContext(r.Context())
}

// List godoc
//
//	@Summary		List trigger entries
//	@Tags			AutoSetup
//	@Security		ApiKeyAuth
//	@Param			limit	query		int		false	"Page size"	default(50)
//	@Param			cursor	query		string	false	"Pagination cursor"
//	@Param			search	query		string	false	"Tenant namespace or organization"
//	@Param			status	query		string	false	"Filter by status"
//	@Success		200		{object}	response.PaginatedResponse{items=[]model.TriggerEntry}
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/autosetup [get]
func (h *AutoSetup) List(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseListParams(r, "created_at")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, hasMore, err := h.svc.List(r.Context(), params)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(entries) > 0 {
		nextCursor = entries[len(entries)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, entries, nextCursor, hasMore)
}

// Create godoc
//
//	@Summary		Onboard a tenant
//	@Description	Registers the tenant and starts its CREATE run. Returns 202 with the trigger entry; progress is read back through GET.
//	@Tags			AutoSetup
//	@Security		ApiKeyAuth
//	@Param			body	body		request.CreateAutoSetup	true	"Tenant and tool"
//	@Success		202		{object}	model.TriggerEntry
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Router			/autosetup [post]
func (h *AutoSetup) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAutoSetup
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.svc.Create(r.Context(), core.SetupRequest{
		Tenant: model.Tenant{
			OrganizationName: req.OrganizationName,
			Email:            req.Email,
			Country:          req.Country,
		},
		Tool: model.SelectedTool{
			Tool:  req.Tool.Tool,
			Label: req.Tool.Label,
			Type:  model.ToolType(req.Tool.Type),
		},
		Properties:  req.Properties,
		CallbackURL: callbackURL(r, req.CallbackURL),
	})
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusAccepted, entry)
}

// Get godoc
//
//	@Summary		Get a trigger entry
//	@Description	Returns the entry with every step record written so far.
//	@Tags			AutoSetup
//	@Security		ApiKeyAuth
//	@Param			id	path		string	true	"Trigger entry ID"
//	@Success		200	{object}	model.TriggerEntry
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/autosetup/{id} [get]
func (h *AutoSetup) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, entry)
}

// Update godoc
//
//	@Summary		Update a tenant
//	@Description	Starts an UPDATE run for the tenant of the entry with the new properties laid over the earlier context.
//	@Tags			AutoSetup
//	@Security		ApiKeyAuth
//	@Param			id		path		string					true	"Trigger entry ID"
//	@Param			body	body		request.UpdateAutoSetup	true	"New properties"
//	@Success		202		{object}	model.TriggerEntry
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Router			/autosetup/{id} [put]
func (h *AutoSetup) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateAutoSetup
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.svc.Update(r.Context(), id, req.Properties, callbackURL(r, req.CallbackURL))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusAccepted, entry)
}

// Delete godoc
//
//	@Summary		Remove a tenant
//	@Description	Starts a DELETE run that tears down the resources of the entry's tenant.
//	@Tags			AutoSetup
//	@Security		ApiKeyAuth
//	@Param			id	path		string	true	"Trigger entry ID"
//	@Success		202	{object}	model.TriggerEntry
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		409	{object}	response.ErrorResponse
//	@Router			/autosetup/{id} [delete]
func (h *AutoSetup) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.svc.Delete(r.Context(), id, callbackURL(r, ""))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusAccepted, entry)
}
