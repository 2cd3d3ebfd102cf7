package handlers

import (
	"net/http"
	"strings"

	"github.com/agentstation/propverify/internal/server/cache"
	"github.com/agentstation/propverify/internal/server/response"
	"github.com/agentstation/propverify/pkg/constants"
	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/logging"
)

// HandleVerifyProperty handles POST /api/v1/properties/{id}/verify.
// @Summary Verify a property
// @Description Looks the property up in every registry, unifies the records and stores the result
// @Tags properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} response.Response{data=propverify.Result}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 404 {object} response.Response{error=response.Error}
// @Failure 504 {object} response.Response{error=response.Error}
// @Router /api/v1/properties/{id}/verify [post].
func (h *Handlers) HandleVerifyProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := propertyID(w, r)
	if !ok {
		return
	}

	ctx := logging.WithProperty(r.Context(), id)
	res, err := h.verifier.Verify(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.cache.InvalidateProperty(res.Property.PropertyID)
	response.OK(w, res)
}

// HandleGetProperty handles GET /api/v1/properties/{id}.
// @Summary Get a unified property
// @Description Returns the stored unified record without contacting the registries
// @Tags properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} response.Response{data=property.Property}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/properties/{id} [get].
func (h *Handlers) HandleGetProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := propertyID(w, r)
	if !ok {
		return
	}

	key := cache.PropertyKey(id)
	if cached, found := h.cache.Get(key); found {
		w.Header().Set("X-Cache", "HIT")
		response.OK(w, cached)
		return
	}

	p, err := h.verifier.Property(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.cache.Set(key, p)
	w.Header().Set("X-Cache", "MISS")
	response.OK(w, p)
}

// HandleGetProvenance handles GET /api/v1/properties/{id}/provenance.
// @Summary Field provenance of a property
// @Description Reports which registry supplied each field and the conflicts that were resolved
// @Tags properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} response.Response{data=provenance.ResourceProvenance}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/properties/{id}/provenance [get].
func (h *Handlers) HandleGetProvenance(w http.ResponseWriter, r *http.Request) {
	id, ok := propertyID(w, r)
	if !ok {
		return
	}

	key := cache.ProvenanceKey(id)
	if cached, found := h.cache.Get(key); found {
		response.OK(w, cached)
		return
	}

	report, found := h.verifier.Report(id)
	if !found {
		response.NotFound(w, "no provenance recorded for this property", "")
		return
	}

	h.cache.Set(key, report)
	response.OK(w, report)
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.IsNotFound(err) && !errors.IsValidationError(err) {
		logging.FromContextOr(r.Context(), h.logger).Error().Err(err).Msg("Request failed")
	}
	response.ErrorFromType(w, err)
}

// propertyID reads and validates the {id} path value.
func propertyID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		response.BadRequest(w, "property id is required", "")
		return "", false
	}
	if len(id) > constants.MaxPropertyIDLength {
		response.BadRequest(w, "property id is too long", "")
		return "", false
	}
	if strings.Contains(id, ":") {
		response.BadRequest(w, "property id may not contain ':'", "")
		return "", false
	}
	return id, true
}
