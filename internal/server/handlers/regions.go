package handlers

import (
	"net/http"

	"github.com/agentstation/propverify/internal/server/cache"
	"github.com/agentstation/propverify/internal/server/response"
)

// Region is one entry of the region table.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// HandleListRegions handles GET /api/v1/regions.
// @Summary List regions
// @Description Lists the region codes used to derive stateName
// @Tags regions
// @Produce json
// @Success 200 {object} response.Response{data=[]Region}
// @Router /api/v1/regions [get].
func (h *Handlers) HandleListRegions(w http.ResponseWriter, _ *http.Request) {
	if cached, found := h.cache.Get(cache.RegionsKey); found {
		response.OK(w, cached)
		return
	}

	codes := h.regions.Codes()
	out := make([]Region, 0, len(codes))
	for _, code := range codes {
		out = append(out, Region{Code: code, Name: h.regions[code]})
	}

	h.cache.Set(cache.RegionsKey, out)
	response.OK(w, out)
}
