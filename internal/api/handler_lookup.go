package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pincode-backend/internal/address"
	"pincode-backend/internal/classify"
	"pincode-backend/internal/mw"
	"pincode-backend/internal/postal"
)

// LookupResponse is a classified upstream lookup with its record flattened
// into ordered fields.
type LookupResponse struct {
	*postal.Result
	Fields []postal.Field `json:"fields,omitempty"`
}

// MatchResponse is the answer to a region match request.
type MatchResponse struct {
	Pincode string           `json:"pincode"`
	Outcome classify.Outcome `json:"outcome"`
	classify.RegionMatch
}

// lookup resolves the :pincode parameter upstream and writes the error
// response itself when it cannot.
func (h *Handler) lookup(c *gin.Context) (*postal.Result, bool) {
	if h.postal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "postal lookups are not configured"})
		return nil, false
	}

	pincode := address.NormalizePincode(c.Param("pincode"))
	if err := address.ValidatePincode(pincode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	result, err := h.postal.Lookup(c.Request.Context(), pincode)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": postal.Describe(err)})
		return nil, false
	}
	return result, true
}

// Lookup queries the live postal API and returns the classified outcome.
// Non-valid outcomes are still a 200: the upstream answered, it just had no data.
func (h *Handler) Lookup(c *gin.Context) {
	result, ok := h.lookup(c)
	if !ok {
		return
	}
	if !result.Outcome.OK() {
		mw.NoStore(c)
	}
	c.JSON(http.StatusOK, LookupResponse{Result: result, Fields: fieldsOf(result)})
}

type matchRequest struct {
	Text string `json:"text" binding:"required"`
}

// MatchRegion compares free text (usually a recognised address) with the
// Region of the pincode's first post office.
func (h *Handler) MatchRegion(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, ok := h.lookup(c)
	if !ok {
		return
	}
	if !result.Outcome.OK() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"pincode": result.Pincode,
			"outcome": result.Outcome,
			"error":   result.Message,
		})
		return
	}

	c.JSON(http.StatusOK, MatchResponse{
		Pincode:     result.Pincode,
		Outcome:     result.Outcome,
		RegionMatch: classify.MatchRegion(result.Record, req.Text),
	})
}

func fieldsOf(r *postal.Result) []postal.Field {
	if !r.Outcome.OK() {
		return nil
	}
	return r.Fields()
}
