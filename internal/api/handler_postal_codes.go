package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pincode-backend/internal/address"
	"pincode-backend/internal/model"
	"pincode-backend/internal/store"
)

// ValidateResponse is the answer to POST /api/validate_pincode.
type ValidateResponse struct {
	Valid      bool   `json:"valid"`
	PostOffice string `json:"post_office"`
	Delivery   string `json:"delivery"`
}

// ValidatePincode checks the pincode query parameter against the local table.
func (h *Handler) ValidatePincode(c *gin.Context) {
	pincode := address.NormalizePincode(c.Query("pincode"))
	if pincode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pincode is required"})
		return
	}

	pc, err := h.store.GetPostalCode(c.Request.Context(), pincode)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "PIN code not found."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{Valid: true, PostOffice: pc.PostOffice, Delivery: pc.Delivery})
}

type putPostalCodeRequest struct {
	Pincode    string   `json:"pincode" binding:"required"`
	PostOffice string   `json:"post_office" binding:"required"`
	Delivery   string   `json:"delivery" binding:"required"`
	District   string   `json:"district" binding:"required"`
	State      string   `json:"state" binding:"required"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// PutPostalCode adds a pincode or replaces every field of an existing one.
func (h *Handler) PutPostalCode(c *gin.Context) {
	var req putPostalCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pincode := address.NormalizePincode(req.Pincode)
	if err := address.ValidatePincode(pincode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pc := model.PostalCode{
		Pincode:    pincode,
		PostOffice: req.PostOffice,
		Delivery:   req.Delivery,
		District:   req.District,
		State:      req.State,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	}
	if err := h.store.UpsertPostalCode(c.Request.Context(), &pc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.cache.Invalidate("/api/postal_codes/" + pincode)

	c.JSON(http.StatusOK, gin.H{"message": "Postal code added/updated successfully."})
}

// GetPostalCode returns the stored details of a pincode.
func (h *Handler) GetPostalCode(c *gin.Context) {
	pincode := address.NormalizePincode(c.Param("pincode"))

	pc, err := h.store.GetPostalCode(c.Request.Context(), pincode)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Postal code not found."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, pc)
}
