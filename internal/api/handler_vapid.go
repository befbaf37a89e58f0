package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// VAPIDKeyResponse tells a browser how to subscribe for scan results.
type VAPIDKeyResponse struct {
	PublicKey string `json:"public_key"`
	// ScanResults is false when uploads are disabled, so a subscription
	// would never receive anything.
	ScanResults bool `json:"scan_results"`
}

// GetVAPIDPublicKey returns the key a browser needs to subscribe to scan
// result pushes.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scan result notifications are not configured"})
		return
	}

	c.JSON(http.StatusOK, VAPIDKeyResponse{
		PublicKey:   h.webpush.VAPIDPublicKey,
		ScanResults: h.scans != nil,
	})
}
