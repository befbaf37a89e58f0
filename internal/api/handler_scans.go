package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pincode-backend/internal/model"
	"pincode-backend/internal/store"
)

// ScanResponse is the public view of a scan. The uploaded image is never echoed.
type ScanResponse struct {
	ID             int64               `json:"id"`
	Status         model.ScanStatus    `json:"status"`
	RecognizedText string              `json:"recognized_text,omitempty"`
	TranslatedText string              `json:"translated_text,omitempty"`
	Entities       map[string][]string `json:"entities,omitempty"`
	Pincode        string              `json:"pincode,omitempty"`
	Outcome        string              `json:"outcome,omitempty"`
	Region         string              `json:"region,omitempty"`
	Matched        bool                `json:"matched"`
	Message        string              `json:"message,omitempty"`
	Error          string              `json:"error,omitempty"`
	Annotated      bool                `json:"annotated"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func newScanResponse(scan *model.Scan) ScanResponse {
	resp := ScanResponse{
		ID:             scan.ID,
		Status:         scan.Status,
		RecognizedText: scan.RecognizedText,
		TranslatedText: scan.TranslatedText,
		Pincode:        scan.Pincode,
		Outcome:        scan.Outcome,
		Region:         scan.Region,
		Matched:        scan.Matched,
		Message:        scan.Message,
		Error:          scan.Error,
		Annotated:      len(scan.Annotated) > 0,
		CreatedAt:      scan.CreatedAt,
		UpdatedAt:      scan.UpdatedAt,
	}
	if scan.Entities != "" {
		if err := json.Unmarshal([]byte(scan.Entities), &resp.Entities); err != nil {
			log.Printf("Scan %d has unreadable entities: %v", scan.ID, err)
		}
	}
	return resp
}

var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// CreateScan accepts an address photo and queues it for processing.
func (h *Handler) CreateScan(c *gin.Context) {
	if h.scans == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scanning is not configured"})
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	image, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contentType := http.DetectContentType(image)
	if !acceptedImageTypes[contentType] {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "image must be JPEG or PNG"})
		return
	}

	scan := model.Scan{Image: image, ImageType: contentType}
	if endpoint := strings.TrimSpace(c.PostForm("subscription_endpoint")); endpoint != "" {
		var count int64
		if err := h.store.DB().Model(&model.PushSubscription{}).Where("endpoint = ?", endpoint).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subscription not found"})
			return
		}
		scan.SubscriptionEndpoint = &endpoint
	}

	ctx := c.Request.Context()
	if err := h.store.CreateScan(ctx, &scan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.scans.Dispatch(scan.ID); err != nil {
		if ferr := h.store.FailScan(ctx, scan.ID, err.Error()); ferr != nil {
			log.Printf("Error failing undispatched scan %d: %v", scan.ID, ferr)
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": scan.ID, "status": scan.Status})
}

// scanFromParam loads the scan named by :id, writing the error response itself.
func (h *Handler) scanFromParam(c *gin.Context) (*model.Scan, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scan id"})
		return nil, false
	}

	scan, err := h.store.GetScan(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return scan, true
}

// GetScan returns the scan's status and, once processed, its result.
func (h *Handler) GetScan(c *gin.Context) {
	scan, ok := h.scanFromParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newScanResponse(scan))
}

// GetAnnotatedScan returns the frame with detection boxes drawn on it.
func (h *Handler) GetAnnotatedScan(c *gin.Context) {
	scan, ok := h.scanFromParam(c)
	if !ok {
		return
	}
	if len(scan.Annotated) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "scan has no annotated image"})
		return
	}
	c.Data(http.StatusOK, "image/png", scan.Annotated)
}
