package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"pincode-backend/internal/mw"
	"pincode-backend/internal/pipeline"
	"pincode-backend/internal/store"
)

// ScanQueue accepts scans for background processing.
type ScanQueue interface {
	Dispatch(scanID int64) error
}

// Deps are the services the API is built on. Scans and WebPush may be nil; the
// endpoints that need them then answer 503.
type Deps struct {
	Store   store.Store
	Postal  pipeline.Lookuper
	Scans   ScanQueue
	WebPush *webpush.Options
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store          store.Store
	postal         pipeline.Lookuper
	scans          ScanQueue
	webpush        *webpush.Options
	cache          *mw.ResponseCache
	maxUploadBytes int64
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps, cache *mw.ResponseCache, maxUploadBytes int64) *Handler {
	return &Handler{
		store:          deps.Store,
		postal:         deps.Postal,
		scans:          deps.Scans,
		webpush:        deps.WebPush,
		cache:          cache,
		maxUploadBytes: maxUploadBytes,
	}
}
