package notification

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"

	"pincode-backend/internal/model"
	"pincode-backend/internal/ocr"
	"pincode-backend/internal/pipeline"
	"pincode-backend/internal/store"
)

// ErrQueueFull is returned by Dispatch when every worker is busy and the
// backlog is at capacity.
var ErrQueueFull = errors.New("scan queue is full")

// queueDepth is how many scans may wait per worker.
const queueDepth = 16

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Runner processes one scan image.
type Runner interface {
	Run(ctx context.Context, image []byte) (*pipeline.Report, error)
}

// Payload is the push message body sent when a scan finishes.
type Payload struct {
	ScanID  int64            `json:"scan_id"`
	Status  model.ScanStatus `json:"status"`
	Pincode string           `json:"pincode,omitempty"`
	Matched bool             `json:"matched"`
	Message string           `json:"message"`
}

// WorkerPool runs queued scans through the pipeline and pushes the result to
// the scan's subscriber.
type WorkerPool struct {
	size     int
	jobs     chan int64
	store    store.Store
	runner   Runner
	annotate bool
	webpush  *webpush.Options
	sender   NotificationSender
	wg       sync.WaitGroup
}

// NewWorkerPool creates a new worker pool. webpushOptions may be nil, in which
// case results are stored but never pushed.
func NewWorkerPool(size int, s store.Store, runner Runner, webpushOptions *webpush.Options, annotate bool) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:     size,
		jobs:     make(chan int64, size*queueDepth), // Buffered channel
		store:    s,
		runner:   runner,
		annotate: annotate,
		webpush:  webpushOptions,
		sender:   &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines and requeues scans left pending or
// processing by a previous run.
func (wp *WorkerPool) Start(ctx context.Context) {
	var unfinished []int64
	if wp.store != nil {
		ids, err := wp.store.ListUnfinishedScans(ctx)
		if err != nil {
			log.Printf("Error listing unfinished scans: %v", err)
		}
		unfinished = ids
	}

	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}

	if len(unfinished) > 0 {
		log.Printf("Resuming %d unfinished scans", len(unfinished))
		go wp.requeue(ctx, unfinished)
	}
}

// Wait blocks until every worker has returned. Workers return once the
// context passed to Start is cancelled and their current scan is finished.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// requeue feeds ids to the workers, waiting for queue space.
func (wp *WorkerPool) requeue(ctx context.Context, ids []int64) {
	for _, id := range ids {
		select {
		case wp.jobs <- id:
		case <-ctx.Done():
			return
		}
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log.Printf("Worker %d started", id)
	for {
		select {
		case scanID := <-wp.jobs:
			log.Printf("Worker %d processing scan %d", id, scanID)
			wp.processScan(ctx, scanID)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a scan without blocking.
func (wp *WorkerPool) Dispatch(scanID int64) error {
	select {
	case wp.jobs <- scanID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

// processScan runs one scan end to end and records the outcome.
func (wp *WorkerPool) processScan(ctx context.Context, scanID int64) {
	scan, err := wp.store.GetScan(ctx, scanID)
	if err != nil {
		log.Printf("Error loading scan %d: %v", scanID, err)
		return
	}
	if scan.Status == model.ScanDone || scan.Status == model.ScanFailed {
		log.Printf("Scan %d already %s, skipping", scanID, scan.Status)
		return
	}
	if err := wp.store.MarkScanProcessing(ctx, scanID); err != nil {
		log.Printf("Error marking scan %d as processing: %v", scanID, err)
		return
	}

	report, err := wp.runner.Run(ctx, scan.Image)
	if err != nil && ctx.Err() != nil {
		// Still marked processing, so the next Start picks it up again.
		log.Printf("Scan %d interrupted by shutdown", scanID)
		return
	}
	if err != nil {
		reason := err.Error()
		log.Printf("Scan %d failed: %s", scanID, reason)
		if err := wp.store.FailScan(ctx, scanID, reason); err != nil {
			log.Printf("Error recording failure of scan %d: %v", scanID, err)
		}
		wp.notify(ctx, scan, Payload{ScanID: scanID, Status: model.ScanFailed, Message: reason})
		return
	}

	result := store.ScanResult{
		RecognizedText: report.RecognizedText,
		TranslatedText: report.TranslatedText,
		Entities:       report.Entities,
		Pincode:        report.Pincode,
		Outcome:        string(report.Outcome),
		Message:        report.Message,
	}
	if report.Match != nil {
		result.Region = report.Match.Region
		result.Matched = report.Match.Matched
	}
	if wp.annotate && len(report.Detections) > 0 {
		annotated, err := ocr.Annotate(scan.Image, report.Detections)
		if err != nil {
			log.Printf("Error annotating scan %d: %v", scanID, err)
		} else {
			result.Annotated = annotated
		}
	}

	if err := wp.store.CompleteScan(ctx, scanID, result); err != nil {
		log.Printf("Error saving result of scan %d: %v", scanID, err)
		return
	}
	log.Printf("Scan %d done: %s", scanID, report.Message)

	wp.notify(ctx, scan, Payload{
		ScanID:  scanID,
		Status:  model.ScanDone,
		Pincode: result.Pincode,
		Matched: result.Matched,
		Message: result.Message,
	})
}

// notify pushes the payload to the scan's subscription, if it has one.
func (wp *WorkerPool) notify(ctx context.Context, scan *model.Scan, payload Payload) {
	if wp.webpush == nil || scan.SubscriptionEndpoint == nil || *scan.SubscriptionEndpoint == "" {
		return
	}

	var sub model.PushSubscription
	if err := wp.store.DB().WithContext(ctx).First(&sub, "endpoint = ?", *scan.SubscriptionEndpoint).Error; err != nil {
		log.Printf("Error fetching subscription for scan %d: %v", scan.ID, err)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error encoding notification for scan %d: %v", scan.ID, err)
		return
	}
	wp.sendNotification(ctx, sub, body)
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	// Manually construct the webpush.Subscription object
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DB().WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		return
	}
	if resp.StatusCode >= 400 {
		log.Printf("Push service rejected notification to %s: %s", sub.Endpoint, resp.Status)
	}
}
