package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pincode-backend/internal/model"
)

const importBatchSize = 500

// Store defines the interface for all database operations.
type Store interface {
	GetPostalCode(ctx context.Context, pincode string) (*model.PostalCode, error)
	UpsertPostalCode(ctx context.Context, pc *model.PostalCode) error
	ImportPostalCodes(ctx context.Context, codes []model.PostalCode) (int64, error)

	CreateScan(ctx context.Context, scan *model.Scan) error
	GetScan(ctx context.Context, id int64) (*model.Scan, error)
	ListUnfinishedScans(ctx context.Context) ([]int64, error)
	MarkScanProcessing(ctx context.Context, id int64) error
	CompleteScan(ctx context.Context, id int64, result ScanResult) error
	FailScan(ctx context.Context, id int64, reason string) error

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

// GetPostalCode looks a pincode up in the local table.
func (s *gormStore) GetPostalCode(ctx context.Context, pincode string) (*model.PostalCode, error) {
	var pc model.PostalCode
	err := s.db.WithContext(ctx).Where("pincode = ?", pincode).First(&pc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch postal code %s: %w", pincode, err)
	}
	return &pc, nil
}

// UpsertPostalCode inserts the pincode or overwrites every descriptive column of the existing row.
func (s *gormStore) UpsertPostalCode(ctx context.Context, pc *model.PostalCode) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pincode"}},
		DoUpdates: clause.AssignmentColumns([]string{"post_office", "delivery", "district", "state", "latitude", "longitude", "updated_at"}),
	}).Create(pc).Error
	if err != nil {
		return fmt.Errorf("failed to upsert postal code %s: %w", pc.Pincode, err)
	}
	return nil
}

// ImportPostalCodes inserts pincodes that are not yet known and leaves existing
// rows untouched. It returns the number of rows inserted.
func (s *gormStore) ImportPostalCodes(ctx context.Context, codes []model.PostalCode) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	// Duplicate pincodes inside one batch would make the insert ambiguous.
	seen := make(map[string]bool, len(codes))
	unique := make([]model.PostalCode, 0, len(codes))
	for _, c := range codes {
		if seen[c.Pincode] {
			continue
		}
		seen[c.Pincode] = true
		unique = append(unique, c)
	}

	log.Printf("Importing %d postal codes...", len(unique))
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "pincode"}}, DoNothing: true}).
		CreateInBatches(&unique, importBatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("batch import postal codes failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *gormStore) CreateScan(ctx context.Context, scan *model.Scan) error {
	if scan.Status == "" {
		scan.Status = model.ScanPending
	}
	if err := s.db.WithContext(ctx).Create(scan).Error; err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}
	return nil
}

func (s *gormStore) GetScan(ctx context.Context, id int64) (*model.Scan, error) {
	var scan model.Scan
	err := s.db.WithContext(ctx).First(&scan, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scan %d: %w", id, err)
	}
	return &scan, nil
}

// ListUnfinishedScans returns the ids of pending and processing scans, oldest first.
func (s *gormStore) ListUnfinishedScans(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&model.Scan{}).
		Where("status IN ?", []model.ScanStatus{model.ScanPending, model.ScanProcessing}).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unfinished scans: %w", err)
	}
	return ids, nil
}

func (s *gormStore) MarkScanProcessing(ctx context.Context, id int64) error {
	return s.updateScan(ctx, id, map[string]any{"status": model.ScanProcessing})
}

// CompleteScan stores the pipeline result and marks the scan done.
func (s *gormStore) CompleteScan(ctx context.Context, id int64, result ScanResult) error {
	entities, err := json.Marshal(result.Entities)
	if err != nil {
		return fmt.Errorf("failed to encode entities for scan %d: %w", id, err)
	}
	return s.updateScan(ctx, id, map[string]any{
		"status":          model.ScanDone,
		"recognized_text": result.RecognizedText,
		"translated_text": result.TranslatedText,
		"entities":        string(entities),
		"pincode":         result.Pincode,
		"outcome":         result.Outcome,
		"region":          result.Region,
		"matched":         result.Matched,
		"message":         result.Message,
		"annotated":       result.Annotated,
		"error":           "",
	})
}

// FailScan marks the scan failed with the given reason.
func (s *gormStore) FailScan(ctx context.Context, id int64, reason string) error {
	return s.updateScan(ctx, id, map[string]any{
		"status": model.ScanFailed,
		"error":  reason,
	})
}

func (s *gormStore) updateScan(ctx context.Context, id int64, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&model.Scan{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update scan %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
