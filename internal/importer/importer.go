package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"pincode-backend/config"
	"pincode-backend/internal/address"
	"pincode-backend/internal/model"
	"pincode-backend/internal/store"
)

// Column names of the postal directory export.
const (
	colPincode   = "Pincode"
	colOffice    = "OfficeNam"
	colDelivery  = "Delivery"
	colDistrict  = "District"
	colState     = "StateNam"
	colLatitude  = "Latitude"
	colLongitude = "Longitude"
)

var requiredColumns = []string{colPincode, colOffice, colDelivery, colDistrict, colState}

// ReadCSV parses a postal directory export. Columns are addressed by header
// name, so extra columns and column order do not matter. Rows whose pincode is
// not six digits are skipped.
func ReadCSV(r io.Reader) ([]model.PostalCode, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("csv is missing column %q", name)
		}
	}

	var codes []model.PostalCode
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		pincode := normalizeCSVPincode(get(colPincode))
		if address.ValidatePincode(pincode) != nil {
			log.Printf("Skipping csv line %d: invalid pincode %q", line, get(colPincode))
			continue
		}

		codes = append(codes, model.PostalCode{
			Pincode:    pincode,
			PostOffice: get(colOffice),
			Delivery:   get(colDelivery),
			District:   get(colDistrict),
			State:      get(colState),
			Latitude:   parseCoordinate(get(colLatitude)),
			Longitude:  parseCoordinate(get(colLongitude)),
		})
	}
	return codes, nil
}

// normalizeCSVPincode accepts pincodes written as floats by spreadsheet tools.
func normalizeCSVPincode(s string) string {
	s = address.NormalizePincode(s)
	if whole, ok := strings.CutSuffix(s, ".0"); ok {
		return whole
	}
	return s
}

func parseCoordinate(s string) *float64 {
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ImportFile loads the CSV at path into the store. Pincodes that already exist
// are left untouched. It returns the number of rows inserted.
func ImportFile(ctx context.Context, s store.Store, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	codes, err := ReadCSV(f)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	inserted, err := s.ImportPostalCodes(ctx, codes)
	if err != nil {
		return 0, err
	}
	log.Printf("Database populated from %s: %d of %d rows inserted.", path, inserted, len(codes))
	return inserted, nil
}

// Scheduler re-imports the configured CSV on a cron schedule.
type Scheduler struct {
	store store.Store
	cfg   config.ImportConfig
	cron  *cron.Cron
}

func NewScheduler(s store.Store, cfg config.ImportConfig) (*Scheduler, error) {
	loc := time.Local
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid import timezone %q: %w", cfg.Timezone, err)
		}
	}
	return &Scheduler{
		store: s,
		cfg:   cfg,
		cron:  cron.New(cron.WithLocation(loc)),
	}, nil
}

// Start runs one import immediately and, when a schedule is configured,
// registers the recurring job. It does nothing when no CSV path is set.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.CSVPath == "" {
		log.Println("CSV import disabled (import.csv_path not set)")
		return nil
	}

	s.run(ctx)

	schedule := strings.TrimSpace(s.cfg.Schedule)
	if schedule == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("invalid import schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	log.Printf("CSV import scheduled (cron: %s)", schedule)
	return nil
}

// Stop halts the schedule and waits for a running import to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run(ctx context.Context) {
	if _, err := ImportFile(ctx, s.store, s.cfg.CSVPath); err != nil {
		log.Printf("CSV import error: %v", err)
	}
}
