// Package ingest is the reference raw record source: it scans a data
// directory for per-entity CSV and XLSX files and delivers loosely typed
// rows to the normalizer. The core pipeline only depends on the resulting
// RawRecord streams, not on this package's file handling.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ecomcli/internal/errors"
	"ecomcli/pkg/contracts/domain"
)

// Source reads raw transaction files from a directory.
type Source struct {
	logger  *slog.Logger
	dataDir string
}

// New creates a Source over the given data directory.
func New(logger *slog.Logger, dataDir string) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{logger: logger, dataDir: dataDir}
}

// Load scans the data directory and returns raw records grouped by entity
// type. Files whose name matches no known entity are skipped with a
// warning; a file that cannot be parsed aborts the load (phase-level
// anomaly, not a row-level one).
func (s *Source) Load(ctx context.Context) (map[domain.EntityType][]domain.RawRecord, error) {
	if _, err := os.Stat(s.dataDir); os.IsNotExist(err) {
		return nil, errors.NewStorageError(fmt.Sprintf("data directory does not exist: %s", s.dataDir), err)
	}

	files, err := findDataFiles(s.dataDir)
	if err != nil {
		return nil, errors.NewStorageError("scan data directory", err)
	}
	if len(files) == 0 {
		return nil, errors.NewStorageError(fmt.Sprintf("no data files found in %s", s.dataDir), nil)
	}

	out := make(map[domain.EntityType][]domain.RawRecord)
	for _, path := range files {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("load cancelled: %w", ctx.Err())
		default:
		}

		entity, ok := DetectEntity(filepath.Base(path))
		if !ok {
			s.logger.WarnContext(ctx, "skipping file with unrecognized entity",
				slog.String("file", filepath.Base(path)),
			)
			continue
		}

		rows, err := readRows(path)
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("read %s", filepath.Base(path)), err)
		}

		records := toRawRecords(entity, rows, len(out[entity]))
		out[entity] = append(out[entity], records...)

		s.logger.InfoContext(ctx, "raw file loaded",
			slog.String("file", filepath.Base(path)),
			slog.String("entity", string(entity)),
			slog.Int("rows", len(records)),
		)
	}

	return out, nil
}

// DetectEntity infers the entity type from a file name. More specific
// patterns are checked first so "order_items" never matches "order".
func DetectEntity(name string) (domain.EntityType, bool) {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "order_item") || strings.Contains(name, "order_items"):
		return domain.EntityOrderItem, true
	case strings.Contains(name, "payment"):
		return domain.EntityPayment, true
	case strings.Contains(name, "review"):
		return domain.EntityReview, true
	case strings.Contains(name, "geolocation"):
		return domain.EntityGeolocation, true
	case strings.Contains(name, "category") && strings.Contains(name, "translation"):
		return domain.EntityCategoryTranslation, true
	case strings.Contains(name, "customer"):
		return domain.EntityCustomer, true
	case strings.Contains(name, "seller"):
		return domain.EntitySeller, true
	case strings.Contains(name, "product"):
		return domain.EntityProduct, true
	case strings.Contains(name, "order"):
		return domain.EntityOrder, true
	default:
		return "", false
	}
}

// findDataFiles lists CSV and XLSX files under dir, sorted for a stable
// load order.
func findDataFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(info.Name())) {
		case ".csv", ".xlsx":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// readRows dispatches on file extension. Both readers return the header
// row followed by data rows.
func readRows(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSXRows(path)
	}
	return readCSVRows(path)
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Raw files are loosely typed; tolerate ragged rows and quotes in text.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV record: %w", err)
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	return rows, nil
}

// toRawRecords zips the header row with each data row. Missing trailing
// cells stay absent rather than becoming empty fields.
func toRawRecords(entity domain.EntityType, rows [][]string, seqBase int) []domain.RawRecord {
	if len(rows) < 2 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	records := make([]domain.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		fields := make(map[string]string, len(header))
		for col, name := range header {
			if name == "" || col >= len(row) {
				continue
			}
			fields[name] = row[col]
		}
		records = append(records, domain.RawRecord{
			Entity: entity,
			Seq:    seqBase + i,
			Fields: fields,
		})
	}
	return records
}
