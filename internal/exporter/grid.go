package exporter

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	apperrors "bristolgate/internal/errors"
	"bristolgate/internal/grid"
	"bristolgate/pkg/contracts/domain"
)

const (
	gridPrefix    = "featured_grid"
	catalogPrefix = "symbols"
	timestampFmt  = "20060102_150405"
)

// GridCSVStore writes the featured grid and the symbol catalog as
// timestamped CSV artifacts, each with a stable "latest" alias.
type GridCSVStore struct {
	writer *CSVWriter
	dir    string
	now    func() time.Time
}

// NewGridCSVStore creates a store writing under the given directory.
func NewGridCSVStore(dir string) *GridCSVStore {
	return &GridCSVStore{
		writer: NewCSVWriter(dir),
		dir:    dir,
		now:    time.Now,
	}
}

// SaveGrid streams the frame to featured_grid_<timestamp>.csv and
// refreshes featured_grid_latest.csv. Returns the timestamped path.
func (s *GridCSVStore) SaveGrid(ctx context.Context, f *grid.Frame) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	name := gridPrefix + "_" + s.now().UTC().Format(timestampFmt) + ".csv"
	columns := f.Columns()

	headers := make([]string, 0, len(columns)+1)
	headers = append(headers, "date")
	headers = append(headers, columns...)

	sw, err := s.writer.CreateStreamWriter(name, headers)
	if err != nil {
		return "", apperrors.FatalIO(name, err)
	}

	series := make([][]float64, len(columns))
	for i, col := range columns {
		series[i], _ = f.Column(col)
	}

	record := make([]string, len(columns)+1)
	for row := 0; row < f.Rows(); row++ {
		record[0] = f.Date(row).Format("2006-01-02")
		for i := range series {
			record[i+1] = formatValue(series[i][row])
		}
		if err := sw.WriteRecord(record); err != nil {
			sw.Close()
			return "", apperrors.FatalIO(name, err)
		}
	}
	if err := sw.Close(); err != nil {
		return "", apperrors.FatalIO(name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := s.refreshLatest(path, gridPrefix+"_latest.csv"); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Featured grid exported",
		slog.String("path", path),
		slog.Int("rows", f.Rows()),
		slog.Int("columns", len(columns)),
		slog.Duration("duration", time.Since(start)))

	return path, nil
}

// SaveCatalog snapshots the symbol metadata catalog next to the grid.
func (s *GridCSVStore) SaveCatalog(ctx context.Context, records []domain.SymbolRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := catalogPrefix + "_" + s.now().UTC().Format(timestampFmt) + ".csv"

	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = []string{rec.Symbol, rec.Source, rec.Description, rec.Unit}
	}

	headers := []string{"symbol", "source", "description", "unit"}
	if err := s.writer.WriteSimpleCSV(name, headers, rows); err != nil {
		return "", apperrors.FatalIO(name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := s.refreshLatest(path, catalogPrefix+"_latest.csv"); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Symbol catalog exported",
		slog.String("path", path),
		slog.Int("records", len(records)))

	return path, nil
}

// refreshLatest copies the timestamped artifact over the alias so
// consumers always have a fixed path to read.
func (s *GridCSVStore) refreshLatest(srcPath, aliasName string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return apperrors.FatalIO(aliasName, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, aliasName))
	if err != nil {
		return apperrors.FatalIO(aliasName, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return apperrors.FatalIO(aliasName, err)
	}
	return dst.Close()
}
