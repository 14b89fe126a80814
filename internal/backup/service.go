package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/csvutil"
	"github.com/frahmantamala/agency-ops/internal/storage"
)

type RepositoryAPI interface {
	CountRows(ctx context.Context, table string) (int64, error)
	DumpTable(ctx context.Context, table string) (*TableDump, error)
}

type ServiceAPI interface {
	Full(ctx context.Context) (*FullBackup, error)
	Tables(ctx context.Context) ([]TableInfo, error)
	Table(ctx context.Context, table string) (*TableDump, error)
	TableCSV(ctx context.Context, table string) ([]byte, error)
	Snapshot(ctx context.Context) (*SnapshotResult, error)
}

type Service struct {
	repo    RepositoryAPI
	storage storage.Storage
	tables  []string
	known   map[string]bool
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(repo RepositoryAPI, store storage.Storage, logger *slog.Logger) *Service {
	tables := BusinessTables()
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t] = true
	}
	return &Service{repo: repo, storage: store, tables: tables, known: known, logger: logger, now: time.Now}
}

func (s *Service) Full(ctx context.Context) (*FullBackup, error) {
	out := &FullBackup{
		Version:   backupVersion,
		CreatedAt: s.now().UTC(),
		Tables:    make(map[string][]Row, len(s.tables)),
	}
	for _, table := range s.tables {
		dump, err := s.repo.DumpTable(ctx, table)
		if err != nil {
			return nil, internal.NewInternalError(fmt.Sprintf("failed to dump %s", table), err)
		}
		out.Tables[table] = dump.Rows
	}
	return out, nil
}

func (s *Service) Tables(ctx context.Context) ([]TableInfo, error) {
	out := make([]TableInfo, 0, len(s.tables))
	for _, table := range s.tables {
		n, err := s.repo.CountRows(ctx, table)
		if err != nil {
			return nil, internal.NewInternalError(fmt.Sprintf("failed to count %s", table), err)
		}
		out = append(out, TableInfo{Name: table, Rows: n})
	}
	return out, nil
}

// Table only serves names from BusinessTables, so the name is safe to
// interpolate into SQL further down.
func (s *Service) Table(ctx context.Context, table string) (*TableDump, error) {
	if !s.known[table] {
		return nil, internal.NewNotFoundError(fmt.Sprintf("table %q not found", table), internal.ErrCodeTableNotFound)
	}
	dump, err := s.repo.DumpTable(ctx, table)
	if err != nil {
		return nil, internal.NewInternalError(fmt.Sprintf("failed to dump %s", table), err)
	}
	return dump, nil
}

func (s *Service) TableCSV(ctx context.Context, table string) ([]byte, error) {
	dump, err := s.Table(ctx, table)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(dump.Rows))
	for _, r := range dump.Rows {
		line := make([]string, len(dump.Columns))
		for i, col := range dump.Columns {
			line[i] = formatCell(r[col])
		}
		rows = append(rows, line)
	}
	data, err := csvutil.Write(dump.Columns, rows)
	if err != nil {
		return nil, internal.NewInternalError("failed to write csv", err)
	}
	return data, nil
}

// Snapshot writes the full backup through the configured storage backend.
func (s *Service) Snapshot(ctx context.Context) (*SnapshotResult, error) {
	full, err := s.Full(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(full)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode backup", err)
	}

	base := "backup-" + full.CreatedAt.Format("20060102-150405")
	key, err := s.storage.Save(ctx, data, storage.SaveOptions{Category: snapshotCategory, BaseName: base, Extension: FormatJSON})
	if err != nil {
		return nil, internal.NewInternalError("failed to store snapshot", err)
	}

	s.logger.InfoContext(ctx, "backup snapshot stored", "key", key, "bytes", len(data))
	return &SnapshotResult{Key: key, Size: len(data), Tables: len(full.Tables), CreatedAt: full.CreatedAt}, nil
}

func formatCell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}
