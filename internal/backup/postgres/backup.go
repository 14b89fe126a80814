package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/agency-ops/internal/backup"
	"github.com/frahmantamala/agency-ops/internal/core/database"
)

// BackupRepository reads whole tables through sqlx so column names and
// order come straight from the database.
type BackupRepository struct {
	db *database.DB
}

func NewBackupRepository(db *database.DB) backup.RepositoryAPI {
	return &BackupRepository{db: db}
}

func (r *BackupRepository) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	err := r.db.SQLX.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	return n, err
}

func (r *BackupRepository) DumpTable(ctx context.Context, table string) (*backup.TableDump, error) {
	rows, err := r.db.SQLX.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY 1", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	dump := &backup.TableDump{Table: table, Columns: columns, Rows: []backup.Row{}}
	for rows.Next() {
		row := map[string]interface{}{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		dump.Rows = append(dump.Rows, row)
	}
	return dump, rows.Err()
}
