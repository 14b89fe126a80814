package postgres

import (
	"context"

	"github.com/frahmantamala/agency-ops/internal/core/database"
	"github.com/frahmantamala/agency-ops/internal/employee"
)

type StatsRepository struct {
	db *database.DB
}

func NewStatsRepository(db *database.DB) employee.StatsReader {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) ActiveEmployeeCount(ctx context.Context) (int64, error) {
	var n int64
	query := r.db.SQLX.Rebind(`SELECT COUNT(*) FROM employees WHERE is_active = ?`)
	err := r.db.SQLX.GetContext(ctx, &n, query, true)
	return n, err
}

func (r *StatsRepository) SalaryTotalsByStatus(ctx context.Context, period string) ([]employee.StatusTotal, error) {
	query := `SELECT status, COUNT(*) AS count,
		CAST(COALESCE(SUM(net_amount), 0) AS DOUBLE PRECISION) AS total
		FROM salaries`
	var args []interface{}
	if period != "" {
		query += ` WHERE period = ?`
		args = append(args, period)
	}
	query += ` GROUP BY status ORDER BY status`

	var rows []employee.StatusTotal
	if err := r.db.SQLX.SelectContext(ctx, &rows, r.db.SQLX.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}
