package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/agency-ops/internal/core/database"
	"github.com/frahmantamala/agency-ops/internal/finance"
)

// sumAmount is portable across Postgres NUMERIC and SQLite's dynamic typing.
const sumAmount = "CAST(COALESCE(SUM(amount), 0) AS DOUBLE PRECISION)"

// DashboardRepository answers the dashboard aggregates with hand-written SQL.
type DashboardRepository struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) finance.DashboardReader {
	return &DashboardRepository{db: db}
}

func rangeClause(column string, r finance.DateRange) (string, []interface{}) {
	clause := ""
	var args []interface{}
	if r.From != nil {
		clause += fmt.Sprintf(" AND %s >= ?", column)
		args = append(args, *r.From)
	}
	if r.To != nil {
		clause += fmt.Sprintf(" AND %s <= ?", column)
		args = append(args, *r.To)
	}
	return clause, args
}

func (r *DashboardRepository) Totals(ctx context.Context, dr finance.DateRange) (finance.Totals, error) {
	payRange, payArgs := rangeClause("payment_date", dr)
	expRange, expArgs := rangeClause("expense_date", dr)

	query := fmt.Sprintf(`SELECT
		(SELECT %[1]s FROM finance_payments WHERE status = ?%[2]s) AS received,
		(SELECT %[1]s FROM finance_payments WHERE status = ?%[2]s) AS pending,
		(SELECT %[1]s FROM finance_expenses WHERE 1 = 1%[3]s) AS expenses,
		(SELECT COUNT(*) FROM finance_projects WHERE status = ?) AS active_projects`,
		sumAmount, payRange, expRange)

	args := []interface{}{finance.PaymentStatusReceived}
	args = append(args, payArgs...)
	args = append(args, finance.PaymentStatusPending)
	args = append(args, payArgs...)
	args = append(args, expArgs...)
	args = append(args, finance.ProjectStatusActive)

	var totals finance.Totals
	err := r.db.SQLX.GetContext(ctx, &totals, r.db.SQLX.Rebind(query), args...)
	return totals, err
}

func (r *DashboardRepository) ProjectSummaries(ctx context.Context, dr finance.DateRange) ([]finance.ProjectSummary, error) {
	payRange, payArgs := rangeClause("pay.payment_date", dr)
	expRange, expArgs := rangeClause("e.expense_date", dr)

	query := fmt.Sprintf(`SELECT
		p.id AS project_id,
		p.name AS name,
		p.status AS status,
		CAST(COALESCE(p.budget, 0) AS DOUBLE PRECISION) AS budget,
		(SELECT CAST(COALESCE(SUM(pay.amount), 0) AS DOUBLE PRECISION) FROM finance_payments pay
			WHERE pay.project_id = p.id AND pay.status = ?%s) AS received,
		(SELECT CAST(COALESCE(SUM(e.amount), 0) AS DOUBLE PRECISION) FROM finance_expenses e
			WHERE e.project_id = p.id%s) AS expenses
	FROM finance_projects p
	ORDER BY p.id ASC`, payRange, expRange)

	args := []interface{}{finance.PaymentStatusReceived}
	args = append(args, payArgs...)
	args = append(args, expArgs...)

	var rows []finance.ProjectSummary
	err := r.db.SQLX.SelectContext(ctx, &rows, r.db.SQLX.Rebind(query), args...)
	return rows, err
}

func (r *DashboardRepository) MonthlyReceived(ctx context.Context, dr finance.DateRange) ([]finance.MonthAmount, error) {
	month := r.db.MonthExpr("payment_date")
	payRange, payArgs := rangeClause("payment_date", dr)
	query := fmt.Sprintf(`SELECT %[1]s AS month, %[2]s AS amount
	FROM finance_payments
	WHERE status = ?%[3]s
	GROUP BY %[1]s
	ORDER BY month ASC`, month, sumAmount, payRange)

	args := append([]interface{}{finance.PaymentStatusReceived}, payArgs...)
	var rows []finance.MonthAmount
	err := r.db.SQLX.SelectContext(ctx, &rows, r.db.SQLX.Rebind(query), args...)
	return rows, err
}

func (r *DashboardRepository) MonthlyExpenses(ctx context.Context, dr finance.DateRange) ([]finance.MonthAmount, error) {
	month := r.db.MonthExpr("expense_date")
	expRange, expArgs := rangeClause("expense_date", dr)
	query := fmt.Sprintf(`SELECT %[1]s AS month, %[2]s AS amount
	FROM finance_expenses
	WHERE 1 = 1%[3]s
	GROUP BY %[1]s
	ORDER BY month ASC`, month, sumAmount, expRange)

	var rows []finance.MonthAmount
	err := r.db.SQLX.SelectContext(ctx, &rows, r.db.SQLX.Rebind(query), expArgs...)
	return rows, err
}
