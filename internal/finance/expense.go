package finance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/csvutil"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	financeDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/finance"
	"github.com/frahmantamala/agency-ops/internal/core/events"
	"github.com/frahmantamala/agency-ops/internal/core/types"
)

// ExpenseImportRow is one parsed CSV row. Preview returns these and confirm
// takes them back unchanged.
// ExpenseImportRow is one previewed CSV row. RawID and RawProjectID keep the
// cells as written so confirm re-parses them instead of trusting ID and
// ProjectID, which are nil when the cell did not parse.
type ExpenseImportRow struct {
	Row          int    `json:"row"`
	ID           *int64 `json:"id,omitempty"`
	RawID        string `json:"rawId,omitempty"`
	RawProjectID string `json:"rawProjectId,omitempty"`
	ExpenseDTO
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

type ExpenseImportPreview struct {
	Total   int                `json:"total"`
	Valid   int                `json:"valid"`
	Invalid int                `json:"invalid"`
	Rows    []ExpenseImportRow `json:"rows"`
}

type ConfirmExpenseImportDTO struct {
	Rows        []ExpenseImportRow `json:"rows"`
	SkipInvalid bool               `json:"skipInvalid"`
}

func (s *Service) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]ExpenseResponse, error) {
	expenses, err := s.repo.ListExpenses(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list expenses", err)
	}
	out := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return out, nil
}

func (s *Service) GetExpense(ctx context.Context, id int64) (*ExpenseResponse, error) {
	e, err := s.loadExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toExpenseResponse(e)
	return &resp, nil
}

func (s *Service) CreateExpense(ctx context.Context, actor *internal.CurrentUser, dto ExpenseDTO) (*ExpenseResponse, error) {
	e := &financeDatamodel.Expense{}
	if err := s.applyExpense(ctx, e, dto); err != nil {
		return nil, err
	}
	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return nil, internal.NewInternalError("failed to create expense", err)
	}
	s.logger.InfoContext(ctx, "expense recorded", "expense_id", e.ID, "amount", e.Amount.String(), "currency", e.Currency)

	if s.publisher != nil {
		var createdBy int64
		if actor != nil {
			createdBy = actor.ID
		}
		event := events.NewExpenseCreatedEvent(e.ID, e.Description, e.Amount.String(), e.Currency, createdBy)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish expense event", "expense_id", e.ID, "error", err)
		}
	}

	resp := toExpenseResponse(e)
	return &resp, nil
}

func (s *Service) UpdateExpense(ctx context.Context, id int64, dto ExpenseDTO) (*ExpenseResponse, error) {
	e, err := s.loadExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyExpense(ctx, e, dto); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateExpense(ctx, e); err != nil {
		return nil, internal.NewInternalError("failed to update expense", err)
	}
	resp := toExpenseResponse(e)
	return &resp, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := s.loadExpense(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete expense", err)
	}
	return nil
}

func (s *Service) loadExpense(ctx context.Context, id int64) (*financeDatamodel.Expense, error) {
	e, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load expense", err)
	}
	if e == nil {
		return nil, internal.NewNotFoundError("expense not found", internal.ErrCodeNotFound)
	}
	return e, nil
}

func (s *Service) applyExpense(ctx context.Context, e *financeDatamodel.Expense, dto ExpenseDTO) error {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return err
	}
	if err := s.checkProject(ctx, dto.ProjectID); err != nil {
		return err
	}
	copyExpense(e, dto)
	return nil
}

// copyExpense expects dto to be normalised and valid.
func copyExpense(e *financeDatamodel.Expense, dto ExpenseDTO) {
	day, _ := validation.ParseDate(dto.ExpenseDate)
	amount, _ := types.ParseDecimal(string(dto.Amount))

	e.ProjectID = dto.ProjectID
	e.Category = dto.Category
	e.Description = dto.Description
	e.Amount = amount
	e.Currency = dto.Currency
	e.ExpenseDate = midnightUTC(day)
	e.Vendor = dto.Vendor
	e.Notes = dto.Notes
}

func (s *Service) ExportExpensesCSV(ctx context.Context) ([]byte, error) {
	expenses, err := s.repo.ListExpenses(ctx, ExpenseFilter{})
	if err != nil {
		return nil, internal.NewInternalError("failed to list expenses", err)
	}
	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		projectID := ""
		if e.ProjectID != nil {
			projectID = strconv.FormatInt(*e.ProjectID, 10)
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			projectID,
			e.Category,
			e.Description,
			e.Amount.String(),
			e.Currency,
			e.ExpenseDate.Format(validation.DateLayout),
			e.Vendor,
			e.Notes,
		})
	}
	data, err := csvutil.Write(ExpenseCSVColumns, rows)
	if err != nil {
		return nil, internal.NewInternalError("failed to render CSV", err)
	}
	return data, nil
}

// PreviewExpenseImport parses and checks every row without writing anything.
func (s *Service) PreviewExpenseImport(ctx context.Context, data []byte) (*ExpenseImportPreview, error) {
	records, err := csvutil.Parse(data, ExpenseRequiredColumns...)
	if err != nil {
		return nil, err
	}

	preview := &ExpenseImportPreview{Rows: make([]ExpenseImportRow, 0, len(records))}
	for _, rec := range records {
		row := ExpenseImportRow{
			Row:          rec.Line,
			RawID:        rec.Get("id"),
			RawProjectID: rec.Get("projectId"),
			ExpenseDTO: ExpenseDTO{
				Category:    rec.Get("category"),
				Description: rec.Get("description"),
				Amount:      types.Decimal(rec.Get("amount")),
				Currency:    rec.Get("currency"),
				ExpenseDate: rec.Get("expenseDate"),
				Vendor:      rec.Get("vendor"),
				Notes:       rec.Get("notes"),
			},
		}
		row.Normalize()
		checkErrs, err := s.checkImportRow(ctx, &row)
		if err != nil {
			return nil, err
		}
		row.Errors = checkErrs
		row.Valid = len(row.Errors) == 0

		preview.Total++
		if row.Valid {
			preview.Valid++
		} else {
			preview.Invalid++
		}
		preview.Rows = append(preview.Rows, row)
	}
	return preview, nil
}

// ConfirmExpenseImport re-checks the previewed rows and commits them in one
// transaction. Without SkipInvalid a single bad row aborts the import.
func (s *Service) ConfirmExpenseImport(ctx context.Context, req ConfirmExpenseImportDTO) (*csvutil.ImportResult, error) {
	if len(req.Rows) == 0 {
		return nil, internal.NewValidationFieldError("rows", "rows must not be empty", internal.ErrCodeValidationFailed)
	}

	result := csvutil.NewImportResult()
	var inserts, updates []*financeDatamodel.Expense
	var rejected []csvutil.RowError

	for _, row := range req.Rows {
		row.Normalize()
		errs, err := s.checkImportRow(ctx, &row)
		if err != nil {
			return nil, err
		}
		if len(errs) > 0 {
			rejected = append(rejected, csvutil.RowError{Row: row.Row, Message: strings.Join(errs, "; ")})
			continue
		}

		var existing *financeDatamodel.Expense
		if row.ID != nil {
			if existing, err = s.repo.GetExpense(ctx, *row.ID); err != nil {
				return nil, internal.NewInternalError("failed to load expense", err)
			}
		}
		if existing != nil {
			copyExpense(existing, row.ExpenseDTO)
			updates = append(updates, existing)
			continue
		}
		e := &financeDatamodel.Expense{}
		if row.ID != nil {
			e.ID = *row.ID
		}
		copyExpense(e, row.ExpenseDTO)
		inserts = append(inserts, e)
	}

	if len(rejected) > 0 && !req.SkipInvalid {
		return nil, internal.NewValidationError(fmt.Sprintf("%d rows are invalid", len(rejected)), internal.ErrCodeInvalidCSV).
			WithDetails(map[string]interface{}{"errors": rejected})
	}
	for _, r := range rejected {
		result.Skip(r.Row, "%s", r.Message)
	}

	if err := s.repo.ApplyExpenseImport(ctx, inserts, updates); err != nil {
		return nil, internal.NewInternalError("failed to import expenses", err)
	}
	result.Imported = len(inserts)
	result.Updated = len(updates)

	s.logger.InfoContext(ctx, "expenses imported", "imported", result.Imported, "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

// checkImportRow resolves the raw id cells and returns the row's problems as
// messages. The error return is reserved for repository failures.
func (s *Service) checkImportRow(ctx context.Context, row *ExpenseImportRow) ([]string, error) {
	var msgs []string
	if row.RawID != "" {
		id, err := csvutil.ParseOptionalID("id", row.RawID)
		if err != nil {
			msgs = append(msgs, err.Error())
		}
		row.ID = id
	}
	if row.RawProjectID != "" {
		projectID, err := csvutil.ParseOptionalID("projectId", row.RawProjectID)
		if err != nil {
			msgs = append(msgs, err.Error())
		}
		row.ProjectID = projectID
	}
	if appErr := row.ExpenseDTO.Validate(); appErr != nil {
		if details, ok := appErr.Details.(internal.ValidationErrors); ok {
			for _, d := range details.Errors {
				msgs = append(msgs, d.Message)
			}
		} else {
			msgs = append(msgs, appErr.Message)
		}
	}
	if row.ProjectID != nil {
		ok, err := s.repo.ProjectExists(ctx, *row.ProjectID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check project", err)
		}
		if !ok {
			msgs = append(msgs, fmt.Sprintf("project %d does not exist", *row.ProjectID))
		}
	}
	return msgs, nil
}
