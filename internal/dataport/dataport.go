package dataport

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	employeeDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/employee"
	financeDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/finance"
	permissionDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/permission"
	tagDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/tag"
	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
)

const FormatVersion = "1.0"

// Entity names as they appear under "data" in export documents.
const (
	EntityUsers           = "users"
	EntityPages           = "pages"
	EntityClients         = "clients"
	EntityAdAccounts      = "adAccounts"
	EntityCampaigns       = "campaigns"
	EntityAdCopySets      = "adCopySets"
	EntityWorkReports     = "workReports"
	EntityFinanceProjects = "financeProjects"
	EntityFinancePayments = "financePayments"
	EntityFinanceExpenses = "financeExpenses"
	EntityTags            = "tags"
	EntityEmployees       = "employees"
)

type ExportData struct {
	Users           []*userDatamodel.User           `json:"users"`
	Pages           []*permissionDatamodel.Page     `json:"pages"`
	Clients         []*agencyDatamodel.Client       `json:"clients"`
	AdAccounts      []*agencyDatamodel.AdAccount    `json:"adAccounts"`
	Campaigns       []*agencyDatamodel.Campaign     `json:"campaigns"`
	AdCopySets      []*agencyDatamodel.AdCopySet    `json:"adCopySets"`
	WorkReports     []*agencyDatamodel.WorkReport   `json:"workReports"`
	FinanceProjects []*financeDatamodel.Project     `json:"financeProjects"`
	FinancePayments []*financeDatamodel.Payment     `json:"financePayments"`
	FinanceExpenses []*financeDatamodel.Expense     `json:"financeExpenses"`
	Tags            []*tagDatamodel.Tag             `json:"tags"`
	Employees       []*employeeDatamodel.Employee   `json:"employees"`
}

type ExportDocument struct {
	Version    string     `json:"version"`
	ExportedAt time.Time  `json:"exportedAt"`
	Data       ExportData `json:"data"`
}

// ImportData maps entity names to their raw records.
type ImportData map[string][]json.RawMessage

// Outcome is what happened to one upserted record.
type Outcome int

const (
	OutcomeImported Outcome = iota + 1
	OutcomeUpdated
)

type EntityResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

type Result struct {
	Imported int                      `json:"imported"`
	Updated  int                      `json:"updated"`
	Skipped  int                      `json:"skipped"`
	Errors   []string                 `json:"errors"`
	Entities map[string]*EntityResult `json:"entities"`
}

func newResult() *Result {
	return &Result{Errors: []string{}, Entities: map[string]*EntityResult{}}
}

var dateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// isDateKey matches the time-valued JSON keys of the data model
// (startDate, expenseDate, paidAt, createdAt, ...).
func isDateKey(k string) bool {
	return strings.HasSuffix(k, "Date") || strings.HasSuffix(k, "At")
}

// NormalizeDates rewrites YYYY-MM-DD values of top-level date keys to RFC 3339
// midnight UTC so they decode into time.Time fields. Free-text fields are
// left alone even when they look like a date.
func NormalizeDates(record json.RawMessage) (json.RawMessage, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(record, &fields); err != nil {
		return nil, err
	}
	changed := false
	for k, v := range fields {
		if !isDateKey(k) {
			continue
		}
		s, ok := v.(string)
		if !ok || !dateOnly.MatchString(s) {
			continue
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			continue
		}
		fields[k] = t.UTC().Format(time.RFC3339)
		changed = true
	}
	if !changed {
		return record, nil
	}
	return json.Marshal(fields)
}
