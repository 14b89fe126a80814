package finance

import (
	"context"
	"sort"

	"github.com/frahmantamala/agency-ops/internal"
)

// Dashboard summarises received payments against expenses for r. Pending
// payments are reported separately and do not count toward net.
func (s *Service) Dashboard(ctx context.Context, r DateRange) (*Dashboard, error) {
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return nil, internal.NewValidationFieldError("to", "to must not be before from", internal.ErrCodeInvalidDate)
	}

	totals, err := s.dashboard.Totals(ctx, r)
	if err != nil {
		return nil, internal.NewInternalError("failed to load dashboard totals", err)
	}
	projects, err := s.dashboard.ProjectSummaries(ctx, r)
	if err != nil {
		return nil, internal.NewInternalError("failed to load project breakdown", err)
	}
	received, err := s.dashboard.MonthlyReceived(ctx, r)
	if err != nil {
		return nil, internal.NewInternalError("failed to load monthly payments", err)
	}
	spent, err := s.dashboard.MonthlyExpenses(ctx, r)
	if err != nil {
		return nil, internal.NewInternalError("failed to load monthly expenses", err)
	}

	for i := range projects {
		projects[i].Net = projects[i].Received - projects[i].Expenses
	}
	if projects == nil {
		projects = []ProjectSummary{}
	}

	return &Dashboard{
		From:           dateString(r.From),
		To:             dateString(r.To),
		TotalReceived:  totals.Received,
		TotalPending:   totals.Pending,
		TotalExpenses:  totals.Expenses,
		Net:            totals.Received - totals.Expenses,
		ActiveProjects: totals.ActiveProjects,
		Projects:       projects,
		Monthly:        mergeMonthly(received, spent),
	}, nil
}

func mergeMonthly(received, spent []MonthAmount) []MonthlyPoint {
	byMonth := make(map[string]*MonthlyPoint)
	point := func(month string) *MonthlyPoint {
		p, ok := byMonth[month]
		if !ok {
			p = &MonthlyPoint{Month: month}
			byMonth[month] = p
		}
		return p
	}
	for _, m := range received {
		point(m.Month).Received += m.Amount
	}
	for _, m := range spent {
		point(m.Month).Expenses += m.Amount
	}

	out := make([]MonthlyPoint, 0, len(byMonth))
	for _, p := range byMonth {
		p.Net = p.Received - p.Expenses
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
