package finance_test

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	"github.com/frahmantamala/agency-ops/internal/core/events"
	"github.com/frahmantamala/agency-ops/internal/finance"
	financePostgres "github.com/frahmantamala/agency-ops/internal/finance/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFinance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Finance Suite")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func expectAppError(err error, status int) *internal.AppError {
	appErr, ok := internal.IsAppError(err)
	ExpectWithOffset(1, ok).To(BeTrue(), "expected an AppError, got %v", err)
	ExpectWithOffset(1, appErr.StatusCode).To(Equal(status))
	return appErr
}

var _ = Describe("Finance Service", func() {
	var (
		ctx       context.Context
		db        *database.DB
		publisher *recordingPublisher
		service   *finance.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = database.NewInMemory()
		Expect(err).NotTo(HaveOccurred())
		publisher = &recordingPublisher{}
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = finance.NewService(
			financePostgres.NewFinanceRepository(db.Gorm),
			financePostgres.NewDashboardRepository(db),
			publisher,
			slogger,
		)
	})

	AfterEach(func() {
		_ = db.Close()
	})

	newProject := func(name string) *finance.ProjectResponse {
		p, err := service.CreateProject(ctx, finance.ProjectDTO{Name: name, Budget: "5000"})
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	Describe("projects", func() {
		It("defaults status and currency", func() {
			p := newProject("Website")
			Expect(p.Status).To(Equal(finance.ProjectStatusActive))
			Expect(p.Currency).To(Equal(finance.DefaultCurrency))
			Expect(p.Budget).To(Equal(5000.0))
		})

		It("detaches payments when a project is deleted", func() {
			p := newProject("Website")
			pay, err := service.CreatePayment(ctx, finance.PaymentDTO{ProjectID: &p.ID, Amount: "100", PaymentDate: "2024-01-10"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteProject(ctx, p.ID)).To(Succeed())

			reloaded, err := service.GetPayment(ctx, pay.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.ProjectID).To(BeNil())
		})

		It("returns PROJECT_NOT_FOUND for a missing project", func() {
			_, err := service.GetProject(ctx, 404)
			appErr := expectAppError(err, http.StatusNotFound)
			Expect(appErr.Code).To(Equal(internal.ErrCodeProjectNotFound))
		})
	})

	Describe("payments and expenses", func() {
		It("rejects an unknown projectId with 400", func() {
			missing := int64(77)
			_, err := service.CreatePayment(ctx, finance.PaymentDTO{ProjectID: &missing, Amount: "10", PaymentDate: "2024-01-01"})
			expectAppError(err, http.StatusBadRequest)

			_, err = service.CreateExpense(ctx, nil, finance.ExpenseDTO{ProjectID: &missing, Description: "Hosting", Amount: "10", ExpenseDate: "2024-01-01"})
			expectAppError(err, http.StatusBadRequest)
		})

		It("publishes expense.created", func() {
			actor := &internal.CurrentUser{ID: 3, Role: internal.RoleAdmin}
			e, err := service.CreateExpense(ctx, actor, finance.ExpenseDTO{Description: "Hosting", Amount: "12.50", ExpenseDate: "2024-02-01", Currency: "usd"})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Currency).To(Equal("USD"))

			Expect(publisher.events).To(HaveLen(1))
			created, ok := publisher.events[0].(*events.ExpenseCreatedEvent)
			Expect(ok).To(BeTrue())
			Expect(created.ExpenseID).To(Equal(e.ID))
			Expect(created.CreatedBy).To(Equal(int64(3)))
		})

		It("filters expenses by category and date", func() {
			for _, dto := range []finance.ExpenseDTO{
				{Description: "Ads", Category: "marketing", Amount: "10", ExpenseDate: "2024-01-05"},
				{Description: "Ads", Category: "marketing", Amount: "20", ExpenseDate: "2024-02-05"},
				{Description: "Laptop", Category: "equipment", Amount: "900", ExpenseDate: "2024-02-06"},
			} {
				_, err := service.CreateExpense(ctx, nil, dto)
				Expect(err).NotTo(HaveOccurred())
			}
			from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

			expenses, err := service.ListExpenses(ctx, finance.ExpenseFilter{Category: "marketing", From: &from})
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(1))
			Expect(expenses[0].Amount).To(Equal(20.0))
		})
	})

	Describe("expense import", func() {
		const csvBody = "description,amount,expenseDate,projectId,category\n" +
			"Hosting,25.00,2024-03-01,,infra\n" +
			",10,2024-03-02,,\n" +
			"Domain,12,2024-03-03,99,\n" +
			"Coffee,4.5,2024-03-04,,office\n"

		It("previews without writing", func() {
			preview, err := service.PreviewExpenseImport(ctx, []byte(csvBody))
			Expect(err).NotTo(HaveOccurred())
			Expect(preview.Total).To(Equal(4))
			Expect(preview.Valid).To(Equal(2))
			Expect(preview.Invalid).To(Equal(2))
			Expect(preview.Rows[1].Row).To(Equal(3))
			Expect(preview.Rows[1].Valid).To(BeFalse())
			Expect(preview.Rows[2].Errors).To(ContainElement(ContainSubstring("project 99")))

			expenses, err := service.ListExpenses(ctx, finance.ExpenseFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(BeEmpty())
		})

		It("aborts the confirm on invalid rows unless skipInvalid is set", func() {
			preview, err := service.PreviewExpenseImport(ctx, []byte(csvBody))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ConfirmExpenseImport(ctx, finance.ConfirmExpenseImportDTO{Rows: preview.Rows})
			expectAppError(err, http.StatusBadRequest)
			expenses, _ := service.ListExpenses(ctx, finance.ExpenseFilter{})
			Expect(expenses).To(BeEmpty())

			result, err := service.ConfirmExpenseImport(ctx, finance.ConfirmExpenseImportDTO{Rows: preview.Rows, SkipInvalid: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Imported).To(Equal(2))
			Expect(result.Skipped).To(Equal(2))
			Expect(result.Errors[0].Row).To(Equal(3))
		})

		It("keeps unparseable reference cells invalid through confirm", func() {
			body := "projectId,description,amount,expenseDate\n" +
				"abc,Fuel,10,2024-01-01\n" +
				",Parking,3,2024-01-02\n"
			preview, err := service.PreviewExpenseImport(ctx, []byte(body))
			Expect(err).NotTo(HaveOccurred())
			Expect(preview.Invalid).To(Equal(1))
			Expect(preview.Rows[0].Errors).To(ConsistOf("projectId must be a positive integer"))

			_, err = service.ConfirmExpenseImport(ctx, finance.ConfirmExpenseImportDTO{Rows: preview.Rows})
			expectAppError(err, http.StatusBadRequest)
			expenses, err := service.ListExpenses(ctx, finance.ExpenseFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(BeEmpty())

			result, err := service.ConfirmExpenseImport(ctx, finance.ConfirmExpenseImportDTO{Rows: preview.Rows, SkipInvalid: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Imported).To(Equal(1))
			Expect(result.Skipped).To(Equal(1))
			Expect(result.Errors[0].Row).To(Equal(2))

			expenses, err = service.ListExpenses(ctx, finance.ExpenseFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(1))
			Expect(expenses[0].Description).To(Equal("Parking"))
		})

		It("updates rows that carry an existing id", func() {
			e, err := service.CreateExpense(ctx, nil, finance.ExpenseDTO{Description: "Old", Amount: "1", ExpenseDate: "2024-01-01"})
			Expect(err).NotTo(HaveOccurred())

			data, err := service.ExportExpensesCSV(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(HavePrefix(strings.Join(finance.ExpenseCSVColumns, ",")))

			edited := strings.Replace(string(data), "Old", "Renamed", 1)
			preview, err := service.PreviewExpenseImport(ctx, []byte(edited))
			Expect(err).NotTo(HaveOccurred())
			result, err := service.ConfirmExpenseImport(ctx, finance.ConfirmExpenseImportDTO{Rows: preview.Rows})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Updated).To(Equal(1))

			reloaded, err := service.GetExpense(ctx, e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.Description).To(Equal("Renamed"))
		})

		It("requires the description, amount and expenseDate headers", func() {
			_, err := service.PreviewExpenseImport(ctx, []byte("description\nx\n"))
			appErr := expectAppError(err, http.StatusBadRequest)
			Expect(appErr.Code).To(Equal(internal.ErrCodeMissingHeaders))
		})
	})

	Describe("settings", func() {
		It("seeds defaults once and upserts by key", func() {
			n, err := service.SeedSettings(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(len(finance.DefaultSettings)))
			n, err = service.SeedSettings(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())

			s, err := service.PutSetting(ctx, finance.SettingDefaultCurrency, finance.SettingDTO{Value: "USD"})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Value).To(Equal("USD"))

			_, err = service.PutSetting(ctx, "invoice_footer", finance.SettingDTO{Value: "Thanks"})
			Expect(err).NotTo(HaveOccurred())

			settings, err := service.ListSettings(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(settings).To(HaveLen(len(finance.DefaultSettings) + 1))
		})
	})

	Describe("dashboard", func() {
		BeforeEach(func() {
			site := newProject("Website")
			newProject("Retainer")

			for _, dto := range []finance.PaymentDTO{
				{ProjectID: &site.ID, Amount: "1000", PaymentDate: "2024-01-15", Status: finance.PaymentStatusReceived},
				{ProjectID: &site.ID, Amount: "500", PaymentDate: "2024-02-15", Status: finance.PaymentStatusReceived},
				{ProjectID: &site.ID, Amount: "300", PaymentDate: "2024-02-20"},
			} {
				_, err := service.CreatePayment(ctx, dto)
				Expect(err).NotTo(HaveOccurred())
			}
			for _, dto := range []finance.ExpenseDTO{
				{ProjectID: &site.ID, Description: "Hosting", Amount: "200", ExpenseDate: "2024-01-20"},
				{Description: "Office", Amount: "50", ExpenseDate: "2024-03-01"},
			} {
				_, err := service.CreateExpense(ctx, nil, dto)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("totals received payments against expenses", func() {
			d, err := service.Dashboard(ctx, finance.DateRange{})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.TotalReceived).To(BeNumerically("~", 1500, 0.001))
			Expect(d.TotalPending).To(BeNumerically("~", 300, 0.001))
			Expect(d.TotalExpenses).To(BeNumerically("~", 250, 0.001))
			Expect(d.Net).To(BeNumerically("~", 1250, 0.001))
			Expect(d.ActiveProjects).To(Equal(int64(2)))

			Expect(d.Projects).To(HaveLen(2))
			Expect(d.Projects[0].Received).To(BeNumerically("~", 1500, 0.001))
			Expect(d.Projects[0].Net).To(BeNumerically("~", 1300, 0.001))

			Expect(d.Monthly).To(HaveLen(3))
			Expect(d.Monthly[0].Month).To(Equal("2024-01"))
			Expect(d.Monthly[0].Net).To(BeNumerically("~", 800, 0.001))
			Expect(d.Monthly[2].Month).To(Equal("2024-03"))
			Expect(d.Monthly[2].Expenses).To(BeNumerically("~", 50, 0.001))
		})

		It("respects the date range", func() {
			from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
			to := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
			d, err := service.Dashboard(ctx, finance.DateRange{From: &from, To: &to})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.TotalReceived).To(BeNumerically("~", 500, 0.001))
			Expect(d.TotalExpenses).To(BeZero())
			Expect(d.Monthly).To(HaveLen(1))
		})

		It("rejects an inverted range", func() {
			from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
			to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			_, err := service.Dashboard(ctx, finance.DateRange{From: &from, To: &to})
			expectAppError(err, http.StatusBadRequest)
		})
	})
})
