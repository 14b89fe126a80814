package workreport_test

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
	"github.com/frahmantamala/agency-ops/internal/core/events"
	"github.com/frahmantamala/agency-ops/internal/workreport"
	workreportPostgres "github.com/frahmantamala/agency-ops/internal/workreport/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestWorkReport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Work Report Suite")
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

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

var _ = Describe("WorkReport Service", func() {
	var (
		ctx       context.Context
		db        *database.DB
		publisher *recordingPublisher
		service   *workreport.Service
		alice     *internal.CurrentUser
		bob       *internal.CurrentUser
		lead      *internal.CurrentUser
	)

	createUser := func(username, role string) *internal.CurrentUser {
		u := &userDatamodel.User{Username: username, Name: username, Password: "x", Role: role, IsActive: true}
		Expect(db.Gorm.Create(u).Error).To(Succeed())
		return &internal.CurrentUser{ID: u.ID, Username: u.Username, Role: u.Role}
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = database.NewInMemory()
		Expect(err).NotTo(HaveOccurred())
		publisher = &recordingPublisher{}
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = workreport.NewService(workreportPostgres.NewWorkReportRepository(db.Gorm), publisher, slogger)

		alice = createUser("alice", internal.RoleUser)
		bob = createUser("bob", internal.RoleUser)
		lead = createUser("lead", internal.RoleManager)
	})

	AfterEach(func() {
		_ = db.Close()
	})

	It("assigns the report to the caller", func() {
		report, err := service.Create(ctx, alice, workreport.WorkReportDTO{ReportDate: "2024-06-03", Title: "Ads review", HoursWorked: "6.5"})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.UserID).To(Equal(alice.ID))
		Expect(report.Status).To(Equal(workreport.StatusDraft))
		Expect(report.HoursWorked).To(Equal(6.5))
		Expect(publisher.count()).To(BeZero())
	})

	It("stops a regular user from filing for someone else", func() {
		_, err := service.Create(ctx, alice, workreport.WorkReportDTO{UserID: &bob.ID, ReportDate: "2024-06-03", Title: "x"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusForbidden))
	})

	It("limits non-managers to their own reports", func() {
		_, err := service.Create(ctx, alice, workreport.WorkReportDTO{ReportDate: "2024-06-03", Title: "mine"})
		Expect(err).NotTo(HaveOccurred())
		bobs, err := service.Create(ctx, bob, workreport.WorkReportDTO{ReportDate: "2024-06-04", Title: "bob's"})
		Expect(err).NotTo(HaveOccurred())

		reports, err := service.List(ctx, alice, workreport.ListFilter{UserID: &bob.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(reports).To(HaveLen(1))
		Expect(reports[0].Title).To(Equal("mine"))

		_, err = service.Get(ctx, alice, bobs.ID)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))

		all, err := service.List(ctx, lead, workreport.ListFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))
	})

	It("filters by an inclusive date range", func() {
		for _, day := range []string{"2024-06-01", "2024-06-05", "2024-06-10"} {
			_, err := service.Create(ctx, alice, workreport.WorkReportDTO{ReportDate: day, Title: day})
			Expect(err).NotTo(HaveOccurred())
		}
		from := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

		reports, err := service.List(ctx, alice, workreport.ListFilter{From: &from, To: &to})
		Expect(err).NotTo(HaveOccurred())
		Expect(reports).To(HaveLen(2))
	})

	It("publishes once when a report is submitted", func() {
		report, err := service.Create(ctx, alice, workreport.WorkReportDTO{ReportDate: "2024-06-03", Title: "Weekly"})
		Expect(err).NotTo(HaveOccurred())

		_, err = service.Submit(ctx, alice, report.ID)
		Expect(err).NotTo(HaveOccurred())
		_, err = service.Submit(ctx, alice, report.ID)
		Expect(err).NotTo(HaveOccurred())

		Expect(publisher.count()).To(Equal(1))
		Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeWorkReportSubmitted))
	})

	It("lets only managers mark a report reviewed", func() {
		report, err := service.Create(ctx, alice, workreport.WorkReportDTO{ReportDate: "2024-06-03", Title: "Weekly", Status: workreport.StatusSubmitted})
		Expect(err).NotTo(HaveOccurred())
		Expect(publisher.count()).To(Equal(1))

		dto := workreport.WorkReportDTO{ReportDate: "2024-06-03", Title: "Weekly", Status: workreport.StatusReviewed}
		_, err = service.Update(ctx, alice, report.ID, dto)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusForbidden))

		reviewed, err := service.Update(ctx, lead, report.ID, dto)
		Expect(err).NotTo(HaveOccurred())
		Expect(reviewed.Status).To(Equal(workreport.StatusReviewed))
	})

	It("rejects more than 24 hours", func() {
		_, err := service.Create(ctx, alice, workreport.WorkReportDTO{ReportDate: "2024-06-03", Title: "Marathon", HoursWorked: "25"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
	})
})
