package employee_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	"github.com/frahmantamala/agency-ops/internal/core/types"
	"github.com/frahmantamala/agency-ops/internal/employee"
	employeePostgres "github.com/frahmantamala/agency-ops/internal/employee/postgres"
	"github.com/frahmantamala/agency-ops/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEmployee(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Suite")
}

var _ = Describe("Employee Service", func() {
	var (
		ctx     context.Context
		db      *database.DB
		service *employee.Service
		slogger *slog.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = database.NewInMemory()
		Expect(err).NotTo(HaveOccurred())
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = employee.NewService(
			employeePostgres.NewEmployeeRepository(db.Gorm),
			employeePostgres.NewStatsRepository(db),
			slogger,
		)
	})

	AfterEach(func() {
		_ = db.Close()
	})

	hire := func(name, base string) *employee.EmployeeResponse {
		e, err := service.CreateEmployee(ctx, employee.EmployeeDTO{Name: name, BaseSalary: types.Decimal(base)})
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	Describe("employees", func() {
		It("creates active employees by default", func() {
			e := hire("Dewi", "5000")
			Expect(e.IsActive).To(BeTrue())
			Expect(e.BaseSalary).To(Equal(5000.0))
		})

		It("rejects a bad email and hire date", func() {
			_, err := service.CreateEmployee(ctx, employee.EmployeeDTO{Name: "X", Email: "nope", HireDate: "01/02/2024"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors).To(HaveLen(2))
		})

		It("filters inactive employees", func() {
			hire("Active", "100")
			inactive := false
			_, err := service.CreateEmployee(ctx, employee.EmployeeDTO{Name: "Gone", IsActive: &inactive})
			Expect(err).NotTo(HaveOccurred())

			all, err := service.ListEmployees(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			active, err := service.ListEmployees(ctx, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(1))
			Expect(active[0].Name).To(Equal("Active"))
		})

		It("removes salaries with the employee", func() {
			e := hire("Budi", "1000")
			s, err := service.CreateSalary(ctx, employee.SalaryDTO{EmployeeID: e.ID, Period: "2024-05"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteEmployee(ctx, e.ID)).To(Succeed())
			_, err = service.GetSalary(ctx, s.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("salaries", func() {
		var emp *employee.EmployeeResponse

		BeforeEach(func() {
			emp = hire("Sari", "4000")
		})

		It("computes net from base, bonus and deductions", func() {
			s, err := service.CreateSalary(ctx, employee.SalaryDTO{
				EmployeeID: emp.ID, Period: "2024-06", BaseAmount: "4500", Bonus: "500", Deductions: "250.5",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.NetAmount).To(Equal(4749.5))
			Expect(s.Status).To(Equal(employee.SalaryStatusPending))
			Expect(s.PaidAt).To(BeNil())
		})

		It("falls back to the employee base salary", func() {
			s, err := service.CreateSalary(ctx, employee.SalaryDTO{EmployeeID: emp.ID, Period: "2024-06"})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.BaseAmount).To(Equal(4000.0))
			Expect(s.NetAmount).To(Equal(4000.0))
		})

		It("rejects a malformed period", func() {
			_, err := service.CreateSalary(ctx, employee.SalaryDTO{EmployeeID: emp.ID, Period: "2024-13"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects an unknown employee", func() {
			_, err := service.CreateSalary(ctx, employee.SalaryDTO{EmployeeID: 999, Period: "2024-06"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("allows one salary per employee and period", func() {
			_, err := service.CreateSalary(ctx, employee.SalaryDTO{EmployeeID: emp.ID, Period: "2024-06"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateSalary(ctx, employee.SalaryDTO{EmployeeID: emp.ID, Period: "2024-06"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusConflict))
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicate))
		})

		It("keeps the first paidAt when paid twice", func() {
			s, err := service.CreateSalary(ctx, employee.SalaryDTO{EmployeeID: emp.ID, Period: "2024-07"})
			Expect(err).NotTo(HaveOccurred())

			paid, err := service.PaySalary(ctx, s.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(paid.Status).To(Equal(employee.SalaryStatusPaid))
			Expect(paid.PaidAt).NotTo(BeNil())

			again, err := service.PaySalary(ctx, s.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.PaidAt.Equal(*paid.PaidAt)).To(BeTrue())
		})

		It("summarises payroll per period", func() {
			other := hire("Tono", "2000")
			a, err := service.CreateSalary(ctx, employee.SalaryDTO{EmployeeID: emp.ID, Period: "2024-08"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateSalary(ctx, employee.SalaryDTO{EmployeeID: other.ID, Period: "2024-08", Bonus: "100"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateSalary(ctx, employee.SalaryDTO{EmployeeID: other.ID, Period: "2024-09"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.PaySalary(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())

			stats, err := service.Stats(ctx, "2024-08")
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.EmployeeCount).To(Equal(int64(2)))
			Expect(stats.TotalNet).To(Equal(6100.0))
			Expect(stats.PaidTotal).To(Equal(4000.0))
			Expect(stats.PendingTotal).To(Equal(2100.0))
			Expect(stats.CountByStatus).To(HaveKeyWithValue(employee.SalaryStatusPaid, int64(1)))
			Expect(stats.CountByStatus).To(HaveKeyWithValue(employee.SalaryStatusPending, int64(1)))

			all, err := service.Stats(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(all.TotalNet).To(Equal(8100.0))
		})

		It("serves payment through the router", func() {
			s, err := service.CreateSalary(ctx, employee.SalaryDTO{EmployeeID: emp.ID, Period: "2024-10"})
			Expect(err).NotTo(HaveOccurred())

			h := employee.NewHandler(transport.NewBaseHandler(slogger), service)
			r := chi.NewRouter()
			r.Put("/salaries/{id}/pay", h.PaySalary)
			r.Post("/salaries", h.CreateSalary)

			req := httptest.NewRequest(http.MethodPut, "/salaries/"+strconv.FormatInt(s.ID, 10)+"/pay", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp employee.SalaryResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Status).To(Equal(employee.SalaryStatusPaid))

			body, _ := json.Marshal(map[string]interface{}{"employeeId": emp.ID, "period": "2024-10"})
			req = httptest.NewRequest(http.MethodPost, "/salaries", bytes.NewReader(body))
			w = httptest.NewRecorder()
			r.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})
})
