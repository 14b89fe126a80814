package backup_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/backup"
	backupPostgres "github.com/frahmantamala/agency-ops/internal/backup/postgres"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
	"github.com/frahmantamala/agency-ops/internal/storage"
	"github.com/frahmantamala/agency-ops/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBackup(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Backup Suite")
}

var _ = Describe("Backup Service", func() {
	var (
		ctx     context.Context
		db      *database.DB
		dir     string
		service *backup.Service
		slogger *slog.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = database.NewInMemory()
		Expect(err).NotTo(HaveOccurred())
		dir = GinkgoT().TempDir()
		store, err := storage.NewLocalStorage(dir)
		Expect(err).NotTo(HaveOccurred())
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = backup.NewService(backupPostgres.NewBackupRepository(db), store, slogger)

		Expect(db.Gorm.Create(&agencyDatamodel.Client{ClientName: "Acme, Inc", Status: "active"}).Error).To(Succeed())
		Expect(db.Gorm.Create(&agencyDatamodel.Client{ClientName: "Globex", Status: "inactive"}).Error).To(Succeed())
		Expect(db.Gorm.Create(&userDatamodel.User{Username: "root", Name: "Root", Password: "x", Role: internal.RoleSuperAdmin, IsActive: true}).Error).To(Succeed())
	})

	AfterEach(func() {
		_ = db.Close()
	})

	It("never lists the sessions table", func() {
		Expect(backup.BusinessTables()).NotTo(ContainElement("sessions"))
		Expect(backup.BusinessTables()).To(ContainElements("users", "clients", "finance_expenses", "salaries"))
	})

	It("counts rows per table", func() {
		tables, err := service.Tables(ctx)
		Expect(err).NotTo(HaveOccurred())
		counts := map[string]int64{}
		for _, t := range tables {
			counts[t.Name] = t.Rows
		}
		Expect(counts["clients"]).To(Equal(int64(2)))
		Expect(counts["users"]).To(Equal(int64(1)))
		Expect(counts["campaigns"]).To(Equal(int64(0)))
	})

	It("dumps every business table", func() {
		full, err := service.Full(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(full.Tables).To(HaveLen(len(backup.BusinessTables())))
		Expect(full.Tables["clients"]).To(HaveLen(2))
		Expect(full.Tables["clients"][0]["client_name"]).To(Equal("Acme, Inc"))
	})

	It("returns 404 for unknown tables", func() {
		_, err := service.Table(ctx, "sessions")
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
		Expect(appErr.Code).To(Equal(internal.ErrCodeTableNotFound))
	})

	It("renders a table as csv", func() {
		data, err := service.TableCSV(ctx, "clients")
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		Expect(lines).To(HaveLen(3))
		Expect(lines[0]).To(HavePrefix("id,client_name"))
		Expect(lines[1]).To(ContainSubstring(`"Acme, Inc"`))
	})

	It("stores a snapshot through storage", func() {
		result, err := service.Snapshot(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Key).To(HavePrefix("snapshots/"))
		Expect(result.Key).To(HaveSuffix(".json"))

		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(result.Key)))
		Expect(err).NotTo(HaveOccurred())
		var full backup.FullBackup
		Expect(json.Unmarshal(data, &full)).To(Succeed())
		Expect(full.Tables["clients"]).To(HaveLen(2))
	})

	Describe("handler", func() {
		var router chi.Router

		BeforeEach(func() {
			h := backup.NewHandler(transport.NewBaseHandler(slogger), service)
			router = chi.NewRouter()
			router.Get("/backup/tables/{table}", h.TableBackup)
		})

		It("serves csv on request", func() {
			req := httptest.NewRequest(http.MethodGet, "/backup/tables/clients?format=csv", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/csv"))
		})

		It("rejects unknown formats", func() {
			req := httptest.NewRequest(http.MethodGet, "/backup/tables/clients?format=xml", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for unknown tables", func() {
			req := httptest.NewRequest(http.MethodGet, "/backup/tables/nope", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
