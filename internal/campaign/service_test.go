package campaign_test

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
	"github.com/frahmantamala/agency-ops/internal/campaign"
	campaignPostgres "github.com/frahmantamala/agency-ops/internal/campaign/postgres"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
	"github.com/frahmantamala/agency-ops/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCampaign(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Campaign Suite")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = Describe("Campaign Service", func() {
	var (
		ctx     context.Context
		db      *database.DB
		service *campaign.Service
		owner   *userDatamodel.User
		acme    *agencyDatamodel.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = database.NewInMemory()
		Expect(err).NotTo(HaveOccurred())
		service = campaign.NewService(campaignPostgres.NewCampaignRepository(db.Gorm), quietLogger())

		owner = &userDatamodel.User{Username: "mira", Password: "x", Name: "Mira", Role: internal.RoleUser, IsActive: true}
		Expect(db.Gorm.Create(owner).Error).To(Succeed())
		acme = &agencyDatamodel.Client{ClientName: "Acme", Status: "active"}
		Expect(db.Gorm.Create(acme).Error).To(Succeed())
	})

	AfterEach(func() {
		_ = db.Close()
	})

	actor := func() *internal.CurrentUser {
		return &internal.CurrentUser{ID: owner.ID, Username: owner.Username, Role: owner.Role}
	}

	It("defaults status, budget and owner", func() {
		c, err := service.Create(ctx, actor(), campaign.CampaignDTO{Name: "Launch", ClientID: &acme.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Status).To(Equal(campaign.StatusDraft))
		Expect(c.Budget).To(Equal(0.0))
		Expect(c.UserID).NotTo(BeNil())
		Expect(*c.UserID).To(Equal(owner.ID))
	})

	It("rejects a client that does not exist", func() {
		missing := int64(999)
		_, err := service.Create(ctx, actor(), campaign.CampaignDTO{Name: "Ghost", ClientID: &missing})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidReference))
	})

	It("rejects an end date before the start date", func() {
		_, err := service.Create(ctx, actor(), campaign.CampaignDTO{Name: "Backwards", StartDate: "2024-05-10", EndDate: "2024-05-01"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("returns 404 for an unknown campaign", func() {
		_, err := service.Get(ctx, 42)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
	})

	Describe("daily spend", func() {
		var c *campaign.CampaignResponse

		BeforeEach(func() {
			var err error
			c, err = service.Create(ctx, actor(), campaign.CampaignDTO{Name: "Always on", Budget: "1000"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps one entry per day and totals them", func() {
			_, err := service.RecordDailySpend(ctx, c.ID, campaign.DailySpendDTO{SpendDate: "2024-03-01", Amount: "100.50"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.RecordDailySpend(ctx, c.ID, campaign.DailySpendDTO{SpendDate: "2024-03-02", Amount: "40"})
			Expect(err).NotTo(HaveOccurred())
			replaced, err := service.RecordDailySpend(ctx, c.ID, campaign.DailySpendDTO{SpendDate: "2024-03-01", Amount: "120", Notes: "corrected"})
			Expect(err).NotTo(HaveOccurred())
			Expect(replaced.Amount).To(Equal(120.0))

			list, err := service.ListDailySpend(ctx, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Entries).To(HaveLen(2))
			Expect(list.Entries[0].SpendDate).To(Equal("2024-03-01"))
			Expect(list.Entries[0].Notes).To(Equal("corrected"))
			Expect(list.Total).To(BeNumerically("~", 160.0, 0.001))
		})

		It("rejects a negative amount", func() {
			_, err := service.RecordDailySpend(ctx, c.ID, campaign.DailySpendDTO{SpendDate: "2024-03-01", Amount: "-5"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("only deletes entries that belong to the campaign", func() {
			spend, err := service.RecordDailySpend(ctx, c.ID, campaign.DailySpendDTO{SpendDate: "2024-03-01", Amount: "10"})
			Expect(err).NotTo(HaveOccurred())
			other, err := service.Create(ctx, actor(), campaign.CampaignDTO{Name: "Other"})
			Expect(err).NotTo(HaveOccurred())

			err = service.DeleteDailySpend(ctx, other.ID, spend.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))

			Expect(service.DeleteDailySpend(ctx, c.ID, spend.ID)).To(Succeed())
		})

		It("removes spend rows with the campaign", func() {
			_, err := service.RecordDailySpend(ctx, c.ID, campaign.DailySpendDTO{SpendDate: "2024-03-01", Amount: "10"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Delete(ctx, c.ID)).To(Succeed())

			var n int64
			Expect(db.Gorm.Model(&agencyDatamodel.CampaignDailySpend{}).Count(&n).Error).To(Succeed())
			Expect(n).To(BeZero())
		})
	})

	Describe("CSV", func() {
		It("round-trips campaigns and skips dangling references", func() {
			_, err := service.Create(ctx, actor(), campaign.CampaignDTO{Name: "Spring", ClientID: &acme.ID, Budget: "250.75", StartDate: "2024-03-01"})
			Expect(err).NotTo(HaveOccurred())

			data, err := service.ExportCSV(ctx)
			Expect(err).NotTo(HaveOccurred())

			result, err := service.ImportCSV(ctx, data)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Updated).To(Equal(1))

			result, err = service.ImportCSV(ctx, []byte("name,clientId\nOrphan,777\nFresh,\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Imported).To(Equal(1))
			Expect(result.Skipped).To(Equal(1))
			Expect(result.Errors[0].Row).To(Equal(2))
		})
	})

	Describe("Handler", func() {
		It("records spend through the router", func() {
			c, err := service.Create(ctx, actor(), campaign.CampaignDTO{Name: "Routed"})
			Expect(err).NotTo(HaveOccurred())

			handler := campaign.NewHandler(&transport.BaseHandler{Logger: quietLogger()}, service)
			r := chi.NewRouter()
			r.Post("/campaigns/{id}/spend", handler.RecordDailySpend)

			body, _ := json.Marshal(map[string]string{"spendDate": "2024-04-01", "amount": "12.5"})
			req := httptest.NewRequest(http.MethodPost, "/campaigns/"+strconv.FormatInt(c.ID, 10)+"/spend", bytes.NewReader(body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp campaign.DailySpendResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Amount).To(Equal(12.5))
		})
	})
})

