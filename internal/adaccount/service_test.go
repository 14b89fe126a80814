package adaccount_test

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/adaccount"
	adAccountPostgres "github.com/frahmantamala/agency-ops/internal/adaccount/postgres"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAdAccount(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ad Account Suite")
}

var _ = Describe("Ad Account Service", func() {
	var (
		ctx      context.Context
		db       *database.DB
		service  *adaccount.Service
		clientID int64
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = database.NewInMemory()
		Expect(err).NotTo(HaveOccurred())
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = adaccount.NewService(adAccountPostgres.NewAdAccountRepository(db.Gorm), slogger)

		c := &agencyDatamodel.Client{ClientName: "Acme", Status: "active"}
		Expect(db.Gorm.Create(c).Error).To(Succeed())
		clientID = c.ID
	})

	AfterEach(func() {
		_ = db.Close()
	})

	It("creates an account linked to an existing client", func() {
		a, err := service.Create(ctx, adaccount.AdAccountDTO{ClientID: &clientID, Platform: "meta", AccountName: "Acme Main"})
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Status).To(Equal(adaccount.StatusActive))

		list, err := service.List(ctx, adaccount.ListFilter{ClientID: &clientID})
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
	})

	It("rejects an unknown client with 400", func() {
		missing := int64(999)
		_, err := service.Create(ctx, adaccount.AdAccountDTO{ClientID: &missing, Platform: "google", AccountName: "Ghost"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("detaches campaigns when an account is deleted", func() {
		a, err := service.Create(ctx, adaccount.AdAccountDTO{Platform: "tiktok", AccountName: "TT"})
		Expect(err).NotTo(HaveOccurred())
		camp := &agencyDatamodel.Campaign{Name: "Launch", Status: "draft", AdAccountID: &a.ID}
		Expect(db.Gorm.Create(camp).Error).To(Succeed())

		Expect(service.Delete(ctx, a.ID)).To(Succeed())

		var reloaded agencyDatamodel.Campaign
		Expect(db.Gorm.First(&reloaded, camp.ID).Error).To(Succeed())
		Expect(reloaded.AdAccountID).To(BeNil())
	})
})
