package postgres_test

import (
	"context"
	"testing"

	tagDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/tag"
	"github.com/frahmantamala/agency-ops/internal/tag"
	tagPostgres "github.com/frahmantamala/agency-ops/internal/tag/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestTagPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Tag Postgres Suite")
}

var _ = Describe("Tag Repository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo tag.RepositoryAPI
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&tagDatamodel.Tag{})).To(Succeed())

		repo = tagPostgres.NewTagRepository(db)
	})

	It("creates and finds a tag by name", func() {
		t := &tagDatamodel.Tag{Name: "urgent", Color: "#FF0000", IsActive: true}
		Expect(repo.Create(ctx, t)).To(Succeed())
		Expect(t.ID).NotTo(BeZero())

		found, err := repo.GetByName(ctx, "urgent")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).NotTo(BeNil())
		Expect(found.Color).To(Equal("#FF0000"))
	})

	It("returns nil for a missing tag", func() {
		found, err := repo.GetByID(ctx, 12)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeNil())
	})

	It("orders by name and filters inactive rows", func() {
		for _, name := range []string{"zeta", "alpha", "mid"} {
			Expect(repo.Create(ctx, &tagDatamodel.Tag{Name: name, IsActive: true})).To(Succeed())
		}
		mid, err := repo.GetByName(ctx, "mid")
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Delete(ctx, mid.ID)).To(Succeed())

		active, err := repo.GetAll(ctx, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(active).To(HaveLen(2))
		Expect(active[0].Name).To(Equal("alpha"))

		all, err := repo.GetAll(ctx, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(3))
	})
})
