package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/client"
	clientPostgres "github.com/frahmantamala/agency-ops/internal/client/postgres"
	"github.com/frahmantamala/agency-ops/internal/core/common/csvutil"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	"github.com/frahmantamala/agency-ops/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Client Suite")
}

func newService() (*database.DB, *client.Service) {
	db, err := database.NewInMemory()
	Expect(err).NotTo(HaveOccurred())
	slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return db, client.NewService(clientPostgres.NewClientRepository(db.Gorm), slogger)
}

var _ = Describe("Client Service", func() {
	var (
		ctx     context.Context
		db      *database.DB
		service *client.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, service = newService()
	})

	AfterEach(func() {
		_ = db.Close()
	})

	It("defaults the status to active", func() {
		c, err := service.Create(ctx, client.ClientDTO{ClientName: "Acme"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Status).To(Equal(client.StatusActive))
	})

	It("rejects an invalid email", func() {
		_, err := service.Create(ctx, client.ClientDTO{ClientName: "Acme", Email: "not-an-email"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
	})

	Describe("CSV", func() {
		BeforeEach(func() {
			for _, dto := range []client.ClientDTO{
				{ClientName: "Acme, Inc.", Email: "ops@acme.test", Notes: `said "hi"`},
				{ClientName: "Globex", Email: "hello@globex.test", Status: client.StatusInactive},
				{ClientName: "Initech", Email: "pm@initech.test", Address: "1 Loop\nSuite 2"},
			} {
				_, err := service.Create(ctx, dto)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("round-trips into an empty database with matching ids", func() {
			data, err := service.ExportCSV(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(HavePrefix(strings.Join(client.CSVColumns, ",") + "\n"))

			freshDB, fresh := newService()
			defer freshDB.Close()

			result, err := fresh.ImportCSV(ctx, data)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Imported).To(Equal(3))
			Expect(result.Skipped).To(Equal(0))

			original, err := service.List(ctx, client.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			copied, err := fresh.List(ctx, client.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(copied).To(HaveLen(len(original)))
			for i := range original {
				Expect(copied[i].ID).To(Equal(original[i].ID))
				Expect(copied[i].ClientName).To(Equal(original[i].ClientName))
				Expect(copied[i].Email).To(Equal(original[i].Email))
			}
		})

		It("updates existing rows when re-imported", func() {
			data, err := service.ExportCSV(ctx)
			Expect(err).NotTo(HaveOccurred())

			result, err := service.ImportCSV(ctx, data)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Updated).To(Equal(3))
			Expect(result.Imported).To(Equal(0))
		})

		It("skips invalid rows and reports their line numbers", func() {
			data := []byte("clientName,email\n,missing@name.test\nOk Co,ok@co.test\nBad Co,nope\n")

			result, err := service.ImportCSV(ctx, data)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Imported).To(Equal(1))
			Expect(result.Skipped).To(Equal(2))
			Expect(result.Errors).To(HaveLen(2))
			Expect(result.Errors[0].Row).To(Equal(2))
			Expect(result.Errors[1].Row).To(Equal(4))
		})

		It("fails with 400 when clientName is missing from the header", func() {
			_, err := service.ImportCSV(ctx, []byte("email\na@b.test\n"))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(appErr.Code).To(Equal(internal.ErrCodeMissingHeaders))
		})
	})

	Describe("Handler", func() {
		var handler *client.Handler

		BeforeEach(func() {
			slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			handler = client.NewHandler(&transport.BaseHandler{Logger: slogger}, service)
		})

		It("accepts a multipart upload", func() {
			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			part, err := mw.CreateFormFile("file", "clients.csv")
			Expect(err).NotTo(HaveOccurred())
			_, _ = part.Write([]byte("clientName,email\nHooli,team@hooli.test\n"))
			Expect(mw.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/clients/import", &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			handler.ImportClients(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var result csvutil.ImportResult
			Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
			Expect(result.Imported).To(Equal(1))
		})

		It("serves the export as a CSV attachment", func() {
			_, err := service.Create(ctx, client.ClientDTO{ClientName: "Acme"})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/clients/export", nil)
			w := httptest.NewRecorder()
			handler.ExportClients(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("text/csv"))
			Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring("clients.csv"))
		})
	})
})
