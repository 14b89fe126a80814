package notification_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	"github.com/frahmantamala/agency-ops/internal/core/events"
	"github.com/frahmantamala/agency-ops/internal/notification"
	notificationPostgres "github.com/frahmantamala/agency-ops/internal/notification/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

// fakeAPI stands in for both the Telegram Bot API and the email API.
type fakeAPI struct {
	mu        sync.Mutex
	telegram  []map[string]interface{}
	emails    []notification.Email
	authz     []string
	failChats map[string]bool
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			chatID, _ := body["chat_id"].(string)
			if f.failChats[chatID] {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
				return
			}
			f.telegram = append(f.telegram, body)
			_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
		case r.URL.Path == "/emails":
			var email notification.Email
			_ = json.NewDecoder(r.Body).Decode(&email)
			f.emails = append(f.emails, email)
			f.authz = append(f.authz, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"id":"em_1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	return mux
}

func (f *fakeAPI) telegramCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.telegram)
}

func (f *fakeAPI) emailCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.emails)
}

var _ = Describe("Notification Service", func() {
	var (
		ctx     context.Context
		db      *database.DB
		api     *fakeAPI
		server  *httptest.Server
		service *notification.Service
		slogger *slog.Logger
	)

	strPtr := func(s string) *string { return &s }
	boolPtr := func(b bool) *bool { return &b }

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = database.NewInMemory()
		Expect(err).NotTo(HaveOccurred())

		api = &fakeAPI{failChats: map[string]bool{}}
		server = httptest.NewServer(api.handler())
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		service = notification.NewService(
			notificationPostgres.NewNotificationRepository(db.Gorm),
			notification.NewTelegramClient(server.URL, time.Second),
			notification.NewEmailClient(server.URL, time.Second),
			slogger,
		)
	})

	AfterEach(func() {
		server.Close()
		_ = db.Close()
	})

	Describe("telegram config", func() {
		It("masks the bot token on read", func() {
			_, err := service.UpdateTelegramConfig(ctx, notification.TelegramConfigDTO{
				BotToken: strPtr("123456:ABCDEFsecret"), IsEnabled: boolPtr(true),
			})
			Expect(err).NotTo(HaveOccurred())

			cfg, err := service.GetTelegramConfig(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.BotToken).To(Equal("********cret"))
			Expect(cfg.HasToken).To(BeTrue())
			Expect(cfg.IsEnabled).To(BeTrue())
		})

		It("keeps the stored token when the masked value is sent back", func() {
			_, err := service.UpdateTelegramConfig(ctx, notification.TelegramConfigDTO{BotToken: strPtr("token-1234")})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.AddChatID(ctx, notification.ChatIDDTO{ChatID: "42"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateTelegramConfig(ctx, notification.TelegramConfigDTO{BotToken: strPtr("********1234")})
			Expect(err).NotTo(HaveOccurred())

			result, err := service.SendTelegramTest(ctx, notification.TestMessageDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Sent).To(Equal(1))
		})
	})

	Describe("chat ids", func() {
		It("rejects duplicates", func() {
			_, err := service.AddChatID(ctx, notification.ChatIDDTO{ChatID: "100", Name: "ops"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.AddChatID(ctx, notification.ChatIDDTO{ChatID: " 100 "})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusConflict))
		})

		It("returns 404 when deleting an unknown chat", func() {
			err := service.DeleteChatID(ctx, 77)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("test messages", func() {
		It("requires a bot token", func() {
			_, err := service.SendTelegramTest(ctx, notification.TestMessageDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotificationDisabled))
		})

		It("reports per-chat results and skips inactive chats", func() {
			_, err := service.UpdateTelegramConfig(ctx, notification.TelegramConfigDTO{BotToken: strPtr("tok")})
			Expect(err).NotTo(HaveOccurred())
			for _, dto := range []notification.ChatIDDTO{
				{ChatID: "1"}, {ChatID: "2"}, {ChatID: "3", IsActive: boolPtr(false)},
			} {
				_, err := service.AddChatID(ctx, dto)
				Expect(err).NotTo(HaveOccurred())
			}
			api.failChats["2"] = true

			result, err := service.SendTelegramTest(ctx, notification.TestMessageDTO{Message: "hello"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Sent).To(Equal(1))
			Expect(result.Failed).To(Equal(1))
			Expect(result.Results).To(HaveLen(2))
			Expect(result.Results[1].Error).To(ContainSubstring("chat not found"))
			Expect(api.telegram[0]["text"]).To(Equal("hello"))
		})

		It("sends a test email with a bearer key", func() {
			_, err := service.UpdateEmailConfig(ctx, notification.EmailConfigDTO{
				APIKey:      strPtr("re_key"),
				FromAddress: strPtr("ops@agency.test"),
				Recipients:  []string{"a@agency.test", "b@agency.test"},
			})
			Expect(err).NotTo(HaveOccurred())

			result, err := service.SendEmailTest(ctx, notification.TestMessageDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Recipients).To(HaveLen(2))
			Expect(api.authz).To(ConsistOf("Bearer re_key"))
			Expect(api.emails[0].Text).To(Equal(notification.DefaultTestMessage))
		})

		It("rejects invalid recipients", func() {
			_, err := service.UpdateEmailConfig(ctx, notification.EmailConfigDTO{Recipients: []string{"not-an-email"}})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("event delivery", func() {
		It("delivers subscribed events to enabled channels only", func() {
			_, err := service.UpdateTelegramConfig(ctx, notification.TelegramConfigDTO{BotToken: strPtr("tok"), IsEnabled: boolPtr(true)})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.AddChatID(ctx, notification.ChatIDDTO{ChatID: "9"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.UpdateEmailConfig(ctx, notification.EmailConfigDTO{
				APIKey: strPtr("k"), FromAddress: strPtr("ops@agency.test"), Recipients: []string{"a@agency.test"},
			})
			Expect(err).NotTo(HaveOccurred())

			dispatcher := notification.NewDispatcher(notification.DispatcherConfig{MaxWorkers: 2, JobQueueSize: 10}, service.Deliver, slogger)
			defer dispatcher.Shutdown()

			bus := events.NewEventBus(slogger)
			notification.RegisterSubscribers(bus, dispatcher)
			Expect(bus.PublishSync(ctx, events.NewExpenseCreatedEvent(5, "Hosting", "120.00", "IDR", 1))).To(Succeed())

			Eventually(api.telegramCount).Should(Equal(1))
			Consistently(api.emailCount, 200*time.Millisecond).Should(Equal(0))
			Expect(api.telegram[0]["text"]).To(ContainSubstring("Expense #5: Hosting (120.00 IDR)"))
		})
	})
})

var _ = Describe("Dispatcher", func() {
	It("drops notifications when the queue is full", func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		release := make(chan struct{})
		var mu sync.Mutex
		delivered := 0

		d := notification.NewDispatcher(notification.DispatcherConfig{MaxWorkers: 1, JobQueueSize: 1}, func(ctx context.Context, msg notification.Message) error {
			<-release
			mu.Lock()
			delivered++
			mu.Unlock()
			return nil
		}, slogger)

		accepted := 0
		for i := 0; i < 10; i++ {
			if d.Enqueue(notification.Message{Subject: "s"}) {
				accepted++
			}
		}
		Expect(accepted).To(BeNumerically("<", 10))
		Expect(accepted).To(BeNumerically(">=", 1))

		close(release)
		Eventually(func() int {
			mu.Lock()
			defer mu.Unlock()
			return delivered
		}).Should(Equal(accepted))

		d.Shutdown()
		Expect(d.Enqueue(notification.Message{Subject: "late"})).To(BeFalse())
	})

	It("formats import results", func() {
		msg := notification.DataImportedMessage(events.NewDataImportedEvent(3, 2, 1, 7))
		Expect(msg.Text).To(Equal("3 imported, 2 updated, 1 skipped"))
	})
})
