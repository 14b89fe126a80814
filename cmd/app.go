package cmd

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/adaccount"
	adaccountPostgres "github.com/frahmantamala/agency-ops/internal/adaccount/postgres"
	"github.com/frahmantamala/agency-ops/internal/adcopy"
	adcopyPostgres "github.com/frahmantamala/agency-ops/internal/adcopy/postgres"
	"github.com/frahmantamala/agency-ops/internal/auth"
	authPostgres "github.com/frahmantamala/agency-ops/internal/auth/postgres"
	"github.com/frahmantamala/agency-ops/internal/backup"
	backupPostgres "github.com/frahmantamala/agency-ops/internal/backup/postgres"
	"github.com/frahmantamala/agency-ops/internal/campaign"
	campaignPostgres "github.com/frahmantamala/agency-ops/internal/campaign/postgres"
	"github.com/frahmantamala/agency-ops/internal/client"
	clientPostgres "github.com/frahmantamala/agency-ops/internal/client/postgres"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	"github.com/frahmantamala/agency-ops/internal/core/events"
	"github.com/frahmantamala/agency-ops/internal/dataport"
	dataportPostgres "github.com/frahmantamala/agency-ops/internal/dataport/postgres"
	"github.com/frahmantamala/agency-ops/internal/employee"
	employeePostgres "github.com/frahmantamala/agency-ops/internal/employee/postgres"
	"github.com/frahmantamala/agency-ops/internal/finance"
	financePostgres "github.com/frahmantamala/agency-ops/internal/finance/postgres"
	"github.com/frahmantamala/agency-ops/internal/notification"
	notificationPostgres "github.com/frahmantamala/agency-ops/internal/notification/postgres"
	"github.com/frahmantamala/agency-ops/internal/permission"
	permissionPostgres "github.com/frahmantamala/agency-ops/internal/permission/postgres"
	"github.com/frahmantamala/agency-ops/internal/storage"
	"github.com/frahmantamala/agency-ops/internal/tag"
	tagPostgres "github.com/frahmantamala/agency-ops/internal/tag/postgres"
	"github.com/frahmantamala/agency-ops/internal/transport"
	"github.com/frahmantamala/agency-ops/internal/transport/rest"
	"github.com/frahmantamala/agency-ops/internal/user"
	userPostgres "github.com/frahmantamala/agency-ops/internal/user/postgres"
	"github.com/frahmantamala/agency-ops/internal/workreport"
	workreportPostgres "github.com/frahmantamala/agency-ops/internal/workreport/postgres"
)

// services holds the wired domain services shared by the CLI commands.
type services struct {
	EventBus     *events.EventBus
	Checker      *permission.Checker
	Permission   *permission.Service
	Auth         *auth.Service
	User         *user.Service
	Client       *client.Service
	AdAccount    *adaccount.Service
	Campaign     *campaign.Service
	AdCopy       *adcopy.Service
	WorkReport   *workreport.Service
	Finance      *finance.Service
	Tag          *tag.Service
	Employee     *employee.Service
	Notification *notification.Service
	Backup       *backup.Service
	DataPort     *dataport.Service
}

func initServices(cfg *internal.Config, db *database.DB, logger *slog.Logger) (*services, error) {
	bus := events.NewEventBus(logger)

	permRepo := permissionPostgres.NewRepository(db.Gorm)
	checker := permission.NewChecker(permRepo)

	authRepo := authPostgres.NewRepository(db.Gorm)
	hasher := auth.NewPasswordHasher(cfg.Security.BCryptCost)
	ttl := cfg.Security.SessionTTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	pipeline, err := dataport.NewPipeline(dataportPostgres.Handlers(db.Gorm)...)
	if err != nil {
		return nil, fmt.Errorf("failed to build import pipeline: %w", err)
	}

	return &services{
		EventBus:   bus,
		Checker:    checker,
		Permission: permission.NewService(permRepo, checker, logger),
		Auth:       auth.NewService(authRepo, authRepo, auth.NewJWTTokenIssuer(cfg.Security.SessionSecret), hasher, ttl, logger),
		User:       user.NewService(userPostgres.NewUserRepository(db.Gorm), hasher, logger),
		Client:     client.NewService(clientPostgres.NewClientRepository(db.Gorm), logger),
		AdAccount:  adaccount.NewService(adaccountPostgres.NewAdAccountRepository(db.Gorm), logger),
		Campaign:   campaign.NewService(campaignPostgres.NewCampaignRepository(db.Gorm), logger),
		AdCopy:     adcopy.NewService(adcopyPostgres.NewAdCopyRepository(db.Gorm), logger),
		WorkReport: workreport.NewService(workreportPostgres.NewWorkReportRepository(db.Gorm), bus, logger),
		Finance: finance.NewService(financePostgres.NewFinanceRepository(db.Gorm),
			financePostgres.NewDashboardRepository(db), bus, logger),
		Tag: tag.NewService(tagPostgres.NewTagRepository(db.Gorm), logger),
		Employee: employee.NewService(employeePostgres.NewEmployeeRepository(db.Gorm),
			employeePostgres.NewStatsRepository(db), logger),
		Notification: notification.NewService(notificationPostgres.NewNotificationRepository(db.Gorm),
			notification.NewTelegramClient(cfg.Notification.TelegramAPIURL, cfg.Notification.Timeout),
			notification.NewEmailClient(cfg.Notification.EmailAPIURL, cfg.Notification.Timeout),
			logger),
		Backup:   backup.NewService(backupPostgres.NewBackupRepository(db), store, logger),
		DataPort: dataport.NewService(dataportPostgres.NewExportRepository(db.Gorm), pipeline, bus, logger),
	}, nil
}

func (s *services) handlers(logger *slog.Logger) rest.Handlers {
	base := transport.NewBaseHandler(logger)
	return rest.Handlers{
		Auth:         auth.NewHandler(s.Auth, s.Permission),
		User:         user.NewHandler(base, s.User),
		Permission:   permission.NewHandler(base, s.Permission),
		Client:       client.NewHandler(base, s.Client),
		AdAccount:    adaccount.NewHandler(base, s.AdAccount),
		Campaign:     campaign.NewHandler(base, s.Campaign),
		AdCopy:       adcopy.NewHandler(base, s.AdCopy),
		WorkReport:   workreport.NewHandler(base, s.WorkReport),
		Finance:      finance.NewHandler(base, s.Finance),
		Tag:          tag.NewHandler(base, s.Tag),
		Employee:     employee.NewHandler(base, s.Employee),
		Notification: notification.NewHandler(base, s.Notification),
		Backup:       backup.NewHandler(base, s.Backup),
		DataPort:     dataport.NewHandler(base, s.DataPort),
	}
}

// openDatabase connects using cfg and verifies the connection.
func openDatabase(cfg internal.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
