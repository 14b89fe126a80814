package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/permission"
	permissionPostgres "github.com/frahmantamala/agency-ops/internal/permission/postgres"
	"github.com/frahmantamala/agency-ops/internal/user"
	"github.com/frahmantamala/agency-ops/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	clearData     bool
	adminUsername string
	adminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed pages, the default permission matrix, settings and a super admin",
	Long: `Seed the database with the default pages, role permission matrix, finance
settings and an initial super admin account. Existing rows are kept unless
--clear is given, which resets the role permission matrix to its defaults.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := logger.L()

		db, err := openDatabase(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		svc, err := initServices(cfg, db, lg)
		if err != nil {
			log.Fatalf("failed to init services: %v", err)
		}

		res, err := permission.SeedDefaults(ctx, permissionPostgres.NewRepository(db.Gorm), clearData)
		if err != nil {
			log.Fatalf("failed to seed permissions: %v", err)
		}
		fmt.Printf("Seeded permissions: %+v\n", res)

		created, err := svc.Finance.SeedSettings(ctx)
		if err != nil {
			log.Fatalf("failed to seed finance settings: %v", err)
		}
		fmt.Printf("Seeded %d finance settings\n", created)

		if adminPassword == "" {
			adminPassword = os.Getenv("SEED_ADMIN_PASSWORD")
		}
		if adminPassword == "" {
			fmt.Println("No admin password given; skipping super admin account")
			return
		}

		actor := &internal.CurrentUser{Username: "seed", Role: internal.RoleSuperAdmin}
		_, err = svc.User.Create(ctx, actor, user.CreateUserDTO{
			Name:     "Super Admin",
			Username: adminUsername,
			Password: adminPassword,
			Role:     internal.RoleSuperAdmin,
		})
		if internal.HasCode(err, internal.ErrCodeDuplicate) {
			fmt.Println("super admin already exists:", adminUsername)
			return
		}
		if err != nil {
			log.Fatalf("failed to create super admin: %v", err)
		}
		fmt.Println("Seeded super admin:", adminUsername)
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Reset the role permission matrix to its defaults")
	seedCmd.Flags().StringVar(&adminUsername, "admin-username", "superadmin", "username of the initial super admin")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "", "password of the initial super admin (or SEED_ADMIN_PASSWORD)")
}
