package main

import (
	"fmt"
	"os"
	"time"

	appidentity "github.com/fincore/backend/internal/application/identity"
	apporganisation "github.com/fincore/backend/internal/application/organisation"
	"github.com/fincore/backend/internal/infrastructure/config"
	"github.com/fincore/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedTenant     string
	seedOfficeName string
	seedOpenedOn   string
	seedPassword   string
)

// seedCmd bootstraps a tenant: the head office and the default administrator
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Bootstrap a tenant's head office and administrator",
	Long: `Creates the head office and the default administrator (` + appidentity.DefaultAdminUsername + `)
for a tenant. Existing records are left untouched, so the command can be re-run.
The administrator password is read from --admin-password or BANK_ADMIN_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedTenant, "tenant", "", "Tenant ID (UUID)")
	seedCmd.Flags().StringVar(&seedOfficeName, "office-name", "Head Office", "Head office name")
	seedCmd.Flags().StringVar(&seedOpenedOn, "opened-on", "", "Head office opening date, YYYY-MM-DD (default: today)")
	seedCmd.Flags().StringVar(&seedPassword, "admin-password", "", "Administrator password")
	_ = seedCmd.MarkFlagRequired("tenant")
}

func runSeed(cmd *cobra.Command, args []string) error {
	tenantID, err := uuid.Parse(seedTenant)
	if err != nil {
		return fmt.Errorf("invalid tenant id %q: %w", seedTenant, err)
	}
	password := seedPassword
	if password == "" {
		password = os.Getenv("BANK_ADMIN_PASSWORD")
	}
	if password == "" {
		return fmt.Errorf("administrator password required (--admin-password or BANK_ADMIN_PASSWORD)")
	}
	openedOn := time.Now()
	if seedOpenedOn != "" {
		openedOn, err = time.Parse("2006-01-02", seedOpenedOn)
		if err != nil {
			return fmt.Errorf("invalid opening date %q: %w", seedOpenedOn, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := persistence.NewDatabase(&cfg.Database, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	offices := apporganisation.NewOfficeService(persistence.NewGormOfficeRepository(db.DB))
	users := appidentity.NewUserService(persistence.NewGormUserRepository(db.DB), log)

	head, created, err := offices.BootstrapHeadOffice(ctx, tenantID, seedOfficeName, openedOn)
	if err != nil {
		return fmt.Errorf("failed to bootstrap head office: %w", err)
	}
	log.Info("Head office ready",
		zap.String("tenant_id", tenantID.String()),
		zap.String("office_id", head.ID.String()),
		zap.Bool("created", created),
	)

	created, err = users.BootstrapAdmin(ctx, tenantID, head.ID, password)
	if err != nil {
		return fmt.Errorf("failed to bootstrap administrator: %w", err)
	}
	log.Info("Administrator ready",
		zap.String("username", appidentity.DefaultAdminUsername),
		zap.Bool("created", created),
	)
	return nil
}
