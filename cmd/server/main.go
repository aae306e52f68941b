// Package main is the entry point for the core banking back office API
//
//	@title						Fincore Back Office API
//	@version					1.0
//	@description				Multi-tenant core banking back office: general ledger, organisation, clients and groups, calendars and loan portfolio.
//	@termsOfService				http://swagger.io/terms/
//
//	@contact.name				Fincore Support
//	@contact.email				support@fincore.example.com
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.
//
//	@tag.name					auth
//	@tag.description			Login, token refresh and session management
//	@tag.name					accounting
//	@tag.description			Chart of accounts, journal entries, closures, provisioning and accruals
//	@tag.name					organisation
//	@tag.description			Offices, staff, tellers, cashiers, holidays and working days
//	@tag.name					clients
//	@tag.description			Clients and their documents
//	@tag.name					groups
//	@tag.description			Groups and centers
//	@tag.name					calendars
//	@tag.description			Meeting calendars and attendance
//	@tag.name					loans
//	@tag.description			Loan products, loans, transactions and collection sheets
//	@tag.name					hooks
//	@tag.description			Outbound webhooks
//	@tag.name					audit
//	@tag.description			Command audit trail
//	@tag.name					system
//	@tag.description			Health and build information
package main

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs --parseInternal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountingapp "github.com/fincore/backend/internal/application/accounting"
	commandapp "github.com/fincore/backend/internal/application/command"
	hookapp "github.com/fincore/backend/internal/application/hook"
	identityapp "github.com/fincore/backend/internal/application/identity"
	organisationapp "github.com/fincore/backend/internal/application/organisation"
	portfolioapp "github.com/fincore/backend/internal/application/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/auth"
	"github.com/fincore/backend/internal/infrastructure/cache"
	"github.com/fincore/backend/internal/infrastructure/config"
	"github.com/fincore/backend/internal/infrastructure/event"
	"github.com/fincore/backend/internal/infrastructure/logger"
	"github.com/fincore/backend/internal/infrastructure/persistence"
	"github.com/fincore/backend/internal/infrastructure/printing"
	"github.com/fincore/backend/internal/infrastructure/scheduler"
	"github.com/fincore/backend/internal/infrastructure/storage"
	"github.com/fincore/backend/internal/infrastructure/telemetry"
	"github.com/fincore/backend/internal/infrastructure/webhook"
	"github.com/fincore/backend/internal/interfaces/http/handler"
	"github.com/fincore/backend/internal/interfaces/http/middleware"
	"github.com/fincore/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fincore:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.FromConfig(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry: traces, OTLP metrics and logs, continuous profiling
	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	log = telemetry.BridgeLogger(log, provider.LoggerProvider(), cfg.Telemetry.ServiceName, zapcore.InfoLevel)

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", handler.Version),
	)

	metrics := telemetry.NewMetrics()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithIgnoreRecordNotFoundError(true),
	)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.DBName),
	)
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBName:     cfg.Database.DBName,
	}, log); err != nil {
		return fmt.Errorf("failed to instrument database: %w", err)
	}
	if sqlDB, err := db.SQL(); err == nil {
		if err := metrics.RegisterDB(cfg.Database.DBName, sqlDB); err != nil {
			log.Warn("Database pool metrics unavailable", zap.Error(err))
		}
	}

	// Redis backs idempotency keys, delivery claims and token revocation.
	// Without it both fall back to process-local stores.
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}
	idempotency := cache.NewIdempotencyStore(redisClient, log)
	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklistWithClient(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Repositories
	txScope := persistence.NewGormTransactionScope(db.DB)
	glAccountRepo := persistence.NewGormGLAccountRepository(db.DB)
	journalRepo := persistence.NewGormJournalEntryRepository(db.DB)
	ruleRepo := persistence.NewGormAccountingRuleRepository(db.DB)
	closureRepo := persistence.NewGormGLClosureRepository(db.DB)
	provisioningRepo := persistence.NewGormProvisioningRepository(db.DB)
	officeRepo := persistence.NewGormOfficeRepository(db.DB)
	staffRepo := persistence.NewGormStaffRepository(db.DB)
	tellerRepo := persistence.NewGormTellerRepository(db.DB)
	holidayRepo := persistence.NewGormHolidayRepository(db.DB)
	workingDaysRepo := persistence.NewGormWorkingDaysRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	groupRepo := persistence.NewGormGroupRepository(db.DB)
	calendarRepo := persistence.NewGormCalendarRepository(db.DB)
	meetingRepo := persistence.NewGormMeetingRepository(db.DB)
	loanRepo := persistence.NewGormLoanRepository(db.DB)
	loanProductRepo := persistence.NewGormLoanProductRepository(db.DB)
	hookRepo := persistence.NewGormHookRepository(db.DB)
	deliveryRepo := persistence.NewGormHookDeliveryRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	commandRepo := persistence.NewGormCommandSourceRepository(db.DB)

	// Documents and printing are optional
	var documents portfolioapp.DocumentStorage
	var s3Storage *storage.S3DocumentStorage
	if cfg.Storage.Enabled {
		s3Storage, err = storage.NewS3DocumentStorage(ctx, &cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiry(cfg.Storage.PresignExpiry),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize document storage: %w", err)
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to prepare document bucket: %w", err)
		}
		documents = s3Storage
		log.Info("Document storage ready", zap.String("bucket", s3Storage.Bucket()))
	}

	var renderer portfolioapp.DocumentRenderer
	if cfg.Printing.Enabled {
		engine, err := printing.NewTemplateEngine(language.English)
		if err != nil {
			return fmt.Errorf("failed to load document templates: %w", err)
		}
		converter := printing.NewChromedpConverter(printing.ChromedpConfig{
			RemoteURL: cfg.Printing.ChromeRemoteURL,
			Timeout:   cfg.Printing.Timeout,
			NoSandbox: cfg.Printing.ChromeRemoteURL == "",
			Logger:    log,
		})
		defer converter.Close()
		renderer = printing.NewDocumentRenderer(engine, converter, log)
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, log)

	glAccountService := accountingapp.NewGLAccountService(glAccountRepo, journalRepo)
	journalService := accountingapp.NewJournalEntryService(txScope, journalRepo, glAccountRepo, ruleRepo, cfg.Accounting.DefaultCurrency)
	ruleService := accountingapp.NewAccountingRuleService(ruleRepo, glAccountRepo)
	closureService := accountingapp.NewGLClosureService(closureRepo, officeRepo)
	provisioningService := accountingapp.NewProvisioningService(txScope, provisioningRepo, glAccountRepo, loanRepo)
	accrualService := accountingapp.NewAccrualService(txScope, loanRepo, loanProductRepo, log)

	officeService := organisationapp.NewOfficeService(officeRepo)
	staffService := organisationapp.NewStaffService(staffRepo, officeRepo)
	tellerService := organisationapp.NewTellerService(txScope, tellerRepo, officeRepo, staffRepo, glAccountRepo, cfg.Accounting.DefaultCurrency)
	workingDaysService := organisationapp.NewWorkingDaysService(workingDaysRepo)

	loanService := portfolioapp.NewLoanService(portfolioapp.LoanServiceDeps{
		TxScope:      txScope,
		LoanRepo:     loanRepo,
		ProductRepo:  loanProductRepo,
		ClientRepo:   clientRepo,
		GroupRepo:    groupRepo,
		StaffRepo:    staffRepo,
		CalendarRepo: calendarRepo,
		HolidayRepo:  holidayRepo,
		WorkingDays:  workingDaysService,
		Renderer:     renderer,
		Logger:       log,
	})
	holidayService := organisationapp.NewHolidayService(holidayRepo, officeRepo, loanService, log)
	loanProductService := portfolioapp.NewLoanProductService(loanProductRepo, glAccountRepo)
	collectionSheetService := portfolioapp.NewCollectionSheetService(portfolioapp.CollectionSheetServiceDeps{
		TxScope:      txScope,
		GroupRepo:    groupRepo,
		CalendarRepo: calendarRepo,
		MeetingRepo:  meetingRepo,
		ClientRepo:   clientRepo,
		LoanRepo:     loanRepo,
		ProductRepo:  loanProductRepo,
		Renderer:     renderer,
		Logger:       log,
	})
	clientService := portfolioapp.NewClientService(clientRepo, officeRepo, staffRepo, loanRepo, documents, log)
	groupService := portfolioapp.NewGroupService(groupRepo, clientRepo, officeRepo, staffRepo, loanRepo)
	calendarService := portfolioapp.NewCalendarService(calendarRepo, meetingRepo, groupRepo, loanRepo)
	meetingService := portfolioapp.NewMeetingService(meetingRepo, calendarRepo, groupRepo)

	hookService := hookapp.NewHookService(hookRepo, deliveryRepo, log)
	dispatcher := hookapp.NewDispatcher(hookRepo, deliveryRepo,
		webhook.NewHTTPSender(cfg.Webhook.Timeout, webhook.WithObserver(metrics)),
		idempotency,
		hookapp.DispatcherConfig{
			MaxAttempts: cfg.Webhook.MaxRetries,
			BatchSize:   cfg.Webhook.BatchSize,
			ClaimTTL:    cfg.Webhook.ClaimTTL,
		},
		log,
	)
	auditService := commandapp.NewAuditService(commandRepo)

	// Event bus: business metrics and webhooks subscribe to domain events
	eventBus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch(4, 1024))
	eventBus.Subscribe(telemetry.NewBusinessMetrics(metrics))
	eventBus.Subscribe(event.NewIdempotentHandler(dispatcher, idempotency, 0, log))
	if err := eventBus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	for _, s := range []interface {
		SetEventPublisher(shared.EventPublisher)
	}{journalService, provisioningService, accrualService, tellerService, loanService, collectionSheetService} {
		s.SetEventPublisher(eventBus)
	}

	processor := commandapp.NewProcessor(commandRepo, idempotency, eventBus, 0, log)

	// Background jobs
	if cfg.Scheduler.Enabled {
		stopScheduler, err := startScheduler(ctx, cfg.Scheduler, officeRepo, metrics, log, jobs{
			accruals:     accrualService,
			provisioning: provisioningService,
			deliveries:   dispatcher,
		})
		if err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.JobTimeout)
			defer cancel()
			stopScheduler(stopCtx)
		}()
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.Run(ctx)
	}
	middleware.SetupValidator()

	checks := map[string]handler.HealthCheck{"database": db.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if s3Storage != nil {
		checks["storage"] = s3Storage.Ping
	}

	base := handler.NewBaseHandler(processor)
	engine := router.New(router.Options{
		ServiceName: cfg.Telemetry.ServiceName,
		HTTP:        cfg.HTTP,
		Swagger:     cfg.Swagger,
		Profiling:   cfg.Telemetry.ProfilingEnabled,
		JWT:         jwtService,
		Blacklist:   blacklist,
		Metrics:     metrics,
		RateLimiter: limiter,
		Logger:      log,
	}, router.Handlers{
		System: handler.NewSystemHandler(cfg.App.Name, checks),
		Auth:   handler.NewAuthHandler(base, authService),
		Users:  handler.NewUserHandler(base, userService),
		Accounting: handler.NewAccountingHandler(base, handler.AccountingServices{
			GLAccounts:   glAccountService,
			Journals:     journalService,
			Rules:        ruleService,
			Closures:     closureService,
			Provisioning: provisioningService,
			Accruals:     accrualService,
		}),
		Organisation: handler.NewOrganisationHandler(base, handler.OrganisationServices{
			Offices:     officeService,
			Staff:       staffService,
			Tellers:     tellerService,
			Holidays:    holidayService,
			WorkingDays: workingDaysService,
		}),
		Clients:   handler.NewClientHandler(base, clientService, cfg.Storage.MaxUploadSize),
		Groups:    handler.NewGroupHandler(base, groupService),
		Calendars: handler.NewCalendarHandler(base, calendarService, meetingService),
		Loans:     handler.NewLoanHandler(base, loanProductService, loanService, collectionSheetService),
		Hooks:     handler.NewHookHandler(base, hookService),
		Audits:    handler.NewAuditHandler(base, auditService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Server exited gracefully")
	return nil
}

type jobs struct {
	accruals     *accountingapp.AccrualService
	provisioning *accountingapp.ProvisioningService
	deliveries   *hookapp.Dispatcher
}

// startScheduler registers the periodic batches and starts the worker pool
// and its cron trigger. The returned func stops both.
func startScheduler(ctx context.Context, cfg config.SchedulerConfig, tenants scheduler.TenantProvider, metrics *telemetry.Metrics, log *zap.Logger, j jobs) (func(context.Context), error) {
	pool := scheduler.NewPool(scheduler.PoolConfig{
		Workers:    cfg.Workers,
		QueueSize:  cfg.QueueSize,
		JobTimeout: cfg.JobTimeout,
	}, log)
	pool.OnComplete = func(job *scheduler.Job, d time.Duration) {
		metrics.ObserveJob(string(job.Kind), string(job.Status), d)
	}

	cron := scheduler.NewCron(scheduler.CronConfig{MaxRetries: 3}, pool, tenants, log)
	tasks := []scheduler.Task{
		{
			Kind:      scheduler.JobKindAccrual,
			Spec:      cfg.AccrualCron,
			PerTenant: true,
			Run: func(ctx context.Context, tenantID *uuid.UUID) error {
				res, err := j.accruals.RunAccruals(ctx, *tenantID, accountingapp.RunAccrualsRequest{})
				if err != nil {
					return err
				}
				if len(res.Failures) > 0 {
					return fmt.Errorf("%d loans failed to accrue", len(res.Failures))
				}
				return nil
			},
		},
		{
			Kind:      scheduler.JobKindProvisioning,
			Spec:      cfg.ProvisioningCron,
			PerTenant: true,
			Run: func(ctx context.Context, tenantID *uuid.UUID) error {
				_, err := j.provisioning.CreateEntry(ctx, *tenantID, accountingapp.CreateProvisioningEntryRequest{
					CreateJournalEntries: true,
				})
				return err
			},
		},
		{
			Kind: scheduler.JobKindHookRetry,
			Spec: cfg.HookRetryCron,
			Run: func(ctx context.Context, _ *uuid.UUID) error {
				_, err := j.deliveries.DeliverDue(ctx)
				return err
			},
		},
	}
	for _, task := range tasks {
		if err := cron.Register(task); err != nil {
			return nil, fmt.Errorf("failed to register %s job: %w", task.Kind, err)
		}
	}

	if err := pool.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}
	if err := cron.Start(ctx); err != nil {
		_ = pool.Stop(ctx)
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}
	log.Info("Scheduler started",
		zap.Int("workers", cfg.Workers),
		zap.String("accrual_cron", cfg.AccrualCron),
		zap.String("provisioning_cron", cfg.ProvisioningCron),
		zap.String("hook_retry_cron", cfg.HookRetryCron),
	)
	return func(ctx context.Context) {
		if err := cron.Stop(ctx); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
		if err := pool.Stop(ctx); err != nil {
			log.Error("Error stopping worker pool", zap.Error(err))
		}
	}, nil
}
