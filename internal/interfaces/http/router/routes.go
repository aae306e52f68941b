package router

import (
	"github.com/fincore/backend/internal/infrastructure/auth"
	"github.com/fincore/backend/internal/infrastructure/config"
	"github.com/fincore/backend/internal/infrastructure/logger"
	"github.com/fincore/backend/internal/infrastructure/telemetry"
	"github.com/fincore/backend/internal/interfaces/http/handler"
	"github.com/fincore/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by New
type Handlers struct {
	System       *handler.SystemHandler
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Accounting   *handler.AccountingHandler
	Organisation *handler.OrganisationHandler
	Clients      *handler.ClientHandler
	Groups       *handler.GroupHandler
	Calendars    *handler.CalendarHandler
	Loans        *handler.LoanHandler
	Hooks        *handler.HookHandler
	Audits       *handler.AuditHandler
}

// Options carries the cross-cutting pieces the middleware chain needs
type Options struct {
	ServiceName string
	HTTP        config.HTTPConfig
	Swagger     config.SwaggerConfig
	Profiling   bool
	JWT         *auth.JWTService
	Blacklist   auth.TokenBlacklist
	Metrics     *telemetry.Metrics
	RateLimiter *middleware.RateLimiter // nil disables rate limiting
	Logger      *zap.Logger
}

// New builds the engine: global middleware, operational endpoints, the
// public auth routes and every guarded /api/v1 route
func New(opts Options, h Handlers) *gin.Engine {
	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			opts.Logger.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
			_ = engine.SetTrustedProxies(nil)
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(opts.Logger),
		logger.Recovery(opts.Logger),
		middleware.Secure(),
		middleware.CORS(opts.HTTP),
	)
	if opts.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))
	}
	if opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}
	engine.Use(middleware.Tracing(opts.ServiceName))
	if opts.Metrics != nil {
		engine.Use(middleware.Metrics(opts.Metrics))
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	authenticate := middleware.JWTAuth(middleware.AuthConfig{
		JWT:       opts.JWT,
		Blacklist: opts.Blacklist,
		Logger:    opts.Logger,
	})

	engine.GET("/health", h.System.Health)
	engine.GET("/info", h.System.GetSystemInfo)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(opts.Swagger, authenticate),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := NewRouter(engine, WithGuard(
		authenticate,
		middleware.Tenant(),
		middleware.TagSpan(),
		middleware.Profiling(opts.Profiling),
	))

	r.RegisterPublic(authRoutes(h.Auth))
	r.Register(sessionRoutes(h.Auth, h.Users)).
		Register(accountingRoutes(h.Accounting)).
		Register(organisationRoutes(h.Organisation)).
		Register(clientRoutes(h.Clients)).
		Register(groupRoutes(h.Groups)).
		Register(calendarRoutes(h.Calendars)).
		Register(loanRoutes(h.Loans)).
		Register(hookRoutes(h.Hooks)).
		Register(auditRoutes(h.Audits))
	r.Setup()

	return engine
}

func authRoutes(h *handler.AuthHandler) *DomainGroup {
	g := NewDomainGroup("/auth")
	g.POST("/login", middleware.Tenant(), h.Login)
	g.POST("/refresh", h.RefreshToken)
	return g
}

func sessionRoutes(a *handler.AuthHandler, u *handler.UserHandler) *DomainGroup {
	g := NewDomainGroup("")
	g.POST("/auth/logout", a.Logout)
	g.GET("/auth/me", a.GetCurrentUser)
	g.PUT("/auth/password", a.ChangePassword)

	g.POST("/users", u.CreateUser)
	g.PUT("/users/:id/permissions", u.SetPermissions)
	g.DELETE("/users/:id", u.DisableUser)
	return g
}

func accountingRoutes(h *handler.AccountingHandler) *DomainGroup {
	g := NewDomainGroup("")

	g.Read("/glaccounts", "GLACCOUNT", h.ListGLAccounts)
	g.Read("/glaccounts/tree", "GLACCOUNT", h.GLAccountTree)
	g.Read("/glaccounts/:id", "GLACCOUNT", h.GetGLAccount)
	g.POST("/glaccounts", h.CreateGLAccount)
	g.PUT("/glaccounts/:id", h.UpdateGLAccount)
	g.DELETE("/glaccounts/:id", h.DeleteGLAccount)

	g.Read("/journalentries", "JOURNALENTRY", h.ListJournalEntries)
	g.Read("/journalentries/:transactionId", "JOURNALENTRY", h.GetJournalTransaction)
	g.POST("/journalentries", h.CreateJournalEntry)
	g.POST("/journalentries/:transactionId/reverse", h.ReverseJournalEntry)
	g.Read("/trialbalance", "JOURNALENTRY", h.TrialBalance)

	g.Read("/accountingrules", "ACCOUNTINGRULE", h.ListAccountingRules)
	g.Read("/accountingrules/:id", "ACCOUNTINGRULE", h.GetAccountingRule)
	g.POST("/accountingrules", h.CreateAccountingRule)
	g.PUT("/accountingrules/:id", h.UpdateAccountingRule)
	g.DELETE("/accountingrules/:id", h.DeleteAccountingRule)

	g.Read("/glclosures", "GLCLOSURE", h.ListGLClosures)
	g.Read("/glclosures/:id", "GLCLOSURE", h.GetGLClosure)
	g.POST("/glclosures", h.CreateGLClosure)
	g.PUT("/glclosures/:id", h.UpdateGLClosure)
	g.DELETE("/glclosures/:id", h.DeleteGLClosure)

	g.Read("/provisioningcategory", "PROVISIONCATEGORY", h.ListProvisioningCategories)
	g.POST("/provisioningcategory", h.CreateProvisioningCategory)
	g.PUT("/provisioningcategory/:id", h.UpdateProvisioningCategory)
	g.DELETE("/provisioningcategory/:id", h.DeleteProvisioningCategory)

	g.Read("/provisioningcriteria", "PROVISIONCRITERIA", h.ListProvisioningCriteria)
	g.Read("/provisioningcriteria/:id", "PROVISIONCRITERIA", h.GetProvisioningCriteria)
	g.POST("/provisioningcriteria", h.CreateProvisioningCriteria)
	g.PUT("/provisioningcriteria/:id", h.UpdateProvisioningCriteria)
	g.DELETE("/provisioningcriteria/:id", h.DeleteProvisioningCriteria)

	g.Read("/provisioningentries", "PROVISIONENTRIES", h.ListProvisioningEntries)
	g.Read("/provisioningentries/:id", "PROVISIONENTRIES", h.GetProvisioningEntry)
	g.POST("/provisioningentries", h.CreateProvisioningEntry)
	g.POST("/provisioningentries/:id/journalentries", h.JournalProvisioningEntry)

	g.POST("/accruals", h.RunAccruals)
	return g
}

func organisationRoutes(h *handler.OrganisationHandler) *DomainGroup {
	g := NewDomainGroup("")

	g.Read("/offices", "OFFICE", h.ListOffices)
	g.Read("/offices/:id", "OFFICE", h.GetOffice)
	g.POST("/offices", h.CreateOffice)
	g.PUT("/offices/:id", h.UpdateOffice)

	g.Read("/staff", "STAFF", h.ListStaff)
	g.Read("/staff/:id", "STAFF", h.GetStaff)
	g.POST("/staff", h.CreateStaff)
	g.PUT("/staff/:id", h.UpdateStaff)

	tellers := g.Group("/tellers")
	tellers.Read("", "TELLER", h.ListTellers)
	tellers.Read("/:id", "TELLER", h.GetTeller)
	tellers.POST("", h.CreateTeller)
	tellers.PUT("/:id", h.UpdateTeller)
	tellers.DELETE("/:id", h.DeleteTeller)
	tellers.Read("/:id/cashiers", "CASHIER", h.ListCashiers)
	tellers.POST("/:id/cashiers", h.AllocateCashier)
	tellers.PUT("/:id/cashiers/:cid", h.UpdateCashier)
	tellers.DELETE("/:id/cashiers/:cid", h.DeleteCashier)
	tellers.POST("/:id/cashiers/:cid/allocate", h.AllocateCash)
	tellers.POST("/:id/cashiers/:cid/settle", h.SettleCash)
	tellers.Read("/:id/cashiers/:cid/summary", "CASHIER", h.CashierSummary)

	g.Read("/holidays", "HOLIDAY", h.ListHolidays)
	g.Read("/holidays/:id", "HOLIDAY", h.GetHoliday)
	g.POST("/holidays", h.CreateHoliday)
	g.PUT("/holidays/:id", h.UpdateHoliday)
	g.POST("/holidays/:id/activate", h.ActivateHoliday)
	g.DELETE("/holidays/:id", h.DeleteHoliday)

	g.Read("/workingdays", "WORKINGDAYS", h.GetWorkingDays)
	g.PUT("/workingdays", h.UpdateWorkingDays)
	return g
}

func clientRoutes(h *handler.ClientHandler) *DomainGroup {
	g := NewDomainGroup("/clients")
	g.Read("", "CLIENT", h.ListClients)
	g.Read("/:id", "CLIENT", h.GetClient)
	g.POST("", h.CreateClient)
	g.PUT("/:id", h.UpdateClient)
	g.POST("/:id", h.ClientAction)
	g.DELETE("/:id", h.DeleteClient)
	g.PUT("/:id/staff", h.AssignClientStaff)
	g.DELETE("/:id/staff", h.UnassignClientStaff)

	g.Read("/:id/documents", "DOCUMENT", h.ListDocuments)
	g.POST("/:id/documents", h.UploadDocument)
	g.Read("/:id/documents/:docId/attachment", "DOCUMENT", h.DocumentURL)
	g.DELETE("/:id/documents/:docId", h.DeleteDocument)
	return g
}

func groupRoutes(h *handler.GroupHandler) *DomainGroup {
	g := NewDomainGroup("")
	for _, kind := range []struct {
		prefix, entity string
		list, create   gin.HandlerFunc
	}{
		{"/groups", "GROUP", h.ListGroups, h.CreateGroup},
		{"/centers", "CENTER", h.ListCenters, h.CreateCenter},
	} {
		sub := g.Group(kind.prefix)
		sub.Read("", kind.entity, kind.list)
		sub.Read("/:id", kind.entity, h.GetGroup)
		sub.POST("", kind.create)
		sub.PUT("/:id", h.UpdateGroup)
		sub.POST("/:id", h.GroupAction)
		sub.DELETE("/:id", h.DeleteGroup)
	}
	return g
}

func calendarRoutes(h *handler.CalendarHandler) *DomainGroup {
	g := NewDomainGroup("")

	g.Read("/calendars", "CALENDAR", h.FindCalendar)
	g.Read("/calendars/:id", "CALENDAR", h.GetCalendar)
	g.POST("/calendars", h.CreateCalendar)
	g.PUT("/calendars/:id", h.UpdateCalendar)
	g.DELETE("/calendars/:id", h.DeleteCalendar)
	g.Read("/calendars/:id/dates", "CALENDAR", h.RecurringDates)
	g.Read("/calendars/:id/next", "CALENDAR", h.NextDate)
	g.Read("/calendars/:id/validate", "CALENDAR", h.ValidateDate)

	g.Read("/meetings", "MEETING", h.ListMeetings)
	g.Read("/meetings/:id", "MEETING", h.GetMeeting)
	g.POST("/meetings", h.CreateMeeting)
	g.PUT("/meetings/:id/attendance", h.UpdateAttendance)
	g.DELETE("/meetings/:id", h.DeleteMeeting)
	return g
}

func loanRoutes(h *handler.LoanHandler) *DomainGroup {
	g := NewDomainGroup("")

	g.Read("/loanproducts", "LOANPRODUCT", h.ListLoanProducts)
	g.Read("/loanproducts/:id", "LOANPRODUCT", h.GetLoanProduct)
	g.POST("/loanproducts", h.CreateLoanProduct)
	g.PUT("/loanproducts/:id", h.UpdateLoanProduct)

	loans := g.Group("/loans")
	loans.POST("/schedule/calculate", middleware.RequirePermission("READ_LOAN"), h.CalculateSchedule)
	loans.Read("", "LOAN", h.ListLoans)
	loans.Read("/:id", "LOAN", h.GetLoan)
	loans.Read("/:id/schedule.pdf", "LOAN", h.SchedulePDF)
	loans.POST("", h.SubmitLoan)
	loans.PUT("/:id", h.ModifyLoan)
	loans.POST("/:id", h.LoanAction)
	loans.POST("/:id/transactions", h.LoanTransaction)
	loans.POST("/:id/transactions/:txnId/reverse", h.ReverseLoanTransaction)

	g.POST("/collectionsheet", middleware.RequirePermission("READ_COLLECTIONSHEET"), h.GenerateCollectionSheet)
	g.POST("/collectionsheet/save", h.SaveCollectionSheet)
	g.Read("/collectionsheet.pdf", "COLLECTIONSHEET", h.CollectionSheetPDF)
	return g
}

func hookRoutes(h *handler.HookHandler) *DomainGroup {
	g := NewDomainGroup("/hooks")
	g.Read("", "HOOK", h.ListHooks)
	g.Read("/:id", "HOOK", h.GetHook)
	g.POST("", h.CreateHook)
	g.PUT("/:id", h.UpdateHook)
	g.DELETE("/:id", h.DeleteHook)
	g.Read("/:id/deliveries", "HOOK", h.ListDeliveries)
	return g
}

func auditRoutes(h *handler.AuditHandler) *DomainGroup {
	g := NewDomainGroup("/audits")
	g.Read("", "AUDIT", h.ListAudits)
	g.Read("/:id", "AUDIT", h.GetAudit)
	return g
}
