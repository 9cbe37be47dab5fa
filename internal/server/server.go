// Package server wires configuration, the database, and the core
// services into a gin HTTP server.
package server

import (
	"fmt"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"opsdeck/internal/auth"
	"opsdeck/internal/config"
	"opsdeck/internal/models"
	"opsdeck/internal/notify"
	"opsdeck/internal/services"
	"opsdeck/pkg/logger"
)

// Server holds the wired application: every route group reaches its
// dependencies through the accessor methods below.
type Server struct {
	cfg    *config.Config
	db     *models.DB
	log    logger.Logger
	tokens *auth.TokenManager

	authService         *services.AuthService
	workspaceService    *services.WorkspaceService
	contactService      *services.ContactService
	availabilityService *services.AvailabilityService
	bookingService      *services.BookingService
	onboardingService   *services.OnboardingService
	inboxService        *services.InboxService
	formService         *services.FormService
	inventoryService    *services.InventoryService
	dashboardService    *services.DashboardService
}

// New wires all services onto the given database handle.
func New(cfg *config.Config, db *models.DB, log logger.Logger) *Server {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	notifier := notify.NewNotifier(db, log)
	contacts := services.NewContactService(db, notifier, log)

	return &Server{
		cfg:    cfg,
		db:     db,
		log:    log,
		tokens: tokens,

		authService:         services.NewAuthService(db, tokens),
		workspaceService:    services.NewWorkspaceService(db),
		contactService:      contacts,
		availabilityService: services.NewAvailabilityService(db),
		bookingService:      services.NewBookingService(db, contacts, notifier, log),
		onboardingService:   services.NewOnboardingService(db),
		inboxService:        services.NewInboxService(db, notifier, log),
		formService:         services.NewFormService(db),
		inventoryService:    services.NewInventoryService(db),
		dashboardService:    services.NewDashboardService(db),
	}
}

// NewHTTPServer builds the configured *http.Server.
func NewHTTPServer(cfg *config.Config, db *models.DB, log logger.Logger) *http.Server {
	s := New(cfg, db, log)
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func (s *Server) GetDB() *models.DB                              { return s.db }
func (s *Server) Logger() logger.Logger                          { return s.log }
func (s *Server) Tokens() *auth.TokenManager                     { return s.tokens }
func (s *Server) AuthService() *services.AuthService             { return s.authService }
func (s *Server) WorkspaceService() *services.WorkspaceService   { return s.workspaceService }
func (s *Server) ContactService() *services.ContactService       { return s.contactService }
func (s *Server) AvailabilityService() *services.AvailabilityService {
	return s.availabilityService
}
func (s *Server) BookingService() *services.BookingService     { return s.bookingService }
func (s *Server) OnboardingService() *services.OnboardingService {
	return s.onboardingService
}
func (s *Server) InboxService() *services.InboxService         { return s.inboxService }
func (s *Server) FormService() *services.FormService           { return s.formService }
func (s *Server) InventoryService() *services.InventoryService { return s.inventoryService }
func (s *Server) DashboardService() *services.DashboardService { return s.dashboardService }
