package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"bizflow/pkg/client"
	"bizflow/pkg/dashboard"
	"bizflow/pkg/invoice"
	"bizflow/pkg/onboarding"
	"bizflow/pkg/proposal"
)

// requestTimeout bounds how long a handler waits on the domain services.
const requestTimeout = 5 * time.Second

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Invoices   *invoice.Service
	Proposals  *proposal.Service
	Clients    *client.Service
	Dashboard  *dashboard.Service
	Onboarding *onboarding.Registry
}

// Timeouts mirrors the net/http server timeouts.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// Server wires HTTP endpoints to the domain services.
type Server struct {
	svc    Services
	logger *zap.Logger
	app    *fiber.App
}

// New builds the fiber application with every route registered.
func New(svc Services, timeouts Timeouts, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger.Named("http")}
	s.app = fiber.New(fiber.Config{
		AppName:               "bizflow",
		DisableStartupMessage: true,
		ReadTimeout:           timeouts.Read,
		WriteTimeout:          timeouts.Write,
		IdleTimeout:           timeouts.Idle,
		ErrorHandler:          s.handleError,
	})
	s.routes()
	return s
}

// App exposes the fiber application so callers can Listen or Test against it.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) routes() {
	s.app.Use(s.logRequests)

	api := s.app.Group("/api")
	api.Get("/navigation", s.navigation)
	api.Get("/dashboard", s.dashboardSummary)
	api.Get("/clients", s.listClients)

	api.Get("/invoices", s.listInvoices)
	api.Post("/invoices", s.createInvoice)
	api.Post("/invoices/preview", s.previewInvoice)
	api.Get("/invoices/:id", s.getInvoice)
	api.Post("/invoices/:id/send", s.sendInvoice)

	api.Get("/proposals", s.listProposals)

	api.Post("/onboarding", s.createSession)
	api.Get("/onboarding/:id", s.sessionState)
	api.Put("/onboarding/:id/details", s.updateSessionDetails)
	api.Post("/onboarding/:id/next", s.sessionNext)
	api.Post("/onboarding/:id/previous", s.sessionPrevious)
	api.Post("/onboarding/:id/sign", s.sessionSign)
	api.Delete("/onboarding/:id", s.deleteSession)
}

// logRequests writes one structured line per request after the handler ran.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		if herr := s.handleError(c, err); herr != nil {
			return herr
		}
	}
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Info("request served", fields...)
	return nil
}

// handleError maps domain errors to status codes and keeps the JSON error shape consistent.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case invoice.IsValidation(err), client.IsValidation(err):
		code = http.StatusBadRequest
	case errors.Is(err, invoice.ErrNotFound),
		errors.Is(err, onboarding.ErrSessionNotFound),
		errors.Is(err, onboarding.ErrClosed):
		code = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusServiceUnavailable
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

func (s *Server) navigation(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"main":   dashboard.Navigation(),
		"footer": dashboard.FooterNavigation(),
	})
}

func (s *Server) dashboardSummary(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	summary, err := s.svc.Dashboard.Summary(ctx)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

func (s *Server) listClients(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	clients, err := s.svc.Clients.List(ctx)
	if err != nil {
		return err
	}
	if clients == nil {
		clients = []client.Client{}
	}
	return c.JSON(clients)
}
