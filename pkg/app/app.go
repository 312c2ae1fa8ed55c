package app

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bizflow/pkg/client"
	"bizflow/pkg/dashboard"
	"bizflow/pkg/httpapi"
	"bizflow/pkg/invoice"
	"bizflow/pkg/onboarding"
	"bizflow/pkg/proposal"
	"bizflow/pkg/storage/sqlitestore"
)

// shutdownTimeout bounds how long in-flight requests get once the context is cancelled.
const shutdownTimeout = 5 * time.Second

// Run composes storage, domain services and the HTTP server, and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlitestore.OpenSeeded(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("unable to prepare database: %w", err)
	}
	defer db.Close()

	invoices := invoice.NewService(invoice.NewRepository(db), cfg.Invoice.TaxRate, logger)
	defer invoices.Close()

	clients := client.NewService(client.NewRepository(db), logger)
	defer clients.Close()

	proposals := proposal.NewService(proposal.NewRepository(db))

	sessionCfg := onboarding.SessionConfig{
		SignatureDelay: cfg.Onboarding.SignatureDelay,
		OnComplete:     registerClient(clients, logger),
		Logger:         logger.Named("onboarding"),
	}
	sessions := onboarding.NewRegistry(sessionCfg,
		onboarding.WithIdleTTL(cfg.Onboarding.SessionTTL),
		onboarding.WithFinishedTTL(cfg.Onboarding.FinishedTTL),
	)
	// Sessions close first so no completion reaches a stopped client service.
	defer sessions.Close()

	srv := httpapi.New(httpapi.Services{
		Invoices:   invoices,
		Proposals:  proposals,
		Clients:    clients,
		Dashboard:  dashboard.NewService(invoices, proposals, dashboard.NewRepository(db)),
		Onboarding: sessions,
	}, httpapi.Timeouts{
		Read:  cfg.Server.ReadTimeout,
		Write: cfg.Server.WriteTimeout,
		Idle:  cfg.Server.IdleTimeout,
	}, logger)

	addr := cfg.address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("BizFlow is running", zap.String("addr", ln.Addr().String()), zap.String("database", databaseLabel(cfg.Database.Path)))
		if err := srv.Serve(ln); err != nil && gctx.Err() == nil {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		err := srv.Shutdown(shutdownCtx)
		// Serve may not have picked the listener up yet; closing it guarantees Serve returns.
		ln.Close()
		return err
	})
	return g.Wait()
}

// registerClient stores the company gathered by a finished onboarding session.
func registerClient(clients *client.Service, logger *zap.Logger) onboarding.CompletionFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(sessionID string, details onboarding.Details) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		stored, err := clients.Add(ctx, clientFromDetails(details))
		if err != nil {
			logger.Warn("onboarded client not stored", zap.String("session", sessionID), zap.Error(err))
			return
		}
		logger.Info("onboarded client stored", zap.String("session", sessionID), zap.String("client", stored.ID))
	}
}

func clientFromDetails(d onboarding.Details) client.Client {
	return client.Client{
		CompanyName: d.Client.CompanyName,
		ContactName: d.Client.ContactName,
		Email:       d.Client.Email,
		Phone:       d.Client.Phone,
		Project: client.Project{
			Name:     d.Project.Name,
			Scope:    d.Project.Scope,
			Budget:   d.Project.Budget,
			Timeline: d.Project.Timeline,
		},
	}
}

func databaseLabel(path string) string {
	if path == "" {
		return "in-memory"
	}
	return path
}
