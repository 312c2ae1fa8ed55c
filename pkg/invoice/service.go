package invoice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"bizflow/pkg/status"
)

// command envelopes the work the service goroutine must perform.
type command struct {
	action string
	draft  Draft
	send   bool
	id     string
	filter Filter
	reply  chan commandResult
}

// commandResult carries the stored invoice(s) or an error back to the caller.
type commandResult struct {
	invoice  Invoice
	invoices []Invoice
	err      error
}

// Service serializes invoice writes through a single goroutine so number assignment never races.
type Service struct {
	repo     *Repository
	taxRate  float64
	logger   *zap.Logger
	now      func() time.Time
	commands chan command
	quit     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewService launches the coordinating goroutine immediately.
func NewService(repo *Repository, taxRate float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !validRate(taxRate) {
		taxRate = DefaultTaxRate
	}
	svc := &Service{
		repo:     repo,
		taxRate:  taxRate,
		logger:   logger.Named("invoice"),
		now:      time.Now,
		commands: make(chan command),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go svc.loop()
	return svc
}

// TaxRate returns the rate applied to new invoices.
func (s *Service) TaxRate() float64 { return s.taxRate }

func (s *Service) loop() {
	defer close(s.done)
	for {
		select {
		case cmd := <-s.commands:
			ctx := context.Background()
			switch cmd.action {
			case "create":
				inv, err := s.create(ctx, cmd.draft, cmd.send)
				cmd.reply <- commandResult{invoice: inv, err: err}
			case "send":
				inv, err := s.sendDraft(ctx, cmd.id)
				cmd.reply <- commandResult{invoice: inv, err: err}
			case "get":
				inv, err := s.repo.Get(ctx, cmd.id)
				cmd.reply <- commandResult{invoice: inv, err: err}
			case "list":
				all, err := s.repo.List(ctx)
				cmd.reply <- commandResult{invoices: FilterInvoices(all, cmd.filter), err: err}
			default:
				cmd.reply <- commandResult{err: errors.New("unknown invoice action")}
			}
		case <-s.quit:
			return
		}
	}
}

func (s *Service) create(ctx context.Context, draft Draft, send bool) (Invoice, error) {
	if err := validateDraft(draft); err != nil {
		return Invoice{}, err
	}
	number := strings.TrimSpace(draft.Number)
	if number == "" {
		next, err := s.repo.NextNumber(ctx)
		if err != nil {
			return Invoice{}, err
		}
		number = next
	} else if _, err := s.repo.Get(ctx, number); err == nil {
		return Invoice{}, newValidationError("invoice number " + number + " already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return Invoice{}, err
	}

	ledger := draft.Ledger(s.taxRate)
	inv := Invoice{
		ID:        number,
		Client:    strings.TrimSpace(draft.Client),
		Amount:    Cents(ledger.Total()),
		IssueDate: draft.IssueDate,
		DueDate:   draft.DueDate,
		Status:    status.Draft,
		Items:     ledger.Items(),
		Notes:     draft.Notes,
		CreatedAt: s.now().UTC(),
	}
	if send {
		inv.Status = status.Pending
	}
	if err := s.repo.Insert(ctx, inv); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

func (s *Service) sendDraft(ctx context.Context, id string) (Invoice, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Status != status.Draft {
		return Invoice{}, newValidationError("only draft invoices can be sent, " + id + " is " + string(inv.Status))
	}
	if err := s.repo.UpdateStatus(ctx, id, status.Pending); err != nil {
		return Invoice{}, err
	}
	inv.Status = status.Pending
	return inv, nil
}

// dispatch hands a command to the loop and waits for the reply.
func (s *Service) dispatch(ctx context.Context, cmd command) (commandResult, error) {
	cmd.reply = make(chan commandResult, 1)

	select {
	case s.commands <- cmd:
	case <-s.quit:
		return commandResult{}, errors.New("invoice service is closed")
	case <-ctx.Done():
		return commandResult{}, ctx.Err()
	case <-time.After(2 * time.Second):
		return commandResult{}, errors.New("invoice queue is busy")
	}

	select {
	case res := <-cmd.reply:
		return res, res.err
	case <-ctx.Done():
		return commandResult{}, ctx.Err()
	case <-time.After(2 * time.Second):
		return commandResult{}, errors.New("invoice " + cmd.action + " timed out")
	}
}

// Create validates the builder form, computes the total through a ledger and stores the invoice.
// The invoice is saved as a draft, or as pending when send is true.
func (s *Service) Create(ctx context.Context, draft Draft, send bool) (Invoice, error) {
	res, err := s.dispatch(ctx, command{action: "create", draft: draft, send: send})
	if err != nil {
		return Invoice{}, err
	}
	s.logger.Info("invoice stored",
		zap.String("id", res.invoice.ID),
		zap.String("client", res.invoice.Client),
		zap.String("status", string(res.invoice.Status)),
		zap.Int("items", len(res.invoice.Items)))
	return res.invoice, nil
}

// Send moves a draft invoice to pending.
func (s *Service) Send(ctx context.Context, id string) (Invoice, error) {
	res, err := s.dispatch(ctx, command{action: "send", id: id})
	if err != nil {
		return Invoice{}, err
	}
	s.logger.Info("invoice sent", zap.String("id", id))
	return res.invoice, nil
}

// Get returns one invoice or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Invoice, error) {
	res, err := s.dispatch(ctx, command{action: "get", id: id})
	return res.invoice, err
}

// List returns the invoices matching f.
func (s *Service) List(ctx context.Context, f Filter) ([]Invoice, error) {
	res, err := s.dispatch(ctx, command{action: "list", filter: f})
	return res.invoices, err
}

// Close stops the goroutine to allow graceful shutdown.
func (s *Service) Close() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}

// validateDraft keeps the business rules near the service so every endpoint reuses them.
func validateDraft(d Draft) error {
	if strings.TrimSpace(d.Client) == "" {
		return newValidationError("client is required")
	}
	if _, err := time.Parse(DateLayout, d.IssueDate); err != nil {
		return newValidationError("issue date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(DateLayout, d.DueDate); err != nil {
		return newValidationError("due date must be YYYY-MM-DD")
	}
	if d.DueDate < d.IssueDate {
		return newValidationError("due date cannot be before issue date")
	}
	if len(d.Items) == 0 {
		return newValidationError("at least one line item is required")
	}
	return nil
}
