package client

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// validationError communicates rule violations back to HTTP handlers.
type validationError struct {
	message string
}

func (e validationError) Error() string { return e.message }

// IsValidation helps callers distinguish between business and infrastructure failures.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}

// command envelopes the work the service goroutine must perform.
type command struct {
	client Client
	list   bool
	reply  chan commandResult
}

type commandResult struct {
	client  Client
	clients []Client
	err     error
}

// Service owns a goroutine so client writes are serialized without mutexes.
type Service struct {
	repo     *Repository
	logger   *zap.Logger
	commands chan command
	quit     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewService starts the background goroutine immediately.
func NewService(repo *Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &Service{
		repo:     repo,
		logger:   logger.Named("client"),
		commands: make(chan command),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go svc.loop()
	return svc
}

func (s *Service) loop() {
	defer close(s.done)
	for {
		select {
		case cmd := <-s.commands:
			if cmd.list {
				clients, err := s.repo.List(context.Background())
				cmd.reply <- commandResult{clients: clients, err: err}
				continue
			}
			c := cmd.client
			if err := validateClient(c); err != nil {
				cmd.reply <- commandResult{err: err}
				continue
			}
			c.ID = uuid.NewString()
			c.OnboardedAt = time.Now().UTC()
			err := s.repo.Save(context.Background(), c)
			cmd.reply <- commandResult{client: c, err: err}
		case <-s.quit:
			return
		}
	}
}

func (s *Service) dispatch(ctx context.Context, cmd command) (commandResult, error) {
	cmd.reply = make(chan commandResult, 1)

	select {
	case s.commands <- cmd:
	case <-s.quit:
		return commandResult{}, errors.New("client service is closed")
	case <-ctx.Done():
		return commandResult{}, ctx.Err()
	case <-time.After(2 * time.Second):
		return commandResult{}, errors.New("client queue is busy")
	}

	select {
	case res := <-cmd.reply:
		return res, res.err
	case <-ctx.Done():
		return commandResult{}, ctx.Err()
	case <-time.After(2 * time.Second):
		return commandResult{}, errors.New("client request timed out")
	}
}

// Add validates and stores a client, assigning its id and onboarding time.
func (s *Service) Add(ctx context.Context, c Client) (Client, error) {
	res, err := s.dispatch(ctx, command{client: c})
	if err != nil {
		return Client{}, err
	}
	s.logger.Info("client added", zap.String("id", res.client.ID), zap.String("company", res.client.CompanyName))
	return res.client, nil
}

// List returns all clients.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	res, err := s.dispatch(ctx, command{list: true})
	return res.clients, err
}

// Close stops the goroutine to allow graceful shutdown.
func (s *Service) Close() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}

func validateClient(c Client) error {
	if strings.TrimSpace(c.CompanyName) == "" {
		return validationError{message: "company name is required"}
	}
	if email := strings.TrimSpace(c.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return validationError{message: "contact email is invalid"}
		}
	}
	return nil
}
