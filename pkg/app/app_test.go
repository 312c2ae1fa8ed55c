package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizflow/pkg/client"
	"bizflow/pkg/onboarding"
	"bizflow/pkg/storage/sqlitestore"
)

func TestRegisterClientStoresOnboardedCompany(t *testing.T) {
	db, err := sqlitestore.OpenSeeded(context.Background(), "")
	require.NoError(t, err)
	clients := client.NewService(client.NewRepository(db), nil)
	t.Cleanup(func() {
		clients.Close()
		db.Close()
	})

	complete := registerClient(clients, nil)
	complete("session-1", onboarding.Details{
		Client: onboarding.ClientDetails{
			CompanyName: "Innovate LLC",
			ContactName: "Jane Roe",
			Email:       "jane@innovate.io",
		},
		Project: onboarding.ProjectDetails{Name: "Portal", Budget: "$12,000"},
	})

	stored, err := clients.List(context.Background())
	require.NoError(t, err)
	var found *client.Client
	for i := range stored {
		if stored[i].CompanyName == "Innovate LLC" {
			found = &stored[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "Portal", found.Project.Name)
	assert.Equal(t, "$12,000", found.Project.Budget)
}

func TestRegisterClientSkipsInvalidDetails(t *testing.T) {
	db, err := sqlitestore.OpenSeeded(context.Background(), "")
	require.NoError(t, err)
	clients := client.NewService(client.NewRepository(db), nil)
	t.Cleanup(func() {
		clients.Close()
		db.Close()
	})

	registerClient(clients, nil)("session-2", onboarding.Details{})

	stored, err := clients.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	cfg.Database.Path = ""

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, nil) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
