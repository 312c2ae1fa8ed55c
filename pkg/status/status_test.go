package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "Paid", Paid.Label())
	assert.Equal(t, "Overdue", Overdue.Label())
	assert.Equal(t, "Unknown", Status("archived").Label())
}

func TestParse(t *testing.T) {
	s, ok := Parse("  PENDING ")
	assert.True(t, ok)
	assert.Equal(t, Pending, s)

	_, ok = Parse("all")
	assert.False(t, ok)
}
