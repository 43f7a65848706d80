package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeGenerations(t *testing.T) {
	var s Scope

	first, ctx1 := s.Begin(context.Background())
	assert.True(t, first.Valid())

	second, ctx2 := s.Begin(context.Background())
	assert.False(t, first.Valid(), "an older generation is stale")
	assert.True(t, second.Valid())
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.NoError(t, ctx2.Err())
	assert.Equal(t, second.Generation(), s.Current().Generation())

	s.End()
	assert.False(t, second.Valid())
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
}

func TestZeroTicketIsInvalid(t *testing.T) {
	assert.False(t, Ticket{}.Valid())
}
