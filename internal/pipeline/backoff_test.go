package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/snotel-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepWithContext_FollowsDomainClock(t *testing.T) {
	fake := clockwork.NewFakeClock()
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(nil) })

	assert.True(t, sleepWithContext(context.Background(), 0))

	done := make(chan bool, 1)
	go func() { done <- sleepWithContext(context.Background(), time.Second) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, fake.BlockUntilContext(ctx, 1))
	fake.Advance(time.Second)
	assert.True(t, <-done)
}

func TestSleepWithContext_Cancelled(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClock())
	t.Cleanup(func() { domain.SetClock(nil) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepWithContext(ctx, time.Hour))
}
