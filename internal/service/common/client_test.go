//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
)

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestClient_RequiresID asserts that empty alarm IDs are rejected before any call.
func TestClient_RequiresID(t *testing.T) {
	t.Parallel()

	c := new(Client)

	_, err := c.ToggleAlarm(context.Background(), "")
	require.ErrorIs(t, err, errIDRequired)

	_, err = c.SnoozeAlarm(context.Background(), "", 5)
	require.ErrorIs(t, err, errIDRequired)
}

// TestClient_withActor attaches actor metadata only when an actor is set.
func TestClient_withActor(t *testing.T) {
	t.Parallel()

	c := new(Client)
	ctx := c.withActor(context.Background())

	_, ok := metadata.FromOutgoingContext(ctx)
	require.False(t, ok)

	c.actor = &Actor{Hostname: "test-hostname", Username: "test-user"}

	md, ok := metadata.FromOutgoingContext(c.withActor(context.Background()))
	require.True(t, ok)
	require.Equal(t, []string{"test-hostname"}, md.Get(api.ActorHostnameKey))
	require.Equal(t, []string{"test-user"}, md.Get(api.ActorUsernameKey))
}
