package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayUnprocessableMessagesRequeuesAndDeletes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.Nil(t, env.services.SaveUnprocessableMessages(ctx, `{"bad":1}`, "receipt-1"))
	require.Nil(t, env.services.SaveUnprocessableMessages(ctx, `{"bad":2}`, "receipt-2"))

	var requeued []string
	env.services.SetLocalRequeue(func(ctx context.Context, messageBody string) error {
		requeued = append(requeued, messageBody)
		return nil
	})

	replayed, err := env.services.ReplayUnprocessableMessages(ctx)
	require.Nil(t, err)
	assert.Equal(t, 2, replayed)
	assert.Equal(t, []string{`{"bad":1}`, `{"bad":2}`}, requeued)

	remaining, findErr := env.store.FindUnprocessableMessages(ctx)
	require.NoError(t, findErr)
	assert.Empty(t, remaining)
}

func TestReplayUnavailableWithoutRequeue(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.ReplayUnprocessableMessages(context.Background())
	require.NotNil(t, err)
	assert.Equal(t, 503, err.StatusCode)
}
