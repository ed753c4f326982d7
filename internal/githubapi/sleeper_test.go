package githubapi_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghconnect/internal/githubapi"
)

func TestTimerSleeperHonorsContext(testInstance *testing.T) {
	sleeper := githubapi.NewTimerSleeper()

	require.NoError(testInstance, sleeper.Sleep(context.Background(), time.Millisecond))
	require.NoError(testInstance, sleeper.Sleep(context.Background(), 0))

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(testInstance, sleeper.Sleep(cancelledContext, time.Hour), context.Canceled)
}

func TestSleeperFuncDelegates(testInstance *testing.T) {
	var recordedDuration time.Duration
	sleeper := githubapi.SleeperFunc(func(_ context.Context, duration time.Duration) error {
		recordedDuration = duration
		return nil
	})

	require.NoError(testInstance, sleeper.Sleep(context.Background(), 3*time.Second))
	require.Equal(testInstance, 3*time.Second, recordedDuration)
}
