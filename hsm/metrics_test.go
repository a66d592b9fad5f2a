package hsm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestMetricsTimeKeeperTracksVaultSignatures(t *testing.T) {
	mt := newMetricsTimer()

	mt.SetPreviousVaultSignature(time.Now().Add(-time.Hour))
	mt.UpdatePrometheusMetrics()
	require.GreaterOrEqual(t, testutil.ToFloat64(secondsSinceLastVaultSignature), float64(3599))

	mt.SetPreviousVaultSignature(time.Now())
	mt.UpdatePrometheusMetrics()
	require.Less(t, testutil.ToFloat64(secondsSinceLastVaultSignature), float64(60))
}

// Signing runs outside the vault mutex, so sessions signing while the
// metrics timer reads timestamps must not trip the race detector.
func TestVaultConcurrentSigningUpdatesMetrics(t *testing.T) {
	vault, scheme, pub := testVault(t)
	ctx := context.Background()
	message := []byte("Transfer 10 coins")

	handles := make([]SessionHandle, 3)
	for i := range handles {
		handle, err := vault.OpenSession(ctx)
		require.NoError(t, err)
		require.NoError(t, vault.Authenticate(ctx, handle, "Alice", "2468"))
		handles[i] = handle
	}

	var eg errgroup.Group
	eg.Go(func() error {
		for i := 0; i < 50; i++ {
			metricsTimeKeeper.UpdatePrometheusMetrics()
		}
		return nil
	})
	for _, handle := range handles {
		handle := handle
		eg.Go(func() error {
			sig, err := vault.Sign(ctx, handle, message)
			if err != nil {
				return err
			}
			if !scheme.Verify(message, sig, pub) {
				return errors.New("vault signature failed verification")
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	metricsTimeKeeper.UpdatePrometheusMetrics()
	require.Less(t, testutil.ToFloat64(secondsSinceLastVaultSignature), float64(60))

	for _, handle := range handles {
		require.NoError(t, vault.CloseSession(ctx, handle))
	}
}
