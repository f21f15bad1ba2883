package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectPublishMovesActiveNetwork(t *testing.T) {
	before := testutil.ToFloat64(RegistryPublishes)

	CollectPublish("", "mainnet")
	require.Equal(t, float64(1), testutil.ToFloat64(ActiveNetwork.WithLabelValues("mainnet")))

	CollectPublish("mainnet", "testnet")
	require.Equal(t, float64(0), testutil.ToFloat64(ActiveNetwork.WithLabelValues("mainnet")))
	require.Equal(t, float64(1), testutil.ToFloat64(ActiveNetwork.WithLabelValues("testnet")))

	CollectPublish("testnet", "testnet")
	require.Equal(t, float64(1), testutil.ToFloat64(ActiveNetwork.WithLabelValues("testnet")))
	require.Equal(t, before+3, testutil.ToFloat64(RegistryPublishes))
}

func TestCollectRegistryBuild(t *testing.T) {
	ok := RegistryBuilds.WithLabelValues("custom", "false")
	failed := RegistryBuilds.WithLabelValues("custom", "true")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	CollectRegistryBuild("custom", nil)
	CollectRegistryBuild("custom", errors.New("bad endpoint"))
	CollectRegistryBuild("custom", nil)

	require.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	require.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}
