package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestRecordExtractionCountsPerOutcome(t *testing.T) {
	before := testutil.ToFloat64(extractionCounter.WithLabelValues("malformed_envelope"))
	RecordExtraction("malformed_envelope")
	RecordExtraction("malformed_envelope")
	require.Equal(t, before+2, testutil.ToFloat64(extractionCounter.WithLabelValues("malformed_envelope")))
}

func TestRecordRecommendationPersistedSetsWatermark(t *testing.T) {
	before := testutil.ToFloat64(persistedCounter)
	ts := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)

	RecordRecommendationPersisted(ts)
	RecordRecommendationPersisted(time.Time{})

	require.Equal(t, before+2, testutil.ToFloat64(persistedCounter))
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(persistGauge))
}

func TestObserveProviderCallRecordsLatency(t *testing.T) {
	ObserveProviderCall(ProviderFailure, 1500*time.Millisecond)

	metric := &dto.Metric{}
	observer, err := providerLatency.GetMetricWithLabelValues(ProviderFailure)
	require.NoError(t, err)
	require.NoError(t, observer.(prometheus.Metric).Write(metric))
	require.GreaterOrEqual(t, metric.GetHistogram().GetSampleCount(), uint64(1))
	require.GreaterOrEqual(t, metric.GetHistogram().GetSampleSum(), 1.5)
}
