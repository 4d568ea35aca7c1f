package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics(t *testing.T) {
	metrics, err := InitMetrics()
	require.NoError(t, err)
	require.NotNil(t, metrics)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordRequestMetric(ctx, metrics, "POST", "/events/landmarks/{landmarkID}/rating", 200, time.Millisecond)
		RecordUpstreamMetric(ctx, metrics, "landmark_api", "rate_landmark", 200, time.Millisecond)
		RecordOrphanedImage(ctx, metrics, "7")
	})
}

func TestRecordMetrics_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordRequestMetric(ctx, nil, "GET", "/health", 200, time.Millisecond)
		RecordUpstreamMetric(ctx, nil, "image_host", "upload", 0, time.Millisecond)
		RecordOrphanedImage(ctx, nil, "7")
	})
}

func TestInitLogger_WritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	InitLogger("landmark-page-test", "production", &buf)

	LoggerFromContext(context.Background()).Info().Msg("hello")

	assert.Contains(t, buf.String(), `"service":"landmark-page-test"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}
