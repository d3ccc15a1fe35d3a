package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demandcast/backend/internal/models"
)

func TestBuildPDF(t *testing.T) {
	result := sampleResult()
	generatedAt := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

	data, err := BuildPDF(result, "Uploaded Dataset", generatedAt)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output should start with a PDF header")
	assert.Greater(t, len(data), 1000, "report should contain rendered content")
}

func TestBuildPDF_LongForecastPaginates(t *testing.T) {
	result := sampleResult()
	result.ForecastDates = nil
	result.ForecastValues = nil
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 90; i++ {
		result.ForecastDates = append(result.ForecastDates, start.AddDate(0, 0, i).Format(models.DateLayout))
		result.ForecastValues = append(result.ForecastValues, 10+i%7)
	}
	result.Horizon = 90

	data, err := BuildPDF(result, "Default Dataset", time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
