package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherdw/nws-conditions-etl/internal/domain"
	"github.com/weatherdw/nws-conditions-etl/internal/observability"
	"github.com/weatherdw/nws-conditions-etl/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	batch []domain.RawRecord
}

func (m *mockExtractor) ExtractAll(_ context.Context) []domain.RawRecord {
	return m.batch
}

type mockLoader struct {
	ensureCalls int
	ensureErr   error
	appendErr   error
	loaded      [][]domain.TypedRecord
}

func (m *mockLoader) EnsureSchema(_ context.Context) error {
	m.ensureCalls++
	return m.ensureErr
}

func (m *mockLoader) Append(_ context.Context, batch []domain.TypedRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.loaded = append(m.loaded, batch)
	return nil
}

func newTestPipeline(ext pipeline.Extractor, ldr pipeline.Loader) *pipeline.Pipeline {
	metrics := observability.NewMetricsForTesting()
	norm := pipeline.NewNormalizer(slog.Default(), metrics)
	return pipeline.New(ext, norm, ldr, slog.Default(), metrics)
}

// --- fixtures ---

func strPtr(s string) *string { return &s }

func makeRawRecord(location string) domain.RawRecord {
	return domain.RawRecord{
		Location:       location,
		LatRaw:         strPtr("39.74"),
		LonRaw:         strPtr("-104.99"),
		ElevRaw:        strPtr("5280"),
		TemperatureRaw: strPtr("72°F"),
		HumidityRaw:    strPtr("45%"),
		WindSpeedRaw:   strPtr("NW 12 mph"),
		BarometerRaw:   strPtr("30.12 in (1019.98 mb)"),
		DewpointRaw:    strPtr("57°F (14°C)"),
		VisibilityRaw:  strPtr("10.00 mi"),
		WindChillRaw:   strPtr("65°F (18°C)"),
		LastUpdateRaw:  strPtr("24 Aug 10:15 am CST"),
	}
}

func freezeClock(t *testing.T) {
	t.Helper()
	fakeClock := clockwork.NewFakeClockAt(time.Date(2023, time.August, 24, 18, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	freezeClock(t)

	ext := &mockExtractor{batch: []domain.RawRecord{makeRawRecord("Denver, CO")}}
	ldr := &mockLoader{}
	p := newTestPipeline(ext, ldr)

	require.NoError(t, p.Run(context.Background()))

	require.Len(t, ldr.loaded, 1)
	require.Len(t, ldr.loaded[0], 1)
	assert.Equal(t, 1, ldr.ensureCalls)
	assert.NoError(t, p.CheckReadiness(context.Background()))

	got := ldr.loaded[0][0]
	want := domain.TypedRecord{
		Location:   "Denver, CO",
		City:       "Denver",
		State:      "CO",
		Lat:        39.74,
		Lon:        -104.99,
		Humidity:   0.45,
		WindSpeed:  12,
		TempF:      72,
		TempC:      22,
		LastUpdate: "2023-08-24 16:15:00.000000",
	}
	ignorePointers := cmp.FilterPath(func(p cmp.Path) bool {
		switch p.Last().String() {
		case ".ElevFt", ".Barometer", ".VisMiles", ".DewpointF", ".DewpointC", ".WindChillF", ".WindChillC":
			return true
		}
		return false
	}, cmp.Ignore())
	if diff := cmp.Diff(want, got, ignorePointers); diff != "" {
		t.Fatalf("loaded record mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_Run_DropsUnparsableRecords(t *testing.T) {
	freezeClock(t)

	// Ten reachable targets, one with an unparsable temperature: nine load.
	batch := make([]domain.RawRecord, 0, 10)
	for i := 0; i < 10; i++ {
		raw := makeRawRecord(fmt.Sprintf("City %d, ST", i))
		if i == 4 {
			raw.TemperatureRaw = strPtr("N/A")
		}
		batch = append(batch, raw)
	}

	ext := &mockExtractor{batch: batch}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	norm := pipeline.NewNormalizer(slog.Default(), metrics)

	records, dropped := norm.Normalize(batch)
	assert.Len(t, records, 9)
	assert.Equal(t, 1, dropped)

	p := pipeline.New(ext, norm, ldr, slog.Default(), metrics)
	require.NoError(t, p.Run(context.Background()))
	require.Len(t, ldr.loaded, 1)
	assert.Len(t, ldr.loaded[0], 9)
}

func TestPipeline_Run_UnparsableTimestampCountsOneDrop(t *testing.T) {
	freezeClock(t)

	good := makeRawRecord("Denver, CO")
	bad := makeRawRecord("Duluth, MN")
	bad.LastUpdateRaw = strPtr("24 Aug 10:15 am XYZ")

	metrics := observability.NewMetricsForTesting()
	norm := pipeline.NewNormalizer(slog.Default(), metrics)

	records, dropped := norm.Normalize([]domain.RawRecord{good, bad})
	assert.Len(t, records, 1)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "Denver, CO", records[0].Location)
}

func TestPipeline_Run_EnsureSchemaFailureIsFatal(t *testing.T) {
	freezeClock(t)

	ext := &mockExtractor{batch: []domain.RawRecord{makeRawRecord("Denver, CO")}}
	ldr := &mockLoader{ensureErr: errors.New("permission denied")}
	p := newTestPipeline(ext, ldr)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure schema")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_AppendFailureIsFatal(t *testing.T) {
	freezeClock(t)

	ext := &mockExtractor{batch: []domain.RawRecord{makeRawRecord("Denver, CO")}}
	ldr := &mockLoader{appendErr: errors.New("backend unavailable")}
	p := newTestPipeline(ext, ldr)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load batch")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_EmptyBatchSkipsAppend(t *testing.T) {
	ext := &mockExtractor{} // every fetch failed upstream
	ldr := &mockLoader{}
	p := newTestPipeline(ext, ldr)

	require.NoError(t, p.Run(context.Background()))
	assert.Empty(t, ldr.loaded)
	assert.Equal(t, 1, ldr.ensureCalls)
}

func TestPipeline_Run_RepeatedRunsEnsureSchemaIdempotently(t *testing.T) {
	freezeClock(t)

	ext := &mockExtractor{batch: []domain.RawRecord{makeRawRecord("Denver, CO")}}
	ldr := &mockLoader{}
	p := newTestPipeline(ext, ldr)

	require.NoError(t, p.Run(context.Background()))
	require.NoError(t, p.Run(context.Background()))

	// EnsureSchema ran twice with no error; the rows appended, never replaced.
	assert.Equal(t, 2, ldr.ensureCalls)
	require.Len(t, ldr.loaded, 2)
}

func TestNormalizer_EmptyBatch(t *testing.T) {
	norm := pipeline.NewNormalizer(slog.Default(), observability.NewMetricsForTesting())
	records, dropped := norm.Normalize(nil)
	assert.Empty(t, records)
	assert.Zero(t, dropped)
}
