// Package bigquery appends typed condition records to the warehouse table.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"

	"github.com/weatherdw/nws-conditions-etl/internal/domain"
)

// datasetLocation pins new datasets to the US multi-region, matching where
// the table has always lived.
const datasetLocation = "US"

// Schema is the fixed 17-column definition of the daily conditions table.
// The dewpoint and wind chill pairs and the station-derived fields are
// NULLABLE because a station may not expose them; everything else is REQUIRED
// and unparsable records are dropped upstream instead of loaded with gaps.
var Schema = bigquery.Schema{
	{Name: "location", Type: bigquery.StringFieldType, Required: true},
	{Name: "city", Type: bigquery.StringFieldType, Required: true},
	{Name: "state", Type: bigquery.StringFieldType, Required: true},
	{Name: "lat", Type: bigquery.FloatFieldType, Required: true},
	{Name: "lon", Type: bigquery.FloatFieldType, Required: true},
	{Name: "elev_ft", Type: bigquery.IntegerFieldType},
	{Name: "humidity", Type: bigquery.FloatFieldType, Required: true},
	{Name: "wind_speed", Type: bigquery.IntegerFieldType, Required: true},
	{Name: "barometer", Type: bigquery.FloatFieldType},
	{Name: "vis_miles", Type: bigquery.FloatFieldType},
	{Name: "dewpoint_f", Type: bigquery.IntegerFieldType},
	{Name: "dewpoint_c", Type: bigquery.IntegerFieldType},
	{Name: "wind_chill_f", Type: bigquery.FloatFieldType},
	{Name: "wind_chill_c", Type: bigquery.FloatFieldType},
	{Name: "temp_f", Type: bigquery.IntegerFieldType, Required: true},
	{Name: "temp_c", Type: bigquery.IntegerFieldType, Required: true},
	{Name: "last_update", Type: bigquery.StringFieldType, Required: true},
}

// Loader ensures the destination dataset/table exists and appends batches.
// Append-only: rows are never updated or deduplicated.
type Loader struct {
	client    *bigquery.Client
	datasetID string
	tableID   string
	logger    *slog.Logger
}

// NewLoader creates a Loader against an existing client.
func NewLoader(client *bigquery.Client, datasetID, tableID string, logger *slog.Logger) *Loader {
	return &Loader{
		client:    client,
		datasetID: datasetID,
		tableID:   tableID,
		logger:    logger,
	}
}

// EnsureSchema creates the dataset and table only when absent. Idempotent:
// running it against an existing table is a no-op, and a concurrent creation
// racing ours is tolerated. Any other failure is fatal for the run.
func (l *Loader) EnsureSchema(ctx context.Context) error {
	ds := l.client.Dataset(l.datasetID)
	if _, err := ds.Metadata(ctx); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("dataset %s metadata: %w", l.datasetID, err)
		}
		if err := ds.Create(ctx, &bigquery.DatasetMetadata{Location: datasetLocation}); err != nil && !isConflict(err) {
			return fmt.Errorf("create dataset %s: %w", l.datasetID, err)
		}
		l.logger.Info("created dataset", "dataset", l.datasetID)
	}

	table := ds.Table(l.tableID)
	if _, err := table.Metadata(ctx); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("table %s metadata: %w", l.tableID, err)
		}
		if err := table.Create(ctx, &bigquery.TableMetadata{Schema: Schema}); err != nil && !isConflict(err) {
			return fmt.Errorf("create table %s: %w", l.tableID, err)
		}
		l.logger.Info("created table", "dataset", l.datasetID, "table", l.tableID)
	}

	return nil
}

// Append streams the batch as new rows and blocks until the insert is
// acknowledged. Failure is fatal for the run; there is no partial-success
// contract beyond what the backend guarantees.
func (l *Loader) Append(ctx context.Context, batch []domain.TypedRecord) error {
	if len(batch) == 0 {
		return nil
	}

	rows := make([]*conditionsRow, len(batch))
	for i := range batch {
		rows[i] = &conditionsRow{rec: batch[i]}
	}

	inserter := l.client.Dataset(l.datasetID).Table(l.tableID).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("append %d rows to %s.%s: %w", len(batch), l.datasetID, l.tableID, err)
	}
	return nil
}

// conditionsRow adapts a TypedRecord to the streaming insert API, mapping nil
// pointers to NULL column values.
type conditionsRow struct {
	rec domain.TypedRecord
}

// Save implements bigquery.ValueSaver.
func (r *conditionsRow) Save() (map[string]bigquery.Value, string, error) {
	rec := r.rec
	return map[string]bigquery.Value{
		"location":     rec.Location,
		"city":         rec.City,
		"state":        rec.State,
		"lat":          rec.Lat,
		"lon":          rec.Lon,
		"elev_ft":      intValue(rec.ElevFt),
		"humidity":     rec.Humidity,
		"wind_speed":   rec.WindSpeed,
		"barometer":    floatValue(rec.Barometer),
		"vis_miles":    floatValue(rec.VisMiles),
		"dewpoint_f":   intValue(rec.DewpointF),
		"dewpoint_c":   intValue(rec.DewpointC),
		"wind_chill_f": floatValue(rec.WindChillF),
		"wind_chill_c": floatValue(rec.WindChillC),
		"temp_f":       rec.TempF,
		"temp_c":       rec.TempC,
		"last_update":  rec.LastUpdate,
	}, "", nil
}

func intValue(v *int64) bigquery.Value {
	if v == nil {
		return nil
	}
	return *v
}

func floatValue(v *float64) bigquery.Value {
	if v == nil {
		return nil
	}
	return *v
}

func isNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func isConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

func hasStatus(err error, code int) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
