package bigquery

import (
	"net/http"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/weatherdw/nws-conditions-etl/internal/domain"
)

func TestSchema(t *testing.T) {
	require.Len(t, Schema, 17)

	required := map[string]bool{}
	types := map[string]bigquery.FieldType{}
	for _, field := range Schema {
		required[field.Name] = field.Required
		types[field.Name] = field.Type
	}

	// Mandatory columns match the drop policy in the normalizer.
	for _, name := range []string{"location", "city", "state", "lat", "lon", "humidity", "wind_speed", "temp_f", "temp_c", "last_update"} {
		assert.True(t, required[name], "%s should be REQUIRED", name)
	}
	// Station gaps are representable as NULL.
	for _, name := range []string{"elev_ft", "barometer", "vis_miles", "dewpoint_f", "dewpoint_c", "wind_chill_f", "wind_chill_c"} {
		assert.False(t, required[name], "%s should be NULLABLE", name)
	}

	assert.Equal(t, bigquery.FloatFieldType, types["barometer"])
	assert.Equal(t, bigquery.IntegerFieldType, types["dewpoint_f"])
	assert.Equal(t, bigquery.FloatFieldType, types["wind_chill_f"])
	assert.Equal(t, bigquery.StringFieldType, types["last_update"])
}

func TestConditionsRowSave(t *testing.T) {
	elev := int64(5280)
	barometer := 1019.98
	dewF, dewC := int64(57), int64(14)

	rec := domain.TypedRecord{
		Location:   "Denver, CO",
		City:       "Denver",
		State:      "CO",
		Lat:        39.74,
		Lon:        -104.99,
		ElevFt:     &elev,
		Humidity:   0.45,
		WindSpeed:  12,
		Barometer:  &barometer,
		DewpointF:  &dewF,
		DewpointC:  &dewC,
		TempF:      72,
		TempC:      22,
		LastUpdate: "2023-08-24 16:15:00.000000",
	}

	values, insertID, err := (&conditionsRow{rec: rec}).Save()
	require.NoError(t, err)
	assert.Empty(t, insertID)
	require.Len(t, values, 17)

	assert.Equal(t, bigquery.Value("Denver, CO"), values["location"])
	assert.Equal(t, bigquery.Value("Denver"), values["city"])
	assert.Equal(t, bigquery.Value(39.74), values["lat"])
	assert.Equal(t, bigquery.Value(int64(5280)), values["elev_ft"])
	assert.Equal(t, bigquery.Value(1019.98), values["barometer"])
	assert.Equal(t, bigquery.Value(int64(57)), values["dewpoint_f"])
	assert.Equal(t, bigquery.Value(int64(72)), values["temp_f"])
	assert.Equal(t, bigquery.Value("2023-08-24 16:15:00.000000"), values["last_update"])

	// Unset optional fields become NULL, not zero.
	assert.Nil(t, values["vis_miles"])
	assert.Nil(t, values["wind_chill_f"])
	assert.Nil(t, values["wind_chill_c"])
}

func TestStatusHelpers(t *testing.T) {
	notFound := &googleapi.Error{Code: http.StatusNotFound}
	conflict := &googleapi.Error{Code: http.StatusConflict}

	assert.True(t, isNotFound(notFound))
	assert.False(t, isNotFound(conflict))
	assert.True(t, isConflict(conflict))
	assert.False(t, isConflict(assert.AnError))
}
