package domain

// Target is one configured city and the address of its current-conditions page.
type Target struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DefaultTargets is the fixed city list the service scrapes. The set is static
// configuration, injected into the extractor at wiring time so tests can
// substitute fakes.
var DefaultTargets = []Target{
	{Name: "Portland, OR", URL: "https://forecast.weather.gov/MapClick.php?lat=45.5118&lon=-122.6756"},
	{Name: "San Diego, CA", URL: "https://forecast.weather.gov/MapClick.php?lat=32.7157&lon=-117.1617"},
	{Name: "Duluth, MN", URL: "https://forecast.weather.gov/MapClick.php?lat=46.788&lon=-92.0998"},
	{Name: "Minneapolis, MN", URL: "https://forecast.weather.gov/MapClick.php?lat=44.979&lon=-93.2649"},
	{Name: "Salt Lake City, UT", URL: "https://forecast.weather.gov/MapClick.php?zoneid=UTZ105&zflg=1"},
	{Name: "Denver, CO", URL: "https://forecast.weather.gov/MapClick.php?lat=39.74&lon=-104.992"},
	{Name: "San Francisco, CA", URL: "https://forecast.weather.gov/MapClick.php?lat=37.7771&lon=-122.4197"},
	{Name: "New York City, NY", URL: "https://forecast.weather.gov/MapClick.php?lat=40.7143&lon=-74.006"},
	{Name: "Portland, ME", URL: "https://forecast.weather.gov/MapClick.php?lat=43.6592&lon=-70.2567"},
	{Name: "Seattle, WA", URL: "https://forecast.weather.gov/MapClick.php?lat=47.6036&lon=-122.3294"},
	{Name: "Baltimore, MD", URL: "https://forecast.weather.gov/MapClick.php?lat=39.2906&lon=-76.6093"},
}

// RawRecord is the unvalidated extraction result for one target. Location is
// always set from the target name; every other field is nil when the page did
// not expose that section. Field-level gaps are data, not errors.
type RawRecord struct {
	Location       string  `json:"location"`
	LatRaw         *string `json:"lat_raw"`
	LonRaw         *string `json:"lon_raw"`
	ElevRaw        *string `json:"elev_raw"`
	TemperatureRaw *string `json:"temperature_raw"`
	HumidityRaw    *string `json:"humidity_raw"`
	WindSpeedRaw   *string `json:"wind_speed_raw"`
	BarometerRaw   *string `json:"barometer_raw"`
	DewpointRaw    *string `json:"dewpoint_raw"`
	VisibilityRaw  *string `json:"visibility_raw"`
	WindChillRaw   *string `json:"wind_chill_raw"`
	LastUpdateRaw  *string `json:"last_update_raw"`
}

// TypedRecord is the fully parsed, unit-converted row appended to the daily
// conditions table. Pointer fields map to NULLABLE warehouse columns; the
// dewpoint and wind chill pairs are set or nil together.
type TypedRecord struct {
	Location   string   `json:"location"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	ElevFt     *int64   `json:"elev_ft"`
	Humidity   float64  `json:"humidity"`   // fraction, 0-1
	WindSpeed  int64    `json:"wind_speed"` // mph, missing readings zero-filled
	Barometer  *float64 `json:"barometer"`  // millibars
	VisMiles   *float64 `json:"vis_miles"`
	DewpointF  *int64   `json:"dewpoint_f"`
	DewpointC  *int64   `json:"dewpoint_c"`
	WindChillF *float64 `json:"wind_chill_f"`
	WindChillC *float64 `json:"wind_chill_c"`
	TempF      int64    `json:"temp_f"`
	TempC      int64    `json:"temp_c"`
	LastUpdate string   `json:"last_update"` // UTC, "2006-01-02 15:04:05.000000"
}
