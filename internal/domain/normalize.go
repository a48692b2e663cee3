package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// notAvailable is the sentinel the NWS page renders when a station has no
	// reading for a field. Distinct from a parse failure.
	notAvailable = "NA"

	// inHgToMillibars converts inches of mercury to millibars.
	inHgToMillibars = 33.8639

	// lastUpdateFormat is the fixed-precision UTC render of the page timestamp.
	lastUpdateFormat = "2006-01-02 15:04:05.000000"
)

var (
	// intRe matches the first run of digits, e.g. "72°F" -> "72".
	intRe = regexp.MustCompile(`\d+`)

	// numberRe matches a decimal or integer token, e.g. "10.00 mi" -> "10.00".
	numberRe = regexp.MustCompile(`\d+\.\d+|\d+`)
)

// zoneOffsets maps the 3-letter zone abbreviations printed in the page's
// "Last update" row to fixed UTC offsets in seconds. The feed currently only
// emits US zones; an unknown abbreviation is a parse failure, not a guess.
var zoneOffsets = map[string]int{
	"EST":  -5 * 3600,
	"EDT":  -4 * 3600,
	"CST":  -6 * 3600,
	"CDT":  -5 * 3600,
	"MST":  -7 * 3600,
	"MDT":  -6 * 3600,
	"PST":  -8 * 3600,
	"PDT":  -7 * 3600,
	"AKST": -9 * 3600,
	"AKDT": -8 * 3600,
	"HST":  -10 * 3600,
	"GMT":  0,
	"UTC":  0,
}

// lastUpdateLayouts are the stamp shapes seen on MapClick pages, tried in
// order after the zone abbreviation is stripped. Layouts without a year take
// the current year from the package clock.
var lastUpdateLayouts = []string{
	"2 Jan 3:04 PM",
	"2 Jan 2006 3:04 PM",
	"Jan 2 3:04 PM",
	"Jan 2 2006 3:04 PM",
	"2 Jan 15:04",
}

// NormalizeRecord parses a RawRecord into its typed, unit-converted form.
// Fields the destination schema requires (coordinates, temperature, humidity,
// last update) return an error when unparsable, which excludes the whole
// record from the batch. Every other malformed or absent field degrades to
// nil, or to zero for wind speed.
func NormalizeRecord(raw RawRecord) (TypedRecord, error) {
	city, state := SplitLocation(raw.Location)

	lat, err := parseCoordinate(raw.LatRaw)
	if err != nil {
		return TypedRecord{}, fmt.Errorf("lat: %w", err)
	}
	lon, err := parseCoordinate(raw.LonRaw)
	if err != nil {
		return TypedRecord{}, fmt.Errorf("lon: %w", err)
	}
	tempF, err := parseTempF(raw.TemperatureRaw)
	if err != nil {
		return TypedRecord{}, fmt.Errorf("temperature: %w", err)
	}
	humidity, err := parseHumidity(raw.HumidityRaw)
	if err != nil {
		return TypedRecord{}, fmt.Errorf("humidity: %w", err)
	}
	lastUpdate, err := parseLastUpdate(raw.LastUpdateRaw)
	if err != nil {
		return TypedRecord{}, fmt.Errorf("last update: %w", err)
	}

	dewF, dewC := parseIntPair(raw.DewpointRaw)
	chillF, chillC := parseWindChill(raw.WindChillRaw)

	return TypedRecord{
		Location:   raw.Location,
		City:       city,
		State:      state,
		Lat:        lat,
		Lon:        lon,
		ElevFt:     parseElevFt(raw.ElevRaw),
		Humidity:   humidity,
		WindSpeed:  parseWindSpeed(raw.WindSpeedRaw),
		Barometer:  parseBarometer(raw.BarometerRaw),
		VisMiles:   parseVisibility(raw.VisibilityRaw),
		DewpointF:  dewF,
		DewpointC:  dewC,
		WindChillF: chillF,
		WindChillC: chillC,
		TempF:      tempF,
		TempC:      TempCFromF(tempF),
		LastUpdate: lastUpdate,
	}, nil
}

// SplitLocation splits "City, ST" on the first ", ". Without a separator the
// whole string is the city and the state is empty.
func SplitLocation(location string) (city, state string) {
	city, state, _ = strings.Cut(location, ", ")
	return city, state
}

// TempCFromF converts a Fahrenheit reading to Celsius, rounded to the nearest
// integer.
func TempCFromF(f int64) int64 {
	return int64(math.Round(float64(f-32) * 5 / 9))
}

// fieldText unwraps an optional raw field, reporting false for nil, empty, or
// the page's not-available sentinel.
func fieldText(raw *string) (string, bool) {
	if raw == nil {
		return "", false
	}
	text := strings.TrimSpace(*raw)
	if text == "" || text == notAvailable {
		return "", false
	}
	return text, true
}

func parseCoordinate(raw *string) (float64, error) {
	text, ok := fieldText(raw)
	if !ok {
		return 0, fmt.Errorf("missing")
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable coordinate %q", text)
	}
	return v, nil
}

// parseTempF extracts the first integer substring from the large temperature
// readout, e.g. "72°F" -> 72.
func parseTempF(raw *string) (int64, error) {
	text, ok := fieldText(raw)
	if !ok {
		return 0, fmt.Errorf("missing")
	}
	match := intRe.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("no integer in %q", text)
	}
	v, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable temperature %q", text)
	}
	return v, nil
}

// parseHumidity extracts the first integer percentage and converts it to a
// 0-1 fraction, e.g. "45%" -> 0.45.
func parseHumidity(raw *string) (float64, error) {
	text, ok := fieldText(raw)
	if !ok {
		return 0, fmt.Errorf("missing")
	}
	match := intRe.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("no integer in %q", text)
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable humidity %q", text)
	}
	return v / 100, nil
}

// parseWindSpeed extracts the first integer mph reading. "Calm", an absent
// row, and text without digits all zero-fill rather than going null; a
// missing wind reading means no measurable wind.
func parseWindSpeed(raw *string) int64 {
	text, ok := fieldText(raw)
	if !ok {
		return 0
	}
	match := intRe.FindString(text)
	if match == "" {
		return 0
	}
	v, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseElevFt parses the elevation token as an integer; the NA sentinel and
// malformed tokens yield nil.
func parseElevFt(raw *string) *int64 {
	text, ok := fieldText(raw)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	v := int64(f)
	return &v
}

// parseBarometer expects a leading decimal in inches of mercury followed by
// an "in" unit, e.g. "30.12 in (1019.6 mb)", and converts to millibars
// rounded to 2 decimals. Missing unit or the NA sentinel yield nil.
func parseBarometer(raw *string) *float64 {
	text, ok := fieldText(raw)
	if !ok {
		return nil
	}
	if !strings.Contains(text, "in") {
		return nil
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil
	}
	mb := round2(v * inHgToMillibars)
	return &mb
}

// parseVisibility extracts the first decimal-or-integer number as miles,
// rounded to 2 decimals; nil when absent.
func parseVisibility(raw *string) *float64 {
	text, ok := fieldText(raw)
	if !ok {
		return nil
	}
	match := numberRe.FindString(text)
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	miles := round2(v)
	return &miles
}

// parseIntPair extracts the first two integer substrings of a paired
// Fahrenheit/Celsius phrase, e.g. "57°F (14°C)" -> (57, 14). Both values are
// set or both are nil.
func parseIntPair(raw *string) (*int64, *int64) {
	text, ok := fieldText(raw)
	if !ok {
		return nil, nil
	}
	matches := intRe.FindAllString(text, 2)
	if len(matches) < 2 {
		return nil, nil
	}
	f, errF := strconv.ParseInt(matches[0], 10, 64)
	c, errC := strconv.ParseInt(matches[1], 10, 64)
	if errF != nil || errC != nil {
		return nil, nil
	}
	return &f, &c
}

// parseWindChill is the paired extraction with the feed's zero sentinel
// applied: a 0/0 pair means the station reported no wind chill, so the pair
// normalizes to nil rather than zero.
func parseWindChill(raw *string) (*float64, *float64) {
	fRaw, cRaw := parseIntPair(raw)
	if fRaw == nil || cRaw == nil {
		return nil, nil
	}
	if *fRaw == 0 && *cRaw == 0 {
		return nil, nil
	}
	f := float64(*fRaw)
	c := float64(*cRaw)
	return &f, &c
}

// parseLastUpdate parses the page's local "Last update" stamp, e.g.
// "24 Aug 10:15 am CST", resolves the zone abbreviation through zoneOffsets,
// and renders the instant in UTC with microsecond precision. Stamps without a
// year take the current year from the package clock.
func parseLastUpdate(raw *string) (string, error) {
	text, ok := fieldText(raw)
	if !ok {
		return "", fmt.Errorf("missing")
	}

	fields := strings.Fields(strings.ReplaceAll(text, ",", ""))
	if len(fields) < 3 {
		return "", fmt.Errorf("malformed timestamp %q", text)
	}

	zone := strings.ToUpper(fields[len(fields)-1])
	offset, found := zoneOffsets[zone]
	if !found {
		return "", fmt.Errorf("unknown zone %q in %q", zone, text)
	}

	stamp := strings.Join(normalizeMeridiem(fields[:len(fields)-1]), " ")
	var parsed time.Time
	var err error
	for _, layout := range lastUpdateLayouts {
		parsed, err = time.Parse(layout, stamp)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("unparsable timestamp %q", text)
	}

	year := parsed.Year()
	if year == 0 {
		year = clock.Now().UTC().Year()
	}

	local := time.Date(year, parsed.Month(), parsed.Day(), parsed.Hour(), parsed.Minute(), 0, 0,
		time.FixedZone(zone, offset))
	return local.UTC().Format(lastUpdateFormat), nil
}

// normalizeMeridiem uppercases am/pm tokens so the stamp matches Go's "PM"
// layout element regardless of how the page cases them.
func normalizeMeridiem(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		if strings.EqualFold(f, "am") || strings.EqualFold(f, "pm") {
			out[i] = strings.ToUpper(f)
			continue
		}
		out[i] = f
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
