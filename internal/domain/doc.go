// Package domain models National Weather Service (NWS) current-conditions data.
//
// # Data Source
//
// Conditions come from the NWS point-forecast ("MapClick") pages, e.g.
// https://forecast.weather.gov/MapClick.php?lat=39.74&lon=-104.992. Each page
// carries a "Current conditions" panel: a large temperature readout, a
// small-text block with the station's latitude, longitude, and elevation, and
// a table of labelled rows (Humidity, Wind Speed, Barometer, Dewpoint,
// Visibility, Wind Chill, Last update). The extractor turns one page into a
// RawRecord of optional strings; NormalizeRecord turns that into the strict
// 17-column TypedRecord the warehouse table declares.
//
// # Page Conventions
//
// Temperature:
//
//	"72°F" — the first integer substring is the Fahrenheit reading. Celsius is
//	derived as round((F-32)*5/9).
//
// Paired readings:
//
//	Dewpoint and wind chill print both scales in one phrase, "57°F (14°C)".
//	The first two integer substrings are taken as (F, C); the pair is set or
//	nil together. Wind chill additionally treats a literal 0/0 pair as "no
//	reading" — zero is not a value this feed produces for wind chill.
//
// Wind speed:
//
//	"Calm" means no measurable wind. Calm, an absent row, and text without
//	digits all normalize to 0 mph, never to NULL.
//
// Barometer:
//
//	Inches of mercury with an "in" unit, "30.12 in (1019.6 mb)". Converted to
//	millibars at 33.8639 mb/inHg and rounded to 2 decimals.
//
// Last update:
//
//	A local stamp with a zone abbreviation, "24 Aug 10:15 am CST". The
//	abbreviation resolves through a fixed offset table (zoneOffsets); the year
//	is inferred from the package clock because the page omits it. Rendered as
//	"YYYY-MM-DD HH:MM:SS.ffffff" in UTC.
//
// Unknown values:
//
//	"NA" is the page's sentinel for a reading the station does not expose.
//	It maps to NULL everywhere except wind speed's zero-fill.
//
// # Mandatory Fields
//
// The destination schema requires location, coordinates, humidity, the
// temperature pair, and last_update. A record whose mandatory fields cannot
// be parsed is excluded from the batch; the drop is counted so data loss is
// never silent. All other fields degrade to NULL individually.
package domain
