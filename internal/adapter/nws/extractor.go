package nws

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/weatherdw/nws-conditions-etl/internal/domain"
	"github.com/weatherdw/nws-conditions-etl/internal/observability"
)

// Page markers for the MapClick current-conditions panel.
const (
	stationInfoSelector = "span.smallTxt"
	temperatureSelector = "p.myforecast-current-lrg"
)

// conditionLabels are the labelled rows of the conditions table, in page
// order. The value of a row is the text of the cell immediately following the
// label cell.
var conditionLabels = []string{
	"Humidity",
	"Wind Speed",
	"Barometer",
	"Dewpoint",
	"Visibility",
	"Wind Chill",
	"Last update",
}

// numericTokenRe matches signed decimal or integer tokens, used on the
// station-info block that holds "lat, lon, elevation".
var numericTokenRe = regexp.MustCompile(`[-+]?\d*\.\d+|\d+`)

// Extractor fetches each configured target's page and extracts a RawRecord
// per target. Targets whose fetch fails are skipped, never fatal.
type Extractor struct {
	fetcher Fetcher
	targets []domain.Target
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewExtractor creates an Extractor over a fixed target list.
func NewExtractor(fetcher Fetcher, targets []domain.Target, logger *slog.Logger, metrics *observability.Metrics) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		targets: targets,
		logger:  logger,
		metrics: metrics,
	}
}

// ExtractAll fetches and extracts every target. A fetch failure for one
// target logs, counts, and moves on; the batch carries one RawRecord per
// reachable target.
func (e *Extractor) ExtractAll(ctx context.Context) []domain.RawRecord {
	batch := make([]domain.RawRecord, 0, len(e.targets))
	for _, target := range e.targets {
		if ctx.Err() != nil {
			return batch
		}

		html, err := e.fetcher.Fetch(ctx, target.URL)
		if err != nil {
			e.metrics.FetchFailures.Inc()
			e.logger.Warn("fetch failed, skipping target", "target", target.Name, "error", err)
			continue
		}
		e.metrics.PagesFetched.Inc()

		batch = append(batch, Extract(target, html))
	}
	return batch
}

// Extract locates the named page sections and emits an unvalidated record.
// Pure: no I/O, no errors. Any field the page does not expose is nil.
func Extract(target domain.Target, html string) domain.RawRecord {
	rec := domain.RawRecord{Location: target.Name}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return rec
	}

	// Station info: exactly three numeric tokens, in (lat, lon, elevation)
	// order. Fewer than three leaves all three nil.
	if text := strings.TrimSpace(doc.Find(stationInfoSelector).First().Text()); text != "" {
		if tokens := numericTokenRe.FindAllString(text, -1); len(tokens) >= 3 {
			rec.LatRaw = &tokens[0]
			rec.LonRaw = &tokens[1]
			rec.ElevRaw = &tokens[2]
		}
	}

	if sel := doc.Find(temperatureSelector).First(); sel.Length() > 0 {
		temp := strings.TrimSpace(sel.Text())
		rec.TemperatureRaw = &temp
	}

	rows := labelledRows(doc, conditionLabels)
	rec.HumidityRaw = rows["Humidity"]
	rec.WindSpeedRaw = rows["Wind Speed"]
	rec.BarometerRaw = rows["Barometer"]
	rec.DewpointRaw = rows["Dewpoint"]
	rec.VisibilityRaw = rows["Visibility"]
	rec.WindChillRaw = rows["Wind Chill"]
	rec.LastUpdateRaw = rows["Last update"]

	return rec
}

// labelledRows walks the document's table cells once and, for each wanted
// label, captures the trimmed text of the next sibling cell. Absent labels
// yield absent entries; a label with no following cell is treated the same.
func labelledRows(doc *goquery.Document, labels []string) map[string]*string {
	wanted := make(map[string]bool, len(labels))
	for _, label := range labels {
		wanted[label] = true
	}

	values := make(map[string]*string, len(labels))
	doc.Find("td").Each(func(_ int, cell *goquery.Selection) {
		label := strings.TrimSpace(cell.Text())
		if !wanted[label] {
			return
		}
		if _, seen := values[label]; seen {
			return
		}
		next := cell.Next()
		if next.Length() == 0 {
			return
		}
		value := strings.TrimSpace(next.Text())
		values[label] = &value
	})
	return values
}
