// Command preview runs the extraction and normalization stages against saved
// conditions pages and prints the resulting typed records as JSON, for
// checking parse behavior without touching the network or the warehouse.
//
// Usage:
//
//	preview [-location "City, ST"] page.html [page.html ...]
//
// Without -location, each file's base name stands in for the city name.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/weatherdw/nws-conditions-etl/internal/adapter/nws"
	"github.com/weatherdw/nws-conditions-etl/internal/domain"
	"github.com/weatherdw/nws-conditions-etl/internal/observability"
	"github.com/weatherdw/nws-conditions-etl/internal/pipeline"
)

func main() {
	location := flag.String("location", "", `override the "City, ST" location for the extracted records`)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, `usage: preview [-location "City, ST"] page.html [page.html ...]`)
		os.Exit(2)
	}

	logger := observability.NewLogger("info", "text")
	norm := pipeline.NewNormalizer(logger, observability.NewMetricsForTesting())

	batch := make([]domain.RawRecord, 0, flag.NArg())
	for _, path := range flag.Args() {
		html, err := os.ReadFile(path)
		if err != nil {
			logger.Error("read page", "path", path, "error", err)
			os.Exit(1)
		}

		name := *location
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		batch = append(batch, nws.Extract(domain.Target{Name: name, URL: path}, string(html)))
	}

	records, dropped := norm.Normalize(batch)

	out := struct {
		Records []domain.TypedRecord `json:"records"`
		Dropped int                  `json:"dropped"`
	}{Records: records, Dropped: dropped}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode output", "error", err)
		os.Exit(1)
	}
}
