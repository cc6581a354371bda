// Command genmock writes a deterministic set of source files in the formats
// the pipeline reads: the price and supply/demand workbooks, the regional
// minimum-price table and one Latin-1 INMET file per station and year.
//
// Usage:
//
//	go run ./cmd/genmock -out data -start 2018-01-01 -end 2021-12-31 \
//	  -stations Sinop,Sorriso -sentinel-every 97
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/couchcryptid/commodity-panel-etl/internal/mockdata"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data", "output directory")
	start := flag.String("start", "2018-01-01", "first day (YYYY-MM-DD)")
	end := flag.String("end", "2021-12-31", "last day (YYYY-MM-DD)")
	stations := flag.String("stations", "Sinop,Sorriso", "comma-separated station labels")
	sentinelEvery := flag.Int("sentinel-every", 97, "replace every n-th hourly reading with -9999 (0 disables)")
	flag.Parse()

	from, err := time.Parse(time.DateOnly, *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	to, err := time.Parse(time.DateOnly, *end)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}

	var labels []string
	for _, s := range strings.Split(*stations, ",") {
		if s = strings.TrimSpace(s); s != "" {
			labels = append(labels, s)
		}
	}

	fx, err := mockdata.Generate(*out, mockdata.Options{
		Start:         from,
		End:           to,
		Stations:      labels,
		SentinelEvery: *sentinelEvery,
	})
	if err != nil {
		return err
	}

	fmt.Printf("price:          %s\n", fx.PricePath)
	fmt.Printf("supply/demand:  %s\n", fx.SupplyDemandPath)
	fmt.Printf("regional:       %s\n", fx.RegionalPath)
	fmt.Printf("weather (%d):   %s\n", len(fx.WeatherFiles), fx.WeatherDir)
	return nil
}
