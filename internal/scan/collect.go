package scan

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matsu1213/ipcheck/internal/geolite"
	"github.com/matsu1213/ipcheck/internal/netblock"
)

// Stats summarizes one pass over the classification source.
type Stats struct {
	TotalNetworks    int
	HomeNetworks     int
	ForeignNetworks  int
	SkippedRecords   int
	AggregatedBlocks int
}

// ProgressFunc observes ingestion progress. It is called once per consumed
// record with the running totals; callers decide how often to act on it.
type ProgressFunc func(seen, home int)

// Collect drains src and returns the deduplicated set of foreign networks.
// A network is home only when its country code is present and equals
// homeCode; unclassified networks count as foreign. Records that fail to
// decode are skipped and counted, never fatal.
func Collect(src geolite.Source, homeCode string, progress ProgressFunc) (*netblock.Set, Stats, error) {
	foreign := netblock.NewSet()
	var stats Stats

	for src.Next() {
		stats.TotalNetworks++

		record, err := src.Record()
		if err != nil {
			stats.SkippedRecords++
			log.Debug("Skipping malformed record", "error", err)
		} else if record.Country != "" && record.Country == homeCode {
			stats.HomeNetworks++
		} else {
			foreign.Add(record.Block)
		}

		if progress != nil {
			progress(stats.TotalNetworks, stats.HomeNetworks)
		}
	}
	if err := src.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan: source iteration: %w", err)
	}

	stats.ForeignNetworks = foreign.Len()
	return foreign, stats, nil
}

// Run executes the whole pipeline: ingest and deduplicate the foreign
// networks, then aggregate them into the minimal CIDR set.
func Run(src geolite.Source, homeCode string, progress ProgressFunc) ([]netblock.Block, Stats, error) {
	foreign, stats, err := Collect(src, homeCode, progress)
	if err != nil {
		return nil, stats, err
	}

	blocks := netblock.Aggregate(foreign.Blocks())
	stats.AggregatedBlocks = len(blocks)
	return blocks, stats, nil
}
