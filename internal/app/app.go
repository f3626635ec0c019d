package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/matsu1213/ipcheck/internal/app/version"
	"github.com/matsu1213/ipcheck/internal/config"
	"github.com/matsu1213/ipcheck/internal/export"
	"github.com/matsu1213/ipcheck/internal/geolite"
	"github.com/matsu1213/ipcheck/internal/netblock"
	"github.com/matsu1213/ipcheck/internal/scan"
)

const defaultProgressInterval = 1000

func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	dbFlag := flag.String("db", "", "Path to the GeoLite2-Country database")
	homeFlag := flag.String("home", "", "ISO country code treated as home")
	outFlag := flag.String("out", "", "Path of the JSON output file")
	updateFlag := flag.Bool("update", false, "Download a fresh GeoLite2-Country database before scanning")
	lookupFlag := flag.String("lookup", "", "Print the country code for one IP address and exit")
	verboseFlag := flag.Bool("verbose", false, "Enable debug logging")
	versionFlag := flag.Bool("version", false, "Print build information and exit")
	flag.Parse()

	if *verboseFlag {
		log.SetLevel(log.DebugLevel)
	}

	if *versionFlag {
		info := version.Get()
		fmt.Printf("ipcheck %s (built %s)\n", info.BuildVersion, info.BuiltAt)
		return nil
	}

	config.ReadSettings()
	cfg := config.GetConfig()

	dbPath := firstNonEmpty(*dbFlag, cfg.GeoLite.DatabasePath)
	homeCode := strings.ToUpper(firstNonEmpty(*homeFlag, cfg.HomeCountry))
	outPath := firstNonEmpty(*outFlag, cfg.Output.Path)

	if *updateFlag || cfg.GeoLite.AutoUpdate {
		log.Info("Updating GeoLite2-Country database", "path", dbPath)
		err := geolite.UpdateDatabase(context.Background(), cfg.GeoLite.APIKey, dbPath)
		switch {
		case err == nil:
			log.Info("Database updated")
		case errors.Is(err, geolite.ErrNoAPIKey) && !*updateFlag:
			// Auto-update without a key degrades to using the existing file.
			log.Warn("Skipping database update: no API key configured")
		default:
			return fmt.Errorf("update database: %w", err)
		}
	}

	if *lookupFlag != "" {
		code := geolite.CountryCode(dbPath, *lookupFlag)
		log.Info("Country lookup", "ip", *lookupFlag, "country", code, "home", code == homeCode)
		return nil
	}

	start := time.Now()

	src, err := geolite.OpenCountrySource(dbPath)
	if err != nil {
		return fmt.Errorf("open classification source %s: %w", dbPath, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn("error closing classification source", "error", err)
		}
	}()

	interval := cfg.Progress.Interval
	if interval <= 0 {
		interval = defaultProgressInterval
	}
	progress := func(seen, home int) {
		if seen%interval == 0 {
			log.Debug("Scanning networks", "processed", seen, "home", home)
		}
	}

	log.Info("Scanning classification database", "path", dbPath, "home_country", homeCode)
	blocks, stats, err := scan.Run(src, homeCode, progress)
	if err != nil {
		return err
	}

	log.Info("Network scan complete",
		"total", stats.TotalNetworks,
		"home", stats.HomeNetworks,
		"foreign", stats.ForeignNetworks,
		"skipped", stats.SkippedRecords)
	log.Info("CIDR aggregation complete",
		"before", stats.ForeignNetworks,
		"after", stats.AggregatedBlocks)

	if err := export.WriteFile(outPath, blocks); err != nil {
		return fmt.Errorf("write output %s: %w", outPath, err)
	}

	logPrefixHistogram(blocks)
	log.Info("Finished",
		"output", outPath,
		"cidrs", len(blocks),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func logPrefixHistogram(blocks []netblock.Block) {
	hist := export.PrefixHistogram(blocks)
	prefixes := make([]int, 0, len(hist))
	for p := range hist {
		prefixes = append(prefixes, int(p))
	}
	sort.Ints(prefixes)
	for _, p := range prefixes {
		log.Debugf("/%d: %d blocks", p, hist[uint8(p)])
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
