package geolite

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	maxMindDownloadURL = "https://download.maxmind.com/app/geoip_download"
	countryEditionID   = "GeoLite2-Country"
	userAgent          = "ipcheck-geolite-updater/1.0"
)

var (
	updateGroup singleflight.Group
	httpClient  = &http.Client{Timeout: 2 * time.Minute}
)

// ErrNoAPIKey indicates that the MaxMind license key has not been configured.
var ErrNoAPIKey = errors.New("geolite: api key is not configured")

// UpdateDatabase downloads the GeoLite2-Country dataset with the given license
// key and installs it at destPath. Concurrent callers share a single download.
// If the key is empty the call is skipped and ErrNoAPIKey is returned.
func UpdateDatabase(ctx context.Context, apiKey, destPath string) error {
	_, err, _ := updateGroup.Do("update", func() (interface{}, error) {
		key := strings.TrimSpace(apiKey)
		if key == "" {
			return nil, ErrNoAPIKey
		}
		if err := downloadEdition(ctx, key, destPath); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func downloadEdition(ctx context.Context, apiKey, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, buildDownloadURL(apiKey, countryEditionID), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", countryEditionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("download %s: unexpected status %d: %s", countryEditionID, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	gzipReader, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: open gzip: %w", countryEditionID, err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: read tar: %w", countryEditionID, err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if filepath.Base(header.Name) != countryEditionID+".mmdb" {
			continue
		}

		if err := writeToFile(destPath, tarReader); err != nil {
			return fmt.Errorf("%s: write file: %w", countryEditionID, err)
		}
		return nil
	}

	return fmt.Errorf("%s: mmdb file not found in archive", countryEditionID)
}

func writeToFile(destPath string, data io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), "geolite-*.mmdb")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmpFile.Name())
	}()

	if _, err := io.Copy(tmpFile, data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("copy data: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), destPath); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}

	return nil
}

func buildDownloadURL(apiKey, edition string) string {
	return fmt.Sprintf("%s?edition_id=%s&license_key=%s&suffix=tar.gz", maxMindDownloadURL, edition, apiKey)
}
