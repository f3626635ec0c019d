package geolite

import (
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// CountryCode returns the upper-cased ISO country code the database at dbPath
// assigns to ipAddress, or "N/A" when the address is invalid, the database
// cannot be read, or no country is recorded for the address.
func CountryCode(dbPath, ipAddress string) string {
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return "N/A"
	}

	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return "N/A"
	}
	defer reader.Close()

	record, err := reader.Country(ip)
	if err != nil {
		return "N/A"
	}
	if record.Country.IsoCode == "" {
		return "N/A"
	}
	return strings.ToUpper(record.Country.IsoCode)
}
