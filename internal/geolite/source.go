package geolite

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/maxminddb-golang"

	"github.com/matsu1213/ipcheck/internal/netblock"
)

// Record is one network entry yielded by a classification source. Country is
// the upper-cased ISO 3166-1 code; it is empty when the database holds no
// country for the range.
type Record struct {
	Block   netblock.Block
	Country string
}

// Source yields a finite sequence of classified IPv4 networks. A false Next
// ends the sequence; Err reports whether iteration stopped early. Record may
// fail for a single entry without invalidating the rest of the sequence.
type Source interface {
	Next() bool
	Record() (Record, error)
	Err() error
	Close() error
}

type countryEntry struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// CountrySource iterates every IPv4 network of a GeoLite2-Country database.
type CountrySource struct {
	reader   *maxminddb.Reader
	networks *maxminddb.Networks
}

// ipv4All must hold a 4-byte IP: the reader only rebases traversal onto the
// IPv4 subtree of an IPv6 search tree when len(IP) == net.IPv4len, and
// net.IPv4zero is a 16-byte representation.
var ipv4All = &net.IPNet{IP: net.IP{0, 0, 0, 0}, Mask: net.CIDRMask(0, 32)}

// OpenCountrySource opens the database at path and positions an iterator over
// the whole IPv4 space. Aliased IPv4-in-IPv6 ranges are skipped so every
// network is visited exactly once.
func OpenCountrySource(path string) (*CountrySource, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geolite: open %s: %w", path, err)
	}
	return &CountrySource{
		reader:   reader,
		networks: reader.NetworksWithin(ipv4All, maxminddb.SkipAliasedNetworks),
	}, nil
}

// Next advances to the next network in the database.
func (s *CountrySource) Next() bool { return s.networks.Next() }

// Record decodes the current network and its country code. Decode failures
// affect only the current entry.
func (s *CountrySource) Record() (Record, error) {
	var entry countryEntry
	ipNet, err := s.networks.Network(&entry)
	if err != nil {
		return Record{}, fmt.Errorf("geolite: decode record: %w", err)
	}
	block, err := netblock.FromIPNet(ipNet)
	if err != nil {
		return Record{}, fmt.Errorf("geolite: %w", err)
	}
	return Record{Block: block, Country: strings.ToUpper(entry.Country.ISOCode)}, nil
}

// Err reports an error that terminated iteration early.
func (s *CountrySource) Err() error { return s.networks.Err() }

// Close releases the underlying database reader.
func (s *CountrySource) Close() error { return s.reader.Close() }
