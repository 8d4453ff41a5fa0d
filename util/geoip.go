package util

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

var (
	geoipDB    *geoip2.Reader
	geoipCache *cache.Cache
)

// InitGeoIP initializes the local GeoIP2 database reader and an in-memory
// lookup cache. Provide the path to a GeoIP2/GeoLite2 .mmdb file via dbPath
// or the GEOIP_DB_PATH env var. If neither is set, initialization is a no-op
// and lookups return empty values.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		dbPath = os.Getenv("GEOIP_DB_PATH")
	}
	if dbPath == "" {
		return nil
	}

	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoipDB = r
	// Cache entries for 24h, purge every hour
	geoipCache = cache.New(24*time.Hour, 1*time.Hour)
	return nil
}

// CloseGeoIP closes the GeoIP DB if opened.
func CloseGeoIP() {
	if geoipDB != nil {
		_ = geoipDB.Close()
		geoipDB = nil
	}
}

// GetIPLocation resolves an IP to (city, country) using the local GeoIP DB.
// Results are cached. Unresolvable or private addresses return empty strings.
func GetIPLocation(ip string) (string, string) {
	if geoipDB == nil || ip == "" {
		return "", ""
	}

	if geoipCache != nil {
		if v, found := geoipCache.Get(ip); found {
			if loc, ok := v.([2]string); ok {
				return loc[0], loc[1]
			}
		}
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", ""
	}

	record, err := geoipDB.City(parsed)
	if err != nil {
		return "", ""
	}

	city := record.City.Names["en"]
	country := record.Country.Names["en"]

	if geoipCache != nil {
		geoipCache.Set(ip, [2]string{city, country}, cache.DefaultExpiration)
	}
	return city, country
}

// GeoIPCacheStats returns a short description of the lookup cache contents,
// used by health diagnostics.
func GeoIPCacheStats() string {
	if geoipCache == nil {
		return "geoip cache disabled"
	}
	return fmt.Sprintf("geoip cache entries: %d", geoipCache.ItemCount())
}
