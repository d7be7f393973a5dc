package normalizer

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/evyataryagoni/netlookup/internal/models"
)

const defaultIPErrorMessage = "Failed to lookup IP address"

// ConnectionTypeUnknown is used when the provider has no classification
const ConnectionTypeUnknown = "unknown"

// CheckNetworkInfoError reports a failure the network-info provider signalled
// in its body: an "error" member at the top level or in any nested object.
// The message comes from the accompanying "reason" (or "message").
func CheckNetworkInfoError(body []byte) error {
	root, err := parse(body)
	if err != nil {
		return err
	}

	holder, ok := findError(root)
	if !ok {
		return nil
	}

	msg := str(holder, "reason", "message")
	if msg == "" {
		msg = defaultIPErrorMessage
	}
	return &ProviderError{Message: msg}
}

// IPDetails maps a network-info payload onto models.IPDetails.
// A missing connection object yields the unknown/false defaults.
func IPDetails(body []byte) (*models.IPDetails, error) {
	root, err := parse(body)
	if err != nil {
		return nil, err
	}

	details, err := ipDetails(root)
	if err != nil {
		return nil, err
	}
	details.Connection = connection(root)
	return details, nil
}

// MyIPDetails maps a self-lookup payload. The self endpoint carries no
// connection classification, so Connection is always the default.
func MyIPDetails(body []byte) (*models.IPDetails, error) {
	root, err := parse(body)
	if err != nil {
		return nil, err
	}

	details, err := ipDetails(root)
	if err != nil {
		return nil, err
	}
	details.Connection = models.Connection{Type: ConnectionTypeUnknown}
	return details, nil
}

func ipDetails(root gjson.Result) (*models.IPDetails, error) {
	ip := str(root, "ip", "query")
	if ip == "" {
		return nil, ErrMissingIP
	}

	version := str(root, "version")
	if version == "" {
		// derived from the address itself, not a provider claim
		version = "IPv4"
		if strings.Contains(ip, ":") {
			version = "IPv6"
		}
	}

	lat, lon := coordinates(root)

	return &models.IPDetails{
		IP:      ip,
		Version: version,

		City:            str(root, "city"),
		Region:          str(root, "region", "regionName"),
		RegionCode:      str(root, "region_code", "regionCode"),
		Country:         str(root, "country"),
		CountryName:     str(root, "country_name", "countryName"),
		CountryCode:     str(root, "country_code", "countryCode"),
		CountryCodeISO3: str(root, "country_code_iso3", "countryCodeIso3"),
		CountryCapital:  str(root, "country_capital", "capital"),
		ContinentCode:   str(root, "continent_code", "continentCode"),
		Postal:          str(root, "postal", "zip"),
		Latitude:        lat,
		Longitude:       lon,

		Timezone:  str(root, "timezone", "timezone.id"),
		UTCOffset: str(root, "utc_offset", "timezone.utc", "offset"),
		Languages: str(root, "languages"),

		ASN: str(root, "asn", "as", "connection.asn"),
		Org: str(root, "org", "connection.org", "organization"),
		ISP: str(root, "isp", "connection.isp", "org"),

		Currency:       str(root, "currency", "currency.code"),
		CurrencyName:   str(root, "currency_name", "currency.name"),
		CurrencySymbol: str(root, "currency_symbol", "currency.symbol"),
	}, nil
}

func connection(root gjson.Result) models.Connection {
	c := models.Connection{
		Type:   str(root, "connection.type"),
		Mobile: flag(root, "connection.mobile", "mobile"),
		Proxy:  flag(root, "connection.proxy", "proxy", "security.proxy"),
		VPN:    flag(root, "connection.vpn", "vpn", "security.vpn"),
		Tor:    flag(root, "connection.tor", "tor", "security.tor"),
	}
	if c.Type == "" {
		c.Type = ConnectionTypeUnknown
	}
	return c
}

// coordinates reads latitude/longitude (or an ipinfo-style "loc" pair) and
// drops values outside the valid ranges
func coordinates(root gjson.Result) (*float64, *float64) {
	lat, latOK := number(root, "latitude", "lat")
	lon, lonOK := number(root, "longitude", "lon")

	if !latOK && !lonOK {
		if loc := str(root, "loc"); loc != "" {
			parts := strings.SplitN(loc, ",", 2)
			if len(parts) == 2 {
				var err1, err2 error
				lat, err1 = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
				lon, err2 = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
				latOK, lonOK = err1 == nil, err2 == nil
			}
		}
	}

	var latPtr, lonPtr *float64
	if latOK && lat >= -90 && lat <= 90 {
		latPtr = &lat
	}
	if lonOK && lon >= -180 && lon <= 180 {
		lonPtr = &lon
	}
	return latPtr, lonPtr
}

func number(root gjson.Result, paths ...string) (float64, bool) {
	for _, p := range paths {
		v := root.Get(p)
		switch v.Type {
		case gjson.Number:
			return v.Num, true
		case gjson.String:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
