package models

// Connection is the connection classification of an IP address.
// Providers that omit it leave Type "unknown" and every flag false.
type Connection struct {
	Type   string `json:"type"`
	Mobile bool   `json:"mobile"`
	Proxy  bool   `json:"proxy"`
	VPN    bool   `json:"vpn"`
	Tor    bool   `json:"tor"`
}

// IPDetails is the canonical network-info record for one IP address.
// IP is always set and identifies the record.
type IPDetails struct {
	IP      string `json:"ip"`
	Version string `json:"version"`

	City            string   `json:"city"`
	Region          string   `json:"region"`
	RegionCode      string   `json:"region_code"`
	Country         string   `json:"country"`
	CountryName     string   `json:"country_name"`
	CountryCode     string   `json:"country_code"`
	CountryCodeISO3 string   `json:"country_code_iso3"`
	CountryCapital  string   `json:"country_capital"`
	ContinentCode   string   `json:"continent_code"`
	Postal          string   `json:"postal"`
	Latitude        *float64 `json:"latitude"`  // nil when absent or outside [-90,90]
	Longitude       *float64 `json:"longitude"` // nil when absent or outside [-180,180]

	Timezone  string `json:"timezone"`
	UTCOffset string `json:"utc_offset"`
	Languages string `json:"languages"`

	ASN string `json:"asn"`
	Org string `json:"org"`
	ISP string `json:"isp"`

	Currency       string `json:"currency"`
	CurrencyName   string `json:"currency_name"`
	CurrencySymbol string `json:"currency_symbol"`

	Connection Connection `json:"connection"`
}

// Registrar identifies the sponsoring registrar of a domain
type Registrar struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// RedactedForPrivacy is the placeholder WHOIS sources put in withheld fields.
// It is carried through as-is.
const RedactedForPrivacy = "REDACTED FOR PRIVACY"

// Registrant holds the registrant contact; any field may be RedactedForPrivacy
type Registrant struct {
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

// DomainDetails is the canonical WHOIS record for one domain.
// Status and Nameservers are never nil.
type DomainDetails struct {
	Domain      string     `json:"domain"`
	DomainID    string     `json:"domain_id"`
	Status      []string   `json:"status"`
	Created     string     `json:"created"`
	Updated     string     `json:"updated"`
	Expires     string     `json:"expires"`
	Registrar   Registrar  `json:"registrar"`
	Registrant  Registrant `json:"registrant"`
	Nameservers []string   `json:"nameservers"`
	DNSSEC      bool       `json:"dnssec"`

	// Synthetic marks records fabricated locally when the WHOIS source was
	// unavailable. They carry no registry data.
	Synthetic bool `json:"synthetic"`
}

// Browser describes the client browser. Exactly one of IsMobile, IsTablet
// and IsDesktop is true.
type Browser struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Language  string `json:"language"`
	Platform  string `json:"platform"`
	IsMobile  bool   `json:"isMobile"`
	IsTablet  bool   `json:"isTablet"`
	IsDesktop bool   `json:"isDesktop"`
}

// Screen holds the display metrics reported by the client
type Screen struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ColorDepth  int    `json:"colorDepth"`
	Orientation string `json:"orientation"`
}

// OS describes the client operating system
type OS struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NetworkConnection holds the network-information hints of the client
type NetworkConnection struct {
	Type          string  `json:"type"`
	Downlink      float64 `json:"downlink"`
	RTT           int     `json:"rtt"`
	EffectiveType string  `json:"effectiveType"`
}

// SystemInfo is derived from the local environment only and never stored
type SystemInfo struct {
	Browser    Browser           `json:"browser"`
	Screen     Screen            `json:"screen"`
	OS         OS                `json:"os"`
	Connection NetworkConnection `json:"connection"`
}

// MyIPResult is published by the self-lookup as a single unit
type MyIPResult struct {
	IPData     *IPDetails  `json:"ip_data"`
	SystemInfo *SystemInfo `json:"system_info"`
}

// LookupType is the kind of query recorded in history
type LookupType string

const (
	LookupTypeIP     LookupType = "ip"
	LookupTypeDomain LookupType = "domain"
)

// LookupHistoryItem is one successful lookup. Timestamp is Unix milliseconds.
type LookupHistoryItem struct {
	ID        string     `json:"id"`
	Type      LookupType `json:"type"`
	Query     string     `json:"query"`
	Timestamp int64      `json:"timestamp"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"` // Error message
}
