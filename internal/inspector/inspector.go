// Package inspector derives a models.SystemInfo from the properties the local
// environment exposes. It makes no network calls.
package inspector

import (
	"regexp"
	"strings"

	"github.com/evyataryagoni/netlookup/internal/models"
)

// Unknown is reported for any property that could not be identified
const Unknown = "unknown"

// unknownLabel is the display value for an unidentified browser or OS
const unknownLabel = "Unknown"

// Environment is everything the inspector reads. Net is nil when the
// environment exposes no network-information hints.
type Environment struct {
	UserAgent string
	Platform  string
	Language  string
	Screen    models.Screen
	Net       *NetworkHints
}

// NetworkHints mirrors the network-information capability of a client.
// Zero fields are reported as unknown.
type NetworkHints struct {
	Type          string
	Downlink      float64
	RTT           int
	EffectiveType string
}

// rule is one entry of a first-match-wins checklist
type rule struct {
	name    string
	match   func(ua string) bool
	version func(ua string) string
}

func contains(token string) func(string) bool {
	return func(ua string) bool { return strings.Contains(ua, token) }
}

func containsAny(tokens ...string) func(string) bool {
	return func(ua string) bool {
		for _, t := range tokens {
			if strings.Contains(ua, t) {
				return true
			}
		}
		return false
	}
}

// capture returns the first group of re, or unknownLabel
func capture(re *regexp.Regexp) func(string) string {
	return func(ua string) string {
		if m := re.FindStringSubmatch(ua); m != nil {
			return m[1]
		}
		return unknownLabel
	}
}

// dotted is capture with "_" separators rewritten to "."
func dotted(re *regexp.Regexp) func(string) string {
	return func(ua string) string {
		if m := re.FindStringSubmatch(ua); m != nil {
			return strings.ReplaceAll(m[1], "_", ".")
		}
		return unknownLabel
	}
}

// browserRules is evaluated in order. Edge must come before Chrome and
// Chrome before Safari because their tokens are substrings of each other.
var browserRules = []rule{
	{
		name:    "Microsoft Edge",
		match:   contains("Edg"),
		version: capture(regexp.MustCompile(`Edg/(\d+\.\d+)`)),
	},
	{
		name:    "Google Chrome",
		match:   contains("Chrome"),
		version: capture(regexp.MustCompile(`Chrome/(\d+\.\d+)`)),
	},
	{
		name:    "Mozilla Firefox",
		match:   contains("Firefox"),
		version: capture(regexp.MustCompile(`Firefox/(\d+\.\d+)`)),
	},
	{
		name:    "Safari",
		match:   func(ua string) bool { return strings.Contains(ua, "Safari") && !strings.Contains(ua, "Chrome") },
		version: capture(regexp.MustCompile(`Version/(\d+\.\d+)`)),
	},
	{
		name:    "Internet Explorer",
		match:   containsAny("MSIE", "Trident/"),
		version: capture(regexp.MustCompile(`(?:MSIE |rv:)(\d+\.\d+)`)),
	},
}

var windowsVersions = []struct{ token, label string }{
	{"Windows NT 10.0", "10/11"},
	{"Windows NT 6.3", "8.1"},
	{"Windows NT 6.2", "8"},
	{"Windows NT 6.1", "7"},
	{"Windows NT 6.0", "Vista"},
}

func windowsVersion(ua string) string {
	for _, v := range windowsVersions {
		if strings.Contains(ua, v.token) {
			return v.label
		}
	}
	return unknownLabel
}

var appleMobile = containsAny("iPhone", "iPad", "iPod")

// osRules is evaluated in order. Android precedes Linux since every Android
// user agent also carries the Linux token. iOS devices report "like Mac OS X"
// and are kept out of the macOS rule.
var osRules = []rule{
	{
		name:    "Windows",
		match:   contains("Windows"),
		version: windowsVersion,
	},
	{
		name:    "macOS",
		match:   func(ua string) bool { return strings.Contains(ua, "Mac") && !appleMobile(ua) },
		version: dotted(regexp.MustCompile(`Mac OS X (\d+[._]\d+)`)),
	},
	{
		name:    "Android",
		match:   contains("Android"),
		version: capture(regexp.MustCompile(`Android (\d+\.\d+)`)),
	},
	{
		name:    "iOS",
		match:   containsAny("iOS", "iPhone", "iPad"),
		version: dotted(regexp.MustCompile(`OS (\d+[._]\d+)`)),
	},
	{
		name:    "Linux",
		match:   contains("Linux"),
		version: func(string) string { return unknownLabel },
	},
}

// first returns the name and version of the first matching rule
func first(rules []rule, ua string) (string, string) {
	for _, r := range rules {
		if r.match(ua) {
			return r.name, r.version(ua)
		}
	}
	return unknownLabel, unknownLabel
}

var mobilePattern = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// DeviceClass classifies ua as mobile, tablet or desktop. Exactly one of the
// results is true. Tablet wins over mobile: iPads and Android devices whose
// user agent has no "Mobile" token after "Android" are tablets.
func DeviceClass(ua string) (mobile, tablet, desktop bool) {
	lower := strings.ToLower(ua)
	if strings.Contains(lower, "ipad") {
		tablet = true
	} else if i := strings.LastIndex(lower, "android"); i >= 0 {
		tablet = !strings.Contains(lower[i+len("android"):], "mobile")
	}
	mobile = !tablet && mobilePattern.MatchString(ua)
	desktop = !mobile && !tablet
	return mobile, tablet, desktop
}

// Inspect builds the system-info record for env
func Inspect(env Environment) models.SystemInfo {
	browserName, browserVersion := first(browserRules, env.UserAgent)
	osName, osVersion := first(osRules, env.UserAgent)
	mobile, tablet, desktop := DeviceClass(env.UserAgent)

	screen := env.Screen
	if screen.Orientation == "" {
		screen.Orientation = Unknown
	}

	return models.SystemInfo{
		Browser: models.Browser{
			Name:      browserName,
			Version:   browserVersion,
			Language:  env.Language,
			Platform:  env.Platform,
			IsMobile:  mobile,
			IsTablet:  tablet,
			IsDesktop: desktop,
		},
		Screen:     screen,
		OS:         models.OS{Name: osName, Version: osVersion},
		Connection: connection(env.Net),
	}
}

func connection(h *NetworkHints) models.NetworkConnection {
	c := models.NetworkConnection{Type: Unknown, EffectiveType: Unknown}
	if h == nil {
		return c
	}
	if h.Type != "" {
		c.Type = h.Type
	}
	if h.EffectiveType != "" {
		c.EffectiveType = h.EffectiveType
	}
	c.Downlink = h.Downlink
	c.RTT = h.RTT
	return c
}
