// Package validate holds the syntactic checks applied to raw lookup input
// before any network activity. The IPv6 pattern is permissive; IPv4 octet
// ranges are always enforced.
package validate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMissingInput is returned for empty or whitespace-only input
	ErrMissingInput = errors.New("missing input")

	// ErrInvalidFormat is returned when the input fails the pattern check
	ErrInvalidFormat = errors.New("invalid format")
)

const (
	tagIP     = "lookup_ip"
	tagDomain = "lookup_domain"
)

var (
	ipv4Pattern = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})$`)

	// full 8-group form, "::", "::1", leading and compressed forms, fe80: prefix
	ipv6Pattern = regexp.MustCompile(`(?i)^([0-9a-f]{1,4}:){7}[0-9a-f]{1,4}$|^::$|^::1$|^([0-9a-f]{1,4}:){1,7}:|^:([0-9a-f]{1,4}:){1,7}$|^fe80:`)

	// labels of at most 63 chars with no leading/trailing hyphen, alphabetic TLD
	domainPattern = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)
)

// Error is a validation failure with its user-facing message.
// errors.Is reports ErrMissingInput or ErrInvalidFormat.
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

var checker = newChecker()

func newChecker() *validator.Validate {
	v := validator.New()
	mustRegister(v, tagIP, IsValidIP)
	mustRegister(v, tagDomain, IsValidDomain)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn func(string) bool) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// IsValidIP reports whether candidate looks like an IPv4 or IPv6 address
func IsValidIP(candidate string) bool {
	if m := ipv4Pattern.FindStringSubmatch(candidate); m != nil {
		for _, octet := range m[1:] {
			n, err := strconv.Atoi(octet)
			if err != nil || n > 255 {
				return false
			}
		}
		return true
	}
	return ipv6Pattern.MatchString(candidate)
}

// IsValidDomain reports whether candidate is a dotted hostname with an
// alphabetic TLD of two or more letters
func IsValidDomain(candidate string) bool {
	return domainPattern.MatchString(candidate)
}

// CheckIP trims raw and validates it as an IP address.
// It returns the trimmed value on success.
func CheckIP(raw string) (string, error) {
	return check(raw, tagIP, "Please enter an IP address", "Please enter a valid IP address")
}

// CheckDomain trims raw and validates it as a domain name.
// It returns the trimmed value on success.
func CheckDomain(raw string) (string, error) {
	return check(raw, tagDomain, "Please enter a domain name", "Please enter a valid domain name")
}

func check(raw, tag, missingMsg, invalidMsg string) (string, error) {
	candidate := strings.TrimSpace(raw)

	if err := checker.Var(candidate, "required"); err != nil {
		return "", &Error{Err: ErrMissingInput, Message: missingMsg}
	}
	if err := checker.Var(candidate, tag); err != nil {
		return "", &Error{Err: ErrInvalidFormat, Message: invalidMsg}
	}
	return candidate, nil
}
