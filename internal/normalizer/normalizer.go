// Package normalizer maps provider payloads onto the canonical records.
//
// Fields are copied through when present under any known alias and left at
// a neutral default otherwise. Geolocation and registration data are never
// invented.
package normalizer

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrMalformedPayload is returned when a provider body is not valid JSON
	ErrMalformedPayload = errors.New("provider returned a malformed response")

	// ErrMissingIP is returned when a network-info body has no address
	ErrMissingIP = errors.New("provider response did not include an IP address")
)

// ProviderError is a failure the provider reported inside a success response
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string { return e.Message }

// parse validates body and returns its root
func parse(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, ErrMalformedPayload
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return gjson.Result{}, ErrMalformedPayload
	}
	return root, nil
}

// scalar reports whether v holds a copyable string or number
func scalar(v gjson.Result) bool {
	return v.Type == gjson.String || v.Type == gjson.Number
}

// str returns the first non-empty scalar found under paths
func str(root gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := root.Get(p)
		if !scalar(v) {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

// flag returns the first boolean found under paths, false otherwise
func flag(root gjson.Result, paths ...string) bool {
	for _, p := range paths {
		v := root.Get(p)
		switch v.Type {
		case gjson.True:
			return true
		case gjson.False:
			return false
		}
	}
	return false
}

// list returns the values under the first existing path as a non-nil slice.
// A bare string becomes a one-element slice unless split is set, in which
// case it is split on whitespace.
func list(root gjson.Result, split bool, paths ...string) []string {
	out := []string{}
	for _, p := range paths {
		v := root.Get(p)
		switch {
		case v.IsArray():
			for _, el := range v.Array() {
				if !scalar(el) {
					continue
				}
				if s := strings.TrimSpace(el.String()); s != "" {
					out = append(out, s)
				}
			}
			return out
		case scalar(v):
			s := strings.TrimSpace(v.String())
			if s == "" {
				continue
			}
			if split {
				return append(out, strings.Fields(s)...)
			}
			return append(out, s)
		}
	}
	return out
}

// truthy follows JSON-ish truthiness for an error marker
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.JSON:
		return true
	default:
		return false
	}
}

// findError walks objects depth-first and returns the object holding a
// truthy "error" member
func findError(v gjson.Result) (gjson.Result, bool) {
	if !v.IsObject() {
		return gjson.Result{}, false
	}
	if truthy(v.Get("error")) {
		return v, true
	}

	var found gjson.Result
	var ok bool
	v.ForEach(func(_, member gjson.Result) bool {
		if member.IsObject() {
			found, ok = findError(member)
		}
		return !ok
	})
	return found, ok
}
