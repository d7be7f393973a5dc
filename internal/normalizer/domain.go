package normalizer

import (
	"github.com/tidwall/gjson"

	"github.com/evyataryagoni/netlookup/internal/models"
)

const defaultDomainErrorMessage = "Failed to lookup domain information"

// SignedDelegation is the only dnssec token that means a signed zone
const SignedDelegation = "signedDelegation"

// CheckWhoisError reports a failure signalled by a top-level "error" member
func CheckWhoisError(body []byte) error {
	root, err := parse(body)
	if err != nil {
		return err
	}

	v := root.Get("error")
	if !truthy(v) {
		return nil
	}
	if v.Type == gjson.String {
		return &ProviderError{Message: v.Str}
	}
	return &ProviderError{Message: defaultDomainErrorMessage}
}

// DomainDetails maps a WHOIS payload onto models.DomainDetails. Both raw
// registry-style (camelCase) and already-formatted field names are read.
// query is used for Domain when the payload has no domain name.
func DomainDetails(body []byte, query string) (*models.DomainDetails, error) {
	root, err := parse(body)
	if err != nil {
		return nil, err
	}

	domain := str(root, "domainName", "domain")
	if domain == "" {
		domain = query
	}

	return &models.DomainDetails{
		Domain:   domain,
		DomainID: str(root, "registryDomainId", "domain_id", "domainId"),
		Status:   list(root, false, "status", "domainStatus"),
		Created:  str(root, "creationDate", "created", "createdDate"),
		Updated:  str(root, "updatedDate", "updated"),
		Expires:  str(root, "registryExpiryDate", "registrarRegistrationExpirationDate", "expires", "expirationDate"),
		Registrar: models.Registrar{
			Name:  str(root, "registrar.name", "registrar"),
			URL:   str(root, "registrarUrl", "registrar.url"),
			Email: str(root, "registrarAbuseContactEmail", "registrar.email"),
			Phone: str(root, "registrarAbuseContactPhone", "registrar.phone"),
		},
		Registrant: models.Registrant{
			Name:         str(root, "registrantName", "registrant.name"),
			Organization: str(root, "registrantOrganization", "registrant.organization"),
			Street:       str(root, "registrantStreet", "registrant.street"),
			City:         str(root, "registrantCity", "registrant.city"),
			State:        str(root, "registrantStateProvince", "registrant.state"),
			PostalCode:   str(root, "registrantPostalCode", "registrant.postal_code"),
			Country:      str(root, "registrantCountry", "registrant.country"),
			Phone:        str(root, "registrantPhone", "registrant.phone"),
			Email:        str(root, "registrantEmail", "registrant.email"),
		},
		Nameservers: nameservers(root),
		DNSSEC:      dnssec(root.Get("dnssec")),
	}, nil
}

// nameservers wraps a bare registry nameServer value as one entry. A bare
// string under the formatted aliases is a whitespace-separated list.
func nameservers(root gjson.Result) []string {
	if out := list(root, false, "nameServer"); len(out) > 0 {
		return out
	}
	return list(root, true, "nameservers", "nameServers")
}

// dnssec is true only for the exact signed-delegation token; a boolean true
// from an already-normalized payload is accepted as well
func dnssec(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str == SignedDelegation
	case gjson.True:
		return true
	default:
		return false
	}
}
