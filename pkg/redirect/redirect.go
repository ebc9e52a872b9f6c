package redirect

import (
	"net/url"
	"strings"
)

// Recovery parameter keys the auth provider appends to redirect URLs.
// Query parameters carry the one-time code flow, fragment parameters
// carry the implicit token flow.
var (
	queryKeys    = []string{"code", "type", "redirect_to"}
	fragmentKeys = []string{"access_token", "refresh_token", "expires_in", "token_type", "type", "provider_token"}
)

// TypeRecovery is the type discriminator the provider sets on password
// recovery links.
const TypeRecovery = "recovery"

// Params carries the provider-issued parameters extracted from a
// redirect URL. Zero fields mean the parameter was absent.
type Params struct {
	Code          string
	Type          string
	AccessToken   string
	RefreshToken  string
	ExpiresIn     string
	TokenType     string
	ProviderToken string
}

// HasTokens reports whether the fragment carried a full token pair.
func (p Params) HasTokens() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// IsRecoveryPath reports whether the path belongs to the password
// recovery flow. Matching is a case-insensitive substring test because
// some recovery links omit the explicit type=recovery marker and the
// route is the only signal left.
func IsRecoveryPath(path string) bool {
	p := strings.ToLower(path)
	return strings.Contains(p, "reset-password") || strings.Contains(p, "forgot-password")
}

// HasRecoveryParams reports whether the URL carries provider recovery
// parameters: either fragment tokens marked type=recovery, or a
// one-time code on a recovery route.
func HasRecoveryParams(u *url.URL) bool {
	if u == nil {
		return false
	}
	query := u.Query()
	fragment := fragmentValues(u)

	typ := fragment.Get("type")
	if typ == "" {
		typ = query.Get("type")
	}

	if fragment.Get("access_token") != "" && typ == TypeRecovery {
		return true
	}
	if query.Get("code") != "" && IsRecoveryPath(u.Path) {
		return true
	}
	return false
}

// Extract reads the recovery parameters without mutating the URL.
// Absent parameters are valid input and yield zero fields.
func Extract(u *url.URL) Params {
	if u == nil {
		return Params{}
	}
	query := u.Query()
	fragment := fragmentValues(u)

	typ := fragment.Get("type")
	if typ == "" {
		typ = query.Get("type")
	}

	return Params{
		Code:          query.Get("code"),
		Type:          typ,
		AccessToken:   fragment.Get("access_token"),
		RefreshToken:  fragment.Get("refresh_token"),
		ExpiresIn:     fragment.Get("expires_in"),
		TokenType:     fragment.Get("token_type"),
		ProviderToken: fragment.Get("provider_token"),
	}
}

// Clean returns a copy of the URL with every recognized recovery key
// removed from the query string and the fragment, so one-time tokens do
// not linger in histories or logs. Unrelated parameters are preserved.
// Cleaning an already-clean URL changes nothing.
func Clean(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	cleaned := *u

	query := u.Query()
	for _, key := range queryKeys {
		query.Del(key)
	}
	cleaned.RawQuery = query.Encode()

	// Plain anchors ("#section") are not parameter sets; leave them be.
	if strings.Contains(u.Fragment, "=") {
		fragment := fragmentValues(u)
		for _, key := range fragmentKeys {
			fragment.Del(key)
		}
		cleaned.Fragment = fragment.Encode()
		cleaned.RawFragment = ""
	}

	return &cleaned
}

// fragmentValues parses the URL fragment as form-encoded key/value
// pairs, the shape the provider uses for implicit-flow tokens. A
// malformed or empty fragment yields an empty set.
func fragmentValues(u *url.URL) url.Values {
	if u.Fragment == "" {
		return url.Values{}
	}
	values, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return url.Values{}
	}
	return values
}
