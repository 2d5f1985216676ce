package policy

import (
	"net/url"
	"strings"
)

// ParseAllowList splits free-form allow-list text into normalized hostname
// entries, one per line. Blank lines are ignored and entries are lower-cased.
func ParseAllowList(text string) []string {
	return CleanEntries(strings.Split(text, "\n"))
}

// CleanEntries normalizes raw allow-list entries: trimmed, lower-cased, with
// blanks dropped. Settings-sourced lists go through this as well so matching
// never depends on how the list was typed.
func CleanEntries(raw []string) []string {
	var entries []string
	for _, line := range raw {
		entry := strings.ToLower(strings.TrimSpace(line))
		if entry == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// IsAllowed reports whether the URL's host is permitted by the allow-list
// text. An empty list means no restriction is configured and everything is
// allowed; this check is a governance convenience, not a safety control.
func IsAllowed(rawURL, allowListText string) bool {
	return URLAllowed(rawURL, ParseAllowList(allowListText))
}

// URLAllowed extracts the hostname of rawURL and matches it against entries.
// With a non-empty list an unparsable URL is not allowed: a host that cannot
// be determined cannot be matched against governance policy.
func URLAllowed(rawURL string, entries []string) bool {
	if len(entries) == 0 {
		return true
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return false
	}

	return HostAllowed(parsed.Hostname(), entries)
}

// HostAllowed reports whether host equals an entry or is a strict dot-suffix
// subdomain of one. "api.docs.company.com" matches "docs.company.com";
// "evildocs.company.com" does not match "docs.company.com".
func HostAllowed(host string, entries []string) bool {
	if len(entries) == 0 {
		return true
	}

	host = strings.ToLower(strings.TrimSpace(host))
	for _, entry := range entries {
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}
