package validation

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

// SlugPattern defines the valid slug format: alphanumeric, hyphens, underscores.
var SlugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// identityIDPattern matches identifiers the team resolver will accept before
// touching the database: alphanumeric plus hyphen, no other punctuation.
var identityIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// MinIdentityIDLength is the shortest identifier the team resolver accepts.
// Anything shorter is a tampered or malformed ID, never a real one.
const MinIdentityIDLength = 16

// ValidateSlug checks if a slug matches the allowed pattern.
func ValidateSlug(slug string) bool {
	if slug == "" || len(slug) > 100 {
		return false
	}
	return SlugPattern.MatchString(slug)
}

// NormalizeSlug lowercases a slug so lookups are case-insensitive.
func NormalizeSlug(slug string) string {
	return strings.ToLower(slug)
}

// ValidateIdentityID checks an identity identifier before it reaches a query.
// A failing check is a contract violation, not a lookup miss.
func ValidateIdentityID(id string) bool {
	if len(id) < MinIdentityIDLength {
		return false
	}
	return identityIDPattern.MatchString(id)
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// IsPrivateIP checks if an IP address is in a private/reserved range.
// Geolocation providers cannot resolve these, so the geo resolver substitutes
// the deployment's public egress address instead.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}

	if ip.IsLoopback() {
		return true
	}

	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	if ip.IsPrivate() {
		return true
	}

	if ip.IsUnspecified() {
		return true
	}

	return false
}

// IsRoutableAddr reports whether addr is a publicly routable IP string.
// Empty, unparseable, loopback, and private addresses are all non-routable.
func IsRoutableAddr(addr string) bool {
	if addr == "" {
		return false
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	return !IsPrivateIP(ip)
}
