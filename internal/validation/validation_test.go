package validation

import (
	"net"
	"testing"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name string
		slug string
		want bool
	}{
		{"valid alphanumeric", "abc123", true},
		{"valid with hyphen", "my-code", true},
		{"valid with underscore", "my_code", true},
		{"valid mixed", "My-Code_123", true},
		{"empty string", "", false},
		{"too long", string(make([]byte, 101)), false},
		{"contains space", "my code", false},
		{"contains dot", "my.code", false},
		{"contains slash", "my/code", false},
		{"path traversal attempt", "../etc/passwd", false},
		{"url encoded", "my%20code", false},
		{"special chars", "code@#$", false},
		{"unicode", "日本語", false},
		{"single char", "a", true},
		{"numbers only", "12345", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateSlug(tt.slug)
			if got != tt.want {
				t.Errorf("ValidateSlug(%q) = %v, want %v", tt.slug, got, tt.want)
			}
		})
	}
}

func TestNormalizeSlug(t *testing.T) {
	if got := NormalizeSlug("My-Code"); got != "my-code" {
		t.Errorf("NormalizeSlug(\"My-Code\") = %q, want %q", got, "my-code")
	}
}

func TestValidateIdentityID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid uuid", "d2b1f6a0-9c3e-4f11-8a2b-5c6d7e8f9a0b", true},
		{"valid hex", "0123456789abcdef", true},
		{"too short", "abc123", false},
		{"empty", "", false},
		{"sql injection", "1; DROP TABLE users--", false},
		{"contains space", "0123456789abcde f", false},
		{"contains underscore", "0123456789abcde_f", false},
		{"contains dot", "0123456789.abcdef", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateIdentityID(tt.id)
			if got != tt.want {
				t.Errorf("ValidateIdentityID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		valid   bool
		wantMsg string
	}{
		{"valid https", "https://example.com", true, ""},
		{"valid http", "http://example.com", true, ""},
		{"valid with path", "https://example.com/path/to/page", true, ""},
		{"valid with query", "https://example.com?foo=bar", true, ""},
		{"empty string", "", false, "URL is required"},
		{"javascript scheme", "javascript:alert(1)", false, "URL must use http:// or https:// scheme"},
		{"data scheme", "data:text/html,x", false, "URL must use http:// or https:// scheme"},
		{"no host", "https://", false, "URL must have a valid host"},
		{"bare word", "example", false, "URL must use http:// or https:// scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateURL(tt.url)
			if valid != tt.valid {
				t.Errorf("ValidateURL(%q) valid = %v, want %v", tt.url, valid, tt.valid)
			}
			if !valid && msg != tt.wantMsg {
				t.Errorf("ValidateURL(%q) msg = %q, want %q", tt.url, msg, tt.wantMsg)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{"loopback v4", "127.0.0.1", true},
		{"loopback v6", "::1", true},
		{"private 10", "10.1.2.3", true},
		{"private 172", "172.16.0.1", true},
		{"private 192", "192.168.1.1", true},
		{"link local", "169.254.1.1", true},
		{"unspecified", "0.0.0.0", true},
		{"public v4", "8.8.8.8", false},
		{"public v6", "2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsPrivateIP(net.ParseIP(tt.ip))
			if got != tt.want {
				t.Errorf("IsPrivateIP(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}

func TestIsRoutableAddr(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"public", "93.184.216.34", true},
		{"empty", "", false},
		{"garbage", "not-an-ip", false},
		{"loopback", "127.0.0.1", false},
		{"private", "192.168.0.10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRoutableAddr(tt.addr); got != tt.want {
				t.Errorf("IsRoutableAddr(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}
