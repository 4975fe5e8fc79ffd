// Package device labels and fingerprints the client behind a login from its
// user-agent string. Labels are for display and audit detail; fingerprints
// detect a session moving between materially different clients.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent renders a human-readable device label, e.g.
// "Chrome on Windows" or "Safari on iPhone".
func ParseUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	platform := ua.OSInfo().Name
	if p := ua.Platform(); p == "iPhone" || p == "iPad" {
		platform = p
	}
	if platform == "" {
		platform = "Unknown OS"
	}

	return strings.Join(strings.Fields(browser+" on "+platform), " ")
}

// Service computes device fingerprints. Disabled, it returns empty
// fingerprints so callers degrade to label-only behavior.
type Service struct {
	enabled bool
}

func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ComputeFingerprint hashes the browser identity down to its major version,
// so routine auto-updates do not rotate the fingerprint but a different
// browser or OS does.
func (s *Service) ComputeFingerprint(raw string) string {
	if !s.enabled {
		return ""
	}
	ua := useragent.New(raw)
	browser, version := ua.Browser()
	major := strings.SplitN(version, ".", 2)[0]
	seed := browser + "/" + major + "/" + ua.OSInfo().Name

	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// CompareFingerprints reports whether the fingerprints match and whether the
// difference counts as drift. An empty stored fingerprint means the feature
// was off when the session was created, which is not drift.
func (s *Service) CompareFingerprints(stored, observed string) (matched, drift bool) {
	if stored == "" || observed == "" {
		return false, false
	}
	if stored == observed {
		return true, false
	}
	return false, true
}
