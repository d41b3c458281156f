package config

import (
	"testing"

	"github.com/quantfetch/quantfetch/pkg/fault"
)

func TestDefaults(t *testing.T) {
	id := New()
	if id.UserAgent() != DefaultUserAgent {
		t.Errorf("user agent = %q", id.UserAgent())
	}
	if id.SECIdentity() != "" || id.BrowserBinary() != "" {
		t.Error("optional settings must default to empty")
	}
}

func TestOptions(t *testing.T) {
	id := New(
		WithUserAgent("ua"),
		WithSECIdentity("Jo Dev jo@example.com"),
		WithBrowserBinary("/usr/bin/chromium"),
		WithCredential("msci", "token-123"),
	)
	if id.UserAgent() != "ua" {
		t.Errorf("user agent = %q", id.UserAgent())
	}
	if got, err := id.RequireSECIdentity(); err != nil || got != "Jo Dev jo@example.com" {
		t.Errorf("sec identity = %q, %v", got, err)
	}
	if got, err := id.RequireBrowserBinary(); err != nil || got != "/usr/bin/chromium" {
		t.Errorf("browser binary = %q, %v", got, err)
	}
	if got, err := id.RequireCredential("msci"); err != nil || got != "token-123" {
		t.Errorf("credential = %q, %v", got, err)
	}
}

func TestRequireMissing(t *testing.T) {
	id := New()
	if _, err := id.RequireSECIdentity(); !fault.IsKind(err, fault.Configuration) {
		t.Errorf("sec identity err = %v, want Configuration", err)
	}
	if _, err := id.RequireBrowserBinary(); !fault.IsKind(err, fault.Configuration) {
		t.Errorf("browser binary err = %v, want Configuration", err)
	}
	if _, err := id.RequireCredential("msci"); !fault.IsKind(err, fault.Configuration) {
		t.Errorf("credential err = %v, want Configuration", err)
	}
}
