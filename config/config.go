// Package config holds the process-wide identity used for outbound fetches:
// the anonymous browser-like User-Agent, the SEC contact identity, the
// headless-browser binary path, and per-source credentials. An Identity is
// immutable after construction; adapters receive it by value and fail with a
// typed Configuration fault when an option they depend on is absent.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/quantfetch/quantfetch/pkg/fault"
)

// DefaultUserAgent is used for anonymous fetches when no override is given.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Identity is the immutable fetch identity. Construct with New or Load.
type Identity struct {
	userAgent         string
	secIdentity       string
	browserBinaryPath string
	credentials       map[string]string
}

// Option mutates the identity during construction only.
type Option func(*Identity)

// WithUserAgent overrides the anonymous User-Agent header.
func WithUserAgent(ua string) Option {
	return func(id *Identity) { id.userAgent = ua }
}

// WithSECIdentity sets the contact string EDGAR requires
// ("Name email@example.com").
func WithSECIdentity(contact string) Option {
	return func(id *Identity) { id.secIdentity = contact }
}

// WithBrowserBinary sets the path to the headless browser executable.
func WithBrowserBinary(path string) Option {
	return func(id *Identity) { id.browserBinaryPath = path }
}

// WithCredential attaches an opaque per-source token (cookie, key). The
// library reads credentials, never persists them.
func WithCredential(source, token string) Option {
	return func(id *Identity) { id.credentials[source] = token }
}

// New builds an identity. The user agent defaults; everything else is
// optional and checked by the adapters that depend on it.
func New(opts ...Option) Identity {
	id := Identity{
		userAgent:   DefaultUserAgent,
		credentials: make(map[string]string),
	}
	for _, opt := range opts {
		opt(&id)
	}
	return id
}

// Load reads an optional YAML config file plus QUANTFETCH_* environment
// overrides and builds an identity from them. Search order: ./config,
// $HOME/.quantfetch, /etc/quantfetch. A missing file is not an error.
//
// Recognized keys:
//
//	user_agent
//	sec_identity
//	browser_binary_path
//	credentials.<source>
func Load() (Identity, error) {
	v := viper.New()
	v.SetConfigName("quantfetch")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.quantfetch")
	v.AddConfigPath("/etc/quantfetch")
	v.SetEnvPrefix("QUANTFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Identity{}, fault.Wrap(fault.Configuration, "config", "load", err)
		}
	}

	opts := []Option{}
	if ua := v.GetString("user_agent"); ua != "" {
		opts = append(opts, WithUserAgent(ua))
	}
	if sec := v.GetString("sec_identity"); sec != "" {
		opts = append(opts, WithSECIdentity(sec))
	}
	if bin := v.GetString("browser_binary_path"); bin != "" {
		opts = append(opts, WithBrowserBinary(bin))
	}
	for source, token := range v.GetStringMapString("credentials") {
		opts = append(opts, WithCredential(source, token))
	}
	return New(opts...), nil
}

// UserAgent returns the anonymous fetch identity.
func (id Identity) UserAgent() string { return id.userAgent }

// SECIdentity returns the EDGAR contact string, empty when unset.
func (id Identity) SECIdentity() string { return id.secIdentity }

// RequireSECIdentity returns the contact string or a Configuration fault.
func (id Identity) RequireSECIdentity() (string, error) {
	if id.secIdentity == "" {
		return "", fault.New(fault.Configuration, "config", "sec_identity",
			"sec_identity is required for EDGAR endpoints (format: \"Name email@example.com\")")
	}
	return id.secIdentity, nil
}

// BrowserBinary returns the headless browser path, empty when unset.
func (id Identity) BrowserBinary() string { return id.browserBinaryPath }

// RequireBrowserBinary returns the browser path or a Configuration fault.
func (id Identity) RequireBrowserBinary() (string, error) {
	if id.browserBinaryPath == "" {
		return "", fault.New(fault.Configuration, "config", "browser_binary_path",
			"browser_binary_path is required for browser-driven adapters")
	}
	return id.browserBinaryPath, nil
}

// Credential returns the opaque token for a source, empty when unset.
func (id Identity) Credential(source string) string { return id.credentials[source] }

// RequireCredential returns a source token or a Configuration fault.
func (id Identity) RequireCredential(source string) (string, error) {
	tok, ok := id.credentials[source]
	if !ok || tok == "" {
		return "", fault.Newf(fault.Configuration, "config", "credentials",
			"no credential configured for source %q", source)
	}
	return tok, nil
}
