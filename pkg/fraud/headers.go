// Package fraud builds the HMRC fraud-prevention headers for the
// DESKTOP_APP_DIRECT connection method.
//
// See https://developer.service.hmrc.gov.uk/guides/fraud-prevention/connection-method/desktop-app-direct/
package fraud

import (
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/go-training/mtd-vat/pkg/core"

	"github.com/zeebo/blake3"
)

// Header names.
const (
	HeaderConnectionMethod  = "Gov-Client-Connection-Method"
	HeaderDeviceID          = "Gov-Client-Device-ID"
	HeaderLocalIPs          = "Gov-Client-Local-IPs"
	HeaderLocalIPsTimestamp = "Gov-Client-Local-IPs-Timestamp"
	HeaderMACAddresses      = "Gov-Client-MAC-Addresses"
	HeaderTimezone          = "Gov-Client-Timezone"
	HeaderUserAgent         = "Gov-Client-User-Agent"
	HeaderUserIDs           = "Gov-Client-User-IDs"
	HeaderScreens           = "Gov-Client-Screens"
	HeaderWindowSize        = "Gov-Client-Window-Size"
	HeaderVendorLicenseIDs  = "Gov-Vendor-License-IDs"
	HeaderVendorProductName = "Gov-Vendor-Product-Name"
	HeaderVendorVersion     = "Gov-Vendor-Version"
)

// HeaderNames lists every header Build sets.
var HeaderNames = []string{
	HeaderConnectionMethod,
	HeaderDeviceID,
	HeaderLocalIPs,
	HeaderLocalIPsTimestamp,
	HeaderMACAddresses,
	HeaderTimezone,
	HeaderUserAgent,
	HeaderUserIDs,
	HeaderScreens,
	HeaderWindowSize,
	HeaderVendorLicenseIDs,
	HeaderVendorProductName,
	HeaderVendorVersion,
}

const (
	ConnectionMethod = "DESKTOP_APP_DIRECT"
	DeviceID         = "142454b1-6368-444b-97b6-15bfdf4e19a3"

	// A command line has no screen or window; HMRC still requires the headers.
	Screens    = "width=1920&height=1080&scaling-factor=1&colour-depth=16"
	WindowSize = "width=1920&height=1080"

	fallbackNull    = "null"
	fallbackUnknown = "unknown"

	timestampLayout = "2006-01-02T15:04:05.000Z"
	licenseSeed     = "foss"
)

// Option configures a Builder.
type Option func(*Builder)

// WithProvider replaces the system signal provider.
func WithProvider(p Provider) Option {
	return func(b *Builder) { b.provider = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithVendor overrides the product name and version.
func WithVendor(product, version string) Option {
	return func(b *Builder) {
		b.product = product
		b.version = version
	}
}

// Builder composes the fraud-prevention header set.
type Builder struct {
	provider Provider
	now      func() time.Time
	product  string
	version  string
}

// NewBuilder returns a Builder reading signals from the running machine.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		provider: SystemProvider{},
		now:      time.Now,
		product:  core.Product,
		version:  core.Version,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the header set. It never fails: unavailable signals are
// replaced by "null" or "unknown".
func (b *Builder) Build() http.Header {
	now := b.now()
	h := http.Header{}
	h.Set(HeaderConnectionMethod, ConnectionMethod)
	h.Set(HeaderDeviceID, DeviceID)
	h.Set(HeaderLocalIPs, joinEscaped(b.provider.LocalIPs()))
	h.Set(HeaderLocalIPsTimestamp, now.UTC().Format(timestampLayout))
	h.Set(HeaderMACAddresses, joinEscaped(b.provider.MACAddresses()))
	h.Set(HeaderTimezone, "UTC"+now.Format("-07:00"))
	h.Set(HeaderUserAgent, b.userAgent())
	h.Set(HeaderUserIDs, "os="+Escape(signal(b.provider.Username, fallbackNull)))
	h.Set(HeaderScreens, Screens)
	h.Set(HeaderWindowSize, WindowSize)
	h.Set(HeaderVendorLicenseIDs, b.product+"="+LicenseID())
	h.Set(HeaderVendorProductName, b.product)
	h.Set(HeaderVendorVersion, b.product+"="+b.version)
	return h
}

// Apply sets the header set on h, replacing existing values.
func (b *Builder) Apply(h http.Header) {
	for k, v := range b.Build() {
		h[k] = v
	}
}

func (b *Builder) userAgent() string {
	fields := []struct {
		key   string
		value string
	}{
		{"os-family", signal(b.provider.OSFamily, fallbackUnknown)},
		{"os-version", signal(b.provider.OSVersion, fallbackUnknown)},
		{"device-manufacturer", signal(b.provider.DeviceManufacturer, fallbackUnknown)},
		{"device-model", signal(b.provider.DeviceModel, fallbackUnknown)},
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.key+"="+Escape(f.value))
	}
	return strings.Join(parts, "&")
}

// LicenseID is the BLAKE3 hex digest identifying the open source licence.
func LicenseID() string {
	sum := blake3.Sum256([]byte(licenseSeed))
	return hex.EncodeToString(sum[:])
}

// signal calls get, substituting fallback when the value is unavailable.
func signal(get func() (string, error), fallback string) string {
	v, err := get()
	if err != nil || strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func joinEscaped(values []string, err error) string {
	if err != nil {
		return fallbackNull
	}
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		escaped = append(escaped, Escape(v))
	}
	if len(escaped) == 0 {
		return fallbackNull
	}
	return strings.Join(escaped, ",")
}
