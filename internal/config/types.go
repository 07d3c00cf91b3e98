package config

// Defaults applied when neither a host entry nor the default entry sets a field.
const (
	DefaultExpire                 uint32 = 86400
	DefaultErrExpire              uint32 = 300
	DefaultKeepCacheAfterShutdown        = false
)

// DefaultEntry is the reserved hosts key used only as a fallback source.
const DefaultEntry = "default"

// ListenProfile describes the local listener. Not sourced from the document yet:
// Parse always returns the zero value (OS-chosen port, plain TCP, no TLS).
type ListenProfile struct {
	Port       uint16 // 0 = any free port
	UnixSocket bool
	TLS        bool
}

// HostProfile is the resolved forwarding profile of one virtual host.
type HostProfile struct {
	Host                   string // e.g. cache.example.com
	Origin                 string // e.g. https://contents.example.com
	Expire                 uint32 // seconds
	ErrExpire              uint32 // seconds
	KeepCacheAfterShutdown bool
}

// HostMap maps a virtual host name to its profile. Read-only after Parse.
type HostMap map[string]HostProfile

// Config is the fully resolved configuration.
type Config struct {
	Path   string // file the document was read from; empty for Parse
	Listen ListenProfile
	Hosts  HostMap
}
