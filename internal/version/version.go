package version

// Value is overridden at build time with -ldflags "-X github.com/fabian4/schnecke/internal/version.Value=...".
var Value = "dev"
