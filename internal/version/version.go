package version

// Version is the sitekit version, set at build time with
// -ldflags "-X github.com/hashicorp-forge/sitekit/internal/version.Version=...".
var Version = "0.1.0-dev"
