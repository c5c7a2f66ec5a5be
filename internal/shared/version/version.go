// Package version carries the build version, overridable with
// -ldflags "-X sl2c/internal/shared/version.Version=...".
package version

var Version = "0.3.0"
