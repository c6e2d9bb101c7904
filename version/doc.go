// Package version reports build information for liveview binaries.
//
// Version, commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/liveview/version.Version=1.0.0"
//
// Missing values are filled from the VCS stamp of the Go toolchain.
package version
