package main

import "runtime/debug"

// resolveVersion picks the effective binary version.
//
// Priority:
//  1. version injected at build time via -ldflags "-X main.version=..."
//  2. module version recorded by go install
//  3. "dev"
func resolveVersion(ldflagsVersion string, info *debug.BuildInfo) string {
	if ldflagsVersion != "" && ldflagsVersion != "dev" {
		return ldflagsVersion
	}
	if info != nil && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
