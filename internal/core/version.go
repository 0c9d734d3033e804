// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"runtime/debug"

	"github.com/toeirei/clientbook/buildvars"
)

const modulePath = "github.com/toeirei/clientbook"

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// String renders "version (commit) built: date", leaving out unknown parts.
func (v VersionInfo) String() string {
	s := v.Version
	if v.Commit != "" && v.Commit != "dev" {
		s += " (" + v.Commit + ")"
	}
	if v.Date != "" {
		s += " built: " + v.Date
	}
	return s
}

// ResolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime. Link-time values from buildvars win over build info.
func ResolveBuildVersion(info *debug.BuildInfo) VersionInfo {
	v := VersionInfo{
		Version: buildvars.VersionOrDefault("dev"),
		Commit:  buildvars.Commit,
		Date:    buildvars.Date,
	}
	if v.Commit == "" {
		v.Commit = "dev"
	}

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}
	if info == nil {
		return v
	}

	if v.Version == "dev" {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			v.Version = info.Main.Version
		} else {
			// If Main doesn't contain the version (some build paths), try to
			// find our module in the dependencies and use that version.
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					v.Version = dep.Version
					break
				}
			}
		}
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if s.Value != "" && buildvars.Commit == "" {
				v.Commit = s.Value
			}
		case "vcs.time":
			if s.Value != "" && buildvars.Date == "" {
				v.Date = s.Value
			}
		}
	}

	// As a last resort show the commit so support can tell builds apart.
	if v.Version == "dev" && v.Commit != "dev" && v.Commit != "" {
		v.Version = v.Commit
	}
	return v
}
