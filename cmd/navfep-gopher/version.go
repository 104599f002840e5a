package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build metadata, injected through -ldflags on release builds. Left
// empty on a plain go build, where the toolchain build info fills in.
var (
	version = ""
	commit  = ""
	date    = ""
)

// getVersion reports the release version, falling back to the module
// version stamped by the toolchain and then to "(devel)".
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getCommit reports the short commit hash, falling back to the VCS
// revision recorded in the build info and then to "unknown".
func getCommit() string {
	if commit != "" {
		return commit
	}
	if rev := buildSetting("vcs.revision"); rev != "" {
		if len(rev) > 7 {
			return rev[:7]
		}
		return rev
	}
	return "unknown"
}

// getDate reports the build date, falling back to the VCS commit time
// recorded in the build info and then to "unknown".
func getDate() string {
	if date != "" {
		return date
	}
	if ts := buildSetting("vcs.time"); ts != "" {
		return ts
	}
	return "unknown"
}

// buildSetting looks up one key in the toolchain build settings.
func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of navfep-gopher.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "navfep-gopher version %s\n", getVersion())
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", getCommit())
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", getDate())
		},
	}
}
