package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/suderio/quantum-dungeon/internal/script"
)

var (
	// Version is injected by GoReleaser via ldflags at build time
	Version = "dev"
	// Commit is injected by GoReleaser via ldflags at build time
	Commit = "none"
	// BuildDate is injected by GoReleaser via ldflags at build time
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the application version",
	Long:              `Displays the current running version of quantum-dungeon alongside the build metadata and scripting runtime.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("quantum-dungeon version %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Build date: %s\n", BuildDate)
		fmt.Printf("Scripting: Lua 5.2 (go-lua), triggers %v\n", scriptTriggers())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func scriptTriggers() []string {
	var out []string
	for _, t := range script.Triggers {
		out = append(out, string(t))
	}
	return out
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
