package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/config"
)

var (
	cfgFile string
	appCfg  config.Config
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "quantum-dungeon",
	Short: "A turn-based dungeon crawler driven by scripted items",
	Long: `Quantum Dungeon is a grid dungeon crawler. Every item on the board runs a
small Lua script at night, at dawn and when activated; the engine resolves
what the scripts ask for one effect at a time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		appCfg = cfg
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildLogger creates the process logger from the loaded config. A TUI
// owns the terminal, so callers can force logs into a file.
func buildLogger(fallbackFile string) error {
	lc := appCfg.Log
	if lc.File == "" {
		lc.File = fallbackFile
	}
	l, err := config.NewLogger(lc)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./quantum-dungeon.yaml or $HOME/.config/quantum-dungeon/quantum-dungeon.yaml)")
	rootCmd.PersistentFlags().String("catalog", "", "item catalog YAML")
	rootCmd.PersistentFlags().String("level", "", "level YAML")
	rootCmd.PersistentFlags().Int64("seed", 0, "random seed (0 picks one)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	viper.BindPFlag("level", rootCmd.PersistentFlags().Lookup("level"))
	viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}
