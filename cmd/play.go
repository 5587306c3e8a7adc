package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/feed"
	"github.com/suderio/quantum-dungeon/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a level in the terminal",
	Long: `Starts the terminal UI on the configured catalog and level.
Type inputs such as:
	> move right
	> tile 3 4
	> look 5 2 commit
	> select 1
Arrow keys move the player while the input line is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := buildLogger("quantum-dungeon.log"); err != nil {
			return err
		}
		defer logger.Sync()

		if err := appCfg.ResolveSeed(); err != nil {
			return err
		}
		app, err := session.New(session.Options{
			CatalogPath: appCfg.Catalog,
			LevelPath:   appCfg.Level,
			DataDirs:    appCfg.DataDirs,
			Seed:        appCfg.Seed,
			Config:      appCfg.Engine,
			JournalPath: appCfg.Journal,
			Logger:      logger,
		})
		if err != nil {
			return fmt.Errorf("failed to bootstrap game session: %w", err)
		}
		defer app.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var hub *feed.Hub
		if appCfg.Feed.Addr != "" {
			hub = feed.NewHub(logger)
			go func() {
				if err := feed.Serve(ctx, appCfg.Feed.Addr, hub); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("feed stopped", zap.Error(err))
				}
			}()
		}

		return RunTUI(app, hub)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().String("journal", "", "record the run to this JSONL journal")
	playCmd.Flags().String("feed", "", "serve snapshots over websocket on this address (e.g. :8080)")
	viper.BindPFlag("journal", playCmd.Flags().Lookup("journal"))
	viper.BindPFlag("feed.addr", playCmd.Flags().Lookup("feed"))
}
