package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/suderio/quantum-dungeon/internal/session"
)

var replayCmd = &cobra.Command{
	Use:   "replay <journal>",
	Short: "Replay a recorded run and print where it ended",
	Long: `Rebuilds a run from its JSONL journal by re-applying every recorded input and
tick against a fresh model started from the recorded seed, catalog and level.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := buildLogger(""); err != nil {
			return err
		}
		defer logger.Sync()

		var bar *progressbar.ProgressBar
		app, err := session.Replay(args[0], session.ReplayOptions{
			Logger: logger,
			Progress: func(done, total int) {
				if bar == nil {
					bar = progressbar.Default(int64(total), "Replaying")
				}
				bar.Set(done)
			},
		})
		if err != nil {
			return err
		}
		defer app.Close()

		snap := app.Snapshot()
		fmt.Printf("\nSession %s (seed %d)\n", app.ID(), app.Seed())
		fmt.Printf("Phase: %s\nCycle: %d\nMoves left: %d\n", snap.PhaseName, snap.Cycle, snap.MovesLeft)
		if p, ok := snap.PlayerEntity(); ok {
			fmt.Printf("Health: %d/%d at %d,%d\n", p.Health, p.MaxHealth, p.Pos.X, p.Pos.Y)
		}
		fmt.Printf("Items: %d (%d on board)\n", len(snap.Inventory), len(snap.BoardItems))
		fmt.Println(renderBoard(snap, false))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
