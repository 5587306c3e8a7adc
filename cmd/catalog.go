package cmd

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/script"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect item catalogs",
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check [catalog.yaml]",
	Short: "Compile every item script and formula in a catalog",
	Long: `Loads the catalog (the configured one unless a path is given), compiles each
item's Lua script and CEL spawn weight, and reports every problem found. Broken
items still load as inert items in play; this command exits non-zero so the
problem is caught before that.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := buildLogger(""); err != nil {
			return err
		}
		defer logger.Sync()

		path := appCfg.Catalog
		if len(args) == 1 {
			path = args[0]
		}
		doc, err := data.LoadCatalogFile(path)
		if err != nil {
			return err
		}
		ev, err := data.NewEvaluator()
		if err != nil {
			return err
		}
		host := script.NewHost(logger, ev)

		var problems []error
		bar := progressbar.Default(int64(len(doc.Items)), "Compiling")
		for _, item := range doc.Items {
			if _, err := host.Compile(item.Name, item.Script); err != nil {
				problems = append(problems, err)
			}
			if item.SpawnWeight != "" {
				if err := ev.Compile(item.SpawnWeight); err != nil {
					problems = append(problems, fmt.Errorf("%s spawn_weight: %w", item.Name, err))
				}
			}
			bar.Add(1)
		}

		fmt.Printf("\n%d items checked in %s\n", len(doc.Items), path)
		if len(problems) == 0 {
			fmt.Println("No problems found.")
			return nil
		}
		for _, p := range problems {
			fmt.Printf(" - %v\n", p)
		}
		return fmt.Errorf("%d problem(s) found", len(problems))
	},
}

var catalogSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the catalog format",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := data.MarshalCatalogSchema()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogCheckCmd)
	catalogCmd.AddCommand(catalogSchemaCmd)
}
