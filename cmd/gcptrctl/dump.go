package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/gcptr/tracked"
)

type sample struct {
	Name  string
	Score int
}

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Populate the default registries with sample blocks and dump them",
		Long: `The dump command binds a set of sample scalars and arrays in the
process-wide registries, shares some of them, and prints every registry.
The handles are left outstanding on purpose: they are released by the exit
hook, which --verbose reports.

Example:
  gcptrctl dump
  gcptrctl dump --count 4 -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(count)
		},
	}
	cmd.Flags().IntVar(&count, "count", 3, "Number of sample scalars to bind")
	return cmd
}

func runDump(count int) error {
	if count < 0 {
		return fmt.Errorf("count must be >= 0, got %d", count)
	}

	for i := range count {
		p := tracked.Bind(&sample{Name: fmt.Sprintf("sample-%d", i), Score: i * 10})
		if i%2 == 0 {
			p.Clone()
		}
	}

	nums, err := tracked.NewArray[int64](count + 2)
	if err != nil {
		return err
	}
	for i, v := range nums.All() {
		*v = int64(i * i)
	}

	if quiet {
		return nil
	}
	return tracked.DumpAll(os.Stdout)
}
