package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tmllang/tml/internal/batch"
	"github.com/tmllang/tml/pkg/earley"
)

// batchJobSpec names one independent recognize job in a batch script: its
// own grammar file and input string, run on its own goroutine against its
// own evaluator (spec §5's single-threaded-per-evaluator rule, preserved
// across the batch by never sharing a chart between jobs).
type batchJobSpec struct {
	Name    string `yaml:"name"`
	Grammar string `yaml:"grammar"`
	Input   string `yaml:"input"`
}

type batchScript struct {
	Jobs []batchJobSpec `yaml:"jobs"`
}

func newBatchCmd() *cobra.Command {
	var scriptPath string
	var workers int
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Recognize many independent grammar/input pairs concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(scriptPath)
			if err != nil {
				return errors.Wrapf(err, "tmlctl: read batch script %s", scriptPath)
			}
			var script batchScript
			if err := yaml.Unmarshal(data, &script); err != nil {
				return errors.Wrapf(err, "tmlctl: parse batch script %s", scriptPath)
			}

			jobs := make([]batch.Job, len(script.Jobs))
			for i, spec := range script.Jobs {
				spec := spec
				jobs[i] = batch.Job{
					Name: spec.Name,
					Run: func(ctx context.Context) (interface{}, error) {
						g, err := loadGrammarFile(spec.Grammar)
						if err != nil {
							return nil, err
						}
						c := earley.Recognize(g, spec.Input)
						return c.Recognized(), nil
					},
				}
			}

			results := batch.NewPool(workers).Run(cmd.Context(), jobs)
			for _, r := range results {
				if r.Err != nil {
					fmt.Printf("%s: error: %v\n", r.Name, r.Err)
					continue
				}
				fmt.Printf("%s: %v\n", r.Name, r.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scriptPath, "script", "", "path to a batch script YAML file")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = number of CPUs)")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}
