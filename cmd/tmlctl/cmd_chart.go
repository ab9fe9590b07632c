package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tmllang/tml/pkg/earley"
)

type itemDump struct {
	Set        int   `yaml:"set"`
	Prod       int   `yaml:"prod"`
	From       int   `yaml:"from"`
	Dot        int   `yaml:"dot"`
	Advancers  []int `yaml:"advancers,omitempty"`
	Completers []int `yaml:"completers,omitempty"`
}

type chartDump struct {
	Recognized bool       `yaml:"recognized"`
	Items      []itemDump `yaml:"items"`
}

func newChartCmd() *cobra.Command {
	var grammarPath, input string
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Dump the Earley chart built for an input string as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammarFile(grammarPath)
			if err != nil {
				return err
			}
			c := earley.Recognize(g, input)
			dump := dumpChart(c)
			out, err := yaml.Marshal(dump)
			if err != nil {
				return errors.Wrap(err, "tmlctl: marshal chart")
			}
			fmt.Print(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&grammarPath, "grammar", "", "path to a grammar YAML file")
	cmd.Flags().StringVar(&input, "input", "", "input string to recognize")
	_ = cmd.MarkFlagRequired("grammar")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func dumpChart(c *earley.Chart) chartDump {
	dump := chartDump{Recognized: c.Recognized()}
	seen := map[int]bool{}
	for n := 0; n <= len(c.Input()); n++ {
		for _, id := range c.ItemsAt(n) {
			if seen[id] {
				continue
			}
			seen[id] = true
			item := c.Item(id)
			dump.Items = append(dump.Items, itemDump{
				Set:        item.Set,
				Prod:       item.Prod,
				From:       item.From,
				Dot:        item.Dot,
				Advancers:  c.Advancers(id),
				Completers: c.Completers(id),
			})
		}
	}
	return dump
}
