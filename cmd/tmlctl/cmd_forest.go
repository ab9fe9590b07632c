package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tmllang/tml/pkg/earley"
	"github.com/tmllang/tml/pkg/sppf"
)

type childDump struct {
	Symbol string `yaml:"symbol"`
	From   int    `yaml:"from"`
	To     int    `yaml:"to"`
}

type nodeDump struct {
	Symbol   string        `yaml:"symbol"`
	From     int           `yaml:"from"`
	To       int           `yaml:"to"`
	Packings [][]childDump `yaml:"packings"`
}

type forestDump struct {
	Root  childDump  `yaml:"root"`
	Nodes []nodeDump `yaml:"nodes"`
}

func newForestCmd() *cobra.Command {
	var grammarPath, input string
	cmd := &cobra.Command{
		Use:   "forest",
		Short: "Build the shared-packed parse forest for an input string and dump it as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammarFile(grammarPath)
			if err != nil {
				return err
			}
			c := earley.Recognize(g, input)
			if !c.Recognized() {
				return errors.Errorf("tmlctl: %q is not in the language of %s", input, grammarPath)
			}
			f := sppf.Build(c)
			dump := dumpForest(f, string(g.Start), len(c.Input()))
			out, err := yaml.Marshal(dump)
			if err != nil {
				return errors.Wrap(err, "tmlctl: marshal forest")
			}
			fmt.Print(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&grammarPath, "grammar", "", "path to a grammar YAML file")
	cmd.Flags().StringVar(&input, "input", "", "input string to parse")
	_ = cmd.MarkFlagRequired("grammar")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func dumpForest(f *sppf.Forest, start string, inputLen int) forestDump {
	dump := forestDump{Root: childDump{Symbol: start, From: 0, To: inputLen}}
	for _, key := range f.Nodes() {
		n := nodeDump{Symbol: string(key.Symbol), From: key.From, To: key.To}
		for _, packing := range f.Packings(key) {
			var children []childDump
			for _, child := range packing {
				children = append(children, childDump{Symbol: string(child.Symbol), From: child.From, To: child.To})
			}
			n.Packings = append(n.Packings, children)
		}
		dump.Nodes = append(dump.Nodes, n)
	}
	return dump
}
