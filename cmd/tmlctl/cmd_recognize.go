package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tmllang/tml/pkg/earley"
	"github.com/tmllang/tml/pkg/grammar"
)

func newRecognizeCmd() *cobra.Command {
	var grammarPath, input string
	cmd := &cobra.Command{
		Use:   "recognize",
		Short: "Recognize an input string against a grammar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammarFile(grammarPath)
			if err != nil {
				return err
			}
			c := earley.Recognize(g, input)
			if c.Recognized() {
				fmt.Println("accept")
				return nil
			}
			fmt.Println("reject")
			os.Exit(1)
			return nil
		},
	}
	cmd.Flags().StringVar(&grammarPath, "grammar", "", "path to a grammar YAML file")
	cmd.Flags().StringVar(&input, "input", "", "input string to recognize")
	_ = cmd.MarkFlagRequired("grammar")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func loadGrammarFile(path string) (*grammar.Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "tmlctl: read grammar %s", path)
	}
	g, err := grammar.Load(data)
	if err != nil {
		return nil, errors.Wrapf(err, "tmlctl: parse grammar %s", path)
	}
	return g, nil
}
