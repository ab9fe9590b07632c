package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tmllang/tml/pkg/poset"
)

// posetOp is one step of a poset script: InsertVar/InsertEq/InsertImp take
// A (and B for the binary ones); Eval takes V as the literal assumed true.
type posetOp struct {
	Op string `yaml:"op"`
	A  int    `yaml:"a,omitempty"`
	B  int    `yaml:"b,omitempty"`
	V  int    `yaml:"v,omitempty"`
}

type posetScript struct {
	Vars int       `yaml:"vars"`
	Ops  []posetOp `yaml:"ops"`
}

type posetDump struct {
	Bottom bool    `yaml:"bottom"`
	Vars   []int   `yaml:"vars,omitempty"`
	Imps   [][]int `yaml:"imps,omitempty"`
	Eqs    [][]int `yaml:"eqs,omitempty"`
}

func newPosetCmd() *cobra.Command {
	var scriptPath string
	cmd := &cobra.Command{
		Use:   "poset",
		Short: "Run a script of InsertVar/InsertEq/InsertImp/Eval operations and dump the resulting poset",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(scriptPath)
			if err != nil {
				return errors.Wrapf(err, "tmlctl: read script %s", scriptPath)
			}
			var script posetScript
			if err := yaml.Unmarshal(data, &script); err != nil {
				return errors.Wrapf(err, "tmlctl: parse script %s", scriptPath)
			}

			u := poset.NewUniverse(script.Vars)
			p := u.Empty()
			for _, op := range script.Ops {
				p = applyPosetOp(u, p, op)
				if p.IsBottom() {
					break
				}
			}

			out, err := yaml.Marshal(dumpPoset(u, p))
			if err != nil {
				return errors.Wrap(err, "tmlctl: marshal poset")
			}
			fmt.Print(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&scriptPath, "script", "", "path to a poset operation script YAML file")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}

func applyPosetOp(u *poset.Universe, p poset.P, op posetOp) poset.P {
	switch op.Op {
	case "insertvar":
		return u.InsertVar(p, op.A)
	case "insertimp":
		return u.InsertImp(p, op.A, op.B)
	case "inserteq":
		return u.InsertEq(p, op.A, op.B)
	case "eval":
		return u.Eval(p, op.V)
	default:
		return poset.Bottom
	}
}

func dumpPoset(u *poset.Universe, p poset.P) posetDump {
	if p.IsBottom() {
		return posetDump{Bottom: true}
	}
	dump := posetDump{Vars: u.Vars.Members(p.Vars())}
	for _, pr := range u.Imps.Members(p.Imps()) {
		dump.Imps = append(dump.Imps, []int{pr[0], pr[1]})
	}
	seen := map[int]bool{}
	for x := 1; x <= u.Eqs.Size(); x++ {
		if seen[x] {
			continue
		}
		it := u.Eqs.GetEqual(p.Eqs(), x)
		var class []int
		for it.Next() {
			lit := it.Value()
			mag := lit
			if mag < 0 {
				mag = -mag
			}
			seen[mag] = true
			class = append(class, lit)
		}
		if len(class) > 1 {
			dump.Eqs = append(dump.Eqs, class)
		}
	}
	return dump
}
