package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/reactive"
)

// scenario is one self-checking walk through the engine.
type scenario struct {
	name        string
	description string
	run         func(d *demo) error
}

// demo is the state shared by the scenarios of one run.
type demo struct {
	rt   *reactive.Runtime
	out  io.Writer
	tree bool
}

var scenarios = []scenario{
	{"nested-batch", "a reaction runs once, after the outermost batch closes", nestedBatchScenario},
	{"unchanged-computed", "a computed that recomputes to the same value does not notify", unchangedComputedScenario},
	{"conditional-branch", "a dependency read only on one branch is dropped with it", conditionalBranchScenario},
	{"debounced-teardown", "losing and regaining the last observer in one batch fires no hooks", debouncedTeardownScenario},
}

func demoCmd() *cobra.Command {
	var (
		configPath string
		showTree   bool
		only       string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the propagation scenarios",
		Long: `Run a set of small scenarios against a fresh runtime and check
that reactions run exactly when they should.

Runtime policy and logging come from ripple.toml when --config is given.

Examples:
  ripple demo
  ripple demo --tree
  ripple demo --config ripple.toml --only nested-batch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
			d := &demo{
				rt:   newRuntime(cfg, logger),
				out:  cmd.OutOrStdout(),
				tree: showTree,
			}
			return d.runAll(only)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to ripple.toml")
	cmd.Flags().BoolVarP(&showTree, "tree", "t", false, "Print dependency trees after each scenario")
	cmd.Flags().StringVar(&only, "only", "", "Run a single scenario by name")

	return cmd
}

func (d *demo) runAll(only string) error {
	ran := 0
	for _, sc := range scenarios {
		if only != "" && sc.name != only {
			continue
		}
		ran++
		if err := sc.run(d); err != nil {
			return errors.New("E301").WithField(sc.name).Wrap(err)
		}
		success(d.out, "%s: %s", sc.name, sc.description)
	}
	if ran == 0 {
		return errors.New("E201").
			WithField("--only").
			WithDetail(fmt.Sprintf("no scenario named %q", only)).
			WithSuggestion("Use one of: nested-batch, unchanged-computed, conditional-branch, debounced-teardown")
	}
	return nil
}

func (d *demo) printTree(label string, node reactive.TreeNode) {
	if !d.tree {
		return
	}
	info(d.out, "%s:", label)
	for _, line := range strings.Split(strings.TrimSuffix(node.String(), "\n"), "\n") {
		info(d.out, "  %s", line)
	}
}

func nestedBatchScenario(d *demo) error {
	a := reactive.NewValue(1, reactive.In(d.rt), reactive.Named("a"))
	var seen []int
	r := reactive.Autorun(func(r *reactive.Reaction) {
		v := a.Get()
		seen = append(seen, v)
		d.rt.Logger().Info("reaction ran", "reaction", r.Name(), "a", v)
	}, reactive.In(d.rt), reactive.Named("watch-a"))
	defer r.Dispose()

	var midway int
	d.rt.RunInAction(func() {
		d.rt.Batch(func() {
			a.Set(3)
			a.Set(2)
		})
		midway = len(seen)
	})

	if midway != 1 {
		return fmt.Errorf("reaction ran %d times before the outer batch closed, want 1", midway)
	}
	if !slices.Equal(seen, []int{1, 2}) {
		return fmt.Errorf("reaction saw %v, want [1 2]", seen)
	}
	d.printTree("dependencies", reactive.DependencyTree(r))
	return nil
}

func unchangedComputedScenario(d *demo) error {
	a := reactive.NewValue(2, reactive.In(d.rt), reactive.Named("a"))
	b := reactive.NewValue(3, reactive.In(d.rt), reactive.Named("b"))
	positive := reactive.NewComputed(func() bool {
		return a.Get()*b.Get() > 0
	}, reactive.In(d.rt), reactive.Named("positive"))

	runs := 0
	r := reactive.Autorun(func(r *reactive.Reaction) {
		v := positive.Get()
		runs++
		d.rt.Logger().Info("reaction ran", "reaction", r.Name(), "positive", v)
	}, reactive.In(d.rt), reactive.Named("watch-positive"))
	defer r.Dispose()

	d.rt.RunInAction(func() { a.Set(4) })

	if runs != 1 {
		return fmt.Errorf("reaction ran %d times, want 1", runs)
	}
	if s := reactive.DependencyState(r); s != reactive.UpToDate {
		return fmt.Errorf("reaction is %s, want %s", s, reactive.UpToDate)
	}

	d.rt.RunInAction(func() { b.Set(-1) })
	if runs != 2 {
		return fmt.Errorf("reaction ran %d times after the sign flipped, want 2", runs)
	}
	d.printTree("dependencies", reactive.DependencyTree(r))
	d.printTree("observers of a", reactive.ObserverTree(a))
	return nil
}

func conditionalBranchScenario(d *demo) error {
	a := reactive.NewValue(true, reactive.In(d.rt), reactive.Named("a"))
	b := reactive.NewValue("b", reactive.In(d.rt), reactive.Named("b"))
	c := reactive.NewValue("c", reactive.In(d.rt), reactive.Named("c"))

	r := reactive.Autorun(func(r *reactive.Reaction) {
		read := []string{}
		if a.Get() {
			read = append(read, "a")
		}
		read = append(read, b.Get())
		if a.Get() {
			read = append(read, c.Get())
		}
		d.rt.Logger().Info("reaction ran", "reaction", r.Name(), "read", read)
	}, reactive.In(d.rt), reactive.Named("branch"))
	defer r.Dispose()

	if n := len(reactive.Dependencies(r)); n != 3 {
		return fmt.Errorf("reaction has %d dependencies, want 3", n)
	}
	d.printTree("dependencies before", reactive.DependencyTree(r))

	d.rt.RunInAction(func() { a.Set(false) })

	deps := reactive.Dependencies(r)
	if len(deps) != 2 {
		return fmt.Errorf("reaction has %d dependencies, want 2", len(deps))
	}
	if reactive.HasObservers(c) {
		return fmt.Errorf("c is still observed after its branch was skipped")
	}
	d.printTree("dependencies after", reactive.DependencyTree(r))
	return nil
}

func debouncedTeardownScenario(d *demo) error {
	var observed, unobserved int
	a := reactive.NewValue(1,
		reactive.In(d.rt),
		reactive.Named("a"),
		reactive.OnObserved(func() { observed++ }),
		reactive.OnUnobserved(func() { unobserved++ }),
	)

	read := func(r *reactive.Reaction) {
		d.rt.Logger().Info("reaction ran", "reaction", r.Name(), "a", a.Get())
	}
	first := reactive.Autorun(read, reactive.In(d.rt), reactive.Named("first"))

	var second *reactive.Reaction
	d.rt.RunInAction(func() {
		first.Dispose()
		second = reactive.Autorun(read, reactive.In(d.rt), reactive.Named("second"))
	})

	if observed != 1 || unobserved != 0 {
		return fmt.Errorf("hooks fired observed=%d unobserved=%d, want 1 and 0", observed, unobserved)
	}
	d.printTree("observers", reactive.ObserverTree(a))

	second.Dispose()
	if unobserved != 1 {
		return fmt.Errorf("unobserved hook fired %d times after the last observer left, want 1", unobserved)
	}
	return nil
}
