package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/vango-dev/ripple/pkg/reactive"
)

// benchGraph is a layered graph: a row of atoms, depth rows of computed
// values each summing two neighbours of the row below, and one reaction per
// node of the last row.
type benchGraph struct {
	rt        *reactive.Runtime
	atoms     []*reactive.Value[int]
	leaves    []*reactive.Computed[int]
	reactions []*reactive.Reaction
	runs      int
}

// benchResult summarises one mutation run.
type benchResult struct {
	Mutations    int
	Batches      int
	ReactionRuns int
	Duration     time.Duration
}

// PerMutation returns the mean wall time per mutation.
func (r benchResult) PerMutation() time.Duration {
	if r.Mutations == 0 {
		return 0
	}
	return r.Duration / time.Duration(r.Mutations)
}

func buildGraph(rt *reactive.Runtime, atoms, depth int) *benchGraph {
	g := &benchGraph{rt: rt}

	for i := 0; i < atoms; i++ {
		g.atoms = append(g.atoms, reactive.NewValue(0, reactive.In(rt), reactive.Named(fmt.Sprintf("atom%d", i))))
	}

	row := make([]func() int, atoms)
	for i, a := range g.atoms {
		row[i] = a.Get
	}
	for layer := 1; layer <= depth; layer++ {
		next := make([]func() int, atoms)
		g.leaves = nil
		for i := range row {
			left, right := row[i], row[(i+1)%len(row)]
			c := reactive.NewComputed(func() int {
				return left() + right()
			}, reactive.In(rt), reactive.Named(fmt.Sprintf("c%d_%d", layer, i)))
			next[i] = c.Get
			g.leaves = append(g.leaves, c)
		}
		row = next
	}

	for i, read := range row {
		g.reactions = append(g.reactions, reactive.Autorun(func(*reactive.Reaction) {
			read()
			g.runs++
		}, reactive.In(rt), reactive.Named(fmt.Sprintf("sink%d", i))))
	}
	return g
}

// mutate increments random atoms, batch at a time, and reports how many
// reaction runs the graph performed.
func (g *benchGraph) mutate(mutations, batch int, seed uint64) benchResult {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	before := g.runs
	res := benchResult{Mutations: mutations}

	start := time.Now()
	for done := 0; done < mutations; {
		n := min(batch, mutations-done)
		g.rt.RunInAction(func() {
			for i := 0; i < n; i++ {
				a := g.atoms[rng.IntN(len(g.atoms))]
				a.Set(a.Peek() + 1)
			}
		})
		done += n
		res.Batches++
	}
	res.Duration = time.Since(start)
	res.ReactionRuns = g.runs - before
	return res
}

// sum reads every sink without tracking.
func (g *benchGraph) sum() int {
	total := 0
	g.rt.Untracked(func() {
		for _, c := range g.leaves {
			total += c.Get()
		}
		if len(g.leaves) == 0 {
			for _, a := range g.atoms {
				total += a.Get()
			}
		}
	})
	return total
}

func (g *benchGraph) dispose() {
	for _, r := range g.reactions {
		r.Dispose()
	}
}
