package generate

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/teammaker/internal/domain"
	"github.com/kailas-cloud/teammaker/internal/domain/category"
	"github.com/kailas-cloud/teammaker/internal/domain/partition"
	"github.com/kailas-cloud/teammaker/internal/domain/strategy"
	"github.com/kailas-cloud/teammaker/internal/domain/table"
)

// DefaultSwapEvery is the number of rows per random swap in random_categorical.
const DefaultSwapEvery = 10

// Generator produces one partition of a table per call.
// It holds no per-call state and is safe for concurrent use.
type Generator struct {
	swapEvery int
}

// NewGenerator creates a generator. swapEvery <= 0 uses DefaultSwapEvery.
func NewGenerator(swapEvery int) *Generator {
	if swapEvery <= 0 {
		swapEvery = DefaultSwapEvery
	}
	return &Generator{swapEvery: swapEvery}
}

// Generate partitions the rows of t into k teams.
// Categories are ordered by priority internally; strategies that ignore
// categories accept nil.
func (g *Generator) Generate(
	rng Rand, t table.Table, k int, s strategy.Strategy, cats []category.Category,
) (partition.Partition, error) {
	n := t.Len()
	if k < 1 || k > n {
		return partition.Partition{}, fmt.Errorf("%w: %d teams for %d rows", domain.ErrInvalidTeamCount, k, n)
	}
	if !s.IsValid() {
		return partition.Partition{}, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, s)
	}
	if s.UsesCategories() && len(cats) == 0 {
		return partition.Partition{}, fmt.Errorf("%w: strategy %s needs at least one category",
			domain.ErrMissingCategory, s)
	}
	for _, c := range cats {
		if c.Rows() != n {
			return partition.Partition{}, fmt.Errorf("category %q built for %d rows, table has %d",
				c.Name(), c.Rows(), n)
		}
	}
	ordered, err := category.Prioritize(cats)
	if err != nil {
		return partition.Partition{}, err
	}

	start := rng.IntN(k)
	var teams [][]int
	switch s {
	case strategy.Random:
		teams = deal(shuffled(rng, identity(n)), k, start)
	case strategy.Categorical:
		teams = deal(arrange(rng, n, k, start, ordered), k, start)
	case strategy.RandomCategorical:
		teams = deal(arrange(rng, n, k, start, ordered), k, start)
		g.perturb(rng, teams, n)
	}
	return partition.New(teams, n)
}

// perturb swaps random rows between different teams, keeping sizes.
func (g *Generator) perturb(rng Rand, teams [][]int, n int) {
	k := len(teams)
	if k < 2 {
		return
	}
	teamOf := make([]int, n)
	pos := make([]int, n)
	for t, members := range teams {
		for i, r := range members {
			teamOf[r] = t
			pos[r] = i
		}
	}

	swaps := max(1, n/g.swapEvery)
	for range swaps {
		a := rng.IntN(n)
		ta := teamOf[a]
		tb := rng.IntN(k - 1)
		if tb >= ta {
			tb++
		}
		pb := rng.IntN(len(teams[tb]))
		b := teams[tb][pb]
		pa := pos[a]

		teams[ta][pa], teams[tb][pb] = b, a
		teamOf[a], teamOf[b] = tb, ta
		pos[a], pos[b] = pb, pa
	}
}

// deal assigns seq round-robin to k teams, starting at team start.
func deal(seq []int, k, start int) [][]int {
	teams := make([][]int, k)
	for t := range teams {
		teams[t] = make([]int, 0, len(seq)/k+1)
	}
	for i, r := range seq {
		t := (start + i) % k
		teams[t] = append(teams[t], r)
	}
	return teams
}

// arrange orders the rows for a deal beginning at team start.
// Every value of cats[0] forms one contiguous run, so it reaches each team
// within one of an even share. Runs follow a weighted random order. Inside a
// run each slot already knows its team and takes the row whose lower category
// values that team is furthest short of.
func arrange(rng Rand, n, k, start int, cats []category.Category) []int {
	primary := cats[0]
	groups := make([][]int, primary.Len())
	for r := range n {
		v := primary.ValueOf(r)
		groups[v] = append(groups[v], r)
	}
	var present []int
	for v, rows := range groups {
		if len(rows) > 0 {
			present = append(present, v)
		}
	}

	b := newBalancer(k, cats[1:])
	out := make([]int, 0, n)
	for _, v := range weightedOrder(rng, primary, present) {
		buckets := b.bucket(shuffled(rng, groups[v]))
		for range groups[v] {
			t := (start + len(out)) % k
			i := b.pick(rng, t, buckets)
			bk := buckets[i]
			r := bk[len(bk)-1]
			buckets[i] = bk[:len(bk)-1]
			if len(buckets[i]) == 0 {
				buckets[i] = buckets[len(buckets)-1]
				buckets = buckets[:len(buckets)-1]
			}
			b.place(t, r)
			out = append(out, r)
		}
	}
	return out
}

// balancer tracks per-team counts of the lower-priority category values.
type balancer struct {
	k     int
	cats  []category.Category
	count [][][]int // [category][team][value]
}

func newBalancer(k int, cats []category.Category) *balancer {
	count := make([][][]int, len(cats))
	for ci, c := range cats {
		count[ci] = make([][]int, k)
		for t := range count[ci] {
			count[ci][t] = make([]int, c.Len())
		}
	}
	return &balancer{k: k, cats: cats, count: count}
}

// bucket splits rows by their lower category values, keeping row order.
func (b *balancer) bucket(rows []int) [][]int {
	if len(b.cats) == 0 {
		return [][]int{rows}
	}
	index := make(map[string]int)
	var out [][]int
	key := make([]byte, 0, 8*len(b.cats))
	for _, r := range rows {
		key = key[:0]
		for _, c := range b.cats {
			key = binary.AppendUvarint(key, uint64(c.ValueOf(r)))
		}
		i, ok := index[string(key)]
		if !ok {
			i = len(out)
			index[string(key)] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], r)
	}
	return out
}

// pick returns the bucket team t needs most. Needs are weighted by category
// priority; ties are broken uniformly at random.
func (b *balancer) pick(rng Rand, t int, buckets [][]int) int {
	if len(buckets) == 1 {
		return 0
	}
	best, ties := 0, 0
	var bestNeed float64
	for i, rows := range buckets {
		r := rows[0]
		var need float64
		for ci, c := range b.cats {
			v := c.ValueOf(r)
			share := float64(c.Value(v).Rows()) / float64(b.k)
			need += c.Priority() * (share - float64(b.count[ci][t][v]))
		}
		switch {
		case i == 0 || need > bestNeed:
			best, bestNeed, ties = i, need, 1
		case need == bestNeed:
			ties++
			if rng.IntN(ties) == 0 {
				best = i
			}
		}
	}
	return best
}

func (b *balancer) place(t, r int) {
	for ci, c := range b.cats {
		b.count[ci][t][c.ValueOf(r)]++
	}
}

// weightedOrder returns values in a random order where each value's chance of
// coming earlier is proportional to its weight (Efraimidis-Spirakis keys).
// Zero-weight values come last in uniform random order.
func weightedOrder(rng Rand, c category.Category, values []int) []int {
	keys := make([]float64, len(values))
	for i, v := range values {
		u := rng.Float64()
		w := c.Value(v).Weight()
		if w > 0 {
			keys[i] = math.Pow(u, 1/w)
		} else {
			keys[i] = -1 + u
		}
	}
	idx := identity(len(values))
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] > keys[idx[b]] })

	out := make([]int, len(values))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

// shuffled permutes rows in place (Fisher-Yates) and returns them.
func shuffled(rng Rand, rows []int) []int {
	for i := len(rows) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
