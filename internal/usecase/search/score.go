package search

import (
	"github.com/kailas-cloud/teammaker/internal/domain/category"
	"github.com/kailas-cloud/teammaker/internal/domain/partition"
)

// Score returns the sum over teams and values of the squared deviation between
// a team's weighted count w_v*count(t,v) and the ideal share w_v*C_v/K.
// 0 is a perfect balance. c must be built over the partitioned table.
func Score(p partition.Partition, c category.Category) float64 {
	k := float64(p.Len())
	counts := make([]int, c.Len())
	var sum float64
	for i := range p.Len() {
		countValues(p.Team(i), c, counts)
		for v, n := range counts {
			val := c.Value(v)
			w := val.Weight()
			d := w*float64(n) - w*float64(val.Rows())/k
			sum += d * d
		}
	}
	return sum
}

// Distribution returns, per team, the weighted count of every value of c
// keyed by the raw value.
func Distribution(p partition.Partition, c category.Category) []map[string]float64 {
	out := make([]map[string]float64, p.Len())
	counts := make([]int, c.Len())
	for i := range p.Len() {
		countValues(p.Team(i), c, counts)
		m := make(map[string]float64, len(counts))
		for v, n := range counts {
			val := c.Value(v)
			m[val.Raw()] = val.Weight() * float64(n)
		}
		out[i] = m
	}
	return out
}

func countValues(team partition.Team, c category.Category, counts []int) {
	clear(counts)
	for _, r := range team.Members() {
		counts[c.ValueOf(r)]++
	}
}
