package partition

import (
	"fmt"
	"sort"
)

// Team is one group of a partition: an ordinal plus the member row indices.
type Team struct {
	ordinal int
	members []int
}

// Ordinal returns the team number, 0..K-1.
func (t Team) Ordinal() int { return t.ordinal }

// Len returns the team size.
func (t Team) Len() int { return len(t.members) }

// Members returns a copy of the member row indices in ascending order.
func (t Team) Members() []int {
	out := make([]int, len(t.members))
	copy(out, t.members)
	return out
}

// Partition assigns every row of a table to exactly one of K teams (immutable).
type Partition struct {
	teams []Team
	rows  int
}

// New validates that teams cover 0..rows-1 exactly once and creates a Partition.
func New(teams [][]int, rows int) (Partition, error) {
	if len(teams) == 0 {
		return Partition{}, fmt.Errorf("partition needs at least one team")
	}
	seen := make([]bool, rows)
	count := 0
	out := make([]Team, len(teams))
	for t, members := range teams {
		m := make([]int, len(members))
		copy(m, members)
		sort.Ints(m)
		for _, r := range m {
			if r < 0 || r >= rows {
				return Partition{}, fmt.Errorf("team %d: row %d outside 0..%d", t, r, rows-1)
			}
			if seen[r] {
				return Partition{}, fmt.Errorf("team %d: row %d assigned twice", t, r)
			}
			seen[r] = true
			count++
		}
		out[t] = Team{ordinal: t, members: m}
	}
	if count != rows {
		return Partition{}, fmt.Errorf("partition covers %d of %d rows", count, rows)
	}
	return Partition{teams: out, rows: rows}, nil
}

// FromAssignment builds a Partition from a row -> team mapping.
func FromAssignment(k int, teamOf []int) (Partition, error) {
	teams := make([][]int, k)
	for row, t := range teamOf {
		if t < 0 || t >= k {
			return Partition{}, fmt.Errorf("row %d: team %d outside 0..%d", row, t, k-1)
		}
		teams[t] = append(teams[t], row)
	}
	return New(teams, len(teamOf))
}

// Len returns the number of teams.
func (p Partition) Len() int { return len(p.teams) }

// Rows returns the number of rows covered.
func (p Partition) Rows() int { return p.rows }

// Team returns the team with ordinal i.
func (p Partition) Team(i int) Team { return p.teams[i] }

// Teams returns the teams in ordinal order.
func (p Partition) Teams() []Team {
	out := make([]Team, len(p.teams))
	copy(out, p.teams)
	return out
}

// Sizes returns the team sizes in ordinal order.
func (p Partition) Sizes() []int {
	out := make([]int, len(p.teams))
	for i, t := range p.teams {
		out[i] = len(t.members)
	}
	return out
}

// Assignment returns the row -> team mapping.
func (p Partition) Assignment() []int {
	out := make([]int, p.rows)
	for _, t := range p.teams {
		for _, r := range t.members {
			out[r] = t.ordinal
		}
	}
	return out
}

// Indices returns the member row indices of every team.
func (p Partition) Indices() [][]int {
	out := make([][]int, len(p.teams))
	for i, t := range p.teams {
		out[i] = t.Members()
	}
	return out
}
