package api

import (
	"github.com/google/uuid"

	"github.com/kailas-cloud/teammaker/internal/domain/category"
	"github.com/kailas-cloud/teammaker/internal/domain/partition"
	"github.com/kailas-cloud/teammaker/internal/domain/table"
	"github.com/kailas-cloud/teammaker/internal/usecase/search"
)

// NewTableResponse formats a stored table's description.
func NewTableResponse(id uuid.UUID, header []string, rows int) TableResponse {
	if header == nil {
		header = []string{}
	}
	return TableResponse{TableID: id.String(), Headers: header, RowCount: rows}
}

// NewGenerateResponse formats a partition of t.
func NewGenerateResponse(p partition.Partition, t table.Table) GenerateResponse {
	teams, members := teamsOf(p, t)
	return GenerateResponse{Teams: teams, Members: members}
}

// NewSearchResponse formats a search result over t scored on target.
func NewSearchResponse(r search.Result, t table.Table, target category.Category) SearchResponse {
	teams, members := teamsOf(r.Partition, t)
	return SearchResponse{
		Teams:        teams,
		Members:      members,
		Score:        r.Score,
		Trials:       r.Trials,
		BestTrial:    r.BestTrial,
		Distribution: search.Distribution(r.Partition, target),
	}
}

func teamsOf(p partition.Partition, t table.Table) ([][]int, [][]string) {
	teams := p.Indices()
	members := make([][]string, len(teams))
	for i, rows := range teams {
		names := make([]string, len(rows))
		for j, r := range rows {
			names[j] = t.Label(r)
		}
		members[i] = names
	}
	return teams, members
}
