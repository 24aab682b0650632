package application

import (
	"slices"
	"time"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
)

// BuildGenealogy reconstructs the parent/children forest from each record's
// declared parent.
//
// Construction takes two explicit steps so that linking never depends on the
// order records arrive in:
//  1. one node per distinct record full name (first occurrence wins);
//  2. one child link per record whose parent has a node.
//
// A parent outside the record set gets no node; its children stay in the
// output as orphans that no node lists as a child.
func BuildGenealogy(rootFullName string, records []model.CreatureRecord, generatedAt time.Time) model.Genealogy {
	nodes := make([]model.GenealogyNode, 0, len(records))
	index := make(map[string]int, len(records))

	for _, r := range records {
		id := r.FullName()
		if _, exists := index[id]; exists {
			continue
		}
		index[id] = len(nodes)
		nodes = append(nodes, model.GenealogyNode{
			ID:          id,
			Owner:       r.Repository.Owner,
			Repo:        r.Repository.Name,
			URL:         r.Repository.URL,
			Parent:      optionalString(r.Repository.Parent),
			Children:    []string{},
			IsRoot:      r.IsRoot,
			RarityScore: r.Stats.RarityScore,
			Generation:  r.Stats.Generation,
			SVG:         optionalString(r.SVG),
		})
	}

	for _, r := range records {
		child, parent := r.FullName(), r.Repository.Parent
		if parent == "" || parent == child {
			continue
		}
		i, ok := index[parent]
		if !ok {
			continue
		}
		if !slices.Contains(nodes[i].Children, child) {
			nodes[i].Children = append(nodes[i].Children, child)
		}
	}

	return model.Genealogy{
		LastUpdated: formatTime(generatedAt),
		Root:        rootFullName,
		TotalNodes:  len(nodes),
		Nodes:       nodes,
	}
}
