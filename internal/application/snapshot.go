package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
)

// BuildSnapshots runs the four builders over the same records and encodes
// each view. Every builder reads records without modifying them, and the
// output depends only on its arguments.
func BuildSnapshots(rootFullName string, records []model.CreatureRecord, generatedAt time.Time) ([]model.SnapshotDocument, error) {
	views := []struct {
		kind model.SnapshotKind
		view any
	}{
		{model.SnapshotRoster, BuildRoster(rootFullName, records, generatedAt)},
		{model.SnapshotLeaderboard, BuildLeaderboard(records, generatedAt)},
		{model.SnapshotGenealogy, BuildGenealogy(rootFullName, records, generatedAt)},
		{model.SnapshotStatistics, BuildNetworkStats(records, generatedAt)},
	}

	docs := make([]model.SnapshotDocument, 0, len(views))
	for _, v := range views {
		doc, err := EncodeSnapshot(v.kind, v.view)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// EncodeSnapshot renders a view as indented JSON with a trailing newline.
// HTML characters are left unescaped so SVG markup stays readable.
func EncodeSnapshot(kind model.SnapshotKind, view any) (model.SnapshotDocument, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(view); err != nil {
		return model.SnapshotDocument{}, fmt.Errorf("encoding %s snapshot: %w", kind, err)
	}

	return model.SnapshotDocument{Kind: kind, Body: buf.Bytes()}, nil
}
