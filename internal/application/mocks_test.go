package application_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
	"github.com/ericfisherdev/forkmonkey/internal/domain/port/driven"
)

// --- Mock implementations ---

// fakeRepositoryClient serves a fixed fork network. Fork pages are keyed by
// page number; files by "owner/repo:path".
type fakeRepositoryClient struct {
	repos     map[string]model.RepositoryRef
	repoErrs  map[string]error
	forkPages map[int][]model.RepositoryRef
	forkErrs  map[int]error
	files     map[string]string
	fileErrs  map[string]error

	forkCalls []int
	fileCalls int
}

func newFakeClient() *fakeRepositoryClient {
	return &fakeRepositoryClient{
		repos:     map[string]model.RepositoryRef{},
		repoErrs:  map[string]error{},
		forkPages: map[int][]model.RepositoryRef{},
		forkErrs:  map[int]error{},
		files:     map[string]string{},
		fileErrs:  map[string]error{},
	}
}

func (f *fakeRepositoryClient) GetRepository(_ context.Context, fullName string) (*model.RepositoryRef, error) {
	if err, ok := f.repoErrs[fullName]; ok {
		return nil, err
	}
	repo, ok := f.repos[fullName]
	if !ok {
		return nil, fmt.Errorf("fetching repository %s: %w", fullName, driven.ErrRepositoryNotFound)
	}
	return &repo, nil
}

func (f *fakeRepositoryClient) ListForks(_ context.Context, _ string, page, _ int) ([]model.RepositoryRef, int, error) {
	f.forkCalls = append(f.forkCalls, page)
	if err, ok := f.forkErrs[page]; ok {
		return nil, 0, err
	}

	next := 0
	_, hasNext := f.forkPages[page+1]
	_, nextFails := f.forkErrs[page+1]
	if hasNext || nextFails {
		next = page + 1
	}
	return f.forkPages[page], next, nil
}

func (f *fakeRepositoryClient) GetFile(_ context.Context, fullName, path string) ([]byte, error) {
	f.fileCalls++
	key := fullName + ":" + path
	if err, ok := f.fileErrs[key]; ok {
		return nil, err
	}
	content, ok := f.files[key]
	if !ok {
		return nil, fmt.Errorf("fetching %s from %s: %w", path, fullName, driven.ErrFileNotFound)
	}
	return []byte(content), nil
}

// addFile registers a document for a repository.
func (f *fakeRepositoryClient) addFile(fullName, path, content string) {
	f.files[fullName+":"+path] = content
}

type captureWriter struct {
	docs []model.SnapshotDocument
	err  error
}

func (w *captureWriter) Publish(_ context.Context, docs []model.SnapshotDocument) error {
	if w.err != nil {
		return w.err
	}
	w.docs = append(w.docs, docs...)
	return nil
}

// body returns the most recently written document of the given kind.
func (w *captureWriter) body(kind model.SnapshotKind) string {
	for i := len(w.docs) - 1; i >= 0; i-- {
		if w.docs[i].Kind == kind {
			return string(w.docs[i].Body)
		}
	}
	return ""
}

type mockScanStore struct {
	saved    []model.ScanRun
	docs     [][]model.SnapshotDocument
	saveErr  error
	pruneArg int
}

func (m *mockScanStore) SaveRun(_ context.Context, run model.ScanRun, docs []model.SnapshotDocument) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, run)
	m.docs = append(m.docs, docs)
	return nil
}

func (m *mockScanStore) LatestRun(_ context.Context) (*model.ScanRun, error) {
	return nil, nil
}

func (m *mockScanStore) ListRuns(_ context.Context, _ int) ([]model.ScanRun, error) {
	return m.saved, nil
}

func (m *mockScanStore) GetSnapshot(_ context.Context, _ string, _ model.SnapshotKind) ([]byte, error) {
	return nil, driven.ErrSnapshotNotFound
}

func (m *mockScanStore) PruneRuns(_ context.Context, keep int) (int, error) {
	m.pruneArg = keep
	return 0, nil
}

// --- Fixtures ---

var (
	fixedNow       = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	errUnavailable = errors.New("503 service unavailable")
)

func fixedClock() time.Time { return fixedNow }

// repoRef builds a RepositoryRef for "owner/name" forked from parent.
func repoRef(fullName, parent string) model.RepositoryRef {
	owner, name, _ := strings.Cut(fullName, "/")
	return model.RepositoryRef{
		Owner:     owner,
		Name:      name,
		FullName:  fullName,
		URL:       "https://github.com/" + fullName,
		IsFork:    parent != "",
		Parent:    parent,
		CreatedAt: fixedNow.AddDate(0, 0, -10),
		UpdatedAt: fixedNow.AddDate(0, 0, -2),
	}
}

// creature builds a record with the given score and generation.
func creature(fullName string, score float64, generation int, parent string) model.CreatureRecord {
	return model.CreatureRecord{
		Repository: repoRef(fullName, parent),
		Stats: model.CreatureStats{
			Generation:  generation,
			RarityScore: score,
		},
	}
}
