package gitstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func commitFile(t *testing.T, repo *git.Repository, root, name, content string, when time.Time) {
	t.Helper()
	writeFile(t, root, name, content)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)

	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: when}
	_, err = wt.Commit("add "+name, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}

func openStore(t *testing.T, dir string) *Store {
	t.Helper()
	store, err := Open(Config{Path: dir})
	require.NoError(t, err)
	return store
}

func TestOpen_DiscoversFromSubdirectory(t *testing.T) {
	dir, repo := initRepo(t)
	commitFile(t, repo, dir, "schemas/a.json", "{}", time.Now())

	store, err := Open(Config{Path: filepath.Join(dir, "schemas")})
	require.NoError(t, err)
	assert.Equal(t, dir, store.Root())
}

func TestCandidates_FiltersByExtensionAndDir(t *testing.T) {
	dir, _ := initRepo(t)
	writeFile(t, dir, "schemas/a.json", "{}")
	writeFile(t, dir, "schemas/sub/b.json", "{}")
	writeFile(t, dir, "schemas/notes.txt", "")
	writeFile(t, dir, "other/c.json", "{}")

	store := openStore(t, dir)
	files, err := store.Candidates("schemas", "json")
	require.NoError(t, err)

	assert.Equal(t, map[string]struct{}{
		"schemas/a.json":     {},
		"schemas/sub/b.json": {},
	}, files)
}

func TestResolveUpdated_AssignsCommitTime(t *testing.T) {
	dir, repo := initRepo(t)
	when := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	commitFile(t, repo, dir, "schemas/a.json", "{}", when)

	store := openStore(t, dir)
	pending := map[string]struct{}{"schemas/a.json": {}}
	resolved, err := store.ResolveUpdated(pending)
	require.NoError(t, err)

	require.Len(t, resolved, 1)
	assert.Empty(t, pending)
	assert.Equal(t, "schemas/a.json", resolved[0].Path)
	assert.True(t, resolved[0].Updated.Equal(when), "got %v", resolved[0].Updated)
}

func TestResolveUpdated_NewestCommitContainingPathWins(t *testing.T) {
	dir, repo := initRepo(t)
	first := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2022, 6, 15, 9, 30, 0, 0, time.UTC)

	// a.json is introduced in the first commit and untouched afterwards, but
	// it is still present in the second commit's snapshot, which is the
	// newest commit containing it.
	commitFile(t, repo, dir, "schemas/a.json", "{}", first)
	commitFile(t, repo, dir, "schemas/b.json", "{}", second)

	store := openStore(t, dir)
	pending := map[string]struct{}{
		"schemas/a.json": {},
		"schemas/b.json": {},
	}
	resolved, err := store.ResolveUpdated(pending)
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	for _, res := range resolved {
		assert.True(t, res.Updated.Equal(second), "%s resolved to %v, want %v", res.Path, res.Updated, second)
	}
}

func TestResolveUpdated_UncommittedStaysPending(t *testing.T) {
	dir, repo := initRepo(t)
	commitFile(t, repo, dir, "schemas/a.json", "{}", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	writeFile(t, dir, "schemas/never.json", "{}")

	store := openStore(t, dir)
	pending := map[string]struct{}{
		"schemas/a.json":     {},
		"schemas/never.json": {},
	}
	resolved, err := store.ResolveUpdated(pending)
	require.NoError(t, err)

	require.Len(t, resolved, 1)
	assert.Equal(t, "schemas/a.json", resolved[0].Path)
	assert.Equal(t, map[string]struct{}{"schemas/never.json": {}}, pending)
}

func TestResolveUpdated_NormalizesZoneOffset(t *testing.T) {
	dir, repo := initRepo(t)
	zone := time.FixedZone("UTC+2", 2*60*60)
	when := time.Date(2021, 5, 1, 12, 0, 0, 0, zone)
	commitFile(t, repo, dir, "schemas/a.json", "{}", when)

	store := openStore(t, dir)
	pending := map[string]struct{}{"schemas/a.json": {}}
	resolved, err := store.ResolveUpdated(pending)
	require.NoError(t, err)
	require.Len(t, resolved, 1)

	// The committer's local wall clock is rendered as a UTC instant.
	want := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, resolved[0].Updated.Equal(want), "got %v, want %v", resolved[0].Updated, want)
}

func TestReadFile(t *testing.T) {
	dir, repo := initRepo(t)
	commitFile(t, repo, dir, "schemas/a.json", `{"title":"A"}`, time.Now())

	store := openStore(t, dir)
	content, err := store.ReadFile("schemas/a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"A"}`, string(content))
}
