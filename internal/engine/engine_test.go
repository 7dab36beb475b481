package engine_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/engine"
	"github.com/arnarsson/gitpress/internal/git"
	"github.com/arnarsson/gitpress/internal/mapper"
	"github.com/arnarsson/gitpress/internal/models"
	"github.com/arnarsson/gitpress/internal/render"
	"github.com/arnarsson/gitpress/internal/storage"
	"github.com/arnarsson/gitpress/internal/store"
	"github.com/arnarsson/gitpress/internal/testutil"
	"github.com/arnarsson/gitpress/internal/writer"
)

// fakeVCS replays canned commit ids and diffs so sync passes run without
// a real repository.
type fakeVCS struct {
	head    string
	headErr error
	changes []git.Change
	diffErr error

	diffed  bool
	commits []string
}

func (f *fakeVCS) Pull(ctx context.Context) error           { return nil }
func (f *fakeVCS) Head(ctx context.Context) (string, error) { return f.head, f.headErr }
func (f *fakeVCS) DiffNameStatus(ctx context.Context, from, to string) ([]git.Change, error) {
	f.diffed = true
	return f.changes, f.diffErr
}
func (f *fakeVCS) Add(ctx context.Context, paths ...string) error { return nil }
func (f *fakeVCS) Commit(ctx context.Context, message string) error {
	f.commits = append(f.commits, message)
	return nil
}
func (f *fakeVCS) Push(ctx context.Context) error { return nil }

// fakeInvalidator records the paths handed to cache invalidation.
type fakeInvalidator struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, paths...)
	return nil
}

func (f *fakeInvalidator) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.paths {
		if p == path {
			return true
		}
	}
	return false
}

type fixture struct {
	db   *store.DB
	root string
	tree storage.Provider
	vcs  *fakeVCS
	inv  *fakeInvalidator
	eng  *engine.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.TestDB(t)
	root, tree := testutil.TestTree(t)

	if err := db.CreateUser(&models.User{ID: "u-alice", Username: "alice", DisplayName: "Alice"}); err != nil {
		t.Fatal(err)
	}

	logger := slog.Default()
	m := mapper.New(db, db, db, tree, mapper.Options{
		AutoCreateCategories: true,
		DefaultCategorySlug:  "uncategorized",
	}, logger)
	w := writer.New(tree, m, logger)
	vcs := &fakeVCS{head: "c1"}
	inv := &fakeInvalidator{}
	eng := engine.New(db, tree, m, w, vcs, render.Plain{}, inv, nil, logger)
	return &fixture{db: db, root: root, tree: tree, vcs: vcs, inv: inv, eng: eng}
}

const helloDoc = `---
title: Hello World
author: alice
status: published
date: 2024-05-01
---

# Hi there
`

func TestFullSync_CreatesAndBacksigns(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)

	stats, err := f.eng.FullSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Added != 1 {
		t.Errorf("added = %d, want 1", stats.Added)
	}
	if len(stats.Errors) != 0 {
		t.Fatalf("errors = %+v", stats.Errors)
	}

	posts, err := f.db.ListExported()
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 {
		t.Fatalf("exported posts = %d, want 1", len(posts))
	}
	p := posts[0]
	if p.Slug == "" || p.AuthorID != "u-alice" || p.Status != "published" {
		t.Errorf("post = %+v", p)
	}
	if p.SourcePath != "articles/tech/hello.md" {
		t.Errorf("source path = %q", p.SourcePath)
	}

	cat, err := f.db.GetCategory("tech", "article")
	if err != nil {
		t.Fatalf("category not auto-created: %v", err)
	}
	if p.CategoryID != cat.ID {
		t.Errorf("category id = %q, want %q", p.CategoryID, cat.ID)
	}

	data, err := f.tree.Read("articles/tech/hello.md")
	if err != nil {
		t.Fatal(err)
	}
	header := string(data)
	for _, want := range []string{"slug:", "author_id: u-alice", "category_id: " + cat.ID} {
		if !strings.Contains(header, want) {
			t.Errorf("backsigned file missing %q:\n%s", want, header)
		}
	}

	if len(f.vcs.commits) == 0 {
		t.Fatal("no metadata commit made")
	}
	if !strings.Contains(f.vcs.commits[0], engine.SkipMarker) {
		t.Errorf("commit message %q lacks skip marker", f.vcs.commits[0])
	}
}

func TestFullSync_SecondRunChangesNothing(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)

	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}
	stats, err := f.eng.FullSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Added != 0 || stats.Updated != 0 || len(stats.Deleted) != 0 {
		t.Errorf("second run not clean: added=%d updated=%d deleted=%v",
			stats.Added, stats.Updated, stats.Deleted)
	}
	if len(stats.Errors) != 0 {
		t.Errorf("errors = %+v", stats.Errors)
	}
}

func TestFullSync_AuthorNotFoundIsIsolated(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/ghost.md",
		"---\ntitle: Ghost\nauthor: nobody\n---\n\nBody.\n")
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)

	stats, err := f.eng.FullSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Added != 1 {
		t.Errorf("added = %d, want 1 despite the failing file", stats.Added)
	}
	if len(stats.Errors) != 1 {
		t.Fatalf("errors = %+v, want exactly one", stats.Errors)
	}
	issue := stats.Errors[0]
	if issue.Code != apperr.CodeAuthorNotFound || issue.Context != "articles/tech/ghost.md" {
		t.Errorf("issue = %+v", issue)
	}

	posts, err := f.db.ListExported()
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 {
		t.Errorf("exported posts = %d, want 1", len(posts))
	}
}

// breakAuthor rewrites a synced file so its author no longer resolves:
// the backsigned author_id line is dropped and the username replaced.
func breakAuthor(t *testing.T, f *fixture, rel string) {
	t.Helper()
	data, err := f.tree.Read(rel)
	if err != nil {
		t.Fatal(err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "author_id:") {
			continue
		}
		if strings.HasPrefix(line, "author:") {
			line = "author: nobody"
		}
		lines = append(lines, line)
	}
	if err := f.tree.Write(rel, []byte(strings.Join(lines, "\n"))); err != nil {
		t.Fatal(err)
	}
}

func TestFullSync_AuthorErrorLeavesRecordIntact(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)
	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}
	breakAuthor(t, f, "articles/tech/hello.md")

	stats, err := f.eng.FullSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.Errors) != 1 || stats.Errors[0].Code != apperr.CodeAuthorNotFound {
		t.Fatalf("errors = %+v, want one author_not_found", stats.Errors)
	}
	if len(stats.Deleted) != 0 {
		t.Errorf("deleted = %v, broken file must not delete its record", stats.Deleted)
	}

	posts, err := f.db.ListExported()
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 {
		t.Fatalf("exported posts = %d, want the record to survive", len(posts))
	}
	p := posts[0]
	if p.Title != "Hello World" || p.AuthorID != "u-alice" || p.Status != "published" {
		t.Errorf("record modified despite the error: %+v", p)
	}
}

func TestFullSync_ParseErrorLeavesRecordIntact(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)
	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := f.tree.Write("articles/tech/hello.md",
		[]byte("---\ntitle: [unclosed\n---\nBody.\n")); err != nil {
		t.Fatal(err)
	}

	stats, err := f.eng.FullSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.Errors) != 1 || stats.Errors[0].Code != apperr.CodeParseFailed {
		t.Fatalf("errors = %+v, want one parse_failed", stats.Errors)
	}
	if len(stats.Deleted) != 0 {
		t.Errorf("deleted = %v", stats.Deleted)
	}
	posts, err := f.db.ListExported()
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 {
		t.Errorf("exported posts = %d, want the record to survive", len(posts))
	}
}

func TestFullSync_CaseOnlyEditSyncs(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)
	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := f.tree.Read("articles/tech/hello.md")
	if err != nil {
		t.Fatal(err)
	}
	edited := strings.Replace(string(data), "# Hi there", "# HI THERE", 1)
	if err := f.tree.Write("articles/tech/hello.md", []byte(edited)); err != nil {
		t.Fatal(err)
	}

	stats, err := f.eng.FullSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 1 {
		t.Errorf("updated = %d, want 1 for a case-only body edit", stats.Updated)
	}
	posts, err := f.db.ListExported()
	if err != nil || len(posts) != 1 {
		t.Fatalf("posts = %v, err = %v", posts, err)
	}
	if !strings.Contains(posts[0].Body, "# HI THERE") {
		t.Errorf("stored body kept the old casing: %q", posts[0].Body)
	}
}

func TestFullSync_ConcurrentRunsShareOneCategory(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)

	var wg sync.WaitGroup
	results := make([]*models.SyncStats, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats, err := f.eng.FullSync(context.Background())
			if err != nil {
				t.Errorf("sync %d: %v", i, err)
				return
			}
			results[i] = stats
		}()
	}
	wg.Wait()

	added := 0
	for _, stats := range results {
		if stats != nil {
			added += stats.Added
		}
	}
	if added != 1 {
		t.Errorf("combined added = %d, want 1 across both runs", added)
	}

	cats, err := f.db.ListCategories()
	if err != nil {
		t.Fatal(err)
	}
	techCount := 0
	for _, c := range cats {
		if c.Slug == "tech" && c.Type == "article" {
			techCount++
		}
	}
	if techCount != 1 {
		t.Errorf("tech categories = %d, want exactly 1", techCount)
	}
	posts, err := f.db.ListExported()
	if err != nil || len(posts) != 1 {
		t.Errorf("posts = %v, err = %v", posts, err)
	}
}

func TestFullSync_InvalidatesAffectedPaths(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)
	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !f.inv.has("articles/tech/hello.md") {
		t.Errorf("created path missing from invalidation: %v", f.inv.paths)
	}

	if err := f.tree.Move("articles/tech/hello.md", "articles/archive/hello.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !f.inv.has("articles/archive/hello.md") {
		t.Errorf("updated path missing from invalidation: %v", f.inv.paths)
	}
}

func TestFullSync_DeletesRecordsWithoutDocuments(t *testing.T) {
	f := newFixture(t)
	orphan := &models.Post{
		ID: "p-orphan", Slug: "orphan", Title: "Orphan", Type: "article",
		Status: "draft", SourcePath: "articles/tech/orphan.md", AuthorID: "u-alice",
	}
	if err := f.db.CreatePost(orphan, nil); err != nil {
		t.Fatal(err)
	}

	stats, err := f.eng.FullSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.Deleted) != 1 || stats.Deleted[0] != "articles/tech/orphan.md" {
		t.Errorf("deleted = %v", stats.Deleted)
	}
	if _, err := f.db.GetPostByID("p-orphan"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("orphan still present, err = %v", err)
	}
}

func TestFullSync_MoveKeepsIdentity(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)
	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}
	before, err := f.db.ListExported()
	if err != nil || len(before) != 1 {
		t.Fatalf("posts = %v, err = %v", before, err)
	}

	if err := f.tree.Move("articles/tech/hello.md", "articles/archive/hello.md"); err != nil {
		t.Fatal(err)
	}

	stats, err := f.eng.FullSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Added != 0 || len(stats.Deleted) != 0 {
		t.Errorf("move produced added=%d deleted=%v, want pure update", stats.Added, stats.Deleted)
	}
	if stats.Updated == 0 {
		t.Error("move not recorded as an update")
	}

	after, err := f.db.GetPostByID(before[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.Slug != before[0].Slug {
		t.Errorf("slug changed across move: %q -> %q", before[0].Slug, after.Slug)
	}
	if after.SourcePath != "articles/archive/hello.md" {
		t.Errorf("source path = %q", after.SourcePath)
	}
}

func TestFullSync_ExportsNeverExportedRecords(t *testing.T) {
	f := newFixture(t)
	apiPost := &models.Post{
		ID: "p-api", Slug: "from-api", Title: "From API", Type: "article",
		Status: "draft", AuthorID: "u-alice", Body: "Written through the API.",
	}
	if err := f.db.CreatePost(apiPost, nil); err != nil {
		t.Fatal(err)
	}

	stats, err := f.eng.FullSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated == 0 {
		t.Error("export not counted")
	}

	got, err := f.db.GetPostByID("p-api")
	if err != nil {
		t.Fatal(err)
	}
	if got.SourcePath == "" {
		t.Fatal("record still has no source path")
	}
	if !f.tree.Exists(got.SourcePath) {
		t.Errorf("no file at %q", got.SourcePath)
	}

	n, err := f.db.CountNeverExported()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("never-exported count = %d, want 0", n)
	}
}

func TestIncrementalSync_RequiresBookmark(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.IncrementalSync(context.Background())
	if !errors.Is(err, apperr.ErrNoBookmark) {
		t.Errorf("err = %v, want ErrNoBookmark", err)
	}
}

func TestIncrementalSync_ShortCircuitsAtBookmark(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)
	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}

	stats, err := f.eng.IncrementalSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Added != 0 || stats.Updated != 0 || len(stats.Deleted) != 0 {
		t.Errorf("stats = %+v, want all zero at bookmark", stats)
	}
	if f.vcs.diffed {
		t.Error("diff computed although head equals bookmark")
	}
}

func TestIncrementalSync_ReplaysDiffChanges(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)
	testutil.WriteFile(t, f.root, "articles/tech/bye.md",
		"---\ntitle: Bye\nauthor: alice\n---\n\nGoing away.\n")
	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Edit one file, add one, remove one.
	data, err := f.tree.Read("articles/tech/hello.md")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.tree.Write("articles/tech/hello.md", append(data, []byte("\nMore text.\n")...)); err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, f.root, "articles/tech/fresh.md",
		"---\ntitle: Fresh\nauthor: alice\n---\n\nBrand new.\n")
	if err := f.tree.Delete("articles/tech/bye.md"); err != nil {
		t.Fatal(err)
	}

	f.vcs.head = "c2"
	f.vcs.changes = []git.Change{
		{Status: git.StatusModified, Path: "articles/tech/hello.md"},
		{Status: git.StatusAdded, Path: "articles/tech/fresh.md"},
		{Status: git.StatusDeleted, Path: "articles/tech/bye.md"},
	}

	stats, err := f.eng.IncrementalSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Added != 1 {
		t.Errorf("added = %d, want 1", stats.Added)
	}
	if stats.Updated != 1 {
		t.Errorf("updated = %d, want 1", stats.Updated)
	}
	if len(stats.Deleted) != 1 || stats.Deleted[0] != "articles/tech/bye.md" {
		t.Errorf("deleted = %v", stats.Deleted)
	}

	bookmark, err := f.tree.Read(".gitpress-last-sync")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(bookmark)) != "c2" {
		t.Errorf("bookmark = %q, want c2", bookmark)
	}
}

func TestIncrementalSync_RenameRepointsRecord(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)
	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := f.tree.Move("articles/tech/hello.md", "articles/tech/renamed.md"); err != nil {
		t.Fatal(err)
	}
	f.vcs.head = "c2"
	f.vcs.changes = []git.Change{
		{Status: git.StatusRenamed, OldPath: "articles/tech/hello.md", Path: "articles/tech/renamed.md"},
	}

	stats, err := f.eng.IncrementalSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Added != 0 || len(stats.Deleted) != 0 {
		t.Errorf("rename produced added=%d deleted=%v", stats.Added, stats.Deleted)
	}

	posts, err := f.db.ListExported()
	if err != nil || len(posts) != 1 {
		t.Fatalf("posts = %v, err = %v", posts, err)
	}
	if posts[0].SourcePath != "articles/tech/renamed.md" {
		t.Errorf("source path = %q", posts[0].SourcePath)
	}
}

func TestIncrementalSync_DiffFailureFallsBackToFull(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)
	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}

	testutil.WriteFile(t, f.root, "articles/tech/fresh.md",
		"---\ntitle: Fresh\nauthor: alice\n---\n\nBrand new.\n")
	f.vcs.head = "c2"
	f.vcs.diffErr = errors.New("diff blew up")

	stats, err := f.eng.IncrementalSync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Added != 1 {
		t.Errorf("fallback full sync added = %d, want 1", stats.Added)
	}
}

func TestPreview_ClassifiesWithoutWriting(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)
	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}

	// A changed file, a new file, a record whose file is gone, and a
	// record that was never exported.
	data, err := f.tree.Read("articles/tech/hello.md")
	if err != nil {
		t.Fatal(err)
	}
	edited := strings.Replace(string(data), "title: Hello World", "title: Hello Universe", 1)
	if err := f.tree.Write("articles/tech/hello.md", []byte(edited)); err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, f.root, "articles/tech/fresh.md",
		"---\ntitle: Fresh\nauthor: alice\n---\n\nBrand new.\n")
	gone := &models.Post{
		ID: "p-gone", Slug: "gone", Title: "Gone", Type: "article",
		Status: "draft", SourcePath: "articles/tech/gone.md", AuthorID: "u-alice",
	}
	if err := f.db.CreatePost(gone, nil); err != nil {
		t.Fatal(err)
	}
	api := &models.Post{
		ID: "p-api", Slug: "from-api", Title: "From API", Type: "article",
		Status: "draft", AuthorID: "u-alice",
	}
	if err := f.db.CreatePost(api, nil); err != nil {
		t.Fatal(err)
	}

	pv, err := f.eng.Preview(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(pv.ToCreate) != 1 || pv.ToCreate[0].Path != "articles/tech/fresh.md" {
		t.Errorf("to create = %+v", pv.ToCreate)
	}
	if len(pv.ToUpdate) != 1 {
		t.Fatalf("to update = %+v", pv.ToUpdate)
	}
	var sawTitle bool
	for _, d := range pv.ToUpdate[0].Diffs {
		if d.Field == "title" {
			sawTitle = true
		}
	}
	if !sawTitle {
		t.Errorf("title diff missing: %+v", pv.ToUpdate[0].Diffs)
	}
	if len(pv.ToDelete) != 1 || pv.ToDelete[0].Slug != "gone" {
		t.Errorf("to delete = %+v", pv.ToDelete)
	}
	if pv.NeverExported != 1 {
		t.Errorf("never exported = %d, want 1", pv.NeverExported)
	}

	// Dry run: nothing persisted.
	posts, err := f.db.ListExported()
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 2 {
		t.Errorf("exported posts = %d, want 2 untouched", len(posts))
	}
	got, err := f.db.GetPostByID(before(t, f))
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Hello World" {
		t.Errorf("preview mutated record: title = %q", got.Title)
	}
}

func TestPreview_ErroredFileNotListedForDeletion(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.root, "articles/tech/hello.md", helloDoc)
	if _, err := f.eng.FullSync(context.Background()); err != nil {
		t.Fatal(err)
	}
	breakAuthor(t, f, "articles/tech/hello.md")

	pv, err := f.eng.Preview(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(pv.Errors) != 1 || pv.Errors[0].Code != apperr.CodeAuthorNotFound {
		t.Fatalf("errors = %+v", pv.Errors)
	}
	if len(pv.ToDelete) != 0 {
		t.Errorf("to delete = %+v, errored file must not mark its record", pv.ToDelete)
	}
}

// before returns the id of the record created from the hello document.
func before(t *testing.T, f *fixture) string {
	t.Helper()
	posts, err := f.db.ListExported()
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range posts {
		if p.SourcePath == "articles/tech/hello.md" {
			return p.ID
		}
	}
	t.Fatal("hello record not found")
	return ""
}
