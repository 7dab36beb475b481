package git

import (
	"testing"

	"github.com/arnarsson/gitpress/internal/apperr"
)

func TestParseNameStatus(t *testing.T) {
	out := "A\tarticles/tech/new.md\nM\tarticles/tech/changed.md\nD\tpages/gone.md\nR087\tarticles/old.md\tarticles/new.md\n"
	changes := parseNameStatus(out)
	if len(changes) != 4 {
		t.Fatalf("len = %d, want 4", len(changes))
	}

	if changes[0].Status != StatusAdded || changes[0].Path != "articles/tech/new.md" {
		t.Errorf("added = %+v", changes[0])
	}
	if changes[1].Status != StatusModified {
		t.Errorf("modified = %+v", changes[1])
	}
	if changes[2].Status != StatusDeleted || changes[2].Path != "pages/gone.md" {
		t.Errorf("deleted = %+v", changes[2])
	}
	r := changes[3]
	if r.Status != StatusRenamed || r.OldPath != "articles/old.md" || r.Path != "articles/new.md" {
		t.Errorf("renamed = %+v", r)
	}
}

func TestParseNameStatus_EmptyAndMalformed(t *testing.T) {
	if got := parseNameStatus(""); len(got) != 0 {
		t.Errorf("empty input parsed to %+v", got)
	}
	if got := parseNameStatus("garbage-without-tab\n"); len(got) != 0 {
		t.Errorf("malformed line parsed to %+v", got)
	}
}

func TestStatusPorcelainRename(t *testing.T) {
	// Porcelain rename lines carry "old -> new" in the path column.
	out := "R  articles/old.md -> articles/new.md\n?? pages/untracked.md\n M articles/edited.md\n"
	changes := parsePorcelain(out)
	if len(changes) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(changes), changes)
	}
	if changes[0].Status != StatusRenamed || changes[0].OldPath != "articles/old.md" || changes[0].Path != "articles/new.md" {
		t.Errorf("rename = %+v", changes[0])
	}
	if changes[1].Status != StatusAdded {
		t.Errorf("untracked should map to added: %+v", changes[1])
	}
	if changes[2].Status != StatusModified {
		t.Errorf("modified = %+v", changes[2])
	}
}

func TestIsNoopCommit(t *testing.T) {
	gitErr := &apperr.GitError{Args: []string{"commit"}, ExitCode: 1, Stderr: ""}
	if !isNoopCommit("nothing to commit, working tree clean", gitErr) {
		t.Error("clean-tree commit failure should be a no-op")
	}
	if isNoopCommit("fatal: not a git repository", gitErr) {
		t.Error("unrelated failure must not be swallowed")
	}

	plain := &apperr.GitError{Args: []string{"commit"}, ExitCode: 128, Stderr: "fatal: boom"}
	if isNoopCommit("", plain) {
		t.Error("fatal error is not a no-op")
	}
}
