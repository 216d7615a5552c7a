package tui

import (
	"testing"

	"github.com/pointzapp/bhakti-console/internal/media"
)

func TestSplitPaths(t *testing.T) {
	paths := splitPaths(" a.jpg , b.jpg ,, ")
	if len(paths) != 2 || paths[0] != "a.jpg" || paths[1] != "b.jpg" {
		t.Fatalf("paths = %v", paths)
	}
	if splitPaths("") != nil {
		t.Fatal("empty input should yield nil")
	}
}

func TestRemoveIndexesKeepsOrder(t *testing.T) {
	keys := []media.Key{"a", "b", "c", "d"}

	kept, err := removeIndexes(keys, "0, 2")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(kept) != 2 || kept[0] != "b" || kept[1] != "d" {
		t.Fatalf("kept = %v", kept)
	}

	// Source list is untouched; removal applies to the returned copy.
	if len(keys) != 4 {
		t.Fatalf("source mutated: %v", keys)
	}
}

func TestRemoveIndexesRejectsOutOfRange(t *testing.T) {
	if _, err := removeIndexes([]media.Key{"a"}, "3"); err == nil {
		t.Fatal("out of range index accepted")
	}
	if _, err := removeIndexes([]media.Key{"a"}, "x"); err == nil {
		t.Fatal("non-numeric index accepted")
	}
}

func TestStoryFormSeedsModeFromRecord(t *testing.T) {
	f := newStoryForm(nil)
	defer f.edit.Close()
	if f.edit.Mode != media.ModeAudio {
		t.Fatalf("new story mode = %s", f.edit.Mode)
	}
	if f.value(fieldMode) != "audio" {
		t.Fatalf("mode field = %q", f.value(fieldMode))
	}
}
