package store

import (
	"path/filepath"
	"testing"

	"github.com/editkit/editkit/marker"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "bookmarks.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := openTestStore(t)

	in := []marker.Marker{
		{Name: "top", Position: 0, Type: marker.Bookmark()},
		{Name: "todo", Position: 128, Type: marker.Bookmark(), Data: `{"note":"fix this"}`},
	}
	if err := s.SaveBookmarks("main.go", in); err != nil {
		t.Fatalf("SaveBookmarks: %v", err)
	}

	out, err := s.LoadBookmarks("main.go")
	if err != nil {
		t.Fatalf("LoadBookmarks: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("loaded %d markers, want 2", len(out))
	}
	if out[0].Name != "top" || out[0].Position != 0 {
		t.Errorf("first = %+v", out[0])
	}
	if out[1].Name != "todo" || out[1].Position != 128 {
		t.Errorf("second = %+v", out[1])
	}
	if got := out[1].DataField("note").String(); got != "fix this" {
		t.Errorf("data note = %q", got)
	}
}

func TestOnlyBookmarksPersist(t *testing.T) {
	s := openTestStore(t)

	in := []marker.Marker{
		{Name: "keep", Position: 10, Type: marker.Bookmark()},
		{Name: "cursor", Position: 20, Type: marker.Cursor()},
		{Name: "hit", Position: 30, Type: marker.SearchResult()},
	}
	if err := s.SaveBookmarks("doc", in); err != nil {
		t.Fatalf("SaveBookmarks: %v", err)
	}

	out, err := s.LoadBookmarks("doc")
	if err != nil {
		t.Fatalf("LoadBookmarks: %v", err)
	}
	if len(out) != 1 || out[0].Name != "keep" {
		t.Errorf("loaded %+v, want only the bookmark", out)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	s := openTestStore(t)
	out, err := s.LoadBookmarks("never-saved")
	if err != nil {
		t.Fatalf("LoadBookmarks: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("unknown key returned %v", out)
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	s := openTestStore(t)

	s.SaveBookmarks("doc", []marker.Marker{{Name: "old", Position: 1, Type: marker.Bookmark()}})
	s.SaveBookmarks("doc", []marker.Marker{{Name: "new", Position: 2, Type: marker.Bookmark()}})

	out, _ := s.LoadBookmarks("doc")
	if len(out) != 1 || out[0].Name != "new" {
		t.Errorf("loaded %+v, want only the replacement", out)
	}
}

func TestDeleteAndDocKeys(t *testing.T) {
	s := openTestStore(t)

	s.SaveBookmarks("a.go", []marker.Marker{{Name: "m", Position: 0, Type: marker.Bookmark()}})
	s.SaveBookmarks("b.go", []marker.Marker{{Name: "m", Position: 0, Type: marker.Bookmark()}})

	keys, err := s.DocKeys()
	if err != nil {
		t.Fatalf("DocKeys: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("DocKeys = %v", keys)
	}

	if err := s.DeleteBookmarks("a.go"); err != nil {
		t.Fatalf("DeleteBookmarks: %v", err)
	}
	keys, _ = s.DocKeys()
	if len(keys) != 1 || keys[0] != "b.go" {
		t.Errorf("DocKeys after delete = %v", keys)
	}
}
