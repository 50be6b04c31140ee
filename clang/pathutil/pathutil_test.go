package pathutil

import (
	"path/filepath"
	"testing"
)

func TestCanonical(t *testing.T) {
	abs, _ := filepath.Abs("/usr/include")
	if ret := Canonical("/base", abs); ret != abs {
		t.Fatal("Canonical:", ret)
	}
	if ret := Canonical("/base", "inc"); ret != filepath.Join("/base", "inc") {
		t.Fatal("Canonical:", ret)
	}
}

func TestDisplay(t *testing.T) {
	base, _ := filepath.Abs("/work/proj")
	cases := []struct {
		file, want string
	}{
		{filepath.Join(base, "src", "a.c"), filepath.Join("src", "a.c")},
		{filepath.Join(filepath.Dir(base), "other.c"), filepath.Join(filepath.Dir(base), "other.c")},
		{"rel.c", "rel.c"},
	}
	for _, c := range cases {
		if ret := Display(base, c.file); ret != c.want {
			t.Fatal("Display:", c.file, ret, "expected:", c.want)
		}
	}
	if ret := Display("", "/x/y.c"); ret != "/x/y.c" {
		t.Fatal("Display:", ret)
	}
}

func TestSameFile(t *testing.T) {
	if !SameFile("a/./b.c", "a/b.c") || SameFile("a.c", "b.c") {
		t.Fatal("SameFile")
	}
}
