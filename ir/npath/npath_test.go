package npath

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a", true},
		{"_", true},
		{"a1", true},
		{"_x9_Y", true},
		{"", false},
		{"9x", false},
		{"a-b", false},
		{"#a", false},
		{"&a", false},
		{"a.b", false},
		{"..", false},
	}
	for _, tt := range tests {
		if got := IsName(tt.name); got != tt.want {
			t.Errorf("IsName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		text    string
		want    string
		abs     bool
		wantErr error
	}{
		{text: "/", want: "/", abs: true},
		{text: "/a/b", want: "/a/b", abs: true},
		{text: "a/b", want: "a/b"},
		{text: "../x", want: "../x"},
		{text: "a/../b", want: "b"},
		{text: "/a/../b", want: "/b", abs: true},
		{text: "../../x", want: "../../x"},
		{text: "$doc/a", want: "$doc/a"},
		{text: "/$doc/a", want: "/$doc/a", abs: true},
		{text: "", wantErr: ErrPath},
		{text: "/a//b", wantErr: ErrPath},
		{text: "/..", wantErr: ErrPath},
		{text: "/a/../..", wantErr: ErrPath},
		{text: "9x", wantErr: ErrName},
		{text: "a/#b", wantErr: ErrName},
		{text: "a/$doc", wantErr: ErrPath},
	}
	for _, tt := range tests {
		p, err := Parse(tt.text)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q) err = %v, want %v", tt.text, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.text, err)
			continue
		}
		if got := p.String(); got != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.text, got, tt.want)
		}
		if p.IsAbsolute() != tt.abs {
			t.Errorf("Parse(%q).IsAbsolute() = %v, want %v", tt.text, p.IsAbsolute(), tt.abs)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, text := range []string{"/", "/a", "/a/b/c", "a", "a/b", "../a", "../../a/b", "$other/x"} {
		p := MustParse(text)
		q, err := Parse(p.String())
		if err != nil {
			t.Fatalf("reparse %q: %v", p.String(), err)
		}
		if !p.Equal(q) {
			t.Errorf("round trip %q: got %q", text, q.String())
		}
	}
}

func TestAppend(t *testing.T) {
	tests := []struct {
		a, b    string
		want    string
		wantErr bool
	}{
		{a: "/x/y", b: "../z", want: "/x/z"},
		{a: "/", b: "..", wantErr: true},
		{a: "/", b: "a/b", want: "/a/b"},
		{a: "a/b", b: "../../c", want: "c"},
		{a: "a", b: "/abs", want: "/abs"},
		{a: "..", b: "..", want: "../.."},
		{a: "/x", b: "..", want: "/"},
	}
	for _, tt := range tests {
		a := MustParse(tt.a)
		b := MustParse(tt.b)
		got, err := a.Append(b)
		if tt.wantErr {
			if !errors.Is(err, ErrPath) {
				t.Errorf("Append(%q, %q) err = %v, want ErrPath", tt.a, tt.b, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Append(%q, %q): %v", tt.a, tt.b, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("Append(%q, %q) = %q, want %q", tt.a, tt.b, got.String(), tt.want)
		}
	}
}

func TestAppendIdentities(t *testing.T) {
	rel := MustParse("a/b")
	got, err := Root().Append(rel)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "/a/b" {
		t.Errorf("Append(root, a/b) = %q", got.String())
	}
	abs := MustParse("/q")
	for _, a := range []Path{Root(), MustParse("x/y"), MustParse("/deep/er")} {
		got, err := a.Append(abs)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(abs) {
			t.Errorf("Append(%s, /q) = %q, want /q", a, got.String())
		}
	}
}

func TestAppendAssociative(t *testing.T) {
	a := MustParse("/top/mid")
	b := MustParse("../sib")
	c := MustParse("child/..")

	ab, err := a.Append(b)
	if err != nil {
		t.Fatal(err)
	}
	abc1, err := ab.Append(c)
	if err != nil {
		t.Fatal(err)
	}
	bc, err := b.Append(c)
	if err != nil {
		t.Fatal(err)
	}
	abc2, err := a.Append(bc)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(abc1.String(), abc2.String()); diff != "" {
		t.Errorf("append not associative: %s", diff)
	}
}

func TestParentChild(t *testing.T) {
	p := MustParse("/a/b")
	parent, err := p.Parent()
	if err != nil {
		t.Fatal(err)
	}
	if parent.String() != "/a" {
		t.Errorf("Parent(/a/b) = %q", parent.String())
	}
	child, err := parent.Child("c")
	if err != nil {
		t.Fatal(err)
	}
	if child.String() != "/a/c" {
		t.Errorf("Child(/a, c) = %q", child.String())
	}
	if _, err := parent.Child("9bad"); !errors.Is(err, ErrName) {
		t.Errorf("Child with bad name err = %v, want ErrName", err)
	}
	if _, err := Root().Parent(); !errors.Is(err, ErrPath) {
		t.Errorf("Parent(/) err = %v, want ErrPath", err)
	}
}
