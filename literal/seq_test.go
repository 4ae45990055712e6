package literal

import (
	"bytes"
	"strings"
	"testing"
)

func TestLiteralBasic(t *testing.T) {
	tests := []struct {
		name     string
		bytes    []byte
		complete bool
		wantLen  int
		wantStr  string
	}{
		{"complete", []byte("hello"), true, 5, "literal{hello, complete=true}"},
		{"incomplete", []byte("test"), false, 4, "literal{test, complete=false}"},
		{"empty", []byte{}, true, 0, "literal{, complete=true}"},
		{"multibyte", []byte("é"), true, 2, "literal{é, complete=true}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit := NewLiteral(tt.bytes, tt.complete)
			if got := lit.Len(); got != tt.wantLen {
				t.Errorf("Len() = %d, want %d", got, tt.wantLen)
			}
			if got := lit.String(); got != tt.wantStr {
				t.Errorf("String() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestSeq_Queries(t *testing.T) {
	var nilSeq *Seq
	if !nilSeq.IsEmpty() || nilSeq.Len() != 0 || nilSeq.AllComplete() || nilSeq.ContainsEmpty() {
		t.Error("nil sequence should behave as empty")
	}

	s := NewSeq(NewLiteral([]byte("foo"), true), NewLiteral([]byte("ba"), true))
	if !s.AllComplete() {
		t.Error("AllComplete() = false")
	}
	if s.MinLen() != 2 {
		t.Errorf("MinLen() = %d, want 2", s.MinLen())
	}
	if s.ContainsEmpty() {
		t.Error("ContainsEmpty() = true")
	}

	s.MakeInexact()
	if s.AllComplete() {
		t.Error("AllComplete() after MakeInexact = true")
	}

	withEmpty := NewSeq(NewLiteral([]byte("x"), true), NewLiteral(nil, true))
	if !withEmpty.ContainsEmpty() || withEmpty.MinLen() != 0 {
		t.Error("empty literal not detected")
	}
}

func TestSeq_Clone(t *testing.T) {
	original := NewSeq(NewLiteral([]byte("test"), true))
	clone := original.Clone()
	clone.Get(0).Bytes[0] = 'X'
	if string(original.Get(0).Bytes) != "test" {
		t.Errorf("original modified through clone: %q", original.Get(0).Bytes)
	}
	if (*Seq)(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestSeq_Truncate(t *testing.T) {
	s := NewSeq(
		NewLiteral([]byte("abcd"), true),
		NewLiteral([]byte("abce"), true),
		NewLiteral([]byte("ab"), true),
	)
	s.Truncate(3)
	if got := strings.Join(render(s), ","); got != "abc~,ab" {
		t.Errorf("Truncate(3) = %q, want abc~,ab", got)
	}
}

func TestSeq_Minimize(t *testing.T) {
	tests := []struct {
		name string
		in   []Literal
		want string
	}{
		{
			"prefix absorbs longer literal",
			[]Literal{NewLiteral([]byte("foobar"), true), NewLiteral([]byte("foo"), true)},
			"foo~",
		},
		{
			"disjoint literals stay",
			[]Literal{NewLiteral([]byte("hello"), true), NewLiteral([]byte("world"), true)},
			"hello,world",
		},
		{
			"empty literal absorbs everything",
			[]Literal{NewLiteral([]byte("a"), true), NewLiteral(nil, true)},
			"~",
		},
		{
			"incomplete duplicate",
			[]Literal{NewLiteral([]byte("ab"), true), NewLiteral([]byte("ab"), false)},
			"ab~",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSeq(tt.in...)
			s.Minimize()
			if got := strings.Join(render(s), ","); got != tt.want {
				t.Errorf("Minimize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeq_LongestCommonPrefix(t *testing.T) {
	tests := []struct {
		lits []string
		want string
	}{
		{[]string{"hello", "help", "hero"}, "he"},
		{[]string{"abc", "def"}, ""},
		{[]string{"same", "same"}, "same"},
		{nil, ""},
	}
	for _, tt := range tests {
		lits := make([]Literal, len(tt.lits))
		for i, l := range tt.lits {
			lits[i] = NewLiteral([]byte(l), true)
		}
		if got := NewSeq(lits...).LongestCommonPrefix(); !bytes.Equal(got, []byte(tt.want)) {
			t.Errorf("LongestCommonPrefix(%q) = %q, want %q", tt.lits, got, tt.want)
		}
	}
}
