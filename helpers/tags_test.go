package helpers

import "testing"

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Live Music ", "live-music"},
		{"  Forró & Samba  ", "forró-samba"},
		{"rock", "rock"},
		{"--weird--", "weird"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTag(tt.input); got != tt.want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTagSetDeduplicates(t *testing.T) {
	set := NewTagSet()
	if _, err := set.Add("Live Music"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	normalized, err := set.Add("live music ")
	if err != nil {
		t.Fatalf("duplicate add should not error: %v", err)
	}
	if normalized != "live-music" {
		t.Errorf("got %q", normalized)
	}
	if set.Len() != 1 {
		t.Errorf("duplicate grew the set to %d", set.Len())
	}
}

func TestTagSetCap(t *testing.T) {
	set := NewTagSet()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if _, err := set.Add(name); err != nil {
			t.Fatalf("unexpected error adding %q: %v", name, err)
		}
	}
	if _, err := set.Add("f"); err == nil {
		t.Error("sixth tag should be rejected")
	}
	if set.Len() != MAX_TAGS {
		t.Errorf("set has %d tags", set.Len())
	}

	// a duplicate of an existing tag is still accepted at the cap
	if _, err := set.Add("a"); err != nil {
		t.Errorf("duplicate at cap should not error: %v", err)
	}
}

func TestTagSetRejectsEmpty(t *testing.T) {
	set := NewTagSet()
	if _, err := set.Add("   "); err == nil {
		t.Error("blank tag should be rejected")
	}
}

func TestTagSetRemove(t *testing.T) {
	set := NewTagSet()
	set.Add("live music")
	set.Add("outdoors")
	set.Remove("Live Music")
	items := set.Items()
	if len(items) != 1 || items[0] != "outdoors" {
		t.Errorf("got %v", items)
	}
}
