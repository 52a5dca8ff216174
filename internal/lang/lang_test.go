package lang

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   Code
		wantOK bool
	}{
		{"en", English, true},
		{"hi", Hindi, true},
		{"HI", Hindi, true},
		{"hi-IN", Hindi, true},
		{"en-US", English, true},
		{" en ", English, true},
		{"ta", "", false},
		{"fr", "", false},
		{"", "", false},
		{"not a tag!", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("Parse(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestResolveFallsBack(t *testing.T) {
	if got := Resolve("ta", Hindi); got != Hindi {
		t.Fatalf("Resolve(ta, hi) = %q", got)
	}
	if got := Resolve("hi", English); got != Hindi {
		t.Fatalf("Resolve(hi, en) = %q", got)
	}
}

func TestValid(t *testing.T) {
	for _, c := range Supported {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	if Code("ta").Valid() || Code("").Valid() {
		t.Fatal("unsupported codes reported valid")
	}
}
