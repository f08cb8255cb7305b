package names

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Los Angeles Lakers", "los angeles lakers"},
		{"  Miami   Heat  ", "miami heat"},
		{"Nikola Jokić", "nikola jokic"},
		{"Luka Dončić", "luka doncic"},
		{"T.J. McConnell", "t j mcconnell"},
		{"O.G. Anunoby!!", "o g anunoby"},
		{"76ers", "76ers"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Los Angeles Lakers", "Nikola Jokić", "T.J. McConnell", "  weird -- input!! ", "",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeCompact(t *testing.T) {
	if got := NormalizeCompact("T.J. McConnell"); got != "tjmcconnell" {
		t.Errorf("NormalizeCompact = %q, want %q", got, "tjmcconnell")
	}
}

func TestNameParts(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Gary Payton II", []string{"gary", "payton"}},
		{"Jaren Jackson Jr.", []string{"jaren", "jackson"}},
		{"Tyler Herro", []string{"tyler", "herro"}},
	}
	for _, tt := range tests {
		got := nameParts(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("nameParts(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("nameParts(%q) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}
