package slug

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Bedroom Lamp", "bedroom-lamp"},
		{"apostrophe", "Kid's Room", "kids-room"},
		{"curly apostrophe", "Kid’s Room", "kids-room"},
		{"runs collapse", "Hall -- Upstairs__Light", "hall-upstairs-light"},
		{"trim", "  ~Desk~  ", "desk"},
		{"digits kept", "Spot 2", "spot-2"},
		{"non-ascii is a separator", "Café Lamp", "caf-lamp"},
		{"empty", "", Placeholder},
		{"only punctuation", "!!!", Placeholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	// 49 letters then a separator then more: the cut lands on the hyphen.
	in := strings.Repeat("a", 49) + " bcdef"
	got := Slugify(in)
	if len(got) > maxSlugLength {
		t.Errorf("len = %d, want <= %d", len(got), maxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("Slugify() = %q ends with hyphen", got)
	}
	if got != strings.Repeat("a", 49) {
		t.Errorf("Slugify() = %q", got)
	}
}
