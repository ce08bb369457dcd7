package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/zeebo/xxh3"
)

func TestSectionColorStable(t *testing.T) {
	for _, name := range []string{"Mods", "Modpacks", "Texture Packs", "Worlds"} {
		a, b := SectionColor(name), SectionColor(name)
		if a != b {
			t.Errorf("SectionColor(%q) not stable: %06x vs %06x", name, a, b)
		}
		if a < 0 || a > 0xffffff {
			t.Errorf("SectionColor(%q) = %x, out of range", name, a)
		}
	}
}

func TestSectionColorEmpty(t *testing.T) {
	if got := SectionColor(""); got != 0x808080 {
		t.Errorf("SectionColor(\"\") = %06x, want 808080", got)
	}
}

func TestSectionColorMatchesHue(t *testing.T) {
	for _, name := range []string{"Mods", "Modpacks", "Texture Packs", "Worlds", "Bukkit Plugins"} {
		t.Run(name, func(t *testing.T) {
			hue := float64(xxh3.HashString(name) % 360)
			r, g, b := colorful.Hsl(hue, 0.55, 0.6).Clamped().RGB255()
			want := int(r)<<16 | int(g)<<8 | int(b)
			if got := SectionColor(name); got != want {
				t.Errorf("SectionColor(%q) = %06x, want %06x", name, got, want)
			}

			c, err := colorful.Hex(fmt.Sprintf("#%06x", SectionColor(name)))
			if err != nil {
				t.Fatalf("SectionColor(%q) is not a valid color: %v", name, err)
			}
			_, s, l := c.Hsl()
			if s < 0.5 || s > 0.6 || l < 0.55 || l > 0.65 {
				t.Errorf("SectionColor(%q) saturation %.2f lightness %.2f drifted", name, s, l)
			}
		})
	}
}

func TestColorizeKeepsText(t *testing.T) {
	if got := Colorize("Modpacks", 0x1bd96a); !strings.Contains(got, "Modpacks") {
		t.Errorf("Colorize dropped the text: %q", got)
	}
}
