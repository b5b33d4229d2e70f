package catalog

import (
	"html/template"
	"strings"
)

type platformIcon struct {
	keywords []string
	glyph    template.HTML
}

// Order matters: the first entry with a matching keyword wins, so "ps3" lands
// on the generic PlayStation entry and "pc" only matches after the desktop
// OS names.
var platformIcons = []platformIcon{
	{[]string{"windows"}, `<i class="fa-brands fa-windows"></i>`},
	{[]string{"mac", "macos"}, `<i class="fa-brands fa-apple"></i>`},
	{[]string{"linux"}, `<i class="fa-brands fa-linux"></i>`},
	{[]string{"pc"}, `<i class="fa-brands fa-windows"></i>`},

	{[]string{"ps5", "playstation 5"}, `<i class="fa-brands fa-playstation"></i> 5`},
	{[]string{"ps4", "playstation 4"}, `<i class="fa-brands fa-playstation"></i> 4`},
	{[]string{"playstation", "ps3"}, `<i class="fa-brands fa-playstation"></i>`},

	{[]string{"xbox series"}, `<i class="fa-brands fa-xbox"></i> Series`},
	{[]string{"xbox one"}, `<i class="fa-brands fa-xbox"></i> One`},
	{[]string{"xbox"}, `<i class="fa-brands fa-xbox"></i>`},

	{[]string{"switch"}, `<i class="fa-brands fa-nintendo-switch"></i>`},
	{[]string{"nintendo"}, `<i class="fab fa-nintendo-switch"></i>`},

	{[]string{"ios"}, `<i class="fa-brands fa-apple"></i>`},
	{[]string{"android"}, `<i class="fa-brands fa-android"></i>`},
	{[]string{"mobile"}, `<i class="fa-solid fa-mobile"></i>`},

	{[]string{"vr", "oculus"}, `<i class="fa-solid fa-vr-cardboard"></i>`},

	{[]string{"web", "browser"}, `<i class="fa-solid fa-globe"></i>`},
}

// PlatformIcon returns the icon markup for a platform name, or "" when no
// keyword matches.
func PlatformIcon(platform string) template.HTML {
	p := strings.ToLower(platform)
	for _, icon := range platformIcons {
		for _, kw := range icon.keywords {
			if strings.Contains(p, kw) {
				return icon.glyph
			}
		}
	}
	return ""
}
