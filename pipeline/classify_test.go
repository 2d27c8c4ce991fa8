package pipeline

import (
	"testing"

	"tennis-elo-service/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifySurface(t *testing.T) {
	cases := []struct {
		name       string
		surface    string
		court      string
		tournament string
		want       string
	}{
		{"grass surface wins regardless of court", "Grass", "Indoor", "Anything Open", models.SurfaceGrass},
		{"known grass tournament without surface", "", "", "Wimbledon", models.SurfaceGrass},
		{"clay surface", "Clay", "", "Rome Masters", models.SurfaceClay},
		{"hard with explicit indoor court", "Hard", "Indoor", "Some Open", models.SurfaceIndoorHard},
		{"hard with explicit outdoor court", "Hard", "Outdoor", "Vienna", models.SurfaceOutdoorHard},
		{"hard at a known indoor tournament, no court", "Hard", "", "Paris Masters", models.SurfaceIndoorHard},
		{"hard with indoor in the tournament name", "Hard", "", "Zagreb Indoors", models.SurfaceIndoorHard},
		{"hard at an unknown tournament defaults outdoor", "Hard", "", "Mystery Cup", models.SurfaceOutdoorHard},
		{"carpet counts as hard", "Carpet", "Indoor", "Rotterdam", models.SurfaceIndoorHard},
		{"unknown surface at indoor tournament", "Astroturf", "", "Basel", models.SurfaceIndoorHard},
		{"unknown surface defaults outdoor hard", "", "", "Mystery Cup", models.SurfaceOutdoorHard},
		{"case and whitespace insensitive", "  GRASS  ", "", "", models.SurfaceGrass},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySurface(tc.surface, tc.court, tc.tournament))
		})
	}
}

func TestClassifySurfaceIsTotal(t *testing.T) {
	// Whatever garbage comes in, the classifier returns a canonical surface.
	inputs := [][3]string{
		{"", "", ""},
		{"???", "sideways", "12345"},
		{"hard", "", ""},
	}
	for _, in := range inputs {
		got := ClassifySurface(in[0], in[1], in[2])
		assert.True(t, models.ValidSurface(got), "got %q", got)
	}
}
