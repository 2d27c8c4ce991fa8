package models

// Canonical surface categories. Every match is classified into exactly one.
const (
	SurfaceIndoorHard  = "indoor_hard"
	SurfaceOutdoorHard = "outdoor_hard"
	SurfaceClay        = "clay"
	SurfaceGrass       = "grass"
)

// SurfaceInfo describes a surface for API consumers.
type SurfaceInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Surfaces lists the four canonical surfaces in display order.
var Surfaces = []SurfaceInfo{
	{ID: SurfaceIndoorHard, Name: "Indoor Hard", Color: "#3b82f6"},
	{ID: SurfaceOutdoorHard, Name: "Outdoor Hard", Color: "#06b6d4"},
	{ID: SurfaceClay, Name: "Clay", Color: "#f97316"},
	{ID: SurfaceGrass, Name: "Grass", Color: "#22c55e"},
}

// ValidSurface reports whether s is one of the four canonical surface IDs.
func ValidSurface(s string) bool {
	switch s {
	case SurfaceIndoorHard, SurfaceOutdoorHard, SurfaceClay, SurfaceGrass:
		return true
	}
	return false
}
