// Package pipeline turns raw dataset rows into normalized match inputs:
// dataset acquisition, CSV loading, surface classification and per-schema
// row normalization.
package pipeline

import (
	"strings"

	"tennis-elo-service/models"
)

// Tournaments played indoors regardless of what the surface column says.
var indoorTournaments = []string{
	"paris masters", "vienna", "basel", "stockholm", "st. petersburg",
	"antwerp", "metz", "moscow", "marseille", "montpellier", "rotterdam",
	"sofia", "atp finals", "next gen finals", "davis cup finals",
}

// Tournaments known to be played on grass.
var grassTournaments = []string{
	"wimbledon", "halle", "queens", "queen's club", "stuttgart",
	"eastbourne", "s-hertogenbosch", "newport", "mallorca",
}

// ClassifySurface maps a raw surface/court/tournament triple to one of the
// four canonical surfaces. It is total: partial or unrecognized input falls
// through the cascade and always lands on a value, because the supported
// source schemas expose different subsets of these fields.
func ClassifySurface(surface, court, tournament string) string {
	surface = strings.ToLower(strings.TrimSpace(surface))
	court = strings.ToLower(strings.TrimSpace(court))
	tournament = strings.ToLower(strings.TrimSpace(tournament))

	if surface == "grass" || containsAny(tournament, grassTournaments) {
		return models.SurfaceGrass
	}

	if surface == "clay" {
		return models.SurfaceClay
	}

	if surface == "hard" || surface == "carpet" {
		// An explicit court column wins over tournament heuristics.
		switch court {
		case "indoor":
			return models.SurfaceIndoorHard
		case "outdoor":
			return models.SurfaceOutdoorHard
		}
		if containsAny(tournament, indoorTournaments) || strings.Contains(tournament, "indoor") {
			return models.SurfaceIndoorHard
		}
		return models.SurfaceOutdoorHard
	}

	// Unrecognized surface: infer from the tournament, default outdoor hard.
	if containsAny(tournament, indoorTournaments) {
		return models.SurfaceIndoorHard
	}
	return models.SurfaceOutdoorHard
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
