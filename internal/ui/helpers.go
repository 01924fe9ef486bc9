package ui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/EchoSun2025/TimeTag/internal/models"
)

// parseHexColor turns "#RRGGBB" (or "#RGB") into a color. Unparseable
// values fall back to a neutral gray so a bad tag color never breaks the
// view.
func parseHexColor(s string) color.Color {
	fallback := color.NRGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	var r, g, b uint8
	switch len(s) {
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return fallback
		}
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return fallback
		}
		r, g, b = r*17, g*17, b*17
	default:
		return fallback
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// withAlpha returns the color with its alpha channel replaced.
func withAlpha(c color.Color, a uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}

func formatTimer(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	s := (d - m*time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// tagIndex builds an id lookup for the catalog.
func tagIndex(tags []models.Tag) map[string]models.Tag {
	byID := make(map[string]models.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}
	return byID
}

// tagNames maps record tag ids to display names, skipping unknown ids.
func tagNames(ids []string, byID map[string]models.Tag) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			names = append(names, t.Name)
		}
	}
	return names
}

// recordColor picks the color of the record's first tag, gray when
// untagged.
func recordColor(r models.TimeRecord, byID map[string]models.Tag) color.Color {
	if t, ok := byID[r.PrimaryTag()]; ok {
		return parseHexColor(t.Color)
	}
	return color.NRGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}
}
