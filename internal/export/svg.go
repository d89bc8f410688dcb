package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/nbody/internal/dynamo"
	"github.com/san-kum/nbody/internal/physics"
)

// Palette colours bodies in kernel order.
var Palette = [physics.NumBodies]string{"#ffcc00", "#ff8844", "#e0c080", "#66ccff", "#4466ff"}

// TracksToSVG draws the x/y projection of every body's path, one polyline
// per body, scaled to fit width x height with 10% padding. The sun's wobble is
// drawn too, though at this scale it is a dot.
func TracksToSVG(tracks []physics.Snapshot, width, height int) (string, error) {
	if len(tracks) < 2 {
		return "", fmt.Errorf("need at least 2 snapshots, got %d: %w", len(tracks), dynamo.ErrNoData)
	}

	minX, maxX := tracks[0].Bodies[0].Position[0], tracks[0].Bodies[0].Position[0]
	minY, maxY := tracks[0].Bodies[0].Position[1], tracks[0].Bodies[0].Position[1]
	for _, snap := range tracks {
		for _, b := range snap.Bodies {
			x, y := b.Position[0], b.Position[1]
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	// Keep the aspect ratio so orbits stay round.
	span := maxX - minX
	if maxY-minY > span {
		span = maxY - minY
	}
	if span == 0 {
		span = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	span *= 1.2
	scale := float64(width) / span
	if s := float64(height) / span; s < scale {
		scale = s
	}

	project := func(p [3]float64) (float64, float64) {
		x := float64(width)/2 + (p[0]-cx)*scale
		y := float64(height)/2 - (p[1]-cy)*scale
		return x, y
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for b := 0; b < physics.NumBodies; b++ {
		sb.WriteString(fmt.Sprintf(`<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="M`,
			physics.Names[b], Palette[b]))
		for i, snap := range tracks {
			x, y := project(snap.Bodies[b].Position)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	last := tracks[len(tracks)-1]
	for b, body := range last.Bodies {
		x, y := project(body.Position)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
`, x, y, Palette[b]))
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}
