package model

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/fatih/color"

	simmodel "orrery/simulator/model"
	"orrery/simulator/simulation"
)

// Decode parses a simulation.step payload.
func Decode(payload string) (simulation.Snapshot, error) {
	var snap simulation.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return snap, fmt.Errorf("decode frame: %w", err)
	}
	return snap, nil
}

var (
	header  = color.New(color.FgHiWhite, color.Bold)
	rocky   = color.New(color.FgYellow)
	gaseous = color.New(color.FgCyan)
	faint   = color.New(color.Faint)
)

// Render prints one frame as a table, one row per body.
func Render(w io.Writer, snap simulation.Snapshot) error {
	header.Fprintf(w, "frame %d  t=%.1fs  %s spin %.0f°\n", snap.Frame, snap.Elapsed, snap.Star.Name, degrees(snap.Star.Rotation))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BODY\tPHASE\tX\tZ\tPERIOD\tTRAIL")
	for _, b := range snap.Bodies {
		name := rocky.Sprint(b.Name)
		if b.Tag == simmodel.Gaseous {
			name = gaseous.Sprint(b.Name)
		}
		fmt.Fprintf(tw, "%s\t%6.1f°\t%8.2f\t%8.2f\t%7.1fs\t%s\n",
			name, degrees(b.Phase), b.Position.X, b.Position.Z, b.Period,
			faint.Sprintf("%d/%d", b.TrailLen, b.TrailCap))
	}
	return tw.Flush()
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
