// Package trackviz renders diagnostic plots and an HTML dashboard for a
// tracking run: per-track position error over time as PNGs (gonum/plot),
// and a scatter dashboard of measurements and track positions as
// stand-alone HTML (go-echarts). Neither output feeds back into the
// tracking pipeline; this package is a reporting/demo collaborator only.
package trackviz

import (
	"fmt"
	"image/color"
	"path/filepath"
	"sort"

	"github.com/oskarba/radartrack/internal/track/types"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// RMSESample is one scan's position error (Euclidean distance) for one true target,
// already matched to its nearest track by the caller.
type RMSESample struct {
	ScanIndex int
	Timestamp float64
	Error     float64 // Euclidean distance between true and estimated position
}

// PlotRMSE writes a PNG to outputDir showing position error over time
// for each named series in samples (e.g. one line per true target).
// Returns the path written.
func PlotRMSE(outputDir, filename string, samples map[string][]RMSESample) (string, error) {
	p := plot.New()
	p.Title.Text = "Track position error"
	p.X.Label.Text = "Scan"
	p.Y.Label.Text = "Error (m)"

	var names []string
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)

	colors := palette(len(names))
	for i, name := range names {
		series := samples[name]
		if len(series) == 0 {
			continue
		}
		sort.Slice(series, func(a, b int) bool { return series[a].ScanIndex < series[b].ScanIndex })
		pts := make(plotter.XYs, len(series))
		for j, s := range series {
			pts[j] = plotter.XY{X: float64(s.ScanIndex), Y: s.Error}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return "", fmt.Errorf("build line for %s: %w", name, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true

	out := filepath.Join(outputDir, filename)
	if err := p.Save(14*vg.Inch, 6*vg.Inch, out); err != nil {
		return "", fmt.Errorf("save rmse plot: %w", err)
	}
	return out, nil
}

// PlotTrackPositions writes a PNG to outputDir plotting each confirmed
// and terminated track's (east, north) position history as a line, one
// color per track.
func PlotTrackPositions(outputDir, filename string, file *types.TrackFile) (string, error) {
	p := plot.New()
	p.Title.Text = "Track positions"
	p.X.Label.Text = "East (m)"
	p.Y.Label.Text = "North (m)"

	tracks := file.All()
	colors := palette(len(tracks))
	for i, track := range tracks {
		if len(track.Estimates) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(track.Estimates))
		for j, e := range track.Estimates {
			pts[j] = plotter.XY{X: e.East(), Y: e.North()}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return "", fmt.Errorf("build line for track %d: %w", track.Index, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("track %d", track.Index), line)
	}
	p.Legend.Top = true

	out := filepath.Join(outputDir, filename)
	if err := p.Save(10*vg.Inch, 10*vg.Inch, out); err != nil {
		return "", fmt.Errorf("save track position plot: %w", err)
	}
	return out, nil
}

func palette(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	out := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(max(n, 1))
		r, g, b := hslToRGB(hue, 0.65, 0.45)
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64
	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
