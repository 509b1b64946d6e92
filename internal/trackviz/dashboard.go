package trackviz

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/oskarba/radartrack/internal/track/types"
)

// WriteDashboard renders a stand-alone HTML scatter chart of every
// measurement taken during a run alongside each track's position
// history, and writes it to outputDir/filename. Returns the path
// written.
func WriteDashboard(outputDir, filename string, scans [][]types.Measurement, file *types.TrackFile) (string, error) {
	measurementData := make([]opts.ScatterData, 0)
	maxAbs := 0.0
	for _, scan := range scans {
		for _, m := range scan {
			measurementData = append(measurementData, opts.ScatterData{Value: []interface{}{m.East(), m.North()}})
			maxAbs = math.Max(maxAbs, math.Max(math.Abs(m.East()), math.Abs(m.North())))
		}
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Track Dashboard", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Measurements and tracks", Subtitle: fmt.Sprintf("scans=%d tracks=%d", len(scans), len(file.All()))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "East (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "North (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("measurements", measurementData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	for _, track := range file.All() {
		trackData := make([]opts.ScatterData, len(track.Estimates))
		for i, e := range track.Estimates {
			trackData[i] = opts.ScatterData{Value: []interface{}{e.East(), e.North()}}
		}
		scatter.AddSeries(fmt.Sprintf("track %d (%s)", track.Index, track.Status), trackData,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	out := filepath.Join(outputDir, filename)
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("create dashboard file: %w", err)
	}
	defer f.Close()

	if err := scatter.Render(f); err != nil {
		return "", fmt.Errorf("render dashboard: %w", err)
	}
	return out, nil
}
