package trackviz

import (
	"os"
	"testing"

	"github.com/oskarba/radartrack/internal/track/types"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func seedTrack(idx int) *types.Track {
	mean := mat.NewVecDense(4, []float64{float64(idx), 0, float64(idx) * 2, 0})
	cov := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		cov.Set(i, i, 1.0)
	}
	return types.NewTrack(types.Estimate{Timestamp: 1, ScanIndex: 1, Mean: mean, Cov: cov, Posterior: true})
}

func TestPlotRMSE_WritesFile(t *testing.T) {
	dir := t.TempDir()
	samples := map[string][]RMSESample{
		"target-1": {{ScanIndex: 1, Timestamp: 1, Error: 0.5}, {ScanIndex: 2, Timestamp: 2, Error: 0.3}},
	}
	path, err := PlotRMSE(dir, "rmse.png", samples)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err, "expected plot file to exist")
}

func TestPlotRMSE_EmptySamplesStillWritesFile(t *testing.T) {
	dir := t.TempDir()
	path, err := PlotRMSE(dir, "rmse.png", map[string][]RMSESample{})
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err, "expected plot file to exist")
}

func TestPlotTrackPositions_WritesFile(t *testing.T) {
	dir := t.TempDir()
	file := types.NewTrackFile()
	file.Insert(seedTrack(1))
	file.Insert(seedTrack(2))

	path, err := PlotTrackPositions(dir, "tracks.png", file)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err, "expected plot file to exist")
}
