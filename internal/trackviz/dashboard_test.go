package trackviz

import (
	"os"
	"testing"

	"github.com/oskarba/radartrack/internal/track/types"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestWriteDashboard_WritesHTMLFile(t *testing.T) {
	dir := t.TempDir()
	cov := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	m1, err := types.NewMeasurement(10, 20, 1, 1, cov)
	require.NoError(t, err)
	scans := [][]types.Measurement{{m1}}

	file := types.NewTrackFile()
	file.Insert(seedTrack(1))

	path, err := WriteDashboard(dir, "dashboard.html", scans, file)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data, "expected non-empty dashboard HTML")
}

func TestWriteDashboard_EmptyScansStillWritesFile(t *testing.T) {
	dir := t.TempDir()
	file := types.NewTrackFile()
	path, err := WriteDashboard(dir, "dashboard.html", nil, file)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err, "expected dashboard file to exist")
}
