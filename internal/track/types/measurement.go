package types

import "gonum.org/v1/gonum/mat"

// Measurement is a single 2D position observation from one scan.
//
// Value holds (north, east) to line up with the measurement matrix
// H = [[1,0,0,0],[0,0,1,0]] applied to an Estimate's (north, ṅorth,
// east, ėast) mean — so Value = H*x for a perfectly-observed target.
// Immutable once constructed.
type Measurement struct {
	Value     *mat.VecDense // length 2: (north, east)
	Timestamp float64       // scan time (real-valued or integer scan index)
	ScanIndex int
	Cov       *mat.Dense // 2x2 measurement covariance R, symmetric positive-definite
}

// NewMeasurement validates cov (must be 2x2 symmetric positive-definite) and returns a
// Measurement. value must have length 2.
func NewMeasurement(north, east float64, timestamp float64, scanIndex int, cov *mat.Dense) (Measurement, error) {
	r, c := cov.Dims()
	if r != 2 || c != 2 {
		return Measurement{}, NewConfigurationError("cov", "measurement covariance must be 2x2")
	}
	if !IsSymmetricPSD(cov) {
		return Measurement{}, NewConfigurationError("cov", "measurement covariance must be symmetric positive-definite")
	}
	v := mat.NewVecDense(2, []float64{north, east})
	return Measurement{Value: v, Timestamp: timestamp, ScanIndex: scanIndex, Cov: cov}, nil
}

// North returns the north component of the measurement.
func (m Measurement) North() float64 { return m.Value.AtVec(0) }

// East returns the east component of the measurement.
func (m Measurement) East() float64 { return m.Value.AtVec(1) }
