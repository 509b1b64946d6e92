package types

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Symmetrize enforces P <- 1/2 (P + P^T) in place, guarding against the
// numerical drift a long run of predict/update steps accumulates. Called
// after every predict and update (see §7 of the design notes).
func Symmetrize(P *mat.Dense) {
	r, c := P.Dims()
	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			avg := 0.5 * (P.At(i, j) + P.At(j, i))
			P.Set(i, j, avg)
			P.Set(j, i, avg)
		}
	}
}

// Finite reports whether every entry of P is finite (no NaN/Inf), the
// trigger condition for NumericalInstabilityError.
func Finite(P mat.Matrix) bool {
	r, c := P.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := P.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// IsSymmetricPSD reports whether M (square) is symmetric (within tol) and
// positive definite, via a Cholesky factorization attempt (which fails
// for singular matrices, so a semi-definite but singular M is rejected). Used to
// validate measurement and seed covariances at construction time.
func IsSymmetricPSD(M *mat.Dense) bool {
	r, c := M.Dims()
	if r != c {
		return false
	}
	const tol = 1e-9
	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			if math.Abs(M.At(i, j)-M.At(j, i)) > tol {
				return false
			}
		}
	}
	sym := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < c; j++ {
			sym.SetSym(i, j, M.At(i, j))
		}
	}
	var chol mat.Cholesky
	return chol.Factorize(sym)
}

// DenseFromSym copies a SymDense into a general Dense of the same size,
// a convenience for call sites that want ordinary mat.Dense arithmetic
// (Mul, Add, ...) without threading SymDense through every signature.
func DenseFromSym(s *mat.SymDense) *mat.Dense {
	n := s.SymmetricDim()
	d := mat.NewDense(n, n, nil)
	d.CopySym(s)
	return d
}

// SymFromDense copies a symmetrized Dense into a SymDense, for call sites
// that need gonum's symmetric-matrix factorizations (Cholesky, etc).
// Callers must have already symmetrized src (or be certain it already is).
func SymFromDense(src *mat.Dense) *mat.SymDense {
	n, _ := src.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, src.At(i, j))
		}
	}
	return sym
}
