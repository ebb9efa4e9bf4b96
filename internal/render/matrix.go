package render

import "math"

// Fixed-point scales used by Matrix: the 2x2 part is scaled by MatrixScale
// and the translation by TransScale (sub-cell precision).
const (
	MatrixScale = 1024
	TransScale  = 16
)

// Matrix is a 2D affine transform in fixed point:
//
//	| m[0] m[1] |   linear part, / MatrixScale
//	| m[2] m[3] |
//	| m[4] m[5] |   translation, / TransScale
type Matrix [6]int32

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{MatrixScale, 0, 0, MatrixScale, 0, 0}
}

// Mul returns a*b: b applied after a.
func Mul(a, b Matrix) Matrix {
	var r Matrix
	r[0] = (a[0]*b[0] + a[1]*b[2]) / MatrixScale
	r[1] = (a[0]*b[1] + a[1]*b[3]) / MatrixScale
	r[2] = (a[2]*b[0] + a[3]*b[2]) / MatrixScale
	r[3] = (a[2]*b[1] + a[3]*b[3]) / MatrixScale
	r[4] = (a[4]*b[0]+a[5]*b[2])/MatrixScale + b[4]
	r[5] = (a[4]*b[1]+a[5]*b[3])/MatrixScale + b[5]
	return r
}

// Inverse returns the inverse transform, or false when the matrix is singular.
func (m Matrix) Inverse() (Matrix, bool) {
	a, b, c, d := int64(m[0]), int64(m[1]), int64(m[2]), int64(m[3])
	tx, ty := int64(m[4]), int64(m[5])

	det := a*d - b*c
	if det == 0 {
		return m, false
	}

	var r Matrix
	r[0] = int32(d * MatrixScale * MatrixScale / det)
	r[1] = int32(-b * MatrixScale * MatrixScale / det)
	r[2] = int32(-c * MatrixScale * MatrixScale / det)
	r[3] = int32(a * MatrixScale * MatrixScale / det)
	r[4] = int32((c*ty - d*tx) * MatrixScale / det)
	r[5] = int32((b*tx - a*ty) * MatrixScale / det)
	return r, true
}

// Trans adds a translation in cells.
func (m Matrix) Trans(dx, dy float64) Matrix {
	m[4] += int32(math.Round(dx * TransScale))
	m[5] += int32(math.Round(dy * TransScale))
	return m
}

// Scale multiplies the linear part by (sx, sy).
func (m Matrix) Scale(sx, sy float64) Matrix {
	s := Matrix{int32(math.Round(sx * MatrixScale)), 0, 0, int32(math.Round(sy * MatrixScale)), 0, 0}
	return Mul(m, s)
}

// Rot rotates by deg degrees.
func (m Matrix) Rot(deg float64) Matrix {
	rad := deg * math.Pi / 180
	cos := int32(math.Round(math.Cos(rad) * MatrixScale))
	sin := int32(math.Round(math.Sin(rad) * MatrixScale))
	return Mul(m, Matrix{cos, sin, -sin, cos, 0, 0})
}

// Transform maps a point through the matrix.
func (m Matrix) Transform(x, y float64) (float64, float64) {
	nx := (x*float64(m[0])+y*float64(m[2]))/MatrixScale + float64(m[4])/TransScale
	ny := (x*float64(m[1])+y*float64(m[3]))/MatrixScale + float64(m[5])/TransScale
	return nx, ny
}

// ScaleFactors returns the approximate horizontal and vertical scale.
func (m Matrix) ScaleFactors() (float64, float64) {
	sx := math.Hypot(float64(m[0]), float64(m[1])) / MatrixScale
	sy := math.Hypot(float64(m[2]), float64(m[3])) / MatrixScale
	return sx, sy
}
