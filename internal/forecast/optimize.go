package forecast

import "math"

// Nelder-Mead downhill simplex minimization for the three SARIMA
// coefficients. The corpus carries no numerical optimization dependency, so
// the standard reflect/expand/contract/shrink scheme is implemented
// directly; three parameters and a smooth sum-of-squares objective keep it
// well inside the method's comfort zone.

const (
	nmMaxIter   = 500
	nmTolerance = 1e-10
	nmStep      = 0.25

	nmReflect  = 1.0
	nmExpand   = 2.0
	nmContract = 0.5
	nmShrink   = 0.5
)

// nelderMead minimizes fn starting from x0 and returns the best vertex. The
// boolean reports whether a finite minimum was reached within the iteration
// budget.
func nelderMead(fn func([]float64) float64, x0 []float64) ([]float64, bool) {
	dim := len(x0)

	// Initial simplex: x0 plus one perturbed vertex per dimension.
	vertices := make([][]float64, dim+1)
	values := make([]float64, dim+1)
	for i := range vertices {
		v := make([]float64, dim)
		copy(v, x0)
		if i > 0 {
			v[i-1] += nmStep
		}
		vertices[i] = v
		values[i] = safeEval(fn, v)
	}

	for iter := 0; iter < nmMaxIter; iter++ {
		sortSimplex(vertices, values)

		best, worst := values[0], values[dim]
		if math.IsInf(best, 1) {
			return nil, false
		}
		if worst-best < nmTolerance {
			return vertices[0], true
		}

		// Centroid of all vertices except the worst.
		centroid := make([]float64, dim)
		for i := 0; i < dim; i++ {
			for j := range centroid {
				centroid[j] += vertices[i][j] / float64(dim)
			}
		}

		reflected := blend(centroid, vertices[dim], 1+nmReflect, -nmReflect)
		fr := safeEval(fn, reflected)

		switch {
		case fr < values[0]:
			expanded := blend(centroid, vertices[dim], 1+nmExpand, -nmExpand)
			if fe := safeEval(fn, expanded); fe < fr {
				vertices[dim], values[dim] = expanded, fe
			} else {
				vertices[dim], values[dim] = reflected, fr
			}
		case fr < values[dim-1]:
			vertices[dim], values[dim] = reflected, fr
		default:
			contracted := blend(centroid, vertices[dim], 1-nmContract, nmContract)
			if fc := safeEval(fn, contracted); fc < values[dim] {
				vertices[dim], values[dim] = contracted, fc
			} else {
				// Shrink the whole simplex toward the best vertex.
				for i := 1; i <= dim; i++ {
					vertices[i] = blend(vertices[0], vertices[i], 1-nmShrink, nmShrink)
					values[i] = safeEval(fn, vertices[i])
				}
			}
		}
	}

	sortSimplex(vertices, values)
	if math.IsNaN(values[0]) || math.IsInf(values[0], 0) {
		return nil, false
	}
	return vertices[0], true
}

// safeEval maps non-finite objective values to +Inf so the simplex backs
// away from pathological regions instead of chasing NaNs.
func safeEval(fn func([]float64) float64, x []float64) float64 {
	v := fn(x)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.Inf(1)
	}
	return v
}

// blend returns a*p + b*q elementwise.
func blend(p, q []float64, a, b float64) []float64 {
	out := make([]float64, len(p))
	for i := range p {
		out[i] = a*p[i] + b*q[i]
	}
	return out
}

// sortSimplex orders vertices by ascending objective value.
func sortSimplex(vertices [][]float64, values []float64) {
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j] < values[j-1]; j-- {
			values[j], values[j-1] = values[j-1], values[j]
			vertices[j], vertices[j-1] = vertices[j-1], vertices[j]
		}
	}
}
