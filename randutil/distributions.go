package randutil

import "github.com/chewxy/math32"

// Normal returns a sample from N(mu, sigma) using the Box-Muller transform.
func (g *PCG32) Normal(mu, sigma float64) float64 {
	u1 := g.Float64()
	if u1 < 1e-30 {
		u1 = 1e-30 // avoid log(0); ln works in float32, where 1e-300 is 0
	}
	u2 := g.Float64()
	z := sqrt(-2*ln(u1)) * cos(2*pi*u2)
	return mu + sigma*z
}

// Gamma samples from a Gamma(shape, 1) distribution via the Marsaglia-Tsang
// method, used as the Dirichlet building block below. shape must be > 0.
func (g *PCG32) Gamma(shape float64) float64 {
	if shape < 1 {
		// boost(d, shape+1) * U^(1/shape) is Gamma(shape, 1)-distributed.
		u := g.Float64()
		return g.Gamma(shape+1) * pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / sqrt(9*d)
	for {
		x := g.Normal(0, 1)
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := g.Float64()
		x2 := x * x
		if u < 1-0.0331*x2*x2 {
			return d * v
		}
		if ln(u) < 0.5*x2+d*(1-v+ln(v)) {
			return d * v
		}
	}
}

// Dirichlet fills out with a sample from Dirichlet(alpha, alpha, ..., alpha)
// over len(out) dimensions: spec §4.I names Dirichlet as a core primitive,
// implemented directly on Gamma rather than delegated to a statistics
// library, unlike gonum.org/v1/gonum/stat/distmv.NewDirichlet — the one
// place this module departs from that convention — see DESIGN.md.
func (g *PCG32) Dirichlet(alpha float64, out []float32) {
	var sum float64
	samples := make([]float64, len(out))
	for i := range samples {
		samples[i] = g.Gamma(alpha)
		sum += samples[i]
	}
	if sum <= 0 {
		// degenerate: fall back to uniform.
		for i := range out {
			out[i] = 1 / float32(len(out))
		}
		return
	}
	for i := range out {
		out[i] = float32(samples[i] / sum)
	}
}

// tiny float32-math wrappers kept local so Normal/Gamma can work in plain
// float64 while the rest of the package stays math32-flavored; math32
// supplies the trig/log primitives used downstream in mcts, so these
// helpers reuse it rather than pulling in math as well.
func sqrt(x float64) float64 { return float64(math32.Sqrt(float32(x))) }
func ln(x float64) float64   { return float64(math32.Log(float32(x))) }
func cos(x float64) float64  { return float64(math32.Cos(float32(x))) }
func pow(x, y float64) float64 {
	return float64(math32.Pow(float32(x), float32(y)))
}

const pi = 3.14159265358979323846
