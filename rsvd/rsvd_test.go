// SPDX-License-Identifier: MIT
package rsvd_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvsvd/decomp"
	"github.com/katalvlaran/lvsvd/device"
	"github.com/katalvlaran/lvsvd/matrix"
	"github.com/katalvlaran/lvsvd/metrics"
	"github.com/katalvlaran/lvsvd/qr"
	"github.com/katalvlaran/lvsvd/rangefinder"
	"github.com/katalvlaran/lvsvd/rsvd"
)

type float32Accelerator struct{}

var _ device.Device = float32Accelerator{}

func (float32Accelerator) Name() string                   { return "fake-f32" }
func (float32Accelerator) Probe() error                   { return nil }
func (float32Accelerator) MaxPrecision() matrix.Precision { return matrix.Float32 }
func (float32Accelerator) Workers() int                   { return 2 }

func gaussian(t testing.TB, r, c int, seed uint64) *matrix.Dense[float64] {
	t.Helper()
	m, err := rangefinder.Gaussian[float64](r, c, seed)
	require.NoError(t, err)

	return m
}

// lowRankPlusNoise returns X·W + noise·G with X m×rank, W rank×n.
func lowRankPlusNoise(t testing.TB, m, n, rank int, noise float64) *matrix.Dense[float64] {
	t.Helper()
	xw, err := matrix.Mul(gaussian(t, m, rank, 101), gaussian(t, rank, n, 102))
	require.NoError(t, err)
	g, err := matrix.Scale(gaussian(t, m, n, 103), noise)
	require.NoError(t, err)
	out, err := matrix.Add(xw, g)
	require.NoError(t, err)

	return out
}

// decaying returns U·diag(σ)·Vᵗ with σ_i = ratio^i and random orthonormal U, V.
func decaying(t testing.TB, m, n int, ratio float64) *matrix.Dense[float64] {
	t.Helper()
	u, _, err := qr.Decompose(gaussian(t, m, n, 201))
	require.NoError(t, err)
	v, _, err := qr.Decompose(gaussian(t, n, n, 202))
	require.NoError(t, err)
	sigma := make([]float64, n)
	for i := range sigma {
		sigma[i] = math.Pow(ratio, float64(i))
	}

	return reconstruct(t, u, sigma, v)
}

func reconstruct(t testing.TB, u *matrix.Dense[float64], s []float64, v *matrix.Dense[float64]) *matrix.Dense[float64] {
	t.Helper()
	us, err := matrix.ScaleCols(u, s)
	require.NoError(t, err)
	vt, err := matrix.Transpose(v)
	require.NoError(t, err)
	out, err := matrix.Mul(us, vt)
	require.NoError(t, err)

	return out
}

func relError(t testing.TB, a *matrix.Dense[float64], r *rsvd.Result[float64]) float64 {
	t.Helper()
	diff, err := matrix.Sub(a, reconstruct(t, r.U, r.S, r.V))
	require.NoError(t, err)
	num, err := matrix.FrobeniusNorm(diff)
	require.NoError(t, err)
	den, err := matrix.FrobeniusNorm(a)
	require.NoError(t, err)

	return num / den
}

func orthoError(t testing.TB, m *matrix.Dense[float64]) float64 {
	t.Helper()
	e, err := matrix.OrthonormalityError(m)
	require.NoError(t, err)

	return e
}

// RandomizedSuite covers the randomized pipeline end to end.
type RandomizedSuite struct {
	suite.Suite
	quiet rsvd.Option
}

func (s *RandomizedSuite) SetupSuite() {
	s.quiet = rsvd.WithLogger(zerolog.Nop())
}

func (s *RandomizedSuite) TestReconstructionAndOrthonormality() {
	a := lowRankPlusNoise(s.T(), 200, 50, 10, 1e-4)
	res, err := rsvd.Randomized(a, 10, s.quiet, rsvd.WithSeed(1))
	s.Require().NoError(err)
	s.Require().Equal([]int{200, 10}, []int{res.U.Rows(), res.U.Cols()})
	s.Require().Equal([]int{50, 10}, []int{res.V.Rows(), res.V.Cols()})
	s.Require().Len(res.S, 10)
	s.Require().Equal(rsvd.PathDirect, res.Path)
	s.Require().Equal(matrix.Float64, res.Precision)

	s.Require().Less(relError(s.T(), a, res), 1e-2)
	s.Require().Less(orthoError(s.T(), res.U), 1e-6)
	s.Require().Less(orthoError(s.T(), res.V), 1e-6)

	var ref mat.SVD
	s.Require().True(ref.Factorize(mat.NewDense(200, 50, a.RawData()), mat.SVDNone))
	want := ref.Values(nil)[:10]
	for i := range want {
		s.Require().InDelta(want[i], res.S[i], 1e-3*want[0])
	}

	var sum float64
	for _, ev := range res.ExplainedVariance {
		sum += ev
	}
	s.Require().Len(res.ExplainedVariance, 10)
	s.Require().InDelta(1, sum, 1e-3, "rank-10 signal carries almost all the energy")
}

func (s *RandomizedSuite) TestPowerIterationsDoNotHurt() {
	a := decaying(s.T(), 200, 50, 0.8)
	errs := make([]float64, 3)
	for q := range errs {
		res, err := rsvd.Randomized(a, 5, s.quiet, rsvd.WithOversampling(5), rsvd.WithPowerIterations(q), rsvd.WithSeed(9))
		s.Require().NoError(err)
		errs[q] = relError(s.T(), a, res)
	}
	s.Require().LessOrEqual(errs[2], errs[0]*(1+1e-9))
}

func (s *RandomizedSuite) TestSeedReproducibility() {
	a := gaussian(s.T(), 80, 40, 3)
	r1, err := rsvd.Randomized(a, 5, s.quiet, rsvd.WithSeed(77), rsvd.WithWorkers(1))
	s.Require().NoError(err)
	r2, err := rsvd.Randomized(a, 5, s.quiet, rsvd.WithSeed(77), rsvd.WithWorkers(4))
	s.Require().NoError(err)
	s.Require().Equal(r1.S, r2.S)
	s.Require().Equal(r1.U.RawData(), r2.U.RawData())

	r3, err := rsvd.Randomized(a, 5, s.quiet, rsvd.WithSeed(78))
	s.Require().NoError(err)
	s.Require().NotEqual(r1.U.RawData(), r3.U.RawData())
}

func (s *RandomizedSuite) TestStreamingEquivalence() {
	a := gaussian(s.T(), 2000, 30, 4)
	direct, err := rsvd.Randomized(a, 10, s.quiet, rsvd.WithOversampling(5))
	s.Require().NoError(err)
	small, err := rsvd.Randomized(a, 10, s.quiet, rsvd.WithOversampling(5), rsvd.WithBlockRows(10))
	s.Require().NoError(err)
	large, err := rsvd.Randomized(a, 10, s.quiet, rsvd.WithOversampling(5), rsvd.WithBlockRows(1000))
	s.Require().NoError(err)

	s.Require().Equal(rsvd.PathStreaming, small.Path)
	s.Require().InDeltaSlice(small.S, large.S, 1e-6)
	s.Require().InDeltaSlice(direct.S, small.S, 1e-8)
	s.Require().Less(orthoError(s.T(), small.U), 1e-6)
}

func (s *RandomizedSuite) TestIdentity() {
	id, err := matrix.Identity[float64](8)
	s.Require().NoError(err)
	res, err := rsvd.Randomized(id, 8, s.quiet, rsvd.WithOversampling(0), rsvd.WithPowerIterations(0))
	s.Require().NoError(err)
	for _, v := range res.S {
		s.Require().InDelta(1, v, 1e-10)
	}
}

// TestZeroMatrix runs without power iterations so Y = A·Ω is itself zero:
// the streaming path must reject its singular R and fall back.
func (s *RandomizedSuite) TestZeroMatrix() {
	z, err := matrix.NewDense[float64](20, 10)
	s.Require().NoError(err)
	for _, block := range []int{0, 7} {
		res, err := rsvd.Randomized(z, 3, s.quiet, rsvd.WithOversampling(2),
			rsvd.WithPowerIterations(0), rsvd.WithBlockRows(block))
		s.Require().NoError(err)
		s.Require().Equal([]float64{0, 0, 0}, res.S)
		s.Require().Equal([]float64{0, 0, 0}, res.ExplainedVariance)
		s.Require().Equal(rsvd.PathDirect, res.Path, "a zero basis cannot be streamed")
		s.Require().NotEmpty(res.Warnings)
		for _, w := range res.Warnings {
			s.Require().ErrorIs(w, rsvd.ErrNumericalDegeneracy)
		}
		s.Require().Less(orthoError(s.T(), res.U), 1e-10)
	}
}

// TestZeroMatrixPowerIterations: each QR of a zero product passes the
// identity columns through, so Y is orthonormal and streaming succeeds.
func (s *RandomizedSuite) TestZeroMatrixPowerIterations() {
	z, err := matrix.NewDense[float64](20, 10)
	s.Require().NoError(err)
	res, err := rsvd.Randomized(z, 3, s.quiet, rsvd.WithOversampling(2), rsvd.WithBlockRows(7))
	s.Require().NoError(err)
	s.Require().Equal(rsvd.PathStreaming, res.Path)
	s.Require().Equal([]float64{0, 0, 0}, res.S)
	s.Require().Equal([]float64{0, 0, 0}, res.ExplainedVariance)
	s.Require().Less(orthoError(s.T(), res.U), 1e-10)
	s.Require().Less(orthoError(s.T(), res.V), 1e-10)
}

// TestExtremeMagnitudes feeds entries near the square root of the float64
// range, where squared norms overflow or underflow, down both paths.
func (s *RandomizedSuite) TestExtremeMagnitudes() {
	base := lowRankPlusNoise(s.T(), 120, 30, 5, 1e-2)
	want, err := rsvd.Randomized(base, 5, s.quiet, rsvd.WithPowerIterations(0))
	s.Require().NoError(err)

	for _, scale := range []float64{1e160, 1e-170} {
		a, err := matrix.Scale(base, scale)
		s.Require().NoError(err)
		for _, block := range []int{0, 40} {
			res, err := rsvd.Randomized(a, 5, s.quiet, rsvd.WithPowerIterations(0), rsvd.WithBlockRows(block))
			s.Require().NoError(err)
			if block > 0 {
				s.Require().Equal(rsvd.PathStreaming, res.Path)
			}
			for i := range want.S {
				s.Require().InEpsilon(want.S[i]*scale, res.S[i], 1e-8, "scale %g, S[%d]", scale, i)
			}
			s.Require().InDeltaSlice(want.ExplainedVariance, res.ExplainedVariance, 1e-8)
			s.Require().Less(orthoError(s.T(), res.U), 1e-8)
			s.Require().Less(orthoError(s.T(), res.V), 1e-8)
		}
	}
}

func (s *RandomizedSuite) TestRankBoundBeforeComputation() {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	s.Require().NoError(err)

	a := gaussian(s.T(), 30, 12, 1)
	_, err = rsvd.Randomized(a, 5, s.quiet, rsvd.WithRecorder(rec))
	s.Require().ErrorIs(err, matrix.ErrRankBound)
	_, err = rsvd.Randomized[float64](nil, 5, s.quiet)
	s.Require().ErrorIs(err, matrix.ErrNilMatrix)

	// only the two unlabeled gauges exist: no stage ran
	n, err := testutil.GatherAndCount(reg)
	s.Require().NoError(err)
	s.Require().Equal(2, n)
}

func (s *RandomizedSuite) TestRejectsNonFinite() {
	a, err := matrix.NewDenseFrom(3, 3, []float64{1, 0, 0, 0, math.NaN(), 0, 0, 0, 1}, matrix.WithNoValidateNaNInf())
	s.Require().NoError(err)
	_, err = rsvd.Randomized(a, 1, s.quiet, rsvd.WithOversampling(0))
	s.Require().ErrorIs(err, matrix.ErrNaNInf)
	_, err = rsvd.Exact(a, s.quiet)
	s.Require().ErrorIs(err, matrix.ErrNaNInf)
}

func (s *RandomizedSuite) TestInputNotMutated() {
	a := gaussian(s.T(), 40, 20, 5)
	before := a.RawData()
	_, err := rsvd.Randomized(a, 4, s.quiet, rsvd.WithBlockRows(16))
	s.Require().NoError(err)
	s.Require().Equal(before, a.RawData())
}

func (s *RandomizedSuite) TestAcceleratorFallback() {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	s.Require().NoError(err)

	a := lowRankPlusNoise(s.T(), 60, 30, 4, 0)
	res, err := rsvd.Randomized(a, 4, s.quiet, rsvd.WithRecorder(rec), rsvd.WithOversampling(0),
		rsvd.WithDevice(device.Config{Kind: device.Accelerator, Cores: 2}))
	s.Require().NoError(err)
	s.Require().Equal(device.HostName, res.Device)
	s.Require().Len(res.Warnings, 1)
	s.Require().ErrorIs(res.Warnings[0], device.ErrBackendUnavailable)
	s.Require().Less(relError(s.T(), a, res), 1e-10)

	want := `
# HELP lvsvd_fallbacks_total Degraded paths taken instead of the requested one, by reason
# TYPE lvsvd_fallbacks_total counter
lvsvd_fallbacks_total{reason="accelerator_unavailable"} 1
`
	s.Require().NoError(testutil.GatherAndCompare(reg, bytes.NewBufferString(want), "lvsvd_fallbacks_total"))
}

func (s *RandomizedSuite) TestPrecisionDowngrade() {
	a := lowRankPlusNoise(s.T(), 60, 30, 4, 0)
	res, err := rsvd.Randomized(a, 4, s.quiet, rsvd.WithOversampling(0),
		rsvd.WithDevice(device.Config{Kind: device.Accelerator, Accelerator: float32Accelerator{}}))
	s.Require().NoError(err)
	s.Require().Equal("fake-f32", res.Device)
	s.Require().Equal(matrix.Float32, res.Precision)
	s.Require().Len(res.Warnings, 1)
	s.Require().ErrorIs(res.Warnings[0], device.ErrPrecisionDowngrade)
	s.Require().Less(relError(s.T(), a, res), 1e-4)
	s.Require().Less(orthoError(s.T(), res.U), 1e-4)
}

func (s *RandomizedSuite) TestNativeBackendAgrees() {
	a := decaying(s.T(), 100, 40, 0.7)
	prim, err := rsvd.Randomized(a, 6, s.quiet)
	s.Require().NoError(err)
	native, err := rsvd.Randomized(a, 6, s.quiet, rsvd.WithBackend(decomp.Native))
	s.Require().NoError(err)
	s.Require().Equal(decomp.Native, native.Backend)
	s.Require().Nil(native.Diagnostics)
	s.Require().NotNil(prim.Diagnostics)
	s.Require().InDeltaSlice(prim.S, native.S, 1e-8)
}

func (s *RandomizedSuite) TestNativeBackendStreams() {
	a := decaying(s.T(), 300, 40, 0.7)
	direct, err := rsvd.Randomized(a, 6, s.quiet)
	s.Require().NoError(err)
	res, err := rsvd.Randomized(a, 6, s.quiet, rsvd.WithBackend(decomp.Native), rsvd.WithBlockRows(64))
	s.Require().NoError(err)
	s.Require().Equal(rsvd.PathStreaming, res.Path)
	s.Require().Equal(decomp.Native, res.Backend)
	s.Require().Empty(res.Warnings)
	s.Require().InDeltaSlice(direct.S, res.S, 1e-8)
	s.Require().Less(orthoError(s.T(), res.U), 1e-8)
}

// TestHostFloat32IsLogged: an explicit float32 host request narrows a
// float64 input without a warning, but says so in the log.
func (s *RandomizedSuite) TestHostFloat32IsLogged() {
	var buf bytes.Buffer
	a := lowRankPlusNoise(s.T(), 60, 30, 4, 0)
	res, err := rsvd.Randomized(a, 4, rsvd.WithOversampling(0), rsvd.WithLogger(zerolog.New(&buf)),
		rsvd.WithDevice(device.Config{Precision: matrix.Float32}))
	s.Require().NoError(err)
	s.Require().Equal(matrix.Float32, res.Precision)
	s.Require().Empty(res.Warnings)
	s.Require().Contains(buf.String(), `"level":"info","device":"host","precision":"float32"`)
	s.Require().Contains(buf.String(), "computing a float64 input in single precision")

	// float32 input: nothing is narrowed, nothing is said
	buf.Reset()
	_, err = rsvd.Randomized(matrix.Convert[float64, float32](a), 4, rsvd.WithOversampling(0),
		rsvd.WithLogger(zerolog.New(&buf)))
	s.Require().NoError(err)
	s.Require().NotContains(buf.String(), "single precision")
}

func (s *RandomizedSuite) TestReturnSelection() {
	a := gaussian(s.T(), 30, 20, 6)
	res, err := rsvd.Randomized(a, 3, s.quiet, rsvd.WithoutU(), rsvd.WithoutV())
	s.Require().NoError(err)
	s.Require().Nil(res.U)
	s.Require().Nil(res.V)
	s.Require().Len(res.S, 3)
}

func (s *RandomizedSuite) TestLogsCompletion() {
	var buf bytes.Buffer
	a := gaussian(s.T(), 30, 20, 6)
	_, err := rsvd.Randomized(a, 3, rsvd.WithLogger(zerolog.New(&buf)))
	s.Require().NoError(err)
	s.Require().Contains(buf.String(), `"message":"decomposition complete"`)
	s.Require().Contains(buf.String(), `"method":"randomized"`)
}

func (s *RandomizedSuite) TestBatch() {
	b, err := matrix.NewBatch(gaussian(s.T(), 30, 20, 1), gaussian(s.T(), 30, 20, 2))
	s.Require().NoError(err)
	out, err := rsvd.RandomizedBatch(b, 3, s.quiet)
	s.Require().NoError(err)
	s.Require().Len(out, 2)
	_, err = rsvd.RandomizedBatch(b, 20, s.quiet)
	s.Require().ErrorIs(err, matrix.ErrRankBound)
}

func TestRandomizedSuite(t *testing.T) {
	suite.Run(t, new(RandomizedSuite))
}

func TestExact(t *testing.T) {
	quiet := rsvd.WithLogger(zerolog.Nop())
	for _, sh := range []struct{ m, n int }{{9, 5}, {5, 9}} {
		a := gaussian(t, sh.m, sh.n, 11)
		for _, b := range []decomp.Backend{decomp.Primitive, decomp.Native} {
			res, err := rsvd.Exact(a, quiet, rsvd.WithBackend(b))
			require.NoError(t, err)
			require.Equal(t, rsvd.PathExact, res.Path)
			require.Len(t, res.S, 5)
			require.Less(t, relError(t, a, res), 1e-10)
			var sum float64
			for _, ev := range res.ExplainedVariance {
				sum += ev
			}
			require.InDelta(t, 1, sum, 1e-12)
		}
	}

	b, err := matrix.NewBatch(gaussian(t, 6, 4, 1), gaussian(t, 6, 4, 2))
	require.NoError(t, err)
	_, err = rsvd.ExactBatch(matrix.Batch[float64]{gaussian(t, 6, 4, 1), gaussian(t, 4, 6, 2)}, quiet)
	require.ErrorIs(t, err, matrix.ErrBatchShape)
	for _, backend := range []decomp.Backend{decomp.Primitive, decomp.Native} {
		out, err := rsvd.ExactBatch(b, quiet, rsvd.WithBackend(backend))
		require.NoError(t, err)
		require.Len(t, out, 2)
		for i, m := range b {
			single, err := rsvd.Exact(m, quiet, rsvd.WithBackend(backend))
			require.NoError(t, err)
			require.Equal(t, single.S, out[i].S)
			require.Equal(t, single.ExplainedVariance, out[i].ExplainedVariance)
			require.Equal(t, backend == decomp.Primitive, out[i].Diagnostics != nil)
			require.Less(t, relError(t, m, out[i]), 1e-10)
		}
	}
}

func TestExact_ExtremeMagnitudes(t *testing.T) {
	quiet := rsvd.WithLogger(zerolog.Nop())
	base := gaussian(t, 9, 5, 11)
	var ref mat.SVD
	require.True(t, ref.Factorize(mat.NewDense(9, 5, base.RawData()), mat.SVDNone))
	want := ref.Values(nil)

	for _, scale := range []float64{1e160, 1e-170} {
		a, err := matrix.Scale(base, scale)
		require.NoError(t, err)
		for _, backend := range []decomp.Backend{decomp.Primitive, decomp.Native} {
			res, err := rsvd.Exact(a, quiet, rsvd.WithBackend(backend))
			require.NoError(t, err)
			for i := range want {
				require.InEpsilon(t, want[i]*scale, res.S[i], 1e-10, "%v scale %g S[%d]", backend, scale, i)
			}
			require.Less(t, orthoError(t, res.U), 1e-10)
			require.Less(t, orthoError(t, res.V), 1e-10)
		}
	}

	// float32 squares overflow past ~1.8e19
	a32, err := matrix.Scale(matrix.Convert[float64, float32](base), 1e20)
	require.NoError(t, err)
	res, err := rsvd.Exact(a32, quiet)
	require.NoError(t, err)
	for i := range want {
		require.InEpsilon(t, want[i]*1e20, float64(res.S[i]), 1e-4, "float32 S[%d]", i)
	}
}

func TestQR(t *testing.T) {
	a := gaussian(t, 12, 5, 3)
	for _, b := range []decomp.Backend{decomp.Primitive, decomp.Native} {
		q, r, err := rsvd.QR(a, rsvd.WithLogger(zerolog.Nop()), rsvd.WithBackend(b))
		require.NoError(t, err)
		require.Less(t, matrix.MaxAbsBelowDiagonal(r), 1e-10)
		prod, err := matrix.Mul(q, r)
		require.NoError(t, err)
		ok, err := matrix.AllClose(a, prod, 1e-10, 1e-10)
		require.NoError(t, err)
		require.True(t, ok)
	}
	_, _, err := rsvd.QR[float64](nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestQRBatch(t *testing.T) {
	b, err := matrix.NewBatch(gaussian(t, 8, 5, 1), gaussian(t, 8, 5, 2), gaussian(t, 8, 5, 3))
	require.NoError(t, err)
	for _, backend := range []decomp.Backend{decomp.Primitive, decomp.Native} {
		qs, rs, err := rsvd.QRBatch(b, rsvd.WithLogger(zerolog.Nop()), rsvd.WithBackend(backend))
		require.NoError(t, err)
		require.Len(t, qs, 3)
		for i, m := range b {
			prod, err := matrix.Mul(qs[i], rs[i])
			require.NoError(t, err)
			ok, err := matrix.AllClose(m, prod, 1e-10, 1e-10)
			require.NoError(t, err)
			require.True(t, ok)
		}
	}
	_, _, err = rsvd.QRBatch(matrix.Batch[float64]{gaussian(t, 8, 5, 1), nil})
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestOptionsPanic(t *testing.T) {
	require.Panics(t, func() { rsvd.WithOversampling(-1) })
	require.Panics(t, func() { rsvd.WithPowerIterations(-1) })
	require.Panics(t, func() { rsvd.WithBlockRows(-1) })
	require.Panics(t, func() { rsvd.WithSweepMultiplier(0) })
}
