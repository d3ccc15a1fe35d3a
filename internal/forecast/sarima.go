// Package forecast fits seasonal ARIMA models to per-product demand
// series and derives inventory planning metrics from the forecasts.
package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// DefaultSeasonalPeriod assumes weekly seasonality in daily demand data.
const DefaultSeasonalPeriod = 7

// coefBound keeps the AR/MA coefficients inside the stationarity and
// invertibility region during optimization.
const coefBound = 0.98

// SARIMA is a seasonal ARIMA(1,1,1)(1,1,1,s) model estimated by
// conditional sum of squares.
type SARIMA struct {
	period int

	phi    float64 // non-seasonal AR
	theta  float64 // non-seasonal MA
	sphi   float64 // seasonal AR
	stheta float64 // seasonal MA

	series []float64 // original observations
	diff   []float64 // (1-B)(1-B^s) differenced series
	resid  []float64 // residuals on the differenced scale
}

// NewSARIMA creates an unfitted model with the given seasonal period.
func NewSARIMA(period int) *SARIMA {
	if period < 2 {
		period = DefaultSeasonalPeriod
	}
	return &SARIMA{period: period}
}

// Fit estimates the model coefficients from series. The series must be
// long enough to survive first and seasonal differencing.
func (m *SARIMA) Fit(series []float64) error {
	s := m.period
	if len(series) < s+3 {
		return fmt.Errorf("series too short for seasonal period %d: got %d observations", s, len(series))
	}

	m.series = append([]float64(nil), series...)
	m.diff = difference(m.series, s)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			phi, theta, sphi, stheta := transform(x)
			_, ssr := residuals(m.diff, s, phi, theta, sphi, stheta)
			return ssr
		},
	}

	x0 := []float64{0.1, 0.1, 0.1, 0.1}
	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil && result == nil {
		// Degenerate fit; fall back to a pure integrated seasonal model.
		m.phi, m.theta, m.sphi, m.stheta = 0, 0, 0, 0
	} else {
		m.phi, m.theta, m.sphi, m.stheta = transform(result.X)
	}

	m.resid, _ = residuals(m.diff, s, m.phi, m.theta, m.sphi, m.stheta)
	return nil
}

// Forecast returns h-step-ahead predictions on the original scale.
// Fit must have been called first.
func (m *SARIMA) Forecast(h int) ([]float64, error) {
	if m.series == nil {
		return nil, fmt.Errorf("model is not fitted")
	}
	if h <= 0 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d", h)
	}

	s := m.period
	n := len(m.series)
	mLen := len(m.diff)

	// Forecast the differenced series recursively with future shocks
	// set to zero.
	w := func(ext []float64, t int) float64 {
		if t < 0 {
			return 0
		}
		if t < mLen {
			return m.diff[t]
		}
		return ext[t-mLen]
	}
	eps := func(t int) float64 {
		if t < 0 || t >= mLen {
			return 0
		}
		return m.resid[t]
	}

	wf := make([]float64, 0, h)
	for k := 0; k < h; k++ {
		t := mLen + k
		v := m.phi*w(wf, t-1) +
			m.sphi*w(wf, t-s) -
			m.phi*m.sphi*w(wf, t-s-1) +
			m.theta*eps(t-1) +
			m.stheta*eps(t-s) +
			m.theta*m.stheta*eps(t-s-1)
		wf = append(wf, v)
	}

	// Integrate back: y[t] = w[t-s-1] + y[t-1] + y[t-s] - y[t-s-1].
	extended := append(append([]float64(nil), m.series...), make([]float64, h)...)
	for k := 0; k < h; k++ {
		j := n + k
		extended[j] = wf[k] + extended[j-1] + extended[j-s] - extended[j-s-1]
	}

	return extended[n:], nil
}

// transform maps unconstrained optimizer variables onto bounded
// coefficients.
func transform(x []float64) (phi, theta, sphi, stheta float64) {
	return coefBound * math.Tanh(x[0]),
		coefBound * math.Tanh(x[1]),
		coefBound * math.Tanh(x[2]),
		coefBound * math.Tanh(x[3])
}

// difference applies first and lag-s differencing: (1-B)(1-B^s) y.
func difference(y []float64, s int) []float64 {
	z := make([]float64, len(y)-1)
	for i := range z {
		z[i] = y[i+1] - y[i]
	}
	w := make([]float64, len(z)-s)
	for i := range w {
		w[i] = z[i+s] - z[i]
	}
	return w
}

// residuals computes the conditional sum-of-squares residuals of the
// ARMA(1,1)(1,1,s) recursion on the differenced series w. Pre-sample
// values and shocks are conditioned to zero.
func residuals(w []float64, s int, phi, theta, sphi, stheta float64) ([]float64, float64) {
	at := func(vals []float64, t int) float64 {
		if t < 0 {
			return 0
		}
		return vals[t]
	}

	eps := make([]float64, len(w))
	ssr := 0.0
	for t := range w {
		pred := phi*at(w, t-1) +
			sphi*at(w, t-s) -
			phi*sphi*at(w, t-s-1) +
			theta*at(eps, t-1) +
			stheta*at(eps, t-s) +
			theta*stheta*at(eps, t-s-1)
		eps[t] = w[t] - pred
		ssr += eps[t] * eps[t]
	}
	if math.IsNaN(ssr) || math.IsInf(ssr, 0) {
		return eps, math.MaxFloat64
	}
	return eps, ssr
}
