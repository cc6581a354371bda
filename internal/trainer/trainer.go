// Package trainer fits a linear price model on the master panel and reports
// its hold-out accuracy and feature importance.
package trainer

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/csvsink"
	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

// DefaultSplit is the share of rows used for training.
const DefaultSplit = 0.8

// Options configures a training run.
type Options struct {
	Target string
	Split  float64
	// Ridge adds an L2 penalty on the standardized coefficients. Zero is
	// ordinary least squares.
	Ridge float64
}

func (o Options) withDefaults() Options {
	if o.Target == "" {
		o.Target = domain.ColumnPriceLocal
	}
	if o.Split == 0 {
		o.Split = DefaultSplit
	}
	return o
}

// FeatureImportance is the normalized absolute standardized coefficient.
type FeatureImportance struct {
	Feature    string
	Importance float64
}

// Prediction is one hold-out row.
type Prediction struct {
	Date      time.Time
	Actual    float64
	Predicted float64
}

// Report summarizes a fitted model.
type Report struct {
	Target     string
	Features   []string
	TrainStart time.Time
	TrainEnd   time.Time
	TrainRows  int
	TestRows   int
	MAE        float64
	R2         float64
	Importance []FeatureImportance
	Test       []Prediction
}

// TrainFile trains on the panel CSV at path.
func TrainFile(path string, opts Options) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer f.Close()
	return Train(f, opts)
}

// Train reads a panel CSV, splits it chronologically and fits the model on
// the leading share of rows. Every column except the date and the target is
// a feature.
func Train(r io.Reader, opts Options) (Report, error) {
	opts = opts.withDefaults()
	if opts.Split <= 0 || opts.Split >= 1 {
		return Report{}, fmt.Errorf("split %v outside (0, 1)", opts.Split)
	}
	if opts.Ridge < 0 {
		return Report{}, fmt.Errorf("ridge %v is negative", opts.Ridge)
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.WithTypes(map[string]series.Type{domain.ColumnDate: series.String}),
	)
	if df.Err != nil {
		return Report{}, fmt.Errorf("read panel: %w", df.Err)
	}

	names := df.Names()
	if !slices.Contains(names, domain.ColumnDate) {
		return Report{}, fmt.Errorf("panel has no %q column", domain.ColumnDate)
	}
	if !slices.Contains(names, opts.Target) {
		return Report{}, fmt.Errorf("panel has no target column %q", opts.Target)
	}

	dates := make([]time.Time, df.Nrow())
	for i, s := range df.Col(domain.ColumnDate).Records() {
		ts, err := time.Parse(csvsink.DateLayout, s)
		if err != nil {
			return Report{}, fmt.Errorf("row %d: invalid date %q", i+1, s)
		}
		dates[i] = ts
	}

	var features []string
	columns := make(map[string][]float64, len(names))
	for _, name := range names {
		if name == domain.ColumnDate {
			continue
		}
		values := df.Col(name).Float()
		for i, v := range values {
			if math.IsNaN(v) {
				return Report{}, fmt.Errorf("column %s has a missing value at %s", name, dates[i].Format(csvsink.DateLayout))
			}
		}
		columns[name] = values
		if name != opts.Target {
			features = append(features, name)
		}
	}
	if len(features) == 0 {
		return Report{}, errors.New("panel has no feature columns")
	}

	n := df.Nrow()
	nTrain := int(float64(n) * opts.Split)
	if nTrain < len(features)+1 {
		return Report{}, fmt.Errorf("%d training rows for %d parameters", nTrain, len(features)+1)
	}
	if n-nTrain < 1 {
		return Report{}, errors.New("split leaves no test rows")
	}

	m, err := fit(columns, features, opts.Target, nTrain, opts.Ridge)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		Target:     opts.Target,
		Features:   features,
		TrainStart: dates[0],
		TrainEnd:   dates[nTrain-1],
		TrainRows:  nTrain,
		TestRows:   n - nTrain,
		Importance: m.importance(),
	}
	actual := columns[opts.Target][nTrain:]
	predicted := make([]float64, len(actual))
	for i := range actual {
		row := nTrain + i
		x := make([]float64, len(features))
		for j, f := range features {
			x[j] = columns[f][row]
		}
		predicted[i] = m.predict(x)
		rep.Test = append(rep.Test, Prediction{Date: dates[row], Actual: actual[i], Predicted: predicted[i]})
	}
	rep.MAE = meanAbsoluteError(actual, predicted)
	rep.R2 = stat.RSquaredFrom(predicted, actual, nil)
	return rep, nil
}

type model struct {
	features  []string
	mean, std []float64
	intercept float64
	coef      []float64
}

// fit solves the least-squares problem on standardized features with QR.
// Constant features get a zero coefficient.
func fit(columns map[string][]float64, features []string, target string, nTrain int, ridge float64) (*model, error) {
	p := len(features)
	m := &model{features: features, mean: make([]float64, p), std: make([]float64, p), coef: make([]float64, p)}
	for j, f := range features {
		m.mean[j], m.std[j] = stat.MeanStdDev(columns[f][:nTrain], nil)
	}

	var active []int
	for j := range features {
		if m.std[j] > 0 {
			active = append(active, j)
		}
	}

	extra := 0
	if ridge > 0 {
		extra = len(active)
	}
	x := mat.NewDense(nTrain+extra, len(active)+1, nil)
	y := mat.NewDense(nTrain+extra, 1, nil)
	for i := 0; i < nTrain; i++ {
		x.Set(i, 0, 1)
		for k, j := range active {
			x.Set(i, k+1, (columns[features[j]][i]-m.mean[j])/m.std[j])
		}
		y.Set(i, 0, columns[target][i])
	}
	for k := 0; k < extra; k++ {
		x.Set(nTrain+k, k+1, math.Sqrt(ridge))
	}

	var qr mat.QR
	qr.Factorize(x)
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, y); err != nil {
		return nil, fmt.Errorf("solve least squares: %w", err)
	}

	m.intercept = beta.At(0, 0)
	for k, j := range active {
		m.coef[j] = beta.At(k+1, 0)
	}
	return m, nil
}

func (m *model) predict(x []float64) float64 {
	y := m.intercept
	for j, v := range x {
		if m.std[j] > 0 {
			y += m.coef[j] * (v - m.mean[j]) / m.std[j]
		}
	}
	return y
}

func (m *model) importance() []FeatureImportance {
	var total float64
	for _, c := range m.coef {
		total += math.Abs(c)
	}
	out := make([]FeatureImportance, len(m.features))
	for j, f := range m.features {
		out[j] = FeatureImportance{Feature: f}
		if total > 0 {
			out[j].Importance = math.Abs(m.coef[j]) / total
		}
	}
	slices.SortStableFunc(out, func(a, b FeatureImportance) int {
		return cmp.Compare(b.Importance, a.Importance)
	})
	return out
}

func meanAbsoluteError(actual, predicted []float64) float64 {
	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}
