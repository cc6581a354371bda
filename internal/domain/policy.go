package domain

import (
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Aggregation collapses the values that fall into one bucket.
type Aggregation int

const (
	AggregateMean Aggregation = iota
	AggregateSum
	AggregateLast
)

func (a Aggregation) String() string {
	switch a {
	case AggregateSum:
		return "sum"
	case AggregateLast:
		return "last"
	default:
		return "mean"
	}
}

// Reduce aggregates the non-missing values. A bucket without any value is
// missing, also for sums.
func (a Aggregation) Reduce(values []float64) float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !IsMissing(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return Missing()
	}

	switch a {
	case AggregateSum:
		return floats.Sum(present)
	case AggregateLast:
		return present[len(present)-1]
	default:
		return stat.Mean(present, nil)
	}
}

// Fill is what replaces a missing reading before aggregation.
type Fill int

const (
	// FillNone leaves the value missing.
	FillNone Fill = iota
	// FillZero substitutes zero.
	FillZero
	// FillCarryForward repeats the last valid prior value.
	FillCarryForward
)

func (f Fill) String() string {
	switch f {
	case FillZero:
		return "zero"
	case FillCarryForward:
		return "carry_forward"
	default:
		return "none"
	}
}

// FillPolicy declares how one variable is cleaned and aggregated.
type FillPolicy struct {
	Variable string

	// Sentinel values are treated exactly like coercion failures.
	HasSentinel bool
	Sentinel    float64

	Missing Fill
	Daily   Aggregation
	Period  Aggregation
}

// Apply returns a copy of values with sentinels replaced and the fill rule
// applied in slice order. Leading values without a prior reading stay
// missing under FillCarryForward.
func (p FillPolicy) Apply(values []float64) []float64 {
	out := make([]float64, len(values))
	last := Missing()
	for i, v := range values {
		if p.HasSentinel && v == p.Sentinel {
			v = Missing()
		}
		if IsMissing(v) {
			switch p.Missing {
			case FillZero:
				v = 0
			case FillCarryForward:
				v = last
			}
		} else {
			last = v
		}
		out[i] = v
	}
	return out
}

// FillPolicyTable maps variable names to their policy.
type FillPolicyTable map[string]FillPolicy

// Variable names with a declared policy.
const (
	VariablePrecipitation = "precipitation"
	VariableTemperature   = "temperature"
	VariablePriceLocal    = "price_local"
	VariablePriceForeign  = "price_foreign"
	VariableStockToUse    = "stock_to_use"
)

// DefaultFillPolicies is the missing-value and aggregation policy of the
// pipeline. sentinel is the weather network's missing-reading code.
func DefaultFillPolicies(sentinel float64) FillPolicyTable {
	return FillPolicyTable{
		VariablePrecipitation: {
			Variable:    VariablePrecipitation,
			HasSentinel: true,
			Sentinel:    sentinel,
			Missing:     FillZero,
			Daily:       AggregateSum,
			Period:      AggregateSum,
		},
		VariableTemperature: {
			Variable:    VariableTemperature,
			HasSentinel: true,
			Sentinel:    sentinel,
			Missing:     FillCarryForward,
			Daily:       AggregateMean,
			Period:      AggregateMean,
		},
		VariablePriceLocal: {
			Variable: VariablePriceLocal,
			Missing:  FillNone,
			Daily:    AggregateMean,
			Period:   AggregateMean,
		},
		VariablePriceForeign: {
			Variable: VariablePriceForeign,
			Missing:  FillNone,
			Daily:    AggregateMean,
			Period:   AggregateMean,
		},
		VariableStockToUse: {
			Variable: VariableStockToUse,
			Missing:  FillCarryForward,
			Daily:    AggregateLast,
			Period:   AggregateLast,
		},
	}
}

// Lookup finds the policy of a column. Station-qualified columns such as
// "precipitation_sinop" use the policy of their variable prefix.
func (t FillPolicyTable) Lookup(column string) (FillPolicy, bool) {
	if p, ok := t[column]; ok {
		return p, true
	}
	if variable, _, found := strings.Cut(column, "_"); found {
		p, ok := t[variable]
		return p, ok
	}
	return FillPolicy{}, false
}
