package catalog

import (
	"errors"
	"math"
	"sort"

	"github.com/scaryPonens/fundadvisor/internal/domain"

	goiforest "github.com/narumiruna/go-iforest/pkg/iforest"
)

// Anomaly flags a fund whose numbers sit far from the rest of the dataset,
// usually a scraping or data-entry defect worth a manual look.
type Anomaly struct {
	Fund  domain.Fund `json:"fund"`
	Score float64     `json:"score"`
}

// AnomalyOptions tune the isolation forest scan.
type AnomalyOptions struct {
	Threshold  float64
	NumTrees   int
	SampleSize int
}

// DefaultAnomalyOptions mirror the usual forest sizing.
func DefaultAnomalyOptions() AnomalyOptions {
	return AnomalyOptions{Threshold: 0.62, NumTrees: 200, SampleSize: 256}
}

var anomalyFeatures = []string{
	"exp_ratio", "return_1y", "return_3y", "return_5y", "aum_log", "fund_volatility",
}

// Anomalies trains an isolation forest over the snapshot's numeric features
// and returns rows scoring at or above the threshold, worst first. The scan
// needs a handful of rows to be meaningful.
func (c *Catalog) Anomalies(opts AnomalyOptions) ([]Anomaly, error) {
	if len(c.funds) < 8 {
		return nil, errors.New("too few rows for anomaly scan")
	}
	if opts.Threshold <= 0 || opts.Threshold >= 1 {
		opts.Threshold = DefaultAnomalyOptions().Threshold
	}
	if opts.NumTrees <= 0 {
		opts.NumTrees = DefaultAnomalyOptions().NumTrees
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultAnomalyOptions().SampleSize
	}

	samples := make([][]float64, len(c.funds))
	for i, f := range c.funds {
		samples[i] = featureVector(f)
	}

	means, stds := fitNormalizer(samples)
	normalized := normalizeBatch(samples, means, stds)

	forest := goiforest.NewWithOptions(goiforest.Options{
		DetectionType: goiforest.DetectionTypeThreshold,
		Threshold:     opts.Threshold,
		NumTrees:      opts.NumTrees,
		SampleSize:    opts.SampleSize,
	})
	forest.Fit(normalized)
	scores := forest.Score(normalized)

	var out []Anomaly
	for i, score := range scores {
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		if score >= opts.Threshold {
			out = append(out, Anomaly{Fund: c.funds[i], Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// AnomalyFeatureNames lists the scanned features, for the admin surface.
func AnomalyFeatureNames() []string {
	out := make([]string, len(anomalyFeatures))
	copy(out, anomalyFeatures)
	return out
}

func featureVector(f domain.Fund) []float64 {
	// AUM spans several orders of magnitude; log-scale it so one giant
	// index fund does not dominate the distance metric.
	aum := f.AUMCr
	if aum < 1 {
		aum = 1
	}
	return []float64{
		f.ExpenseRatio,
		f.Return1Y,
		f.Return3Y,
		f.Return5Y,
		math.Log10(aum),
		f.FundVolatility,
	}
}

func fitNormalizer(samples [][]float64) ([]float64, []float64) {
	featureCount := len(samples[0])
	means := make([]float64, featureCount)
	stds := make([]float64, featureCount)
	for j := 0; j < featureCount; j++ {
		for i := range samples {
			means[j] += samples[i][j]
		}
		means[j] /= float64(len(samples))
		for i := range samples {
			d := samples[i][j] - means[j]
			stds[j] += d * d
		}
		stds[j] = math.Sqrt(stds[j] / float64(len(samples)))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

func normalizeBatch(samples [][]float64, means, stds []float64) [][]float64 {
	out := make([][]float64, len(samples))
	for i := range samples {
		out[i] = normalize(samples[i], means, stds)
	}
	return out
}

func normalize(in, means, stds []float64) []float64 {
	out := make([]float64, len(in))
	for i := range in {
		out[i] = (in[i] - means[i]) / stds[i]
	}
	return out
}
