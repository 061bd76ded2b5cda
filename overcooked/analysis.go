package overcooked

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/zeu5/overcooked-rl/types"
	"gonum.org/v1/gonum/stat"
)

// ReturnsData is the dataset of a ReturnsAnalyzer
type ReturnsData struct {
	Returns    []float64 `json:"returns"`
	Deliveries []int     `json:"deliveries"`
}

// ReturnsAnalyzer records the return and the number of deliveries of every episode
type ReturnsAnalyzer struct {
	returns    []float64
	deliveries []int
}

var _ types.Analyzer = &ReturnsAnalyzer{}

func NewReturnsAnalyzer() *ReturnsAnalyzer {
	return &ReturnsAnalyzer{
		returns:    make([]float64, 0),
		deliveries: make([]int, 0),
	}
}

func (r *ReturnsAnalyzer) Analyze(_ int, _ int, _ int, _ string, trace *types.Trace) {
	delivered := 0
	for i := 0; i < trace.Len(); i++ {
		if trace.Reward(i) > 0 {
			delivered += int(trace.Reward(i) / DeliveryReward)
		}
	}
	r.returns = append(r.returns, trace.Return())
	r.deliveries = append(r.deliveries, delivered)
}

func (r *ReturnsAnalyzer) DataSet() types.DataSet {
	out := ReturnsData{
		Returns:    make([]float64, len(r.returns)),
		Deliveries: make([]int, len(r.deliveries)),
	}
	copy(out.Returns, r.returns)
	copy(out.Deliveries, r.deliveries)
	return out
}

func (r *ReturnsAnalyzer) Reset() {
	r.returns = make([]float64, 0)
	r.deliveries = make([]int, 0)
}

// ReturnsComparator prints the mean and standard deviation of the returns,
// plots the moving average and stores the raw data
func ReturnsComparator(plotPath string, window int) types.Comparator {
	if window <= 0 {
		window = 1
	}
	return func(run int, _ int, names []string, ds []types.DataSet) {
		if _, err := os.Stat(plotPath); err != nil {
			os.MkdirAll(plotPath, os.ModePerm)
		}
		data := make(map[string]ReturnsData)
		series := make(map[string][]float64)
		for i, name := range names {
			rd, ok := ds[i].(ReturnsData)
			if !ok {
				continue
			}
			data[name] = rd
			series[name] = movingAverage(rd.Returns, window)
			mean, std := stat.MeanStdDev(rd.Returns, nil)
			total := 0
			for _, d := range rd.Deliveries {
				total += d
			}
			fmt.Printf("Experiment: %s, mean return: %.2f (std %.2f), deliveries: %d\n", name, mean, std, total)
		}
		if bs, err := json.Marshal(data); err == nil {
			os.WriteFile(path.Join(plotPath, strconv.Itoa(run)+"_returns.json"), bs, 0644)
		}
		if err := types.SaveLinePlot(path.Join(plotPath, strconv.Itoa(run)+"_returns.png"), "Returns", "Episode", "Return (moving average)", names, series); err != nil {
			fmt.Printf("Error saving returns plot: %s\n", err)
		}
	}
}

func movingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		from := i - window + 1
		if from < 0 {
			from = 0
		}
		out[i] = stat.Mean(values[from:i+1], nil)
	}
	return out
}

// RenderTrace renders every state of the trace as text
func RenderTrace(trace *types.Trace) string {
	var b strings.Builder
	for i := 0; i < trace.Len(); i++ {
		s, a, ns, _ := trace.Get(i)
		if i == 0 {
			if es, ok := asState(s); ok {
				b.WriteString(Render(es.State))
				b.WriteString("\n")
			}
		}
		fmt.Fprintf(&b, "step %d: %s reward=%.0f\n", i, a.Hash(), trace.Reward(i))
		if es, ok := asState(ns); ok {
			b.WriteString(Render(es.State))
			b.WriteString("\n")
		}
	}
	return b.String()
}
