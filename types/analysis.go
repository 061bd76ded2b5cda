package types

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// CoverageAnalyzer counts the unique abstract states seen, sampled after every episode
type CoverageAnalyzer struct {
	abstractor   StateAbstractor
	uniqueStates map[string]bool
	coverage     []int
}

var _ Analyzer = &CoverageAnalyzer{}

func NewCoverageAnalyzer(abstractor StateAbstractor) *CoverageAnalyzer {
	if abstractor == nil {
		abstractor = DefaultStateAbstractor()
	}
	return &CoverageAnalyzer{
		abstractor:   abstractor,
		uniqueStates: make(map[string]bool),
		coverage:     make([]int, 0),
	}
}

func (c *CoverageAnalyzer) Analyze(_ int, _ int, _ int, _ string, trace *Trace) {
	for j := 0; j < trace.Len(); j++ {
		s, _, ns, _ := trace.Get(j)
		c.uniqueStates[c.abstractor(s)] = true
		c.uniqueStates[c.abstractor(ns)] = true
	}
	c.coverage = append(c.coverage, len(c.uniqueStates))
}

func (c *CoverageAnalyzer) DataSet() DataSet {
	out := make([]int, len(c.coverage))
	copy(out, c.coverage)
	return out
}

func (c *CoverageAnalyzer) Reset() {
	c.uniqueStates = make(map[string]bool)
	c.coverage = make([]int, 0)
}

// CoverageComparator plots the coverage curves of all experiments and stores the raw data as json
func CoverageComparator(plotPath string) Comparator {
	return func(run int, _ int, names []string, ds []DataSet) {
		if _, err := os.Stat(plotPath); err != nil {
			os.MkdirAll(plotPath, os.ModePerm)
		}
		data := make(map[string][]int)
		series := make(map[string][]float64)
		for i, name := range names {
			coverage, ok := ds[i].([]int)
			if !ok {
				continue
			}
			data[name] = coverage
			values := make([]float64, len(coverage))
			for j, v := range coverage {
				values[j] = float64(v)
			}
			series[name] = values
			if len(coverage) > 0 {
				fmt.Printf("Number of unique states: %d for experiment: %s\n", coverage[len(coverage)-1], name)
			}
		}
		if bs, err := json.Marshal(data); err == nil {
			os.WriteFile(path.Join(plotPath, strconv.Itoa(run)+"_coverage.json"), bs, 0644)
		}
		SaveLinePlot(path.Join(plotPath, strconv.Itoa(run)+"_coverage.png"), "Coverage", "Episode", "States covered", names, series)
	}
}

// SaveLinePlot draws one line per named series, in the order of names
func SaveLinePlot(file, title, xLabel, yLabel string, names []string, series map[string][]float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	for i, name := range names {
		values, ok := series[name]
		if !ok {
			continue
		}
		points := make(plotter.XYs, len(values))
		for j, v := range values {
			points[j] = plotter.XY{X: float64(j), Y: v}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			continue
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	return p.Save(8*vg.Inch, 8*vg.Inch, file)
}
