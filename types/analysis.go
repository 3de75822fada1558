package types

import (
	"fmt"
	"path/filepath"

	"github.com/zeu5/batch-rl-train/util"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	TrainingReturnsPlot  = "training_r.png"
	EvaluationScoresPlot = "scores.png"
)

// Series is a named line in a plot
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// SavePlot draws the series as lines and saves the plot as an image
func SavePlot(title, xLabel, yLabel, savePath string, series ...Series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	for i, s := range series {
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("series %s has %d x and %d y values", s.Name, len(s.X), len(s.Y))
		}
		points := make(plotter.XYs, len(s.X))
		for j := range s.X {
			points[j] = plotter.XY{
				X: s.X[j],
				Y: s.Y[j],
			}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	return p.Save(8*vg.Inch, 6*vg.Inch, savePath)
}

// PlotTrainingReturns plots the content of the training returns file of outdir
func PlotTrainingReturns(outdir string) (string, error) {
	columns, err := util.ReadColumns(filepath.Join(outdir, TrainingReturnsFile))
	if err != nil {
		return "", err
	}
	if len(columns) < 2 {
		return "", fmt.Errorf("no training returns recorded in %s", outdir)
	}
	savePath := filepath.Join(outdir, TrainingReturnsPlot)
	err = SavePlot("Training", "Step", "Mean recent return", savePath, Series{
		Name: "avg_r",
		X:    columns[0],
		Y:    columns[1],
	})
	return savePath, err
}

// PlotEvaluationScores plots the mean, max and min evaluation scores of outdir
func PlotEvaluationScores(outdir string) (string, error) {
	columns, err := util.ReadColumns(filepath.Join(outdir, ScoresFile))
	if err != nil {
		return "", err
	}
	if len(columns) < len(scoresHeader) {
		return "", fmt.Errorf("no evaluation scores recorded in %s", outdir)
	}
	savePath := filepath.Join(outdir, EvaluationScoresPlot)
	steps := columns[0]
	err = SavePlot("Evaluation", "Step", "Score", savePath,
		Series{Name: "mean", X: steps, Y: columns[3]},
		Series{Name: "max", X: steps, Y: columns[6]},
		Series{Name: "min", X: steps, Y: columns[7]},
	)
	return savePath, err
}
