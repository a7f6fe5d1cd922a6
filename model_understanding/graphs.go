package model_understanding

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
)

var (
	curveColor     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	referenceColor = color.Gray{Y: 0x80}
)

// GraphROCCurve renders the ROC curve of the given scores as a PNG chart,
// with the chance diagonal as a dashed reference line.
func GraphROCCurve(w io.Writer, yTrue *mat.VecDense, proba mat.Matrix) error {
	data, err := ROCCurve(yTrue, proba)
	if err != nil {
		return err
	}
	if hasNaN(data.FPR) || hasNaN(data.TPR) {
		return errors.NewValueError("GraphROCCurve", "cannot graph a curve with undefined rates")
	}

	p := plot.New()
	p.Title.Text = "Receiver Operating Characteristic"
	p.X.Label.Text = "False Positive Rate"
	p.Y.Label.Text = "True Positive Rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(plotter.NewGrid())

	curve, err := plotter.NewLine(curvePoints(data.FPR, data.TPR))
	if err != nil {
		return errors.Wrap(err, "GraphROCCurve: failed to build curve")
	}
	curve.LineStyle.Width = vg.Points(2)
	curve.LineStyle.Color = curveColor

	diagonal, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return errors.Wrap(err, "GraphROCCurve: failed to build reference line")
	}
	diagonal.LineStyle.Color = referenceColor
	diagonal.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(curve, diagonal)
	p.Legend.Add(fmt.Sprintf("ROC (AUC %.4f)", data.AUC), curve)
	p.Legend.Add("Chance", diagonal)

	return writePNG(w, p, "GraphROCCurve")
}

// GraphPrecisionRecallCurve renders the precision-recall curve of the given
// scores as a PNG chart.
func GraphPrecisionRecallCurve(w io.Writer, yTrue *mat.VecDense, proba mat.Matrix) error {
	data, err := PrecisionRecallCurve(yTrue, proba)
	if err != nil {
		return err
	}
	if hasNaN(data.Precision) || hasNaN(data.Recall) {
		return errors.NewValueError("GraphPrecisionRecallCurve", "cannot graph a curve with undefined rates")
	}

	p := plot.New()
	p.Title.Text = "Precision-Recall"
	p.X.Label.Text = "Recall"
	p.Y.Label.Text = "Precision"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(plotter.NewGrid())

	curve, err := plotter.NewLine(curvePoints(data.Recall, data.Precision))
	if err != nil {
		return errors.Wrap(err, "GraphPrecisionRecallCurve: failed to build curve")
	}
	curve.LineStyle.Width = vg.Points(2)
	curve.LineStyle.Color = curveColor

	p.Add(curve)
	p.Legend.Add(fmt.Sprintf("PR (AUC %.4f)", data.AUC), curve)

	return writePNG(w, p, "GraphPrecisionRecallCurve")
}

func curvePoints(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return pts
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func writePNG(w io.Writer, p *plot.Plot, op string) error {
	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return errors.Wrapf(err, "%s: failed to render chart", op)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrapf(err, "%s: failed to write chart", op)
	}
	return nil
}
