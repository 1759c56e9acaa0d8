// Package chart renders biomass and substrate trajectories, either as an
// ASCII chart for the terminal or as an image file.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/monodsim/internal/dynamo"
	"github.com/san-kum/monodsim/internal/kinetics"
)

var ErrEmptyTrajectory = errors.New("trajectory has no samples")

type Labels struct {
	Title     string
	XAxis     string
	YAxis     string
	Biomass   string
	Substrate string
}

func DefaultLabels() Labels {
	return Labels{
		Title:     "Crecimiento microbiano - Modelo de Monod",
		XAxis:     "Tiempo (h)",
		YAxis:     "Concentración (g/L)",
		Biomass:   "Biomasa (X)",
		Substrate: "Sustrato (S)",
	}
}

const (
	ImageWidth  = 10 * vg.Inch
	ImageHeight = 5 * vg.Inch
	lineWidth   = 2
)

var (
	biomassColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	substrateColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// Terminal draws both series on one ASCII chart. The caption carries the
// title and the time range since asciigraph has no axis labels.
func Terminal(traj *dynamo.Trajectory, labels Labels, width, height int) (string, error) {
	if traj == nil || traj.Len() == 0 {
		return "", ErrEmptyTrajectory
	}

	x, s := kinetics.Split(traj)
	caption := fmt.Sprintf("%s | %s 0 - %g | %s",
		labels.Title, labels.XAxis, traj.Times[len(traj.Times)-1], labels.YAxis)

	graph := asciigraph.PlotMany([][]float64{x, s},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.SeriesLegends(labels.Biomass, labels.Substrate),
		asciigraph.Caption(caption),
	)
	return graph, nil
}

// Plot builds the image chart: solid biomass, dashed substrate, legend and
// grid.
func Plot(traj *dynamo.Trajectory, labels Labels) (*plot.Plot, error) {
	if traj == nil || traj.Len() == 0 {
		return nil, ErrEmptyTrajectory
	}

	p := plot.New()
	p.Title.Text = labels.Title
	p.X.Label.Text = labels.XAxis
	p.Y.Label.Text = labels.YAxis
	p.Add(plotter.NewGrid())

	x, s := kinetics.Split(traj)

	biomass, err := plotter.NewLine(points(traj.Times, x))
	if err != nil {
		return nil, fmt.Errorf("biomass line: %w", err)
	}
	biomass.LineStyle.Width = vg.Points(lineWidth)
	biomass.LineStyle.Color = biomassColor

	substrate, err := plotter.NewLine(points(traj.Times, s))
	if err != nil {
		return nil, fmt.Errorf("substrate line: %w", err)
	}
	substrate.LineStyle.Width = vg.Points(lineWidth)
	substrate.LineStyle.Color = substrateColor
	substrate.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}

	p.Add(biomass, substrate)
	p.Legend.Add(labels.Biomass, biomass)
	p.Legend.Add(labels.Substrate, substrate)
	p.Legend.Top = true

	return p, nil
}

// Save writes the chart to path. The extension picks the format.
func Save(path string, traj *dynamo.Trajectory, labels Labels) error {
	if err := checkFormat(path); err != nil {
		return err
	}
	p, err := Plot(traj, labels)
	if err != nil {
		return err
	}
	if err := p.Save(ImageWidth, ImageHeight, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}

func checkFormat(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg", ".pdf", ".jpg", ".jpeg", ".eps", ".tif", ".tiff":
		return nil
	default:
		return fmt.Errorf("unsupported chart format %q", filepath.Ext(path))
	}
}

func points(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}
