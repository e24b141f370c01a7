package chart

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/lmarchal/worklens/internal/aggregate"
)

// TerminalPresenter renders charts as a table plus an ASCII graph.
type TerminalPresenter struct {
	Out io.Writer
}

func NewTerminalPresenter(out io.Writer) *TerminalPresenter {
	return &TerminalPresenter{Out: out}
}

// Render prints one chart. An empty aggregate is announced and skipped
// rather than drawn as an empty frame.
func (p *TerminalPresenter) Render(c Chart) {
	if len(c.Rows) == 0 {
		color.New(color.FgYellow).Fprintf(p.Out, "no data for %q, skipping\n", c.Title)
		return
	}

	title := c.Title
	if c.Unit != "" {
		title = fmt.Sprintf("%s (%s)", c.Title, c.Unit)
	}
	color.New(color.Bold, color.FgCyan).Fprintln(p.Out, title)

	grid := Pivot(c.Rows)
	p.renderTable(grid)
	p.renderGraph(grid, c)
	fmt.Fprintln(p.Out)
}

func (p *TerminalPresenter) renderTable(grid Grid) {
	table := tablewriter.NewTable(p.Out,
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	headers := append([]string{"Month"}, grid.Subjects...)
	table.Header(headers)

	for _, bucket := range grid.Buckets {
		row := []string{bucket}
		for _, subject := range grid.Subjects {
			if v, ok := grid.Value(bucket, subject); ok {
				row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
			} else {
				row = append(row, "-")
			}
		}
		table.Append(row)
	}
	table.Render()
}

func (p *TerminalPresenter) renderGraph(grid Grid, c Chart) {
	if len(grid.Buckets) < 2 {
		return
	}

	cumulative := len(c.Rows) > 0 && c.Rows[0].Statistic == aggregate.CumulativeSum

	series := make([][]float64, 0, len(grid.Subjects))
	for _, subject := range grid.Subjects {
		if cumulative {
			series = append(series, grid.SeriesFilled(subject))
		} else {
			series = append(series, grid.Series(subject))
		}
	}

	caption := fmt.Sprintf("%s -> %s", grid.Buckets[0], grid.Buckets[len(grid.Buckets)-1])
	var graph string
	if len(series) == 1 {
		graph = asciigraph.Plot(series[0],
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(caption),
		)
	} else {
		graph = asciigraph.PlotMany(series,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(caption),
		)
	}
	fmt.Fprintln(p.Out, graph)
}
