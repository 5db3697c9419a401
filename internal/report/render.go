package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-rl/internal/types"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	cellStyle     = lipgloss.NewStyle().PaddingRight(2)
	gainStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	lossStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	footnoteStyle = lipgloss.NewStyle().Faint(true)
)

var columns = []string{"Episode", "Epsilon", "Steps", "Explore", "Buy", "Sell", "Hold", "Final Value", "P/L", "Buy&Hold"}

// Render formats stats as a terminal table followed by the run aggregate.
func Render(stats []types.EpisodeStats) string {
	if len(stats) == 0 {
		return footnoteStyle.Render("no episodes")
	}

	rows := make([][]string, 0, len(stats)+1)
	rows = append(rows, columns)

	for _, s := range stats {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.Episode),
			fmt.Sprintf("%.3f", s.Epsilon),
			fmt.Sprintf("%d", s.Steps),
			formatPercent(s.ExplorationRate),
			fmt.Sprintf("%d", s.BuyCount),
			fmt.Sprintf("%d", s.SellCount),
			fmt.Sprintf("%d", s.HoldCount),
			fmt.Sprintf("%.2f", s.FinalValue),
			formatPercent(s.ProfitLoss),
			formatPercent(s.BuyAndHoldPnl),
		})
	}

	widths := make([]int, len(columns))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Run %s  %s", stats[0].RunID, stats[0].Symbol)))
	b.WriteString("\n\n")

	for r, row := range rows {
		cells := make([]string, len(row))

		for i, cell := range row {
			style := cellStyle.Width(widths[i] + 2)

			switch {
			case r == 0:
				cells[i] = style.Inherit(headerStyle).Render(cell)
			case i == 8:
				cells[i] = style.Inherit(pnlStyle(stats[r-1].ProfitLoss)).Render(cell)
			default:
				cells[i] = style.Render(cell)
			}
		}

		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	agg := Aggregated(stats)
	b.WriteString("\n")
	b.WriteString(footnoteStyle.Render(fmt.Sprintf(
		"episodes %d  mean P/L %s  mean exploration %s  best #%d  worst #%d",
		agg.Episodes,
		formatPercent(agg.MeanProfitLoss),
		formatPercent(agg.MeanExplorationRate),
		agg.BestEpisode,
		agg.WorstEpisode,
	)))

	return b.String()
}

func pnlStyle(pnl float64) lipgloss.Style {
	switch {
	case pnl > 0:
		return gainStyle
	case pnl < 0:
		return lossStyle
	default:
		return lipgloss.NewStyle()
	}
}

func formatPercent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}
