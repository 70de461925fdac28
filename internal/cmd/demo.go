package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/openmesh-labs/agora/internal/agent"
	"github.com/openmesh-labs/agora/internal/coordination"
	"github.com/openmesh-labs/agora/internal/server"
	"github.com/openmesh-labs/agora/internal/task"
)

var (
	demoTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1)

	demoHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	demoOKStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	demoFailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	demoCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run an in-process coordination demonstration",
	Long: `Registers three scripted agents and runs one task through each
coordination pattern (hierarchical, peer-to-peer, market-based), printing a
summary of the outcomes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		coordinator := coordination.New()
		stop := make(chan struct{})
		defer close(stop)

		bids := map[string]float64{"scout": 0.3, "analyst": 0.9, "scribe": 0.5}
		for id, bid := range bids {
			id := id
			a := agent.NewFuncAgent(
				agent.Info{
					ID:           id,
					Name:         id,
					Capabilities: []agent.Capability{agent.CapabilityReasoning},
				},
				func(_ context.Context, input any) (any, error) {
					return fmt.Sprintf("%s's answer to %v", id, input), nil
				},
			)
			coordinator.Registry().Register(a)
			go server.RunResponder(coordinator, a, bid, stop)
		}

		patterns := []string{
			coordination.PatternHierarchical,
			coordination.PatternPeerToPeer,
			coordination.PatternMarketBased,
		}

		rows := make([][3]string, 0, len(patterns))
		for _, name := range patterns {
			t := coordinator.CreateTask("demo-"+name, "demonstration task", "the demo question")
			r, err := coordinator.CoordinateTask(t.ID, name, coordination.ChannelDirect)
			if err != nil {
				return fmt.Errorf("coordinating %s: %w", name, err)
			}
			rows = append(rows, [3]string{name, r.Status.String(), summarize(r)})
		}

		fmt.Println(renderDemo(rows))
		return nil
	},
}

// summarize flattens a result into one table cell.
func summarize(r *task.Result) string {
	if r.Error != "" {
		return r.Error
	}
	out := fmt.Sprintf("%v", r.Output)
	if len(out) > 60 {
		out = out[:57] + "..."
	}
	return out
}

// renderDemo lays the outcome rows out as a lipgloss-styled table.
func renderDemo(rows [][3]string) string {
	var b strings.Builder
	b.WriteString(demoTitleStyle.Render("Agora coordination demo"))
	b.WriteString("\n")

	widths := [2]int{12, 10}
	header := [3]string{"PATTERN", "STATUS", "OUTCOME"}
	for _, row := range append([][3]string{header}, rows...) {
		for i := 0; i < 2; i++ {
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		demoCellStyle.Width(widths[0]+2).Render(demoHeaderStyle.Render(header[0])),
		demoCellStyle.Width(widths[1]+2).Render(demoHeaderStyle.Render(header[1])),
		demoCellStyle.Render(demoHeaderStyle.Render(header[2])),
	))
	b.WriteString("\n")

	for _, row := range rows {
		status := demoOKStyle
		if row[1] != task.StatusCompleted.String() {
			status = demoFailStyle
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			demoCellStyle.Width(widths[0]+2).Render(row[0]),
			demoCellStyle.Width(widths[1]+2).Render(status.Render(row[1])),
			demoCellStyle.Render(row[2]),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
