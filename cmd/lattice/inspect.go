package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [workflow-id]",
	Short: "Show a readable summary of stored workflows",
	Long:  `Without arguments, lists the stored workflow IDs. With an ID, prints a markdown report of its nodes and connections, rendered for the terminal when one is attached.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		store, closer, err := openStore(cfg)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer closer.Close()

		isTTY := term.IsTerminal(int(os.Stdout.Fd()))
		if isTTY {
			tui.PrintBanner()
		}

		ctx := context.Background()
		var md string
		if len(args) == 0 {
			ids, err := store.List(ctx)
			if err != nil {
				fmt.Printf("Error listing workflows: %v\n", err)
				os.Exit(1)
			}
			md = listMarkdown(ids)
		} else {
			wf, err := store.Load(ctx, args[0])
			if err != nil {
				fmt.Printf("Error loading workflow: %v\n", err)
				os.Exit(1)
			}
			md = workflowMarkdown(wf)
		}

		if isTTY {
			render := tui.NewRenderer()
			out, err := render(md)
			if err == nil {
				fmt.Print(out)
				return
			}
		}
		fmt.Print(md)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func listMarkdown(ids []string) string {
	var sb strings.Builder
	sb.WriteString("# Workflows\n\n")
	if len(ids) == 0 {
		sb.WriteString("_No workflows stored yet._\n")
		return sb.String()
	}
	for _, id := range ids {
		fmt.Fprintf(&sb, "- `%s`\n", id)
	}
	return sb.String()
}

func workflowMarkdown(wf *domain.Workflow) string {
	var sb strings.Builder
	title := wf.Name
	if title == "" {
		title = wf.ID
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "%d nodes, %d connections\n\n", len(wf.Nodes), len(wf.Connections))

	sb.WriteString("## Nodes\n\n")
	sb.WriteString("| ID | Type | Position | In | Out |\n")
	sb.WriteString("|----|------|----------|----|-----|\n")
	for _, n := range wf.Nodes {
		fmt.Fprintf(&sb, "| `%s` | %s | (%.0f, %.0f) | %d | %d |\n",
			n.ID, n.Type, n.Position.X, n.Position.Y, len(n.Inputs), len(n.Outputs))
	}

	if len(wf.Connections) > 0 {
		sb.WriteString("\n## Connections\n\n")
		for _, c := range wf.Connections {
			fmt.Fprintf(&sb, "- `%s.%s` → `%s.%s`\n",
				c.From.NodeID, c.From.Port, c.To.NodeID, c.To.Port)
		}
	}
	return sb.String()
}
