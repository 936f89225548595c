// Package console renders a target state as a markdown table instead of
// writing it to GitHub.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ethanis/nitpicker/pkg/nitpick"
	"github.com/ethanis/nitpicker/pkg/publisher"
)

const maxCommentWidth = 60

// ConsolePublisher prints the planned comment actions.
type ConsolePublisher struct {
	out io.Writer
}

// NewConsolePublisher creates a publisher that writes to out, or stdout when
// out is nil.
func NewConsolePublisher(out io.Writer) *ConsolePublisher {
	if out == nil {
		out = os.Stdout
	}
	return &ConsolePublisher{out: out}
}

// Name returns the provider name.
func (c *ConsolePublisher) Name() string {
	return "console"
}

// Validate accepts every request.
func (c *ConsolePublisher) Validate(publisher.PublishRequest) error {
	return nil
}

func newPlanTable(w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader([]string{"Action", "Comment", "Files"}),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// headline returns the first non-empty line of markdown, shortened to fit a
// table cell.
func headline(markdown string) string {
	line := ""
	for _, l := range strings.Split(markdown, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	line = strings.ReplaceAll(line, "|", "\\|")
	if r := []rune(line); len(r) > maxCommentWidth {
		line = string(r[:maxCommentWidth-3]) + "..."
	}
	return line
}

// Rows returns the plan rows in the order the GitHub publisher acts on them.
func Rows(state nitpick.TargetState) [][]string {
	var rows [][]string
	for _, a := range state.CommentsToAdd {
		rows = append(rows, []string{"add", headline(a.Comment.Markdown), strings.Join(a.Matches, ", ")})
	}
	existing := func(action string, list []nitpick.MatchResult[nitpick.PullRequestComment]) {
		for _, c := range list {
			comment := fmt.Sprintf("#%d %s", c.Comment.ID, headline(c.Comment.Markdown()))
			rows = append(rows, []string{action, comment, strings.Join(c.Matches, ", ")})
		}
	}
	existing("update", state.CommentsToUpdate)
	existing("resolve", state.CommentsToResolve)
	existing("reactivate", state.CommentsToReactivate)
	return rows
}

// Publish writes the plan table and the conclusion.
func (c *ConsolePublisher) Publish(_ context.Context, req publisher.PublishRequest) (publisher.PublishResult, error) {
	result := publisher.PublishResult{
		Provider:   c.Name(),
		Target:     req.Target,
		Conclusion: req.State.Conclusion,
		Actions:    []publisher.PublishAction{},
		Errors:     []publisher.PublishError{},
		Success:    true,
	}

	rows := Rows(req.State)
	if len(rows) == 0 {
		fmt.Fprintln(c.out, "No comment changes.")
	} else {
		table := newPlanTable(c.out)
		for _, row := range rows {
			_ = table.Append(row)
		}
		if err := table.Render(); err != nil {
			result.Success = false
			result.Errors = append(result.Errors, publisher.NewErrorWithAction(err.Error(), publisher.ActionRenderPlan))
			return result, nil
		}
	}
	fmt.Fprintf(c.out, "\nConclusion: %s\n", req.State.Conclusion)

	action := publisher.NewAction(publisher.ActionRenderPlan, fmt.Sprintf("Rendered %d planned actions", len(rows)))
	action.AddMetadata("rows", strconv.Itoa(len(rows)))
	result.Actions = append(result.Actions, action)
	return result, nil
}
