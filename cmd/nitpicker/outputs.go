package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethanis/nitpicker/pkg/publisher"
)

// stepOutput is one name=value line of $GITHUB_OUTPUT.
type stepOutput struct {
	Name  string
	Value string
}

func stepOutputs(result *RunResult) []stepOutput {
	count := func(action string) string {
		return strconv.Itoa(result.Publish.Count(action))
	}
	return []stepOutput{
		{"conclusion", string(result.State.Conclusion)},
		{"added", count(publisher.ActionAddComment)},
		{"updated", count(publisher.ActionUpdateComment)},
		{"resolved", count(publisher.ActionResolveComment)},
		{"reactivated", count(publisher.ActionReactivateComment)},
	}
}

// writeOutputs appends outputs to the file at path.
func writeOutputs(path string, outputs []stepOutput) error {
	var sb strings.Builder
	for _, o := range outputs {
		if strings.ContainsAny(o.Value, "\r\n") {
			return fmt.Errorf("output %s must be a single line", o.Name)
		}
		fmt.Fprintf(&sb, "%s=%s\n", o.Name, o.Value)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open step output file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write step outputs: %w", err)
	}
	return nil
}
