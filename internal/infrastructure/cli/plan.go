package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
	"github.com/felixgeelhaar/taskforce/pkg/flow"
)

const selectPrompt = "Select subtasks to complete (enter numbers separated by commas, or 'all'):"

var (
	planSelect string
	planJSON   bool
)

var planCmd = &cobra.Command{
	Use:   "plan <description...>",
	Short: "Decompose a task, select subtasks and print the overall structure",
	Long: `Plan fetches subtasks for the description, selects the ones named by
--select (1-based numbers or 'all') and prints the overall structure for
the selection. Without --select the subtasks are listed and the selection
is read from standard input.`,
	Example: `  taskforce plan "Plan a birthday party" --select 1,3
  taskforce plan "Write a conference talk" --select all`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := newController()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		snap, err := fetchSubtasks(ctx, ctrl, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if len(snap.Subtasks) == 0 {
			_, _ = fmt.Fprintln(out, "No subtasks returned.")
			return nil
		}

		input := planSelect
		if !cmd.Flags().Changed("select") {
			printSubtasks(out, snap.Subtasks)
			_, _ = fmt.Fprintln(out, selectPrompt)
			input, err = readLine(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read selection: %w", err)
			}
		}

		indices, err := parseSelection(input, len(snap.Subtasks))
		if err != nil {
			return err
		}
		for _, i := range indices {
			if err := ctrl.ToggleSelection(i); err != nil {
				return err
			}
		}

		snap, err = fetchStructure(ctx, ctrl)
		if err != nil {
			return err
		}
		if planJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(snap.Structure)
		}
		printStructure(out, snap.Structure)
		return nil
	},
}

// parseSelection converts a comma separated list of 1-based subtask numbers,
// or "all", into 0-based indices. Duplicates are collapsed.
func parseSelection(input string, n int) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, flow.ErrEmptySelection
	}
	if strings.EqualFold(input, "all") {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	var out []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return nil, NewCLIError(fmt.Sprintf("%q is not a subtask number", part), "Use numbers separated by commas, e.g. 1,3", err)
		}
		if num < 1 || num > n {
			return nil, fmt.Errorf("%w: %d (have %d subtasks)", flow.ErrInvalidIndex, num, n)
		}
		out = append(out, num-1)
	}
	out = task.SortedIndices(out)
	if len(out) == 0 {
		return nil, flow.ErrEmptySelection
	}
	return out, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printStructure(w io.Writer, steps []task.StructureStep) {
	if len(steps) == 0 {
		_, _ = fmt.Fprintln(w, "No structure returned.")
		return
	}
	_, _ = color.New(color.Bold).Fprintln(w, "Overall Structure:")
	for i, step := range steps {
		_, _ = fmt.Fprintf(w, "\n%s %s - %s\n", color.GreenString("%d.", i+1), step.Step, step.TimeEstimate)
		for _, d := range step.Details {
			_, _ = fmt.Fprintf(w, "  - %s\n", d)
		}
	}
}

func init() {
	planCmd.Flags().StringVar(&planSelect, "select", "", "Subtasks to include: comma separated 1-based numbers or 'all'")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the structure as JSON")
	RootCmd.AddCommand(planCmd)
}
