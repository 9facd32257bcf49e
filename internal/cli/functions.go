package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/yaklabco/textsheets/internal/logging"
	"github.com/yaklabco/textsheets/pkg/formula"
)

type functionsFlags struct {
	format string
}

const formatJSON = "json"

// functionInfo represents a built-in function in JSON output.
type functionInfo struct {
	Name        string   `json:"name"`
	Params      []string `json:"params"`
	Returns     string   `json:"returns"`
	Curried     bool     `json:"curried"`
	Description string   `json:"description"`
}

func newFunctionsCommand() *cobra.Command {
	flags := &functionsFlags{}

	cmd := &cobra.Command{
		Use:   "functions [name]",
		Short: "List the built-in formula functions",
		Long: `List the functions available to formulas with their arguments, return type
and a short description. Curried functions can be called with fewer arguments
to get a function back, as in NEXT(quantity, HAS_TYPE("word")).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := formula.References()
			if len(args) == 1 {
				ref, ok := formula.LookupReference(strings.ToUpper(args[0]))
				if !ok {
					return unknownFunctionError(args[0], refs)
				}
				refs = []formula.Reference{ref}
			}

			if flags.format == formatJSON {
				return outputFunctionsJSON(cmd.OutOrStdout(), refs)
			}

			logger := log.NewWithOptions(cmd.OutOrStdout(), log.Options{
				ReportTimestamp: false,
				ReportCaller:    false,
			})
			logger.SetLevel(log.InfoLevel)

			for _, ref := range refs {
				logger.Info(signature(ref),
					logging.FieldReturns, ref.Returns,
					logging.FieldDescription, ref.Description,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")

	return cmd
}

func signature(ref formula.Reference) string {
	return ref.Name + "(" + strings.Join(ref.Params, ", ") + ")"
}

func unknownFunctionError(name string, refs []formula.Reference) error {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}

	ranks := fuzzy.RankFindFold(name, names)
	sort.Sort(ranks)
	if len(ranks) > 0 {
		return fmt.Errorf("%w: unknown function %q (did you mean %s?)", ErrInvalidUsage, name, ranks[0].Target)
	}
	return fmt.Errorf("%w: unknown function %q", ErrInvalidUsage, name)
}

// outputFunctionsJSON outputs the functions as a JSON array.
func outputFunctionsJSON(w io.Writer, refs []formula.Reference) error {
	infos := make([]functionInfo, 0, len(refs))
	for _, ref := range refs {
		params := ref.Params
		if params == nil {
			params = []string{}
		}
		infos = append(infos, functionInfo{
			Name:        ref.Name,
			Params:      params,
			Returns:     ref.Returns,
			Curried:     ref.Curried,
			Description: ref.Description,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding functions: %w", err)
	}
	return nil
}
