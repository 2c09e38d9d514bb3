package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/corey/pddl/internal/ports"
	"github.com/spf13/cobra"
)

var associateCmd = &cobra.Command{
	Use:   "associate",
	Short: "Manage explicit file associations",
	Long:  "Explicit associations override name matching and are kept in the association store.",
}

var associateProblemCmd = &cobra.Command{
	Use:   "problem <problem-file> <domain-file>",
	Short: "Associate a problem with a domain file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssociate(cmd, ports.ProblemToDomain, args[0], args[1])
	},
}

var associatePlanCmd = &cobra.Command{
	Use:   "plan <plan-file> <problem-file>",
	Short: "Associate a plan or happenings file with a problem file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssociate(cmd, ports.PlanToProblem, args[0], args[1])
	},
}

var associateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List explicit associations",
	Args:  cobra.NoArgs,
	RunE:  runAssociateList,
}

func runAssociate(cmd *cobra.Command, kind ports.AssociationKind, from, to string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Stop()
	if a.Store == nil {
		return fmt.Errorf("store.path is empty, associations would not persist")
	}
	if _, err := a.Load(context.Background()); err != nil {
		return err
	}

	fromURI, toURI := a.URIFor(from), a.URIFor(to)
	if kind == ports.ProblemToDomain {
		err = a.Workspace.AssociateProblemToDomain(fromURI, toURI)
	} else {
		err = a.Workspace.AssociatePlanToProblem(fromURI, toURI)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s → %s\n", paint(colorGreen, "✓"), a.RelPath(fromURI), a.RelPath(toURI))
	return nil
}

func runAssociateList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Stop()

	out := cmd.OutOrStdout()
	for _, kind := range []ports.AssociationKind{ports.ProblemToDomain, ports.PlanToProblem} {
		m := a.Workspace.Associations(kind)
		keys := make([]string, 0, len(m))
		for from := range m {
			keys = append(keys, from)
		}
		sort.Strings(keys)
		lines := make([]string, len(keys))
		for i, from := range keys {
			lines[i] = a.RelPath(from) + " → " + a.RelPath(m[from])
		}
		fmt.Fprint(out, section(string(kind), lines))
	}
	return nil
}

func init() {
	associateCmd.AddCommand(associateProblemCmd)
	associateCmd.AddCommand(associatePlanCmd)
	associateCmd.AddCommand(associateListCmd)
}
