package main

import (
	"github.com/spf13/cobra"

	"github.com/polzovatel/mmid-page-model/internal/output"
	"github.com/polzovatel/mmid-page-model/internal/session"
	"github.com/polzovatel/mmid-page-model/internal/tree"
)

type injectResult struct {
	Highest int `json:"highest" yaml:"highest"`
}

func newInjectCmd(a *app) *cobra.Command {
	var pf pageFlags
	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Tag interactive elements and print the highest identifier (-1 if none)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := a.open(cmd.Context(), pf)
			if err != nil {
				return err
			}
			defer op.close()
			high, err := a.svc.InjectIdentifiers(cmd.Context(), op.page)
			if err != nil {
				return err
			}
			if err := op.writeHTML(pf.out); err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), a.format, injectResult{Highest: high})
		},
	}
	pf.register(cmd)
	pf.registerOut(cmd)
	return cmd
}

func newTreeCmd(a *app) *cobra.Command {
	var (
		pf         pageFlags
		onlyInputs bool
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the pruned tree of identified elements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := a.open(cmd.Context(), pf)
			if err != nil {
				return err
			}
			defer op.close()
			root := a.svc.BuildTree(cmd.Context(), op.page, tree.Options{OnlyInputFields: onlyInputs})
			return output.Print(cmd.OutOrStdout(), a.format, root)
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&onlyInputs, "only-inputs", false, "Keep only form and input nodes")
	return cmd
}

func newFieldsCmd(a *app) *cobra.Command {
	var pf pageFlags
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Tag the page and print its form controls keyed by identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := a.open(cmd.Context(), pf)
			if err != nil {
				return err
			}
			defer op.close()
			if _, err := a.svc.InjectIdentifiers(cmd.Context(), op.page); err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), a.format, a.svc.GetFields(cmd.Context(), op.page))
		},
	}
	pf.register(cmd)
	return cmd
}

type cleanupResult struct {
	Remaining int `json:"remaining" yaml:"remaining"`
}

func newCleanupCmd(a *app) *cobra.Command {
	var pf pageFlags
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove identifiers and debug borders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := a.open(cmd.Context(), pf)
			if err != nil {
				return err
			}
			defer op.close()
			if err := a.svc.CleanupIdentifiers(cmd.Context(), op.page); err != nil {
				return err
			}
			if err := op.writeHTML(pf.out); err != nil {
				return err
			}
			remaining := 0
			if op.html != nil {
				remaining = len(op.html.Document().WithAttr(session.Attribute))
			}
			return output.Print(cmd.OutOrStdout(), a.format, cleanupResult{Remaining: remaining})
		},
	}
	pf.register(cmd)
	pf.registerOut(cmd)
	return cmd
}
