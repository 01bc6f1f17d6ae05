package main

import (
	"fmt"
	"strconv"

	"github.com/auditpro/document-auditor/service"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// newMatchCommand shows which document each row would be audited against,
// without calling the extraction model.
func newMatchCommand(d deps, verbose *bool) *cobra.Command {
	var (
		ledgerPath string
		docPaths   []string
	)

	cmd := &cobra.Command{
		Use:   "match [document...]",
		Short: "Show the document chosen for every ledger row",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := d.newLogger(*verbose)
			defer func() { _ = log.Sync() }()

			rows, docs, err := loadInputs(cmd.Context(), log, ledgerPath, append(docPaths, args...))
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Row", "Identifier", "Matched Document", "Candidates"})
			for _, row := range rows {
				m := service.MatchDocument(row, docs)
				var matched string
				switch {
				case m.Skipped():
					matched = "(skipped, no identifier)"
				case m.Document == nil:
					matched = service.NoMatchingDocument
				default:
					matched = m.Document.Name
				}
				identifier := m.Identifier
				if identifier == "" {
					identifier = "-"
				}
				tw.AppendRow(table.Row{strconv.Itoa(row.Line), identifier, matched, len(m.Candidates)})
			}
			tw.SetColumnConfigs([]table.ColumnConfig{
				{Number: 1, Align: text.AlignRight},
				{Number: 4, Align: text.AlignRight},
			})
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return nil
		},
	}

	cmd.Flags().StringVarP(&ledgerPath, "ledger", "l", "", "Summary sheet (.csv, .xlsx, .xls)")
	cmd.Flags().StringSliceVarP(&docPaths, "docs", "d", nil, "Source documents (PDF or images)")
	_ = cmd.MarkFlagRequired("ledger")
	return cmd
}
