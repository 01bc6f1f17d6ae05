package main

import (
	"fmt"

	"github.com/auditpro/document-auditor/dto"
	"github.com/auditpro/document-auditor/render"
	"github.com/auditpro/document-auditor/service"
	"github.com/spf13/cobra"
)

func newAuditCommand(d deps, verbose *bool) *cobra.Command {
	var (
		ledgerPath string
		docPaths   []string
		asJSON     bool
		model      string
	)

	cmd := &cobra.Command{
		Use:   "audit [document...]",
		Short: "Compare every ledger row with its matching document",
		Long: `Loads the ledger (CSV, XLSX or XLS) and the documents, matches each row to a
document by its Invoice No. or B/E No. and asks the extraction model to compare
the values. Results are printed as soon as each row is done.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := d.loadConfig()
			if model != "" {
				cfg.GeminiModel = model
			}
			log := d.newLogger(*verbose)
			defer func() { _ = log.Sync() }()

			rows, docs, err := loadInputs(cmd.Context(), log, ledgerPath, append(docPaths, args...))
			if err != nil {
				return err
			}
			if len(rows) == 0 || len(docs) == 0 {
				return dto.ErrNothingToAudit
			}

			out := cmd.OutOrStdout()
			colorize := !asJSON && shouldColorize(out)

			svc := service.NewAuditService(d.newExtractor(cfg), cfg, log)
			report, err := svc.RunAudit(cmd.Context(), rows, docs, func(o dto.RowOutcome) {
				if asJSON {
					_ = writeNDJSON(out, o)
					return
				}
				if o.Err != nil {
					fmt.Fprintf(out, "Row %d (%s, %s): audit failed: %s\n\n",
						o.Err.RowNumber, o.Err.InvoiceNo, o.Err.DocumentMatched, o.Err.Message)
					return
				}
				fmt.Fprintln(out, render.ResultDetail(*o.Result, colorize))
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeNDJSON(out, report)
			}
			for _, line := range sectionHeader("Summary", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, render.ResultList(report.Results, colorize))
			if len(report.Failures) > 0 {
				fmt.Fprintln(out, render.FailureList(report.Failures))
			}
			fmt.Fprintln(out, render.ReportSummary(report))
			return nil
		},
	}

	cmd.Flags().StringVarP(&ledgerPath, "ledger", "l", "", "Summary sheet (.csv, .xlsx, .xls)")
	cmd.Flags().StringSliceVarP(&docPaths, "docs", "d", nil, "Source documents (PDF or images)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit one JSON object per row, then the report")
	cmd.Flags().StringVar(&model, "model", "", "Override the extraction model")
	_ = cmd.MarkFlagRequired("ledger")
	return cmd
}
