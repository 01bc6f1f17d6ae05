package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/auditpro/document-auditor/dto"
	"github.com/auditpro/document-auditor/service"
	"go.uber.org/zap"
)

// loadInputs reads the ledger and the documents named on the command line.
func loadInputs(ctx context.Context, log *zap.Logger, ledgerPath string, docPaths []string) ([]dto.Row, []dto.FileData, error) {
	f, err := os.Open(ledgerPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	rows, err := service.NewLedgerService(log).Load(filepath.Base(ledgerPath), f)
	if err != nil {
		return nil, nil, err
	}

	files := make([]service.UploadedFile, 0, len(docPaths))
	for _, p := range docPaths {
		uf, err := service.FromPath(p)
		if err != nil {
			return nil, nil, fmt.Errorf("document %s: %w", p, err)
		}
		files = append(files, uf)
	}

	docs, err := service.NewDocumentService(service.NewPDFProcessor(), service.NewBarcodeReader(), log).LoadBatch(ctx, files)
	if err != nil {
		return nil, nil, err
	}
	return rows, docs, nil
}
