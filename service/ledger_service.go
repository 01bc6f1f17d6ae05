package service

import (
	"fmt"
	"io"

	"github.com/auditpro/document-auditor/dto"
	"github.com/auditpro/document-auditor/utils"
	"go.uber.org/zap"
)

// LedgerService loads the summary sheet the documents are audited against.
type LedgerService struct {
	log *zap.Logger
}

func NewLedgerService(log *zap.Logger) *LedgerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerService{log: log}
}

// Load parses a CSV, XLSX or XLS file into rows.
func (s *LedgerService) Load(filename string, r io.Reader) ([]dto.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	rows, err := utils.ParseLedger(filename, data)
	if err != nil {
		s.log.Warn("Ledger rejected", zap.String("file", filename), zap.Error(err))
		return nil, err
	}

	var columns int
	if len(rows) > 0 {
		columns = len(rows[0].Columns)
	}
	s.log.Info("Ledger loaded",
		zap.String("file", filename),
		zap.Int("rows", len(rows)),
		zap.Int("columns", columns),
	)
	return rows, nil
}

// Columns returns every column seen across the rows in first-seen order.
func Columns(rows []dto.Row) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		for _, col := range row.Columns {
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			out = append(out, col)
		}
	}
	return out
}
