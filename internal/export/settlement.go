package export

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/traveldesk/reisekosten/internal/application/port"
)

// SettlementExporter writes an Excel settlement sheet for fully approved
// requests, the hand-off artifact for the archival/payout step downstream.
type SettlementExporter struct {
	approvalRepo port.ApprovalRepository
	claimRepo    port.ClaimRepository
	outputDir    string
	companyName  string
	logger       *zap.Logger
}

// NewSettlementExporter creates a new settlement exporter
func NewSettlementExporter(
	approvalRepo port.ApprovalRepository,
	claimRepo port.ClaimRepository,
	outputDir, companyName string,
	logger *zap.Logger,
) *SettlementExporter {
	return &SettlementExporter{
		approvalRepo: approvalRepo,
		claimRepo:    claimRepo,
		outputDir:    outputDir,
		companyName:  companyName,
		logger:       logger,
	}
}

// Export writes the settlement workbook for a company's approved requests
// and returns the generated file path.
func (e *SettlementExporter) Export(ctx context.Context, companyID string, asOf time.Time) (string, error) {
	requests, err := e.approvalRepo.List(ctx, companyID, "APPROVED", 0, 0)
	if err != nil {
		return "", fmt.Errorf("load approved requests: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	setCell := func(cell string, value interface{}) {
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			e.logger.Error("Failed to set cell", zap.String("cell", cell), zap.Error(err))
		}
	}

	setCell("A1", e.companyName)
	setCell("A2", fmt.Sprintf("Expense settlement as of %s", asOf.Format("2006-01-02")))

	headers := []string{"Request", "Employee", "Travel date", "Claim", "Category", "Amount", "Currency"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		setCell(cell, h)
	}

	row := 5
	grandTotal := decimal.Zero
	currency := ""
	for _, req := range requests {
		claims, err := e.claimRepo.GetByIDs(ctx, req.ClaimIDs)
		if err != nil {
			return "", fmt.Errorf("load claims for request %s: %w", req.ID, err)
		}

		for _, c := range claims {
			values := []interface{}{
				req.Title, req.EmployeeID, c.TravelDate.Format("2006-01-02"),
				c.Description, c.Category, c.Amount.InexactFloat64(), c.Currency,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				setCell(cell, v)
			}
			row++
		}

		grandTotal = grandTotal.Add(req.TotalAmount)
		if currency == "" {
			currency = req.Currency
		}
	}

	totalLabelCell, _ := excelize.CoordinatesToCellName(5, row+1)
	totalCell, _ := excelize.CoordinatesToCellName(6, row+1)
	currencyCell, _ := excelize.CoordinatesToCellName(7, row+1)
	setCell(totalLabelCell, "Total")
	setCell(totalCell, grandTotal.InexactFloat64())
	setCell(currencyCell, currency)

	outputPath := filepath.Join(e.outputDir,
		fmt.Sprintf("settlement_%s_%s.xlsx", companyID, asOf.Format("20060102")))
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("save settlement workbook: %w", err)
	}

	e.logger.Info("Settlement exported",
		zap.String("path", outputPath),
		zap.Int("requests", len(requests)))
	return outputPath, nil
}
