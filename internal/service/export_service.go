package service

import (
	"bytes"
	"context"
	"fmt"

	"procurement/internal/repository"
	"procurement/pkg/api"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Richieste"

var exportHeaders = []string{
	"ID", "Richiedente", "Categoria", "Quantità", "Costo", "Motivazione",
	"Data richiesta", "Stato", "Data decisione", "Approvatore",
}

// ExportService renders purchase requests as a spreadsheet.
type ExportService interface {
	ExportRequests(ctx context.Context, actor Actor) (*bytes.Buffer, error)
}

type exportService struct {
	requests   repository.PurchaseRequestRepository
	categories repository.CategoryRepository
}

func NewExportService(requests repository.PurchaseRequestRepository, categories repository.CategoryRepository) ExportService {
	return &exportService{requests: requests, categories: categories}
}

func (s *exportService) ExportRequests(ctx context.Context, actor Actor) (*bytes.Buffer, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}

	requests, err := s.requests.List(ctx, repository.RequestFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchase requests: %w", err)
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID.String()] = c.Description
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("failed to close workbook")
		}
	}()

	sheet := f.GetSheetName(0)
	if err := writeExportHeader(f, sheet); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range toPurchaseRequests(requests) {
		if err := writeExportRow(f, sheet, i+2, r, names[r.CategoryID]); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SetSheetName(sheet, exportSheet); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func writeExportHeader(f *excelize.File, sheet string) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(exportHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", style); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return err
	}
	return f.SetSheetRow(sheet, "A1", &exportHeaders)
}

func writeExportRow(f *excelize.File, sheet string, row int, r api.PurchaseRequest, category string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	decidedAt, approver := "", ""
	if r.DecidedAt != nil {
		decidedAt = r.DecidedAt.Format("02/01/2006 15:04")
	}
	if r.Approver != nil {
		approver = r.Approver.Name()
	}
	cost, _ := r.Cost.Float64()

	values := []interface{}{
		r.ID,
		r.Owner.Name(),
		category,
		r.Quantity,
		cost,
		r.Justification,
		r.RequestedAt.Format("02/01/2006 15:04"),
		r.Status,
		decidedAt,
		approver,
	}
	return f.SetSheetRow(sheet, cell, &values)
}
