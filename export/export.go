// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/claim-ledger/ledger"
	"github.com/danielhkuo/claim-ledger/models"
)

// View selects which rows go into a workbook
type View string

const (
	// ViewLedger exports every stored row
	ViewLedger View = "ledger"
	// ViewLatest exports the latest row of each claim
	ViewLatest View = "latest"
)

const (
	SheetName    = "LOG"
	headerFill   = "1F4E78"
	columnWidth  = 22
	headerHeight = 35
)

// ParseView maps a query value to a View. Empty selects the ledger.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewLedger:
		return ViewLedger, nil
	case ViewLatest:
		return ViewLatest, nil
	}
	return "", fmt.Errorf("unknown export view %q", s)
}

// FileName is the download name of the workbook
func (v View) FileName() string {
	if v == ViewLatest {
		return "Bitacora_UltimoEstatus.xlsx"
	}
	return "Bitacora_Operacion.xlsx"
}

// Rows reduces the ledger to the rows of the view, sorted by claim
func (v View) Rows(rows []models.ClaimRecord) []models.ClaimRecord {
	if v == ViewLatest {
		return ledger.LatestPerClaim(rows)
	}
	out := make([]models.ClaimRecord, len(rows))
	copy(out, rows)
	ledger.SortHistory(out)
	return out
}

type cellKind int

const (
	text cellKind = iota
	date
	timestamp
)

type column struct {
	header string
	kind   cellKind
	value  func(r models.ClaimRecord) string
}

var columns = []column{
	{"# DE SINIESTRO", text, func(r models.ClaimRecord) string { return r.ClaimNumber }},
	{"CORRELATIVO", text, func(r models.ClaimRecord) string { return r.Correlative }},
	{"FECHA SINIESTRO", date, func(r models.ClaimRecord) string { return r.IncidentDate }},
	{"LUGAR SINIESTRO", text, func(r models.ClaimRecord) string { return r.IncidentPlace }},
	{"MEDIO ASIGNACIÓN", text, func(r models.ClaimRecord) string { return r.AssignmentChannel }},
	{"COBERTURA", text, func(r models.ClaimRecord) string { return r.Coverage }},
	{"MARCA", text, func(r models.ClaimRecord) string { return r.Vehicle.Make }},
	{"SUBMARCA", text, func(r models.ClaimRecord) string { return r.Vehicle.Submodel }},
	{"VERSIÓN", text, func(r models.ClaimRecord) string { return r.Vehicle.Version }},
	{"AÑO/MODELO", text, func(r models.ClaimRecord) string { return r.Vehicle.ModelYear }},
	{"NO. SERIE", text, func(r models.ClaimRecord) string { return r.Vehicle.SerialNumber }},
	{"MOTOR", text, func(r models.ClaimRecord) string { return r.Vehicle.EngineNumber }},
	{"PATENTE", text, func(r models.ClaimRecord) string { return r.Vehicle.Plate }},
	{"FECHA CREACIÓN", date, func(r models.ClaimRecord) string { return r.CreatedOn }},
	{"FECHA ESTATUS BITÁCORA", timestamp, func(r models.ClaimRecord) string { return r.StatusAt }},
	{"ESTATUS", text, func(r models.ClaimRecord) string { return r.Status }},
	{"NOMBRE ASEGURADO", text, func(r models.ClaimRecord) string { return r.Insured.Name }},
	{"RUT ASEGURADO", text, func(r models.ClaimRecord) string { return r.Insured.TaxID }},
	{"TIPO DE PERSONA ASEGURADO", text, func(r models.ClaimRecord) string { return r.Insured.PersonType }},
	{"TEL. ASEGURADO", text, func(r models.ClaimRecord) string { return r.Insured.Phone }},
	{"CORREO ASEGURADO", text, func(r models.ClaimRecord) string { return r.Insured.Email }},
	{"DIRECCIÓN ASEGURADO", text, func(r models.ClaimRecord) string { return r.Insured.Address }},
	{"NOMBRE PROPIETARIO", text, func(r models.ClaimRecord) string { return r.Owner.Name }},
	{"RUT PROPIETARIO", text, func(r models.ClaimRecord) string { return r.Owner.TaxID }},
	{"TIPO DE PERSONA PROPIETARIO", text, func(r models.ClaimRecord) string { return r.Owner.PersonType }},
	{"TEL. PROPIETARIO", text, func(r models.ClaimRecord) string { return r.Owner.Phone }},
	{"CORREO PROPIETARIO", text, func(r models.ClaimRecord) string { return r.Owner.Email }},
	{"DIRECCIÓN PROPIETARIO", text, func(r models.ClaimRecord) string { return r.Owner.Address }},
	{"LIQUIDADOR", text, func(r models.ClaimRecord) string { return r.HandlerName }},
	{"CORREO LIQUIDADOR", text, func(r models.ClaimRecord) string { return r.HandlerLogin }},
	{"DRIVE", text, func(r models.ClaimRecord) string { return r.FolderLink }},
	{"COMENTARIO", text, func(r models.ClaimRecord) string { return r.Comment }},
}

// Headers returns the display headers in column order
func Headers() []string {
	h := make([]string, len(columns))
	for i, c := range columns {
		h[i] = c.header
	}
	return h
}

// Build renders rows into a new workbook. The caller closes it.
func Build(rows []models.ClaimRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeSheet(f, rows); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write renders rows as an xlsx document into w
func Write(w io.Writer, rows []models.ClaimRecord) error {
	f, err := Build(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, rows []models.ClaimRecord) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	dateFmt, tsFmt := "yyyy-mm-dd", "yyyy-mm-dd hh:mm:ss"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}
	tsStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &tsFmt})
	if err != nil {
		return fmt.Errorf("failed to create timestamp style: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.header
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetRowHeight(SheetName, 1, headerHeight); err != nil {
		return fmt.Errorf("failed to size header: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, columnWidth); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	for i, r := range rows {
		rowNum := i + 2
		for j, c := range columns {
			cell, err := excelize.CoordinatesToCellName(j+1, rowNum)
			if err != nil {
				return err
			}
			value, style := cellValue(c.kind, c.value(r), dateStyle, tsStyle)
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write %s: %w", cell, err)
			}
			if style != 0 {
				if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
					return fmt.Errorf("failed to style %s: %w", cell, err)
				}
			}
		}
	}
	return nil
}

// cellValue turns parseable date columns into time values so spreadsheet
// tools treat them as dates. Anything else is written as text.
func cellValue(kind cellKind, v string, dateStyle, tsStyle int) (any, int) {
	switch kind {
	case date:
		if t, ok := ledger.ParseDate(v); ok {
			return t, dateStyle
		}
	case timestamp:
		if t, ok := ledger.ParseStatusTime(v); ok {
			return t, tsStyle
		}
	}
	return v, 0
}
