// Package export renders the ranked cohort as an XLSX report for external
// presentation collaborators. Imputed cells are highlighted, and a second
// sheet lists their provenance.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/okian/gradefill/internal/domain/model"
)

// Sheet names of the generated workbook.
const (
	rankingSheet    = "Ranking"
	provenanceSheet = "Provenance"
)

// imputedFillColor marks cells that were filled by the engine.
const imputedFillColor = "FFF2CC"

// Ranking builds the XLSX report and returns its bytes. Column order
// follows the declared slot-outer, subject-inner order; row order is the
// cohort's ranking order.
func Ranking(cohort []*model.StudentRecord, slots []model.TimeSlot, subjects []model.Subject) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rankingSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	imputedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{imputedFillColor}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	header := []any{"Rank", "ID", "Name"}
	for _, slot := range slots {
		for i := range subjects {
			header = append(header, slot.Label+" "+subjects[i].Name)
		}
	}
	header = append(header, "Final Score")
	if err := f.SetSheetRow(rankingSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for rank, st := range cohort {
		row := rank + 2
		values := []any{rank + 1, st.ID, st.Name}
		for _, slot := range slots {
			for i := range subjects {
				if v, ok := st.Value(slot.ID, subjects[i].ID); ok {
					values = append(values, v)
				} else {
					values = append(values, nil)
				}
			}
		}
		values = append(values, st.FinalScore)
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(rankingSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}

		// Highlight imputed cells.
		col := 4
		for _, slot := range slots {
			for i := range subjects {
				key := model.CellKey{Slot: slot.ID, Subject: subjects[i].ID}
				if _, imputed := st.Details[key]; imputed {
					name, err := excelize.CoordinatesToCellName(col, row)
					if err != nil {
						return nil, fmt.Errorf("cell name: %w", err)
					}
					if err := f.SetCellStyle(rankingSheet, name, name, imputedStyle); err != nil {
						return nil, fmt.Errorf("style cell %s: %w", name, err)
					}
				}
				col++
			}
		}
	}

	if err := writeProvenance(f, cohort, slots, subjects); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeProvenance lists every imputed cell with its gap type and method, in
// the same deterministic order the engine processed them.
func writeProvenance(f *excelize.File, cohort []*model.StudentRecord, slots []model.TimeSlot, subjects []model.Subject) error {
	if _, err := f.NewSheet(provenanceSheet); err != nil {
		return fmt.Errorf("create provenance sheet: %w", err)
	}
	header := []any{"Student", "Time Slot", "Subject", "Gap Type", "Method", "Value"}
	if err := f.SetSheetRow(provenanceSheet, "A1", &header); err != nil {
		return fmt.Errorf("write provenance header: %w", err)
	}

	row := 2
	for _, slot := range slots {
		for i := range subjects {
			key := model.CellKey{Slot: slot.ID, Subject: subjects[i].ID}
			for _, st := range cohort {
				d, ok := st.Details[key]
				if !ok {
					continue
				}
				values := []any{st.Name, slot.Label, subjects[i].Name, string(d.Gap), d.Method, d.Value}
				cell, err := excelize.CoordinatesToCellName(1, row)
				if err != nil {
					return fmt.Errorf("cell name: %w", err)
				}
				if err := f.SetSheetRow(provenanceSheet, cell, &values); err != nil {
					return fmt.Errorf("write provenance row %d: %w", row, err)
				}
				row++
			}
		}
	}
	return nil
}
