// Package codec reads and writes the wide-table CSV exchanged with external
// import/export collaborators. The header layout
//
//	ID,<slotID>_<subjectID>,...
//
// is the only externally observable format contract; Header is the single
// source of truth for it. Absent cells travel as empty fields (a "-" is also
// accepted on input), never as 0.
package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/gradefill/internal/domain/model"
)

// absentInputMarker is the alternative absent encoding accepted on input.
const absentInputMarker = "-"

// Header generates the column names in declared slot-outer, subject-inner
// order.
func Header(slots []model.TimeSlot, subjects []model.Subject) []string {
	out := make([]string, 0, 1+len(slots)*len(subjects))
	out = append(out, "ID")
	for _, slot := range slots {
		for i := range subjects {
			out = append(out, string(slot.ID)+"_"+string(subjects[i].ID))
		}
	}
	return out
}

// Write encodes the cohort as a wide table in ranking order.
func Write(w io.Writer, cohort []*model.StudentRecord, slots []model.TimeSlot, subjects []model.Subject) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(slots, subjects)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, 0, 1+len(slots)*len(subjects))
	for _, st := range cohort {
		row = row[:0]
		row = append(row, st.ID)
		for _, slot := range slots {
			for i := range subjects {
				if v, ok := st.Value(slot.ID, subjects[i].ID); ok {
					row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
				} else {
					row = append(row, "")
				}
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", st.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Read parses a wide table into student records, validating every column
// against the declared time slots and subjects. Columns may appear in any
// order after ID; a column whose key pair is not declared is rejected.
// Student names default to the id; the JSON API is the channel that carries
// display names.
func Read(r io.Reader, slots []model.TimeSlot, subjects []model.Subject) ([]*model.StudentRecord, error) {
	known := make(map[string]model.CellKey, len(slots)*len(subjects))
	fullMarks := make(map[model.SubjectID]float64, len(subjects))
	for i := range subjects {
		fullMarks[subjects[i].ID] = subjects[i].FullMarks
	}
	for _, slot := range slots {
		for i := range subjects {
			name := string(slot.ID) + "_" + string(subjects[i].ID)
			known[name] = model.CellKey{Slot: slot.ID, Subject: subjects[i].ID}
		}
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeader, err)
	}
	if len(header) == 0 || header[0] != "ID" {
		return nil, fmt.Errorf("%w: first column must be ID", ErrHeader)
	}
	keys := make([]model.CellKey, len(header))
	for i := 1; i < len(header); i++ {
		key, ok := known[header[i]]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, header[i])
		}
		keys[i] = key
	}

	var cohort []*model.StudentRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadRow, line, err)
		}
		if row[0] == "" {
			return nil, fmt.Errorf("%w: line %d: empty student id", ErrBadRow, line)
		}
		st := model.NewStudentRecord(row[0], row[0])
		for i := 1; i < len(row); i++ {
			field := row[i]
			if field == "" || field == absentInputMarker {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %q: %w", ErrBadRow, line, header[i], err)
			}
			if full := fullMarks[keys[i].Subject]; v < 0 || v > full {
				return nil, fmt.Errorf("%w: line %d column %q: %g outside [0, %g]", ErrBadRow, line, header[i], v, full)
			}
			st.SetValue(keys[i].Slot, keys[i].Subject, v)
		}
		cohort = append(cohort, st)
	}
	return cohort, nil
}
