package reportsvc

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/Blanc-byte/gradingsystem/core/grade"
)

// ContentType is the MIME type of the workbooks written by WriteSectionReport.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Grades"

// FileName returns the download name of a section report workbook.
func FileName(rep grade.SectionReport) string {
	return fmt.Sprintf("section-%d-%s.xlsx", rep.Section.ID, rep.Section.SchoolYear)
}

// WriteSectionReport writes rep as a one-sheet workbook: a header block describing the section,
// then one row per student with a column per subject final, the general average and the remarks.
func WriteSectionReport(w io.Writer, rep grade.SectionReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating style")
	}

	sw := sheetWriter{f: f}
	sw.row(1, "Section", rep.Section.Name)
	sw.row(2, "Grade", rep.Section.GradeYear)
	sw.row(3, "School Year", rep.Section.SchoolYear)
	sw.row(4, "Adviser", rep.AdviserName)

	const headerRow = 6
	header := make([]interface{}, 0, len(rep.Subjects)+3)
	header = append(header, "Student")
	for _, sub := range rep.Subjects {
		header = append(header, sub.Name)
	}
	header = append(header, "General Average", "Remarks")
	sw.row(headerRow, header...)

	for i, st := range rep.Students {
		values := make([]interface{}, 0, len(header))
		values = append(values, st.Fullname)
		for _, sub := range rep.Subjects {
			if final, ok := st.Finals[sub.ID]; ok {
				values = append(values, final)
			} else {
				values = append(values, "")
			}
		}
		values = append(values, st.GeneralAverage, st.Remarks)
		sw.row(headerRow+1+i, values...)
	}
	if sw.err != nil {
		return sw.err
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return errors.Wrap(err, "naming last column")
	}
	if err = f.SetCellStyle(sheetName, "A1", "A4", bold); err != nil {
		return errors.Wrap(err, "styling section block")
	}
	if err = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", lastCol, headerRow), bold); err != nil {
		return errors.Wrap(err, "styling header")
	}
	if err = f.SetColWidth(sheetName, "A", "A", 32); err != nil {
		return errors.Wrap(err, "sizing columns")
	}

	if _, err = f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

// sheetWriter keeps the first error hit while filling rows.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (sw *sheetWriter) row(n int, values ...interface{}) {
	if sw.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		sw.err = errors.Wrap(err, "computing cell name")
		return
	}
	if err = sw.f.SetSheetRow(sheetName, cell, &values); err != nil {
		sw.err = errors.Wrapf(err, "writing row %d", n)
	}
}
