// Package export maps filtered attendance records to spreadsheet rows and
// encodes them as an xlsx workbook.
package export

import (
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"attendancelist/internal/apperrors"
	"attendancelist/internal/records"
)

const (
	FileName    = "attendance.xlsx"
	SheetName   = "Attendance"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// DateTimeLayout matches the en-US locale rendering admins see in the table.
	DateTimeLayout = "1/2/2006, 3:04:05 PM"
	DateLayout     = "1/2/2006"
)

// Header is the fixed column order of the export.
var Header = []string{
	"S.No", "Name", "Gender", "Email", "College", "Branch", "Phone", "Slot",
	"Attendance", "Attendance Date", "Registration Date",
}

// Row is one exported line.
type Row struct {
	SNo              int
	Name             string
	Gender           string
	Email            string
	College          string
	Branch           string
	Phone            string
	Slot             string
	Attendance       string
	AttendanceDate   string
	RegistrationDate string
}

// Values returns the cells of r in Header order.
func (r Row) Values() []any {
	return []any{
		r.SNo, r.Name, r.Gender, r.Email, r.College, r.Branch, r.Phone, r.Slot,
		r.Attendance, r.AttendanceDate, r.RegistrationDate,
	}
}

// Rows maps records to export rows, keeping their order.
func Rows(recs []records.Record, loc *time.Location) []Row {
	out := make([]Row, 0, len(recs))
	for i, r := range recs {
		out = append(out, Row{
			SNo:              i + 1,
			Name:             r.Name,
			Gender:           r.Gender,
			Email:            r.Email,
			College:          r.College,
			Branch:           r.Branch,
			Phone:            r.Phone,
			Slot:             r.Slot,
			Attendance:       YesNo(r.Attendance),
			AttendanceDate:   FormatDateTime(r.AttendanceDate, loc),
			RegistrationDate: FormatDateTime(r.RegistrationDate, loc),
		})
	}
	return out
}

func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// FormatDateTime renders t in loc, or "" when t is nil.
func FormatDateTime(t *time.Time, loc *time.Location) string {
	return format(t, loc, DateTimeLayout)
}

// FormatDate renders the calendar day of t in loc, or "" when t is nil.
func FormatDate(t *time.Time, loc *time.Location) string {
	return format(t, loc, DateLayout)
}

func format(t *time.Time, loc *time.Location, layout string) string {
	if t == nil {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(layout)
}

// WriteXLSX writes a single-sheet workbook with a header row and one row per
// record to w.
func WriteXLSX(w io.Writer, recs []records.Record, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return &apperrors.ExportError{Stage: "sheet", Err: err}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return &apperrors.ExportError{Stage: "style", Err: err}
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return &apperrors.ExportError{Stage: "stream", Err: err}
	}
	if err := sw.SetColWidth(2, len(Header), 20); err != nil {
		return &apperrors.ExportError{Stage: "stream", Err: err}
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return &apperrors.ExportError{Stage: "encode", Err: err}
	}

	for i, row := range Rows(recs, loc) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return &apperrors.ExportError{Stage: "encode", Err: err}
		}
		if err := sw.SetRow(cell, row.Values()); err != nil {
			return &apperrors.ExportError{Stage: "encode", Err: err}
		}
	}
	if err := sw.Flush(); err != nil {
		return &apperrors.ExportError{Stage: "encode", Err: err}
	}

	if err := f.Write(w); err != nil {
		return &apperrors.ExportError{Stage: "write", Err: err}
	}
	return nil
}
