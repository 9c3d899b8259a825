package export

import (
	"bytes"
	"fmt"
	"time"

	"clientadmin/internal/app/state"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Licenses"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []any{
	"License ID", "Client Code", "Client", "Product", "Plan",
	"Max Users", "Start Date", "End Date", "Form Endpoint", "Status",
}

// FileName names a report generated at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("licenses-%s.xlsx", t.UTC().Format("20060102-150405"))
}

// LicenseReport renders resolved licenses as an XLSX workbook.
func LicenseReport(views []state.LicenseView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, v := range views {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		status := "Inactive"
		if v.IsActive {
			status = "Active"
		}
		row := []any{
			v.ClientSubscriptionID, v.ClientCompCode, v.Client.Label, v.Product.Label, v.Subscription.Label,
			v.MaxAllowedUsers, v.StartDate, v.EndDate, v.FormEndPoint, status,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(SheetName, "B", "E", 22); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}
