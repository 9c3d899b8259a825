package export

import (
	"testing"
	"time"

	"clientadmin/internal/app/ds"
	"clientadmin/internal/app/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLicenseReport(t *testing.T) {
	views := []state.LicenseView{
		{
			License: ds.License{
				ClientSubscriptionID: 10, ClientCompCode: "C001", MaxAllowedUsers: 25,
				StartDate: "2024-01-10", EndDate: "2024-02-09", IsActive: true,
			},
			Client:       state.Ref{Code: "C001", Label: "Acme", Found: true},
			Product:      state.Ref{ID: 5, Label: "Payroll", Found: true},
			Subscription: state.Ref{ID: 77, Label: "Subscription 77"},
		},
	}

	buf, err := LicenseReport(views)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "License ID", rows[0][0])
	assert.Equal(t, []string{"10", "C001", "Acme", "Payroll", "Subscription 77", "25", "2024-01-10", "2024-02-09", "", "Active"}, rows[1])
}

func TestEmptyReportHasHeaderOnly(t *testing.T) {
	buf, err := LicenseReport(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, time.January, 10, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, "licenses-20240110-083000.xlsx", FileName(at))
}
