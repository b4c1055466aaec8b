// Package export renders dashboard listings as spreadsheets.
package export

import (
	"io"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/xuri/excelize/v2"
)

// UsersSheet is the sheet name of the users export
const UsersSheet = "Users"

// ContentType is the MIME type of the workbooks produced here
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var userHeaders = []string{"User ID", "Username", "Email", "First name", "Trust score"}

// UsersWorkbook builds a workbook with one row per user under a bold header
func UsersWorkbook(users []models.User) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", UsersSheet); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "Failed to create users sheet")
	}

	for col, header := range userHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(UsersSheet, cell, header); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "Failed to write users header")
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "Failed to style users header")
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(userHeaders), 1)
	if err := f.SetCellStyle(UsersSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "Failed to style users header")
	}

	for i, user := range users {
		row := []interface{}{user.UserID.String(), user.Username, user.Email, user.FirstName, user.TrustScore}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(UsersSheet, cell, &row); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeInternal, "Failed to write user row %d", i+1)
		}
	}

	_ = f.SetColWidth(UsersSheet, "A", "E", 20)
	return f, nil
}

// WriteUsers streams the users workbook to w
func WriteUsers(w io.Writer, users []models.User) error {
	f, err := UsersWorkbook(users)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "Failed to write users export")
	}
	return nil
}
