// Package report renders alert exports for download.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"fleetwatch/internal/model"
)

const sheetName = "Alerts"

var headers = []string{
	"ID", "Kind", "Vehicle", "Status", "Latitude", "Longitude", "Shipment", "Created At", "Updated At",
}

// BuildAlertReport renders the given alerts into an xlsx workbook.
func BuildAlertReport(alerts []model.Alert) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for row, a := range alerts {
		kind := ""
		if a.AlarmConfig != nil {
			kind = string(a.AlarmConfig.Kind)
		}
		shipment := ""
		if a.ShipmentID != nil {
			shipment = fmt.Sprintf("%d", *a.ShipmentID)
		}
		values := []interface{}{
			a.ID,
			kind,
			a.VehicleNo,
			statusName(a.Status),
			a.Lat,
			a.Lon,
			shipment,
			a.CreatedAt.Format(time.RFC3339),
			a.UpdatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

func statusName(s model.AlertStatus) string {
	switch s {
	case model.AlertInactive:
		return "inactive"
	case model.AlertActive:
		return "active"
	case model.AlertManuallyClosed:
		return "manually_closed"
	default:
		return "unknown"
	}
}
