package helper

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"fiber/edurisk/app/model"
)

var predictionCSVHeader = []string{
	"Student ID", "Name", "Email", "Risk Level", "Risk Score",
	"GPA", "Attendance", "Prediction Date",
}

// PredictionsCSV renders prediction rows into the export format, one row per
// prediction, dates as date-only ISO.
func PredictionsCSV(predictions []model.PredictionResponse) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(predictionCSVHeader); err != nil {
		return nil, err
	}

	for _, p := range predictions {
		name := "N/A"
		email := "N/A"
		if p.User != nil {
			name = p.User.Name
			email = p.User.Email
		}
		studentNumber := p.StudentNumber
		if studentNumber == "" {
			studentNumber = "N/A"
		}

		row := []string{
			studentNumber,
			name,
			email,
			p.RiskLevel,
			strconv.Itoa(p.RiskScore),
			strconv.FormatFloat(p.GPA, 'f', -1, 64),
			strconv.FormatFloat(p.AttendancePct, 'f', -1, 64),
			p.CreatedAt.UTC().Format("2006-01-02"),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
