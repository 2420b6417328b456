package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"equipbook/internal/models"
	"equipbook/internal/report"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsService mirrors the usage report into one sheet of a spreadsheet.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// TestConnection reads the first cell of the usage sheet.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.cells("A1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ServiceAccountEmail returns the address the spreadsheet must be shared with.
func ServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}
	return creds.ClientEmail, nil
}

// ReplaceUsageSheet clears the sheet and rewrites it with a title line, the
// report header and one line per row.
func (s *SheetsService) ReplaceUsageSheet(ctx context.Context, window models.DateRange, rows []models.ReportRow) error {
	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, s.cells("A:Z"), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to clear usage sheet: %w", err)
	}

	values := make([][]interface{}, 0, len(rows)+2)
	values = append(values,
		[]interface{}{fmt.Sprintf("Equipment usage %s to %s", window.Start, window.End)},
		toCells(report.Header),
	)
	for _, row := range rows {
		values = append(values, toCells(report.Record(row)))
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.cells("A1"), &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write usage sheet: %w", err)
	}

	return s.formatSheet(ctx)
}

// formatSheet freezes the title and header lines and sizes the columns.
func (s *SheetsService) formatSheet(ctx context.Context) error {
	sheetID, err := s.GetSheetIDByName(ctx, s.sheetName)
	if err != nil {
		return err
	}

	widths := []int64{120, 220, 200, 110, 110, 320}
	requests := []*sheets.Request{{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:        sheetID,
				GridProperties: &sheets.GridProperties{FrozenRowCount: 2},
			},
			Fields: "gridProperties.frozenRowCount",
		},
	}}
	for i, px := range widths {
		requests = append(requests, &sheets.Request{
			UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: int64(i),
					EndIndex:   int64(i + 1),
				},
				Properties: &sheets.DimensionProperties{PixelSize: px},
				Fields:     "pixelSize",
			},
		})
	}

	_, err = s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to format usage sheet: %w", err)
	}
	return nil
}

// GetSheetIDByName resolves a sheet title to its numeric id.
func (s *SheetsService) GetSheetIDByName(ctx context.Context, sheetName string) (int64, error) {
	spreadsheet, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to get spreadsheet: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetName {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet '%s' not found", sheetName)
}

// cells builds an A1 range on the usage sheet, quoting the title if needed.
func (s *SheetsService) cells(rng string) string {
	return quoteSheet(s.sheetName) + "!" + rng
}

func quoteSheet(name string) string {
	plain := name != ""
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			plain = false
			break
		}
	}
	if plain {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toCells(record []string) []interface{} {
	out := make([]interface{}, len(record))
	for i, v := range record {
		out[i] = v
	}
	return out
}
