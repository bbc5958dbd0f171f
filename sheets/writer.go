package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"michelin-scraper/models"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer writes datasets to Google Sheets, one new tab per write
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
	logger        *zap.Logger
	now           func() time.Time
}

// NewWriter creates a new Google Sheets writer. Credentials are read from
// credentialsPath or, when empty, from GOOGLE_SHEETS_CREDENTIALS.
func NewWriter(ctx context.Context, spreadsheetID string, credentialsPath string, logger *zap.Logger) (*Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	credsJSON, err := readCredentials(credentialsPath)
	if err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
		now:           time.Now,
	}, nil
}

func readCredentials(credentialsPath string) ([]byte, error) {
	var credsJSON []byte

	if credentialsPath != "" {
		data, err := os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		credsJSON = data
	} else {
		credsEnv := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDENTIALS"))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: GOOGLE_SHEETS_CREDENTIALS environment variable is empty or not set")
		}
		credsJSON = []byte(credsEnv)
	}

	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON: %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}
	return credsJSON, nil
}

// Write implements sink.Sink by adding a timestamped tab named after sheetName
func (w *Writer) Write(ctx context.Context, sheetName string, ds models.Dataset) error {
	name := fmt.Sprintf("%s %s", sheetName, w.now().Format("20060102_150405"))
	_, _, err := w.CreateSheetAndWriteRecords(ctx, name, ds)
	return err
}

// CreateSheetAndWriteRecords creates a new sheet at index 0 and writes the
// dataset to it. Returns the sheet name and sheet ID (gid) that was created.
func (w *Writer) CreateSheetAndWriteRecords(ctx context.Context, sheetName string, ds models.Dataset) (string, int64, error) {
	sheetName = sanitizeSheetName(sheetName)

	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: sheetName,
						Index: 0,
					},
				},
			},
		},
	}

	batchUpdateResp, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, batchUpdateRequest).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	var sheetID int64
	if len(batchUpdateResp.Replies) > 0 && batchUpdateResp.Replies[0].AddSheet != nil {
		sheetID = batchUpdateResp.Replies[0].AddSheet.Properties.SheetId
	}
	w.logger.Info("created sheet", zap.String("sheet", sheetName), zap.Int64("sheet_id", sheetID))

	valueRange := &sheets.ValueRange{
		Values: datasetValues(ds),
	}

	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, fmt.Sprintf("'%s'!A1", sheetName), valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to write to sheet: %w", err)
	}

	w.logger.Info("wrote records to Google Sheets",
		zap.String("sheet", sheetName),
		zap.Int("records", ds.Len()))
	return sheetName, sheetID, nil
}

// datasetValues lays out the header row followed by one row per record.
// Unknown values become empty cells.
func datasetValues(ds models.Dataset) [][]interface{} {
	values := make([][]interface{}, 0, ds.Len()+1)

	header := make([]interface{}, len(models.Columns))
	for i, c := range models.Columns {
		header[i] = c
	}
	values = append(values, header)

	for i := 0; i < ds.Len(); i++ {
		row := ds.Row(i)
		for j, v := range row {
			if v == nil {
				row[j] = ""
			}
		}
		values = append(values, row)
	}
	return values
}

// sanitizeSheetName removes invalid characters from sheet name
func sanitizeSheetName(name string) string {
	// Google Sheets sheet names cannot contain: / \ ? * [ ]
	invalidChars := []string{"/", "\\", "?", "*", "[", "]", "'"}
	result := name
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if r := []rune(result); len(r) > 100 {
		result = string(r[:100])
	}
	if result == "" {
		result = "Sheet1"
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func ExtractSpreadsheetID(url string) string {
	// https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit?usp=sharing
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		return ""
	}

	idPart := parts[1]
	if idx := strings.Index(idPart, "/"); idx != -1 {
		idPart = idPart[:idx]
	}
	if idx := strings.Index(idPart, "?"); idx != -1 {
		idPart = idPart[:idx]
	}

	return strings.TrimSpace(idPart)
}

// SheetURL returns a link opening the given tab of the spreadsheet
func SheetURL(spreadsheetURL string, sheetID int64) string {
	spreadsheetID := ExtractSpreadsheetID(spreadsheetURL)
	if spreadsheetID == "" {
		return spreadsheetURL
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", spreadsheetID, sheetID)
}
