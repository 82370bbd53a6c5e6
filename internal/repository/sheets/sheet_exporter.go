// Package sheets appends daily stats snapshots to a bookkeeping spreadsheet.
package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/shopkeeper/internal/config"
	"github.com/mamadbah2/shopkeeper/internal/domain/models"
)

const snapshotWriteRange = "Snapshots!A:I"

// Exporter pushes stats snapshots to an external report sink.
type Exporter interface {
	AppendSnapshot(ctx context.Context, snapshot models.StatsSnapshot) error
}

// GoogleSheetExporter implements Exporter using the official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Google Sheets backed exporter instance.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendSnapshot appends one snapshot as a spreadsheet row.
func (e *GoogleSheetExporter) AppendSnapshot(ctx context.Context, snapshot models.StatsSnapshot) error {
	values := []interface{}{
		snapshot.Date.Format("2006-01-02"),
		snapshot.UserID,
		snapshot.Stats.TotalProfit,
		snapshot.Stats.ProfitableDeals,
		snapshot.Stats.LossDeals,
		snapshot.Stats.NearExpiryItems,
		snapshot.Stats.ExpiredItems,
		snapshot.Stats.TotalPendingDues,
		snapshot.Stats.OverdueDues,
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, snapshotWriteRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append snapshot row: %w", err)
	}

	e.logger.Debug("snapshot row appended to sheet", zap.String("user_id", snapshot.UserID))
	return nil
}
