// Package sheets reads and writes the lead spreadsheet through the Google
// Sheets v4 API.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

const (
	// Columns spans the synced row, A (createdAt) to K (email).
	Columns = "A:K"
	// DocIDColumn is the zero-based index of column C.
	DocIDColumn = 2

	valueInput = "USER_ENTERED"
)

// Config identifies the target spreadsheet.
type Config struct {
	SpreadsheetID   string
	SheetName       string // empty selects the first sheet
	CredentialsFile string
	Endpoint        string
}

// Writer maps leads onto spreadsheet rows.
type Writer struct {
	svc    *gsheets.Service
	cfg    Config
	logger logging.Logger

	mu    sync.Mutex
	sheet string
}

// NewWriter builds a Writer.  Extra options are appended after the ones
// derived from cfg, so tests can swap the transport.
func NewWriter(ctx context.Context, cfg Config, logger logging.Logger, opts ...option.ClientOption) (*Writer, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New(errors.ErrCodeSheetsNotConfigured, "spreadsheet id required")
	}
	var all []option.ClientOption
	if cfg.CredentialsFile != "" {
		all = append(all, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		all = append(all, option.WithEndpoint(cfg.Endpoint))
	}
	all = append(all, opts...)

	svc, err := gsheets.NewService(ctx, all...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSheetsNotConfigured, "create sheets service")
	}
	return &Writer{svc: svc, cfg: cfg, logger: logger, sheet: cfg.SheetName}, nil
}

// SheetName returns the resolved sheet title, looking up the first sheet
// when none is configured.
func (w *Writer) SheetName(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sheet != "" {
		return w.sheet, nil
	}

	ss, err := w.svc.Spreadsheets.Get(w.cfg.SpreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSheetsReadFailed, "read spreadsheet metadata")
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return "", errors.New(errors.ErrCodeSheetsReadFailed, "spreadsheet has no sheets")
	}
	w.sheet = ss.Sheets[0].Properties.Title
	return w.sheet, nil
}

// ReadDocIDRows maps each docId in column C to its 1-based row number.  The
// header row is skipped and blank cells are ignored.
func (w *Writer) ReadDocIDRows(ctx context.Context) (map[string]int, error) {
	sheet, err := w.SheetName(ctx)
	if err != nil {
		return nil, err
	}
	vr, err := w.svc.Spreadsheets.Values.Get(w.cfg.SpreadsheetID, a1(sheet, Columns)).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSheetsReadFailed, "read lead rows").WithDetail("sheet=" + sheet)
	}

	rows := make(map[string]int, len(vr.Values))
	for i := 1; i < len(vr.Values); i++ {
		row := vr.Values[i]
		if len(row) <= DocIDColumn {
			continue
		}
		id := strings.TrimSpace(fmt.Sprint(row[DocIDColumn]))
		if id != "" {
			rows[id] = i + 1
		}
	}
	return rows, nil
}

// UpdateRow overwrites row (1-based) starting at column A.
func (w *Writer) UpdateRow(ctx context.Context, row int, values []interface{}) error {
	sheet, err := w.SheetName(ctx)
	if err != nil {
		return err
	}
	rng := a1(sheet, fmt.Sprintf("A%d:K%d", row, row))
	_, err = w.svc.Spreadsheets.Values.Update(w.cfg.SpreadsheetID, rng,
		&gsheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption(valueInput).Context(ctx).Do()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSheetsWriteFailed, "update lead row").WithDetail("range=" + rng)
	}
	return nil
}

// AppendRow adds values after the last row of the table.
func (w *Writer) AppendRow(ctx context.Context, values []interface{}) error {
	sheet, err := w.SheetName(ctx)
	if err != nil {
		return err
	}
	_, err = w.svc.Spreadsheets.Values.Append(w.cfg.SpreadsheetID, a1(sheet, Columns),
		&gsheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption(valueInput).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSheetsWriteFailed, "append lead row").WithDetail("sheet=" + sheet)
	}
	return nil
}

func a1(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}
