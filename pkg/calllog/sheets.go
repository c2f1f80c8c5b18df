package calllog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/aretw0/hostline/pkg/outcome"
)

// DefaultRange is where rows are appended when no range is configured.
const DefaultRange = "Sheet1!A1"

// Sheets allows 60 write requests per minute per user.
var defaultSheetsLimit = rate.Limit(1)

// ErrMissingSheetID is returned when no spreadsheet is configured.
var ErrMissingSheetID = errors.New("calllog: spreadsheet id is required")

// SheetsConfig locates the spreadsheet and the credentials used to write it.
type SheetsConfig struct {
	SpreadsheetID string
	Range         string
	// CredentialsJSON is a service account key file. When empty, the
	// account is assembled from ServiceAccountEmail and PrivateKey.
	CredentialsJSON     []byte
	ServiceAccountEmail string
	PrivateKey          string
	// Limiter throttles writes. Nil means one write per second with a burst of five.
	Limiter *rate.Limiter
}

// SheetsSink appends records to a Google Sheets spreadsheet.
type SheetsSink struct {
	svc     *sheets.Service
	id      string
	rng     string
	limiter *rate.Limiter
}

// NewSheetsSink connects to the Sheets API. Extra client options are passed
// through, which lets tests point the sink at a local server.
func NewSheetsSink(ctx context.Context, cfg SheetsConfig, opts ...option.ClientOption) (*SheetsSink, error) {
	if cfg.SpreadsheetID == "" {
		return nil, ErrMissingSheetID
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	switch {
	case len(cfg.CredentialsJSON) > 0:
		clientOpts = append(clientOpts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	case cfg.ServiceAccountEmail != "" && cfg.PrivateKey != "":
		creds, err := ServiceAccountJSON(cfg.ServiceAccountEmail, cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, option.WithCredentialsJSON(creds))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	s := &SheetsSink{
		svc:     svc,
		id:      cfg.SpreadsheetID,
		rng:     cfg.Range,
		limiter: cfg.Limiter,
	}
	if s.rng == "" {
		s.rng = DefaultRange
	}
	if s.limiter == nil {
		s.limiter = rate.NewLimiter(defaultSheetsLimit, 5)
	}
	return s, nil
}

// Append writes rec as a new row after the last non-empty row of the range.
func (s *SheetsSink) Append(ctx context.Context, rec outcome.Record) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("sheets rate limit: %w", err)
	}

	row := rec.Row()
	values := make([]any, len(row))
	for i, v := range row {
		values[i] = v
	}

	_, err := s.svc.Spreadsheets.Values.
		Append(s.id, s.rng, &sheets.ValueRange{Values: [][]any{values}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row to sheet %s: %w", s.id, err)
	}
	return nil
}

// ServiceAccountJSON builds a service account key from its two essential
// fields. Escaped newlines in the private key, as found in .env files, are
// expanded.
func ServiceAccountJSON(email, privateKey string) ([]byte, error) {
	if email == "" || privateKey == "" {
		return nil, errors.New("calllog: service account email and private key are required")
	}
	key := map[string]string{
		"type":         "service_account",
		"client_email": email,
		"private_key":  strings.ReplaceAll(privateKey, `\n`, "\n"),
		"token_uri":    "https://oauth2.googleapis.com/token",
	}
	return json.Marshal(key)
}
