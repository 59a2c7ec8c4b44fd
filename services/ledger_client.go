package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"thesis-verification-api/config"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// LedgerRecord is what gets committed for an approved thesis.
type LedgerRecord struct {
	StudentID    string `json:"student_id"`
	PaperHash    string `json:"paper_hash"`
	Author       string `json:"author"`
	UploadedBy   int    `json:"uploaded_by"`
	PaperDate    string `json:"paper_date"`
	Title        string `json:"title"`
	SubmissionID string `json:"submission_id"`
}

// Ledger commits approved records to the append-only ledger service.
type Ledger interface {
	Commit(ctx context.Context, rec LedgerRecord) (string, error)
	Name() string
}

// HTTPLedger posts records to {LEDGER_URL}/records.
type HTTPLedger struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func NewHTTPLedger(baseURL string, timeout time.Duration) *HTTPLedger {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPLedger{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

func (l *HTTPLedger) Name() string { return "http" }

// Commit returns the ledger transaction id. Every failure wraps
// ErrLedgerUnavailable.
func (l *HTTPLedger) Commit(ctx context.Context, rec LedgerRecord) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling record: %v", ErrLedgerUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/records", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrLedgerUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrLedgerUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: ledger returned status %d: %s", ErrLedgerUnavailable, resp.StatusCode, string(raw))
	}

	txID := ledgerTxID(raw)
	if txID == "" {
		return "", fmt.Errorf("%w: response has no transaction id", ErrLedgerUnavailable)
	}
	return txID, nil
}

// Ping checks the ledger's health endpoint.
func (l *HTTPLedger) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrLedgerUnavailable, resp.StatusCode)
	}
	return nil
}

// ledgerTxID accepts the shapes the ledger gateway has used over time.
func ledgerTxID(raw []byte) string {
	for _, path := range []string{"transactionId", "txId", "data.transactionId"} {
		if v := gjson.GetBytes(raw, path); v.Exists() && strings.TrimSpace(v.String()) != "" {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}

// SimulatedLedger issues local transaction ids when no ledger is configured.
type SimulatedLedger struct{}

func (SimulatedLedger) Name() string { return "simulated" }

func (SimulatedLedger) Commit(_ context.Context, rec LedgerRecord) (string, error) {
	txID := "sim_txn_" + uuid.NewString()
	config.Logger().Infow("ledger commit simulated",
		"tx_id", txID,
		"submission_id", rec.SubmissionID,
		"paper_hash", rec.PaperHash,
	)
	return txID, nil
}

// NewLedger picks the HTTP ledger when LEDGER_URL is set and the simulated
// one otherwise.
func NewLedger(s *config.Settings) Ledger {
	if s == nil || s.LedgerURL == "" {
		return SimulatedLedger{}
	}
	return NewHTTPLedger(s.LedgerURL, s.LedgerTimeout)
}

// LedgerHash is the deterministic digest stored next to the transaction id.
func LedgerHash(title, author, fileHash string, submitted time.Time) string {
	sum := sha256.Sum256([]byte(title + author + fileHash + submitted.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(sum[:])
}
