package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Simplici0/importcalc/internal/apperr"
)

// DefaultRatesURL serves EUR-based rates without an API key.
const DefaultRatesURL = "https://open.er-api.com/v6/latest/EUR"

// Provider fetches a fresh rate snapshot.
type Provider interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// HTTPProvider reads rates from an open.er-api.com compatible endpoint.
type HTTPProvider struct {
	url  string
	http *http.Client
	now  func() time.Time
}

// NewHTTPProvider builds a provider with the given endpoint and request timeout.
func NewHTTPProvider(url string, timeout time.Duration) *HTTPProvider {
	if strings.TrimSpace(url) == "" {
		url = DefaultRatesURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProvider{
		url:  url,
		http: &http.Client{Timeout: timeout},
		now:  time.Now,
	}
}

type ratesPayload struct {
	Result             string             `json:"result"`
	BaseCode           string             `json:"base_code"`
	TimeLastUpdateUTC  string             `json:"time_last_update_utc"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	Rates              map[string]float64 `json:"rates"`
}

// Fetch implements Provider.
func (p *HTTPProvider) Fetch(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return Snapshot{}, apperr.Unavailable("fetch exchange rates", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Snapshot{}, apperr.Unavailable(fmt.Sprintf("exchange rate provider returned status %d", resp.StatusCode), nil)
	}

	var payload ratesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Snapshot{}, apperr.Malformed("decode exchange rates", err)
	}
	if payload.Result != "" && payload.Result != "success" {
		return Snapshot{}, apperr.Unavailable(fmt.Sprintf("exchange rate provider result %q", payload.Result), nil)
	}
	if payload.BaseCode != "" && payload.BaseCode != string(EUR) {
		return Snapshot{}, apperr.Malformed(fmt.Sprintf("exchange rates based on %s, want EUR", payload.BaseCode), nil)
	}

	snap := Snapshot{
		EURToAED:  payload.Rates[string(AED)],
		EURToUSD:  payload.Rates[string(USD)],
		UpdatedAt: payload.TimeLastUpdateUTC,
		Source:    SourceLive,
		FetchedAt: p.now().UTC(),
	}
	if snap.UpdatedAt == "" && payload.TimeLastUpdateUnix > 0 {
		snap.UpdatedAt = time.Unix(payload.TimeLastUpdateUnix, 0).UTC().Format(time.RFC1123Z)
	}
	if snap.UpdatedAt == "" {
		snap.UpdatedAt = snap.FetchedAt.Format(time.RFC3339)
	}
	if !snap.Valid() {
		return Snapshot{}, apperr.Malformed("exchange rates missing AED or USD", nil)
	}
	return snap, nil
}
