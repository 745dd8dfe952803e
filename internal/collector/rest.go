package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"IndexRange/internal/model"
)

// RESTFetcher implements Fetcher against a generic JSON bar API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *HTTPClient
}

// NewRESTFetcher creates a new fetcher for the given base URL.
func NewRESTFetcher(baseURL, apiKey string, client *HTTPClient) *RESTFetcher {
	return &RESTFetcher{BaseURL: baseURL, APIKey: apiKey, Client: client}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar API.
type restBar struct {
	Timestamp int64           `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
}

func (f *RESTFetcher) FetchHistory(ctx context.Context, req HistoryRequest) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", req.Symbol)
	q.Set("index", strconv.FormatBool(req.Index))
	q.Set("from", req.Start.Format(model.DateLayout))
	q.Set("to", req.End.Format(model.DateLayout))
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(ctx, httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var rb []restBar
	if err := json.NewDecoder(resp.Body).Decode(&rb); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.OHLCV, 0, len(rb))
	for _, b := range rb {
		t := time.Unix(b.Timestamp, 0).In(req.Start.Location())
		if !model.InRange(t, req.Start, req.End) {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   t,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
