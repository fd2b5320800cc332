package finnhub

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"FinForge/internal/domain/models"
	drepo "FinForge/internal/domain/repository"
	xhttp "FinForge/pkg/http"
)

// quoteResponse mirrors GET /quote: current, change, previous close, unix seconds.
type quoteResponse struct {
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	PC float64 `json:"pc"`
	T  int64   `json:"t"`
}

// RESTClient fetches point-in-time quotes from the Finnhub REST API.
type RESTClient struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

var _ drepo.QuoteSource = (*RESTClient)(nil)

func NewRESTClient(baseURL, apiKey string, timeout time.Duration, opts ...xhttp.ClientOption) *RESTClient {
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  xhttp.NewClient(opts...),
	}
}

// LatestQuote returns the last price for symbol. Finnhub answers unknown symbols with zeros.
func (c *RESTClient) LatestQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var res quoteResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.baseURL + "/quote",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"token":  {c.apiKey},
		},
	}, &res)
	if err != nil {
		return nil, fmt.Errorf("finnhub quote %s: %w", symbol, err)
	}
	if res.C <= 0 {
		return nil, fmt.Errorf("finnhub quote %s: %w", symbol, drepo.ErrInstrumentNotFound)
	}
	return &models.Quote{
		Symbol:        symbol,
		Price:         res.C,
		PreviousClose: res.PC,
		Timestamp:     res.T * 1000,
	}, nil
}
