package trigger

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/sentinel-labs/sentinel/internal/models"
)

// ScriptPriceSurge is the script id of the price surge trigger.
const ScriptPriceSurge = "price_surge_trigger"

func init() {
	Register(ScriptPriceSurge, func() Trigger {
		return &PriceSurgeTrigger{exchange: binance.NewClient("", "")}
	})
}

// PriceSurgeTrigger detects when a price exceeds a configured threshold.
// With source=binance the quote is fetched from the exchange's public
// ticker endpoint; a failed lookup falls back to a simulated quote so the
// sweep degrades instead of erroring.
type PriceSurgeTrigger struct {
	exchange *binance.Client
}

func (t *PriceSurgeTrigger) Name() string {
	return "Price Surge Monitor"
}

func (t *PriceSurgeTrigger) Description() string {
	return "Detects if a stock price exceeds a specific threshold."
}

func (t *PriceSurgeTrigger) DefaultParams() Params {
	return Params{"ticker": "AAPL", "threshold": 150.0}
}

func (t *PriceSurgeTrigger) Check(ctx context.Context, params Params) (*Output, error) {
	ticker := params.GetString("ticker", "UNKNOWN")
	threshold := params.GetFloat("threshold", 100.0)

	currentPrice := threshold + (rand.Float64()*30 - 10)
	switch {
	case params.Has("current_price"):
		currentPrice = params.GetFloat("current_price", currentPrice)
	case params.GetString("source", "") == "binance":
		if quote, ok := t.fetchQuote(ctx, ticker); ok {
			currentPrice = quote
		}
	}

	return &Output{
		Triggered:  currentPrice > threshold,
		Importance: models.ImportanceHigh,
		Ticker:     ticker,
		Message:    fmt.Sprintf("Price Surge Alert: %s is at %.2f (Threshold: %v)", ticker, currentPrice, threshold),
		Metadata:   map[string]interface{}{"current_price": currentPrice, "threshold": threshold},
		Timestamp:  time.Now().UTC(),
	}, nil
}

func (t *PriceSurgeTrigger) fetchQuote(ctx context.Context, symbol string) (float64, bool) {
	if t.exchange == nil {
		return 0, false
	}
	prices, err := t.exchange.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil || len(prices) == 0 {
		return 0, false
	}
	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}
