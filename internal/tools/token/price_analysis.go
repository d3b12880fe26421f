package token

import (
	"context"
	"fmt"
	"time"

	"github.com/markcheno/go-talib"

	"sola/internal/tools"
	"sola/internal/tools/shared"
)

// Enough candles for the slowest indicator (MACD needs 26 + signal 9)
// plus headroom
const analysisCandles = 200

// PriceAnalysis is the response of get_price_analysis
type PriceAnalysis struct {
	Address    string  `json:"address"`
	Interval   string  `json:"interval"`
	LastPrice  float64 `json:"last_price"`
	RSI14      float64 `json:"rsi_14"`
	SMA20      float64 `json:"sma_20"`
	SMA50      float64 `json:"sma_50"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	Trend      string  `json:"trend"`   // bullish|bearish|neutral
	Signal     string  `json:"signal"`  // overbought|oversold|neutral
	Candles    int     `json:"candles"` // how many bars backed the analysis
}

// NewPriceAnalysisTool returns a tool that computes technical indicators
// over recent price history.
func NewPriceAnalysisTool(deps shared.Deps) tools.Tool {
	schema := tools.Schema{
		Params: map[string]tools.Param{
			"address": {
				Type:        tools.TypeString,
				Description: "Token mint address",
				Required:    true,
			},
			"interval": {
				Type:        tools.TypeString,
				Description: "Candle interval",
				Enum:        []string{"15m", "1H", "4H", "1D"},
			},
		},
	}

	return tools.New("get_price_analysis",
		"Compute RSI, moving averages and MACD over recent price history of a Solana token",
		schema,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasMarket() {
				return nil, fmt.Errorf("get_price_analysis: market data client not configured")
			}

			address := args["address"].(string)
			interval, _ := args["interval"].(string)
			if interval == "" {
				interval = "1H"
			}

			to := time.Now().Unix()
			from := to - int64(analysisCandles)*intervalSeconds(interval)

			candles, err := deps.Market.GetOHLCV(ctx, address, interval, from, to)
			if err != nil {
				return nil, err
			}
			// talib panics on inputs shorter than the lookback period
			if len(candles) < 60 {
				return nil, fmt.Errorf("get_price_analysis: not enough history (%d candles)", len(candles))
			}

			closes := make([]float64, len(candles))
			for i, c := range candles {
				closes[i] = c.Close
			}

			rsi := talib.Rsi(closes, 14)
			sma20 := talib.Sma(closes, 20)
			sma50 := talib.Sma(closes, 50)
			macd, macdSignal, _ := talib.Macd(closes, 12, 26, 9)

			last := len(closes) - 1
			analysis := &PriceAnalysis{
				Address:    address,
				Interval:   interval,
				LastPrice:  closes[last],
				RSI14:      rsi[last],
				SMA20:      sma20[last],
				SMA50:      sma50[last],
				MACD:       macd[last],
				MACDSignal: macdSignal[last],
				Candles:    len(candles),
			}
			analysis.Trend = classifyTrend(closes[last], sma20[last], sma50[last])
			analysis.Signal = classifySignal(rsi[last])

			return analysis, nil
		})
}

func intervalSeconds(interval string) int64 {
	switch interval {
	case "15m":
		return 15 * 60
	case "4H":
		return 4 * 3600
	case "1D":
		return 24 * 3600
	default:
		return 3600
	}
}

func classifyTrend(price, sma20, sma50 float64) string {
	switch {
	case price > sma20 && sma20 > sma50:
		return "bullish"
	case price < sma20 && sma20 < sma50:
		return "bearish"
	default:
		return "neutral"
	}
}

func classifySignal(rsi float64) string {
	switch {
	case rsi >= 70:
		return "overbought"
	case rsi <= 30:
		return "oversold"
	default:
		return "neutral"
	}
}
