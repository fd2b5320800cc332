package api

import (
	"time"

	"github.com/shopspring/decimal"

	"FinForge/internal/domain/models"
)

// round returns v rounded half away from zero to places decimals.
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func cents(v float64) float64 { return round(v, 2) }

type instrumentDTO struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"currentPrice"`
	DayChange    float64 `json:"dayChange"`
	DayChangePct float64 `json:"dayChangePct"`
	Beta         float64 `json:"beta"`
	Sector       string  `json:"sector"`
	Country      string  `json:"country,omitempty"`
	MarketCap    float64 `json:"marketCap,omitempty"`
	Volume       float64 `json:"volume,omitempty"`
	PERatio      float64 `json:"peRatio,omitempty"`
}

func toInstrumentDTO(inst models.InstrumentDescriptor) instrumentDTO {
	var pct float64
	if prev := inst.PreviousClose(); prev > 0 {
		pct = round(inst.DayChange/prev*100, 2)
	}
	return instrumentDTO{
		Symbol:       inst.Symbol,
		Name:         inst.Name,
		CurrentPrice: cents(inst.CurrentPrice),
		DayChange:    cents(inst.DayChange),
		DayChangePct: pct,
		Beta:         round(inst.Beta, 2),
		Sector:       inst.Sector,
		Country:      inst.Country,
		MarketCap:    inst.MarketCap,
		Volume:       inst.Volume,
		PERatio:      round(inst.PERatio, 2),
	}
}

type candleDTO struct {
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

func toCandleDTOs(series models.CandleSeries) []candleDTO {
	out := make([]candleDTO, len(series))
	for i, c := range series {
		out[i] = candleDTO{
			Date:      c.Timestamp.UTC().Format(time.DateOnly),
			Timestamp: c.Timestamp,
			Open:      cents(c.Open),
			High:      cents(c.High),
			Low:       cents(c.Low),
			Close:     cents(c.Close),
			Volume:    decimal.NewFromFloat(c.Volume).Round(0).IntPart(),
		}
	}
	return out
}

type statsDTO struct {
	Bars               int     `json:"bars"`
	ChangePct          float64 `json:"changePct"`
	RealizedVolatility float64 `json:"realizedVolatility"`
	High               float64 `json:"high"`
	Low                float64 `json:"low"`
}

func toStatsDTO(s *models.SeriesStats) *statsDTO {
	if s == nil {
		return nil
	}
	return &statsDTO{
		Bars:               s.Bars,
		ChangePct:          round(s.ChangePct, 2),
		RealizedVolatility: round(s.RealizedVolatility, 4),
		High:               cents(s.High),
		Low:                cents(s.Low),
	}
}

type predictionDTO struct {
	Timeframe          models.Timeframe                `json:"timeframe"`
	Label              string                          `json:"label"`
	CurrentPrice       float64                         `json:"currentPrice"`
	TargetPrice        float64                         `json:"targetPrice"`
	PotentialReturnPct float64                         `json:"potentialReturnPct"`
	Direction          models.Direction                `json:"direction"`
	Confidence         models.SyntheticMetric[float64] `json:"confidence"`
	RiskLevel          models.RiskLevel                `json:"riskLevel"`
	Signals            models.Signals                  `json:"signals"`
	Reasoning          []string                        `json:"reasoning"`
	Accuracy           models.SyntheticMetric[float64] `json:"accuracy"`
	ModelID            string                          `json:"modelId"`
	GeneratedAt        time.Time                       `json:"generatedAt"`
}

// toPredictionDTOs orders records by horizon.
func toPredictionDTOs(preds map[models.Timeframe]models.PredictionRecord) []predictionDTO {
	out := make([]predictionDTO, 0, len(preds))
	for _, tf := range models.AllTimeframes() {
		p, ok := preds[tf]
		if !ok {
			continue
		}
		out = append(out, predictionDTO{
			Timeframe:          p.Timeframe,
			Label:              tf.Label(),
			CurrentPrice:       cents(p.CurrentPrice),
			TargetPrice:        cents(p.TargetPrice),
			PotentialReturnPct: p.PotentialReturnPct, // unrounded; direction and risk are graded on it
			Direction:          p.Direction,
			Confidence:         models.Synthetic(round(p.Confidence.Value(), 1)),
			RiskLevel:          p.RiskLevel,
			Signals:            p.Signals,
			Reasoning:          p.Reasoning,
			Accuracy:           models.Synthetic(round(p.Accuracy.Value(), 1)),
			ModelID:            p.ModelID,
			GeneratedAt:        p.GeneratedAt,
		})
	}
	return out
}

type newsDTO struct {
	Title      string        `json:"title"`
	Impact     models.Impact `json:"impact"`
	Importance int           `json:"importance"`
	Date       string        `json:"date"`
}

func toNewsDTOs(news []models.NewsImpactRecord) []newsDTO {
	out := make([]newsDTO, len(news))
	for i, n := range news {
		out[i] = newsDTO{Title: n.Title, Impact: n.Impact, Importance: n.Importance, Date: n.Date.UTC().Format(time.DateOnly)}
	}
	return out
}

type candlesResponse struct {
	Symbol  string      `json:"symbol"`
	Seed    uint64      `json:"seed,string"`
	Days    int         `json:"days"`
	Cached  bool        `json:"cached"`
	Candles []candleDTO `json:"candles"`
	Stats   *statsDTO   `json:"stats,omitempty"`
}

type predictionsResponse struct {
	Symbol      string          `json:"symbol"`
	Seed        uint64          `json:"seed,string"`
	Cached      int             `json:"cached"`
	Predictions []predictionDTO `json:"predictions"`
}

type newsResponse struct {
	Symbol string    `json:"symbol"`
	News   []newsDTO `json:"news"`
}

type dashboardResponse struct {
	Instrument     instrumentDTO     `json:"instrument"`
	Seed           uint64            `json:"seed,string"`
	PredictionSeed uint64            `json:"predictionSeed,string"`
	Candles        []candleDTO       `json:"candles"`
	Stats          *statsDTO         `json:"stats,omitempty"`
	Predictions    []predictionDTO   `json:"predictions"`
	News           []newsDTO         `json:"news"`
	GeneratedAt    time.Time         `json:"generatedAt"`
	Errors         map[string]string `json:"errors,omitempty"`
}

func toDashboardResponse(d *models.Dashboard) dashboardResponse {
	return dashboardResponse{
		Instrument:     toInstrumentDTO(d.Instrument),
		Seed:           d.Seed,
		PredictionSeed: d.PredictionSeed,
		Candles:        toCandleDTOs(d.Candles),
		Stats:          toStatsDTO(d.Stats),
		Predictions:    toPredictionDTOs(d.Predictions),
		News:           toNewsDTOs(d.News),
		GeneratedAt:    d.GeneratedAt,
		Errors:         d.Errors,
	}
}
