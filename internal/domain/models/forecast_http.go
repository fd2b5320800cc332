package models

// Requests for forecast HTTP endpoints. Defined in domain for consistency and reuse.
// Seeds travel as strings on query requests and are parsed by the handler.

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=16"`
	Days   int    `query:"days" json:"days" validate:"lte=3650"`
	Seed   string `query:"seed" json:"seed" validate:"omitempty,numeric"`
}

type PredictionsRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required,max=16"`
	Timeframes string `query:"timeframes" json:"timeframes" default:"1D,1W,1M,3M,6M,1Y"`
	Seed       string `query:"seed" json:"seed" validate:"omitempty,numeric"`
}

type NewsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=16"`
}

type DashboardRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required,max=16"`
	Days       int    `query:"days" json:"days" validate:"lte=3650"`
	Timeframes string `query:"timeframes" json:"timeframes" default:"1D,1W,1M,3M,6M,1Y"`
	Seed       string `query:"seed" json:"seed" validate:"omitempty,numeric"`
}

// ForecastInstrument is an instrument described by the caller. Beta is a pointer so
// an absent beta can be told apart from an explicit 0.
type ForecastInstrument struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	CurrentPrice float64  `json:"currentPrice"`
	DayChange    float64  `json:"dayChange"`
	Beta         *float64 `json:"beta"`
	Sector       string   `json:"sector"`
	Country      string   `json:"country"`
	MarketCap    float64  `json:"marketCap"`
	Volume       float64  `json:"volume"`
	PERatio      float64  `json:"peRatio"`
}

// Descriptor returns the instrument and whether a beta was supplied.
func (f ForecastInstrument) Descriptor() (InstrumentDescriptor, bool) {
	inst := InstrumentDescriptor{
		Symbol:       f.Symbol,
		Name:         f.Name,
		CurrentPrice: f.CurrentPrice,
		DayChange:    f.DayChange,
		Sector:       f.Sector,
		Country:      f.Country,
		MarketCap:    f.MarketCap,
		Volume:       f.Volume,
		PERatio:      f.PERatio,
	}
	if f.Beta == nil {
		return inst, false
	}
	inst.Beta = *f.Beta
	return inst, true
}

// ForecastRequest carries a caller-described instrument.
type ForecastRequest struct {
	Instrument ForecastInstrument `json:"instrument"`
	Days       *int               `json:"days" validate:"omitempty,gte=0,lte=3650"`
	Timeframes []string           `json:"timeframes"`
	Seed       *uint64            `json:"seed"`
}
