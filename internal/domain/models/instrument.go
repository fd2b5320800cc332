package models

// InstrumentDescriptor is the static description of a tradable instrument.
// CurrentPrice must be strictly positive.
type InstrumentDescriptor struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"currentPrice"`
	DayChange    float64 `json:"dayChange"`
	Beta         float64 `json:"beta"`
	Sector       string  `json:"sector"`
	Country      string  `json:"country"`
	MarketCap    float64 `json:"marketCap"`
	Volume       float64 `json:"volume"`
	PERatio      float64 `json:"peRatio"`
}

// PreviousClose is the close implied by the current price and the day change.
func (i InstrumentDescriptor) PreviousClose() float64 {
	return i.CurrentPrice - i.DayChange
}

// Quote is a single last-price observation for a symbol.
// PreviousClose is optional; zero means unknown.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Volume        float64 `json:"volume,omitempty"`
	PreviousClose float64 `json:"previousClose,omitempty"`
	Timestamp     int64   `json:"timestamp"` // unix ms
}
