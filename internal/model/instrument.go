package model

// Instrument is a row of the symbol catalog: read-only reference data owned
// by the instrument-master collaborator, looked up by (symbol, exchange).
type Instrument struct {
	Token    string `json:"token"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"` // segment code
	LotSize  int    `json:"lot_size"`
	TickSize string `json:"tick_size"` // decimal string, e.g. "0.05"
}

// Key returns a unique catalog key: "exchange:symbol".
func (i *Instrument) Key() string {
	return i.Exchange + ":" + i.Symbol
}
