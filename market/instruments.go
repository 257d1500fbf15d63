// market/instruments.go
package market

// InstrumentMeta describes a futures contract the engine can size.
type InstrumentMeta struct {
	Name        string
	Description string
	PointValue  float64 // account currency per point per contract
	TickSize    float64
}

var Instruments = map[string]InstrumentMeta{
	"MNQ": {
		Name:        "MNQ",
		Description: "Micro E-mini Nasdaq-100",
		PointValue:  2,
		TickSize:    0.25,
	},
	"NQ": {
		Name:        "NQ",
		Description: "E-mini Nasdaq-100",
		PointValue:  20,
		TickSize:    0.25,
	},
	"MES": {
		Name:        "MES",
		Description: "Micro E-mini S&P 500",
		PointValue:  5,
		TickSize:    0.25,
	},
	"ES": {
		Name:        "ES",
		Description: "E-mini S&P 500",
		PointValue:  50,
		TickSize:    0.25,
	},
}
