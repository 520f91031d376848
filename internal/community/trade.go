package community

import "fmt"

// TradeOption is one of the fixed exchange rates between pools.
type TradeOption uint8

const (
	TradeFoodForCare TradeOption = iota
	TradeCareForShelter
	TradeShelterForFood
	TradeShelterForCare
)

// Trade describes what a TradeOption costs and yields.
type Trade struct {
	Key   string
	Label string
	From  Category
	To    Category
	Cost  float64
	Gain  float64
}

var trades = [...]Trade{
	TradeFoodForCare:    {"food_to_care", "Trade 5 Food → 1 Care", Food, Care, 5, 1},
	TradeCareForShelter: {"care_to_shelter", "Trade 5 Care → 1 Shelter", Care, Shelter, 5, 1},
	TradeShelterForFood: {"shelter_to_food", "Trade 1 Shelter → 5 Food", Shelter, Food, 1, 5},
	TradeShelterForCare: {"shelter_to_care", "Trade 1 Shelter → 5 Care", Shelter, Care, 1, 5},
}

// Trades returns every trade option in display order.
func Trades() []Trade {
	out := make([]Trade, len(trades))
	copy(out, trades[:])
	return out
}

// Trade returns the rate card for o.
func (o TradeOption) Trade() (Trade, bool) {
	if int(o) >= len(trades) {
		return Trade{}, false
	}
	return trades[o], true
}

func (o TradeOption) String() string {
	if t, ok := o.Trade(); ok {
		return t.Key
	}
	return fmt.Sprintf("trade(%d)", o)
}

// ParseTradeOption maps a trade key to its option.
func ParseTradeOption(key string) (TradeOption, bool) {
	for i, t := range trades {
		if t.Key == key {
			return TradeOption(i), true
		}
	}
	return 0, false
}
