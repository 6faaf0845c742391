package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/stratsim/market"
)

func TestGrossProfit(t *testing.T) {
	long := &MarketOrder{OrderBase: OrderBase{TradeType: market.Buy, Volume: 1}, EntryPrice: 1.1000}
	short := &MarketOrder{OrderBase: OrderBase{TradeType: market.Sell, Volume: 1}, EntryPrice: 1.1000}

	assert.InDelta(t, 50, GrossProfit(long, 1.1050, 1.1052, 4, 1), 1e-6)
	assert.InDelta(t, -52, GrossProfit(short, 1.1050, 1.1052, 4, 1), 1e-6)
	assert.InDelta(t, 100, GrossProfit(long, 1.1050, 1.1052, 4, 2), 1e-6)

	jpy := &MarketOrder{OrderBase: OrderBase{TradeType: market.Sell, Volume: 1}, EntryPrice: 150.00}
	assert.InDelta(t, 20, GrossProfit(jpy, 149.80, 149.80, 2, 1), 1e-6)
}

func TestNetProfit(t *testing.T) {
	o := &MarketOrder{OrderBase: OrderBase{Volume: 2}, Commission: 7}
	assert.InDelta(t, 36, NetProfit(o, 50), 1e-9)
}

func TestRequiredMarginAndEntry(t *testing.T) {
	s, err := market.NewSymbol(market.SymbolInfo{
		Name: "X", TickSize: 0.01, Digits: 2, MinVolume: 0.01, MaxVolume: 10, VolumeStep: 0.01,
		VolumeUnitValue: 1000, Slippage: 3,
	})
	assert.NoError(t, err)
	assert.NoError(t, s.PublishTick(100, 100.02, s.Time()))

	assert.InDelta(t, 50, RequiredMargin(s, 2.5, 50), 1e-9)
	assert.InDelta(t, 100.05, EntryPrice(s, market.Buy), 1e-9)
	assert.InDelta(t, 99.97, EntryPrice(s, market.Sell), 1e-9)
}
