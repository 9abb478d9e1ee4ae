package inventory

import (
	"sort"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// LotEntries converts consumable lots into the view costing strategies
// operate on, sorted by received date ascending.
func LotEntries(lots []*Lot) []strategy.LotEntry {
	entries := make([]strategy.LotEntry, 0, len(lots))
	for _, lot := range lots {
		if !lot.IsConsumable() {
			continue
		}
		entries = append(entries, strategy.LotEntry{
			LotNumber:    lot.LotNumber,
			Quantity:     lot.QuantityAvailable,
			UnitCost:     lot.UnitCost,
			ReceivedDate: lot.ReceivedDate,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ReceivedDate.Before(entries[j].ReceivedDate)
	})
	return entries
}

// NewCostStrategy returns the strategy implementing the given method.
// Specific costing falls back to FIFO selection when no lot is named.
func NewCostStrategy(method strategy.CostMethod) (strategy.CostStrategy, error) {
	switch method {
	case strategy.CostMethodAverage:
		return NewAverageCostStrategy(), nil
	case strategy.CostMethodFIFO, strategy.CostMethodSpecific:
		return NewFIFOCostStrategy(), nil
	case strategy.CostMethodLIFO:
		return NewLIFOCostStrategy(), nil
	default:
		return nil, shared.ErrInvalidInput
	}
}

// AverageCostStrategy values outbound stock at the record's rolling average
type AverageCostStrategy struct {
	strategy.BaseStrategy
}

// NewAverageCostStrategy creates an AverageCostStrategy
func NewAverageCostStrategy() *AverageCostStrategy {
	return &AverageCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"average_cost",
			strategy.StrategyTypeCost,
			"Values outbound stock at the rolling average unit cost",
		),
	}
}

// Method returns the costing method
func (s *AverageCostStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodAverage
}

// CostOutbound values the quantity at the rolling average without consuming lots
func (s *AverageCostStrategy) CostOutbound(quantity int64, rollingAverage decimal.Decimal, _ []strategy.LotEntry) (strategy.CostResult, error) {
	if quantity <= 0 {
		return strategy.CostResult{}, shared.ErrInvalidInput
	}
	return strategy.CostResult{
		Method:    strategy.CostMethodAverage,
		UnitCost:  rollingAverage,
		TotalCost: rollingAverage.Mul(decimal.NewFromInt(quantity)).Round(4),
	}, nil
}

// FIFOCostStrategy consumes the oldest lots first
type FIFOCostStrategy struct {
	strategy.BaseStrategy
}

// NewFIFOCostStrategy creates a FIFOCostStrategy
func NewFIFOCostStrategy() *FIFOCostStrategy {
	return &FIFOCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo_cost",
			strategy.StrategyTypeCost,
			"Consumes the oldest lots first at their original unit cost",
		),
	}
}

// Method returns the costing method
func (s *FIFOCostStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodFIFO
}

// CostOutbound walks lots oldest-first
func (s *FIFOCostStrategy) CostOutbound(quantity int64, _ decimal.Decimal, entries []strategy.LotEntry) (strategy.CostResult, error) {
	return walkLots(strategy.CostMethodFIFO, quantity, entries)
}

// LIFOCostStrategy consumes the newest lots first
type LIFOCostStrategy struct {
	strategy.BaseStrategy
}

// NewLIFOCostStrategy creates a LIFOCostStrategy
func NewLIFOCostStrategy() *LIFOCostStrategy {
	return &LIFOCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"lifo_cost",
			strategy.StrategyTypeCost,
			"Consumes the newest lots first at their original unit cost",
		),
	}
}

// Method returns the costing method
func (s *LIFOCostStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodLIFO
}

// CostOutbound walks lots newest-first
func (s *LIFOCostStrategy) CostOutbound(quantity int64, _ decimal.Decimal, entries []strategy.LotEntry) (strategy.CostResult, error) {
	reversed := make([]strategy.LotEntry, len(entries))
	for i, entry := range entries {
		reversed[len(entries)-1-i] = entry
	}
	return walkLots(strategy.CostMethodLIFO, quantity, reversed)
}

// walkLots consumes entries in the given order until the quantity is
// satisfied. A partially consumed lot keeps its original unit cost for the
// consumed portion.
func walkLots(method strategy.CostMethod, quantity int64, entries []strategy.LotEntry) (strategy.CostResult, error) {
	if quantity <= 0 {
		return strategy.CostResult{}, shared.ErrInvalidInput
	}

	remaining := quantity
	totalCost := decimal.Zero
	consumed := make([]strategy.LotConsumption, 0, len(entries))

	for _, entry := range entries {
		if remaining == 0 {
			break
		}
		take := entry.Quantity
		if take > remaining {
			take = remaining
		}
		if take <= 0 {
			continue
		}
		consumed = append(consumed, strategy.LotConsumption{
			LotNumber: entry.LotNumber,
			Quantity:  take,
			UnitCost:  entry.UnitCost,
		})
		totalCost = totalCost.Add(entry.UnitCost.Mul(decimal.NewFromInt(take)))
		remaining -= take
	}

	if remaining > 0 {
		return strategy.CostResult{}, shared.ErrInsufficientLots
	}

	unitCost := totalCost.Div(decimal.NewFromInt(quantity)).Round(4)
	return strategy.CostResult{
		Method:    method,
		UnitCost:  unitCost,
		TotalCost: totalCost.Round(4),
		Consumed:  consumed,
	}, nil
}
