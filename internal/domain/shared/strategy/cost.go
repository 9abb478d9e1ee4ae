package strategy

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostMethod represents the inventory costing method
type CostMethod string

const (
	CostMethodAverage  CostMethod = "average"
	CostMethodFIFO     CostMethod = "fifo"
	CostMethodLIFO     CostMethod = "lifo"
	CostMethodSpecific CostMethod = "specific"
)

// String returns the string representation of the cost method
func (m CostMethod) String() string {
	return string(m)
}

// IsValid returns true if the cost method is a known value
func (m CostMethod) IsValid() bool {
	switch m {
	case CostMethodAverage, CostMethodFIFO, CostMethodLIFO, CostMethodSpecific:
		return true
	default:
		return false
	}
}

// LotEntry is the view of a stock lot used for cost calculation
type LotEntry struct {
	LotNumber    string
	Quantity     int64
	UnitCost     decimal.Decimal
	ReceivedDate time.Time
}

// LotConsumption records how much of a lot an outbound quantity consumed
type LotConsumption struct {
	LotNumber string
	Quantity  int64
	UnitCost  decimal.Decimal
}

// CostResult contains the outcome of an outbound cost calculation
type CostResult struct {
	Method    CostMethod
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal
	Consumed  []LotConsumption
}

// CostStrategy calculates the cost of an outbound quantity.
// rollingAverage is the record's current average unit cost, entries are the
// consumable lots of the record in received-date ascending order.
type CostStrategy interface {
	Strategy
	// Method returns the costing method implemented by this strategy
	Method() CostMethod
	// CostOutbound values an outbound quantity and reports which lots it consumed
	CostOutbound(quantity int64, rollingAverage decimal.Decimal, entries []LotEntry) (CostResult, error)
}
