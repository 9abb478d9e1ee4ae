package strategy

// StrategyType groups strategies by the concern they plug into
type StrategyType string

const (
	StrategyTypeCost StrategyType = "cost"
)

func (t StrategyType) String() string {
	return string(t)
}

// Strategy is implemented by every pluggable policy. Concrete interfaces
// such as CostStrategy embed it and add the behavior itself.
type Strategy interface {
	// Name identifies the strategy uniquely within its type
	Name() string
	// Type reports which concern the strategy serves
	Type() StrategyType
	// Description is a short human-readable summary
	Description() string
}

// BaseStrategy carries the identity fields so concrete strategies only
// implement their behavior
type BaseStrategy struct {
	name         string
	strategyType StrategyType
	description  string
}

func NewBaseStrategy(name string, strategyType StrategyType, description string) BaseStrategy {
	return BaseStrategy{name: name, strategyType: strategyType, description: description}
}

func (s BaseStrategy) Name() string { return s.name }

func (s BaseStrategy) Type() StrategyType { return s.strategyType }

func (s BaseStrategy) Description() string { return s.description }
