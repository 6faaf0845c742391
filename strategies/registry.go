// Package strategies holds the built-in strategies and the registry the
// CLI and the backtest runner construct them from.
package strategies

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/stratsim/strategy"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Settings are the pre-resolved construction values of a strategy.
type Settings struct {
	// Symbol is the traded symbol. Empty means the first tracked one.
	Symbol string
	Params strategy.Values
}

type Constructor func(s Settings) (strategy.Strategy, error)

type entry struct {
	params []strategy.Param
	ctor   Constructor
}

var registry = make(map[string]entry)

// Register makes a strategy constructible by name. Later registrations
// replace earlier ones.
func Register(name string, params []strategy.Param, ctor Constructor) {
	registry[normalize(name)] = entry{params: params, ctor: ctor}
}

// New resolves given against the declared parameters of name and builds
// the strategy.
func New(name, symbol string, given map[string]float64) (strategy.Strategy, error) {
	e, ok := registry[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownStrategy, name, strings.Join(Names(), ", "))
	}
	values, err := strategy.ResolveParams(e.params, given)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return e.ctor(Settings{Symbol: symbol, Params: values})
}

// ParamsOf returns the declared parameters of name.
func ParamsOf(name string) ([]strategy.Param, error) {
	e, ok := registry[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownStrategy, name)
	}
	return append([]strategy.Param(nil), e.params...), nil
}

func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func init() {
	Register("noop", nil, newNoop)
	Register("none", nil, newNoop)
	Register("open-once", openOnceParams, newOpenOnce)
	Register("sma-cross", smaCrossParams, newSMACross)
	Register("ema-cross", emaCrossParams, newEMACross)
	Register("emacross", emaCrossParams, newEMACross)
	Register("breakout", breakoutParams, newBreakout)
}
