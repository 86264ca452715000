package pathfinder

import (
	"fmt"
	"strings"
)

// Algorithm selects the search strategy a PathFinder runs.
type Algorithm int

const (
	Default Algorithm = iota
	SPFADoubleWay
	SPFA
	Dijkstra
)

var algorithmNames = map[Algorithm]string{
	Default:       "default",
	SPFADoubleWay: "spfa-double-way",
	SPFA:          "spfa",
	Dijkstra:      "dijkstra",
}

func (a Algorithm) String() string {
	if s, ok := algorithmNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// resolve maps Default onto the concrete strategy.
func (a Algorithm) resolve() Algorithm {
	if a == Default {
		return SPFADoubleWay
	}
	return a
}

// Algorithms lists the concrete strategies in a stable order.
func Algorithms() []Algorithm {
	return []Algorithm{SPFADoubleWay, SPFA, Dijkstra}
}

// Next cycles through the concrete strategies.
func (a Algorithm) Next() Algorithm {
	all := Algorithms()
	for i, v := range all {
		if v == a.resolve() {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// ParseAlgorithm accepts the names printed by String; "" means Default.
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default, nil
	}
	for a, name := range algorithmNames {
		if name == s {
			return a, nil
		}
	}
	switch s {
	case "spfa_double_way", "double-way", "bidirectional":
		return SPFADoubleWay, nil
	case "djikstra", "dijkstra-shortest-path":
		return Dijkstra, nil
	}
	return Default, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

func (a *Algorithm) UnmarshalText(text []byte) error {
	v, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
