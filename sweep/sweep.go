// Package sweep expands declared algorithm-parameter alternatives into
// the explicit set of pipeline runs they imply.
package sweep

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Param is one swept algorithm parameter: an ordered list of candidate
// values to try, e.g. qual_thresh over {0, 10, 20}.
type Param struct {
	Name   string
	Values []float64
}

// Combo is one concrete parameterization: a value for every swept
// parameter. Each combo corresponds to one independent pipeline run and
// one point per ROC curve.
type Combo map[string]float64

// ID renders a stable identifier for the combo, parameters in the given
// declaration order, suitable for file naming.
func (c Combo) ID(order []string) string {
	var id string
	for i, name := range order {
		if i > 0 {
			id += "_"
		}
		id += fmt.Sprintf("%s%g", name, c[name])
	}
	return id
}

// CrossProduct expands the parameters into every combination, varying
// the last-declared parameter fastest. Parameter and value order follow
// declaration order, so the run sequence is deterministic.
func CrossProduct(params []Param) ([]Combo, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("no sweep parameters declared")
	}
	seen := make(map[string]bool)
	for _, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("sweep parameter with empty name")
		}
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("sweep parameter %s has no values", p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("sweep parameter %s declared twice", p.Name)
		}
		seen[p.Name] = true
	}

	combos := []Combo{{}}
	for _, p := range params {
		next := make([]Combo, 0, len(combos)*len(p.Values))
		for _, base := range combos {
			for _, v := range p.Values {
				c := Combo{}
				for k, val := range base {
					c[k] = val
				}
				c[p.Name] = v
				next = append(next, c)
			}
		}
		combos = next
	}
	return combos, nil
}

// Values returns the distinct values swept for one parameter, sorted
// ascending, across a set of combos.
func Values(combos []Combo, name string) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, c := range combos {
		if v, ok := c[name]; ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}
