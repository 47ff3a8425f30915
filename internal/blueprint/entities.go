// Package blueprint walks a laid-out module and emits the Factorio
// blueprint entity list and wire connections, then wraps the result in
// the zlib/base64 blueprint-string envelope.
package blueprint

import (
	"math"

	"combc/internal/errors"
	"combc/internal/ir"
	"combc/internal/layout"
	"combc/internal/symbols"
)

type Position struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

type Filter struct {
	Signal symbols.Signal `json:"signal"`
	Count  int32          `json:"count"`
	Index  int            `json:"index"`
}

type ArithmeticConditions struct {
	Operation      string          `json:"operation"`
	FirstSignal    *symbols.Signal `json:"first_signal,omitempty"`
	FirstConstant  *int32          `json:"first_constant,omitempty"`
	SecondSignal   *symbols.Signal `json:"second_signal,omitempty"`
	SecondConstant *int32          `json:"second_constant,omitempty"`
	OutputSignal   *symbols.Signal `json:"output_signal,omitempty"`
}

type DeciderConditions struct {
	Comparator         string          `json:"comparator"`
	FirstSignal        *symbols.Signal `json:"first_signal"`
	SecondSignal       *symbols.Signal `json:"second_signal,omitempty"`
	Constant           *int32          `json:"constant,omitempty"`
	OutputSignal       *symbols.Signal `json:"output_signal,omitempty"`
	CopyCountFromInput bool            `json:"copy_count_from_input"`
}

type ControlBehavior struct {
	ArithmeticConditions *ArithmeticConditions `json:"arithmetic_conditions,omitempty"`
	DeciderConditions    *DeciderConditions    `json:"decider_conditions,omitempty"`
	Filters              []Filter              `json:"filters,omitempty"`
}

type ConnRef struct {
	EntityID  int `json:"entity_id"`
	CircuitID int `json:"circuit_id"`
}

type ConnPoint struct {
	Red   []ConnRef `json:"red,omitempty"`
	Green []ConnRef `json:"green,omitempty"`
}

type Entity struct {
	EntityNumber    int                  `json:"entity_number"`
	Name            string               `json:"name"`
	Position        Position             `json:"position"`
	Direction       int                  `json:"direction"`
	ControlBehavior *ControlBehavior     `json:"control_behavior,omitempty"`
	Connections     map[string]ConnPoint `json:"connections,omitempty"`
}

const entityDirection = 4

// Emit builds the entity list for a placed, routed, colored, symbol-
// assigned module.
func Emit(m *ir.Module, table *symbols.Table) ([]Entity, error) {
	var entities []Entity
	nodeToEntity := make(map[int]int)

	for i, n := range m.Nodes {
		if !emits(n.Kind) {
			continue
		}
		e, err := buildEntity(m, i, table)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
		nodeToEntity[i] = len(entities) // 1-based
	}

	entities = append(entities, poleGrid(m)...)

	if err := wireConnections(m, entities, nodeToEntity); err != nil {
		return nil, err
	}
	for i := range entities {
		entities[i].EntityNumber = i + 1
	}
	return entities, nil
}

func emits(k ir.Kind) bool {
	switch k {
	case ir.KindInput, ir.KindConstant, ir.KindOutput, ir.KindBinOp, ir.KindBinOpSame, ir.KindBinOpCmpGate:
		return true
	default:
		return false
	}
}

func buildEntity(m *ir.Module, idx int, table *symbols.Table) (Entity, error) {
	n := m.Nodes[idx]
	x, y := layout.TruePos(n)
	base := Entity{Position: Position{X: float32(x), Y: float32(y)}, Direction: entityDirection}

	switch n.Kind {
	case ir.KindInput:
		sig, err := resolveSignal(table, n.Symbol, m.Name)
		if err != nil {
			return Entity{}, err
		}
		base.Name = "constant-combinator"
		base.ControlBehavior = &ControlBehavior{Filters: []Filter{{Signal: sig, Count: 0, Index: 1}}}

	case ir.KindConstant:
		sig, err := resolveSignal(table, n.Symbol, m.Name)
		if err != nil {
			return Entity{}, err
		}
		base.Name = "constant-combinator"
		base.ControlBehavior = &ControlBehavior{Filters: []Filter{{Signal: sig, Count: n.Value, Index: 1}}}

	case ir.KindOutput:
		arg := n.Args[0]
		if arg.IsConstant {
			sig, err := resolveSignal(table, 0, m.Name)
			if err != nil {
				return Entity{}, err
			}
			base.Name = "constant-combinator"
			base.ControlBehavior = &ControlBehavior{Filters: []Filter{{Signal: sig, Count: arg.Value, Index: 1}}}
		} else {
			base.Name = "medium-electric-pole"
		}

	case ir.KindBinOp:
		out, err := resolveSignal(table, n.Symbol, m.Name)
		if err != nil {
			return Entity{}, err
		}
		if n.Op.IsComparator() {
			lhsSig, err := signalOf(m, table, n.Args[0])
			if err != nil {
				return Entity{}, err
			}
			dc := &DeciderConditions{Comparator: n.Op.Token(), FirstSignal: &lhsSig, OutputSignal: &out}
			if n.Args[1].IsConstant {
				v := n.Args[1].Value
				dc.Constant = &v
			} else {
				s, err := signalOf(m, table, n.Args[1])
				if err != nil {
					return Entity{}, err
				}
				dc.SecondSignal = &s
			}
			base.Name = "decider-combinator"
			base.ControlBehavior = &ControlBehavior{DeciderConditions: dc}
		} else {
			ac := &ArithmeticConditions{Operation: n.Op.Token(), OutputSignal: &out}
			if err := bindOperand(m, table, n.Args[0], &ac.FirstSignal, &ac.FirstConstant); err != nil {
				return Entity{}, err
			}
			if err := bindOperand(m, table, n.Args[1], &ac.SecondSignal, &ac.SecondConstant); err != nil {
				return Entity{}, err
			}
			base.Name = "arithmetic-combinator"
			base.ControlBehavior = &ControlBehavior{ArithmeticConditions: ac}
		}

	case ir.KindBinOpSame:
		out, err := resolveSignal(table, n.Symbol, m.Name)
		if err != nil {
			return Entity{}, err
		}
		sig, err := signalOf(m, table, n.Args[0])
		if err != nil {
			return Entity{}, err
		}
		base.Name = "arithmetic-combinator"
		base.ControlBehavior = &ControlBehavior{ArithmeticConditions: &ArithmeticConditions{
			Operation: n.Op.Token(), FirstSignal: &sig, SecondSignal: &sig, OutputSignal: &out,
		}}

	case ir.KindBinOpCmpGate:
		if n.Args[0].IsConstant || n.Args[1].IsConstant {
			return Entity{}, errors.New(errors.EmitInvalid, m.Name, "", "node %d: BinOpCmpGate retains a non-Link operand", idx)
		}
		lhsSig, err := signalOf(m, table, n.Args[0])
		if err != nil {
			return Entity{}, err
		}
		out, err := resolveSignal(table, n.Symbol, m.Name)
		if err != nil {
			return Entity{}, err
		}
		k := n.Const
		base.Name = "decider-combinator"
		base.ControlBehavior = &ControlBehavior{DeciderConditions: &DeciderConditions{
			Comparator: n.Op.Token(), FirstSignal: &lhsSig, Constant: &k, OutputSignal: &out, CopyCountFromInput: true,
		}}
	}
	return base, nil
}

func bindOperand(m *ir.Module, table *symbols.Table, a ir.Arg, sigOut **symbols.Signal, constOut **int32) error {
	if a.IsConstant {
		v := a.Value
		*constOut = &v
		return nil
	}
	sig, err := signalOf(m, table, a)
	if err != nil {
		return err
	}
	*sigOut = &sig
	return nil
}

func signalOf(m *ir.Module, table *symbols.Table, a ir.Arg) (symbols.Signal, error) {
	return resolveSignal(table, m.Nodes[a.Node].Symbol, m.Name)
}

func resolveSignal(table *symbols.Table, symbol int, modName string) (symbols.Signal, error) {
	sig, ok := table.Signal(symbol)
	if !ok {
		return symbols.Signal{}, errors.New(errors.EmitInvalid, modName, "", "symbol %d has no entry in the signal table", symbol)
	}
	return sig, nil
}

// poleGrid covers the entity bounding box with substations on the
// 18x18 periodic grid, continuing the entity_number sequence.
func poleGrid(m *ir.Module) []Entity {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	any := false
	for _, n := range m.Nodes {
		if n.IsRemoved() || n.Kind == ir.KindMultiDriver || n.Kind == ir.KindPlaceHolder || n.Pos == nil {
			continue
		}
		x, y := layout.TruePos(n)
		any = true
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	if !any {
		return nil
	}

	loX, hiX := int(math.Floor(minX/18)), int(math.Ceil(maxX/18))
	loY, hiY := int(math.Floor(minY/18)), int(math.Ceil(maxY/18))

	var poles []Entity
	for yi := loY; yi <= hiY; yi++ {
		for xi := loX; xi <= hiX; xi++ {
			poles = append(poles, Entity{
				Name:      "substation",
				Position:  Position{X: float32(0.5 + 18*xi), Y: float32(0.5 + 18*yi)},
				Direction: entityDirection,
			})
		}
	}
	return poles
}
