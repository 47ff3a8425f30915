package blueprint

import (
	"strconv"

	"combc/internal/errors"
	"combc/internal/ir"
)

// circuitID: combinators carry two circuits (In=1, Out=2); every other
// emitting kind (constant-combinator, power pole) has only one.
func circuitID(kind ir.Kind, dir ir.Direction) int {
	switch kind {
	case ir.KindBinOp, ir.KindBinOpSame, ir.KindBinOpCmpGate:
		if dir == ir.DirOut {
			return 2
		}
		return 1
	default:
		return 1
	}
}

func wireConnections(m *ir.Module, entities []Entity, nodeToEntity map[int]int) error {
	for _, link := range m.Links {
		if link.Color == ir.ColorNone {
			return errors.New(errors.EmitInvalid, m.Name, "", "an uncolored link reached the emitter")
		}
		aNum, aOK := nodeToEntity[link.A.Node]
		bNum, bOK := nodeToEntity[link.B.Node]
		if !aOK || !bOK {
			return errors.New(errors.EmitInvalid, m.Name, "", "wire link references a non-emitting node")
		}
		aCircuit := circuitID(m.Nodes[link.A.Node].Kind, link.A.Dir)
		bCircuit := circuitID(m.Nodes[link.B.Node].Kind, link.B.Dir)

		addConnection(&entities[aNum-1], aCircuit, link.Color, ConnRef{EntityID: bNum, CircuitID: bCircuit})
		addConnection(&entities[bNum-1], bCircuit, link.Color, ConnRef{EntityID: aNum, CircuitID: aCircuit})
	}
	return nil
}

func addConnection(e *Entity, circuit int, color ir.WireColor, ref ConnRef) {
	if e.Connections == nil {
		e.Connections = make(map[string]ConnPoint)
	}
	key := strconv.Itoa(circuit)
	point := e.Connections[key]
	if color == ir.ColorRed {
		point.Red = append(point.Red, ref)
	} else {
		point.Green = append(point.Green, ref)
	}
	e.Connections[key] = point
}
