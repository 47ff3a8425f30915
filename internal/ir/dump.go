package ir

import (
	"fmt"
	"strings"

	"github.com/kr/pretty"
)

// DumpNodes renders a module's node list one line per node, in the
// teacher's debug-dump style; used by cmd/combc --dump-ir.
func DumpNodes(m *Module) string {
	var sb strings.Builder
	for i, n := range m.Nodes {
		fmt.Fprintf(&sb, "%4d: %s\n", i, describeNode(n))
	}
	return sb.String()
}

func describeNode(n Node) string {
	switch n.Kind {
	case KindInput:
		return fmt.Sprintf("Input(port=%d)", n.Port)
	case KindOutput:
		return fmt.Sprintf("Output(port=%d, %s)", n.Port, n.Args[0])
	case KindConstant:
		return fmt.Sprintf("Constant(%d)", n.Value)
	case KindBinOp:
		return fmt.Sprintf("BinOp(%s %s %s)", n.Args[0], n.Op, n.Args[1])
	case KindGate:
		return fmt.Sprintf("Gate(cond=%s, polarity=%v, value=%s)", n.Args[0], n.Polarity, n.Args[1])
	case KindMultiDriver:
		return fmt.Sprintf("MultiDriver(%v)", n.Args)
	case KindBinOpSame:
		return fmt.Sprintf("BinOpSame(%s %s %s)", n.Args[0], n.Op, n.Args[0])
	case KindBinOpCmpGate:
		return fmt.Sprintf("BinOpCmpGate(%s %s %d -> %s)", n.Args[0], n.Op, n.Const, n.Args[1])
	case KindPlaceHolder:
		return "PlaceHolder"
	case KindRemoved:
		return "Removed"
	default:
		return fmt.Sprintf("%#v", n)
	}
}

// DumpVerbose uses kr/pretty for a fully structural dump, shown when
// --dump-ir is combined with --verbose.
func DumpVerbose(m *Module) string {
	return pretty.Sprint(m.Nodes)
}
