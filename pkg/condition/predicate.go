package condition

import (
	"fmt"
	"strings"

	"github.com/aretw0/launchplan/pkg/domain"
)

// Op is the tag of a Predicate.
type Op string

const (
	OpAlways Op = "always"
	OpEquals Op = "equals"
	OpAnd    Op = "and"
	OpOr     Op = "or"
	OpNot    Op = "not"
)

// True is the literal a flag argument must hold to count as enabled.
const True = "true"

// Predicate is a boolean function of resolved arguments, represented as a value.
// Evaluation compares strings exactly: an argument is enabled only when it holds "true".
// The zero value is Always.
type Predicate struct {
	Op       Op
	Name     string
	Value    string
	Operands []Predicate
}

// Always is satisfied by every argument set.
func Always() Predicate { return Predicate{Op: OpAlways} }

// Equals holds when argument name has exactly value.
func Equals(name, value string) Predicate {
	return Predicate{Op: OpEquals, Name: name, Value: value}
}

// Flag holds when argument name is "true".
func Flag(name string) Predicate { return Equals(name, True) }

// And holds when every operand holds. And() is Always.
func And(ps ...Predicate) Predicate { return Predicate{Op: OpAnd, Operands: ps} }

// Or holds when at least one operand holds. Or() never holds.
func Or(ps ...Predicate) Predicate { return Predicate{Op: OpOr, Operands: ps} }

// Not negates p.
func Not(p Predicate) Predicate { return Predicate{Op: OpNot, Operands: []Predicate{p}} }

// Eval evaluates the predicate. Every referenced name is looked up, so an
// undeclared argument fails with UnknownArgumentError even when the result
// would already be decided.
func (p Predicate) Eval(args domain.Lookup) (bool, error) {
	switch p.Op {
	case "", OpAlways:
		return true, nil
	case OpEquals:
		v, err := args.Get(p.Name)
		if err != nil {
			return false, err
		}
		return v == p.Value, nil
	case OpAnd, OpOr:
		result := p.Op == OpAnd
		for _, o := range p.Operands {
			ok, err := o.Eval(args)
			if err != nil {
				return false, err
			}
			if p.Op == OpAnd {
				result = result && ok
			} else {
				result = result || ok
			}
		}
		return result, nil
	case OpNot:
		if len(p.Operands) != 1 {
			return false, fmt.Errorf("not: expected 1 operand, got %d", len(p.Operands))
		}
		ok, err := p.Operands[0].Eval(args)
		if err != nil {
			return false, err
		}
		return !ok, nil
	default:
		return false, fmt.Errorf("unknown predicate op %q", p.Op)
	}
}

// Names lists the argument names the predicate reads, without duplicates.
func (p Predicate) Names() []string {
	seen := make(map[string]bool)
	var names []string
	var walk func(Predicate)
	walk = func(q Predicate) {
		if q.Op == OpEquals && !seen[q.Name] {
			seen[q.Name] = true
			names = append(names, q.Name)
		}
		for _, o := range q.Operands {
			walk(o)
		}
	}
	walk(p)
	return names
}

// IsAlways reports whether the predicate is the trivial Always.
func (p Predicate) IsAlways() bool {
	return p.Op == "" || p.Op == OpAlways
}

// quoteEscaper escapes a value for a single-quoted string in Parse syntax.
var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// String renders the predicate in the syntax accepted by Parse.
func (p Predicate) String() string {
	switch p.Op {
	case "", OpAlways:
		return "true"
	case OpEquals:
		return fmt.Sprintf("%s == '%s'", p.Name, quoteEscaper.Replace(p.Value))
	case OpAnd, OpOr:
		if len(p.Operands) == 0 {
			if p.Op == OpAnd {
				return "true"
			}
			return "false"
		}
		sep := " && "
		if p.Op == OpOr {
			sep = " || "
		}
		parts := make([]string, len(p.Operands))
		for i, o := range p.Operands {
			parts[i] = o.group()
		}
		return strings.Join(parts, sep)
	case OpNot:
		if len(p.Operands) == 1 {
			return "!(" + p.Operands[0].String() + ")"
		}
	}
	return string(p.Op)
}

func (p Predicate) group() string {
	if (p.Op == OpAnd || p.Op == OpOr) && len(p.Operands) > 1 {
		return "(" + p.String() + ")"
	}
	return p.String()
}
