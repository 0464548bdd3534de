package lang

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/simonNozaki/koys/ast"
)

// ValueType enumerates the different runtime value categories.
type ValueType int

const (
	TypeInvalid ValueType = iota
	TypeInt
	TypeBool
	TypeText
	TypeSequence
	TypeSet
	TypeMapping
	TypeFunction
)

func (t ValueType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeText:
		return "text"
	case TypeSequence:
		return "sequence"
	case TypeSet:
		return "set"
	case TypeMapping:
		return "mapping"
	case TypeFunction:
		return "function"
	default:
		return "invalid"
	}
}

// Value represents any runtime object in the interpreter.
type Value struct {
	Type    ValueType
	payload interface{}
}

// Function is a function value: parameter names and an unevaluated body.
// It carries no environment; names in the body resolve against the scope
// chain active when it is called.
type Function struct {
	Params []string
	Body   *ast.BlockExpr
}

type setPayload struct {
	items []Value
}

// IntValue constructs an integer Value.
func IntValue(i int64) Value {
	return Value{Type: TypeInt, payload: i}
}

// BoolValue returns the boolean Value equivalent.
func BoolValue(b bool) Value {
	return Value{Type: TypeBool, payload: b}
}

// TextValue constructs a text Value.
func TextValue(s string) Value {
	return Value{Type: TypeText, payload: s}
}

// SequenceValue constructs an ordered sequence.
func SequenceValue(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{Type: TypeSequence, payload: cp}
}

// SetValue constructs a set, dropping structurally equal duplicates.
func SetValue(items ...Value) Value {
	set := &setPayload{}
	for _, item := range items {
		if !containsValue(set.items, item) {
			set.items = append(set.items, item)
		}
	}
	return Value{Type: TypeSet, payload: set}
}

// MappingValue constructs a string-keyed mapping.
func MappingValue(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{Type: TypeMapping, payload: cp}
}

// FunctionValue wraps a parameter list and body.
func FunctionValue(params []string, body *ast.BlockExpr) Value {
	return Value{
		Type:    TypeFunction,
		payload: &Function{Params: params, Body: body},
	}
}

// Of lifts a host value into a Value.
func Of(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case Value:
		return v, nil
	case int:
		return IntValue(int64(v)), nil
	case int32:
		return IntValue(int64(v)), nil
	case int64:
		return IntValue(v), nil
	case bool:
		return BoolValue(v), nil
	case string:
		return TextValue(v), nil
	case []Value:
		return SequenceValue(v...), nil
	case []interface{}:
		items := make([]Value, len(v))
		for i, item := range v {
			lifted, err := Of(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = lifted
		}
		return SequenceValue(items...), nil
	case map[string]Value:
		return MappingValue(v), nil
	case map[string]interface{}:
		m := make(map[string]Value, len(v))
		for k, item := range v {
			lifted, err := Of(item)
			if err != nil {
				return Value{}, err
			}
			m[k] = lifted
		}
		return Value{Type: TypeMapping, payload: m}, nil
	case *Function:
		return Value{Type: TypeFunction, payload: v}, nil
	default:
		return Value{}, newError(TypeMismatch, "cannot convert %T to a value", raw)
	}
}

func (v Value) IsInt() bool      { return v.Type == TypeInt }
func (v Value) IsBool() bool     { return v.Type == TypeBool }
func (v Value) IsText() bool     { return v.Type == TypeText }
func (v Value) IsSequence() bool { return v.Type == TypeSequence }
func (v Value) IsSet() bool      { return v.Type == TypeSet }
func (v Value) IsMapping() bool  { return v.Type == TypeMapping }
func (v Value) IsFunction() bool { return v.Type == TypeFunction }

// AsInt narrows v to an integer.
func (v Value) AsInt() (int64, error) {
	if i, ok := v.payload.(int64); ok && v.Type == TypeInt {
		return i, nil
	}
	return 0, v.narrowError(TypeInt)
}

// AsBool narrows v to a boolean.
func (v Value) AsBool() (bool, error) {
	if b, ok := v.payload.(bool); ok && v.Type == TypeBool {
		return b, nil
	}
	return false, v.narrowError(TypeBool)
}

// AsText narrows v to a string.
func (v Value) AsText() (string, error) {
	if s, ok := v.payload.(string); ok && v.Type == TypeText {
		return s, nil
	}
	return "", v.narrowError(TypeText)
}

// AsSequence narrows v to its items. The returned slice must not be modified.
func (v Value) AsSequence() ([]Value, error) {
	if items, ok := v.payload.([]Value); ok && v.Type == TypeSequence {
		return items, nil
	}
	return nil, v.narrowError(TypeSequence)
}

// AsSet narrows v to its distinct members. The returned slice must not be modified.
func (v Value) AsSet() ([]Value, error) {
	if set, ok := v.payload.(*setPayload); ok && v.Type == TypeSet {
		return set.items, nil
	}
	return nil, v.narrowError(TypeSet)
}

// AsMapping narrows v to its entries. The returned map must not be modified.
func (v Value) AsMapping() (map[string]Value, error) {
	if m, ok := v.payload.(map[string]Value); ok && v.Type == TypeMapping {
		return m, nil
	}
	return nil, v.narrowError(TypeMapping)
}

// AsFunction narrows v to a function.
func (v Value) AsFunction() (*Function, error) {
	if fn, ok := v.payload.(*Function); ok && v.Type == TypeFunction {
		return fn, nil
	}
	return nil, v.narrowError(TypeFunction)
}

func (v Value) narrowError(want ValueType) error {
	return newError(TypeMismatch, "expected %s, got %s %s", want, v.Type, v.String())
}

// Equal reports structural equality. Sequences compare in order; sets and
// mappings ignore order.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeInt, TypeBool, TypeText:
		return v.payload == other.payload
	case TypeSequence:
		a, _ := v.AsSequence()
		b, _ := other.AsSequence()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case TypeSet:
		a, _ := v.AsSet()
		b, _ := other.AsSet()
		if len(a) != len(b) {
			return false
		}
		for _, item := range a {
			if !containsValue(b, item) {
				return false
			}
		}
		return true
	case TypeMapping:
		a, _ := v.AsMapping()
		b, _ := other.AsMapping()
		if len(a) != len(b) {
			return false
		}
		for k, av := range a {
			bv, ok := b[k]
			if !ok || !av.Equal(bv) {
				return false
			}
		}
		return true
	case TypeFunction:
		a, _ := v.AsFunction()
		b, _ := other.AsFunction()
		if a.Body != b.Body || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if a.Params[i] != b.Params[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func containsValue(items []Value, v Value) bool {
	for _, item := range items {
		if item.Equal(v) {
			return true
		}
	}
	return false
}

// TypeName returns the user-facing name of v's type.
func (v Value) TypeName() string {
	return v.Type.String()
}

func (v Value) String() string {
	switch v.Type {
	case TypeInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10)
	case TypeBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b)
	case TypeText:
		s, _ := v.AsText()
		return strconv.Quote(s)
	case TypeSequence:
		items, _ := v.AsSequence()
		return "[" + joinValues(items) + "]"
	case TypeSet:
		items, _ := v.AsSet()
		return "%{" + joinValues(items) + "}"
	case TypeMapping:
		m, _ := v.AsMapping()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, m[k].String())
		}
		return "#{" + strings.Join(parts, ", ") + "}"
	case TypeFunction:
		fn, _ := v.AsFunction()
		return "<fn(" + strings.Join(fn.Params, ", ") + ")>"
	default:
		return "<invalid>"
	}
}

// Display renders v the way println shows it: text without quotes.
func (v Value) Display() string {
	if s, err := v.AsText(); err == nil {
		return s
	}
	return v.String()
}

func joinValues(items []Value) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return strings.Join(parts, ", ")
}
