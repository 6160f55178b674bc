package engine

import (
	"fmt"
	"strings"

	"loom/content"
	"loom/listval"
)

// applyNative implements the NativeFunctionCall operator table: type
// promotion across int/float, string concatenation restricted to `+`,
// list set-algebra, and comparisons/logic yielding 0/1 integers.
func applyNative(op content.NativeFunctionKind, args []content.Value) (content.Value, error) {
	if op == content.OpHas || op == content.OpHasnt {
		if sa, ok := arg(args, 0).(content.StringValue); ok {
			if sb, ok := arg(args, 1).(content.StringValue); ok {
				return stringArith(op, sa.V, sb.V)
			}
		}
	}
	switch op {
	case content.OpNot:
		return boolInt(!arg(args, 0).Truthy()), nil
	case content.OpNegate:
		if f, ok := content.CastToFloat(arg(args, 0)); ok {
			if isFloat(arg(args, 0)) {
				return content.NewFloat(-f), nil
			}
			return content.NewInt(-int(f)), nil
		}
		return nil, fmt.Errorf("cannot negate %s", content.Describe(arg(args, 0)))
	case content.OpAnd:
		return boolInt(arg(args, 0).Truthy() && arg(args, 1).Truthy()), nil
	case content.OpOr:
		return boolInt(arg(args, 0).Truthy() || arg(args, 1).Truthy()), nil
	case content.OpHas:
		return listOp(args, func(a, b listval.List) content.Value { return boolInt(listval.Has(a, b)) })
	case content.OpHasnt:
		return listOp(args, func(a, b listval.List) content.Value { return boolInt(listval.HasNot(a, b)) })
	case content.OpIntersect:
		return listOp(args, func(a, b listval.List) content.Value { return content.NewList(listval.Intersection(a, b)) })
	}

	a, b := arg(args, 0), arg(args, 1)

	if la, ok := a.(content.ListValue); ok {
		if lb, ok := b.(content.ListValue); ok {
			return listArith(op, la.V, lb.V)
		}
	}

	if sa, ok := a.(content.StringValue); ok {
		if sb, ok := b.(content.StringValue); ok {
			return stringArith(op, sa.V, sb.V)
		}
	}

	fa, aIsNum := content.CastToFloat(a)
	fb, bIsNum := content.CastToFloat(b)
	if !aIsNum || !bIsNum {
		return nil, fmt.Errorf("type mismatch: %s and %s", content.Describe(a), content.Describe(b))
	}

	resultIsFloat := isFloat(a) || isFloat(b)

	switch op {
	case content.OpAdd:
		return numResult(fa+fb, resultIsFloat), nil
	case content.OpSubtract:
		return numResult(fa-fb, resultIsFloat), nil
	case content.OpMultiply:
		return numResult(fa*fb, resultIsFloat), nil
	case content.OpDivide:
		if fb == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		if resultIsFloat {
			return content.NewFloat(fa / fb), nil
		}
		return content.NewInt(int(fa) / int(fb)), nil
	case content.OpMod:
		if int(fb) == 0 {
			return nil, fmt.Errorf("mod by zero")
		}
		return content.NewInt(int(fa) % int(fb)), nil
	case content.OpEqual:
		return boolInt(a.Equal(b)), nil
	case content.OpNotEqual:
		return boolInt(!a.Equal(b)), nil
	case content.OpGreater:
		return boolInt(fa > fb), nil
	case content.OpLess:
		return boolInt(fa < fb), nil
	case content.OpGreaterOrEqual:
		return boolInt(fa >= fb), nil
	case content.OpLessOrEqual:
		return boolInt(fa <= fb), nil
	case content.OpMin:
		return numResult(minF(fa, fb), resultIsFloat), nil
	case content.OpMax:
		return numResult(maxF(fa, fb), resultIsFloat), nil
	}
	return nil, fmt.Errorf("unsupported native op %v", op)
}

func arg(args []content.Value, i int) content.Value {
	if i < 0 || i >= len(args) {
		return content.NewInt(0)
	}
	return args[i]
}

func isFloat(v content.Value) bool {
	_, ok := v.(content.FloatValue)
	return ok
}

func boolInt(b bool) content.Value {
	if b {
		return content.NewInt(1)
	}
	return content.NewInt(0)
}

func numResult(f float64, wantFloat bool) content.Value {
	if wantFloat {
		return content.NewFloat(f)
	}
	return content.NewInt(int(f))
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func stringArith(op content.NativeFunctionKind, a, b string) (content.Value, error) {
	switch op {
	case content.OpAdd:
		return content.NewString(a + b), nil
	case content.OpEqual:
		return boolInt(a == b), nil
	case content.OpNotEqual:
		return boolInt(a != b), nil
	case content.OpHas:
		return boolInt(strings.Contains(a, b)), nil
	case content.OpHasnt:
		return boolInt(!strings.Contains(a, b)), nil
	}
	return nil, fmt.Errorf("unsupported string operator %v", op)
}

func listOp(args []content.Value, f func(a, b listval.List) content.Value) (content.Value, error) {
	la, ok := arg(args, 0).(content.ListValue)
	if !ok {
		return nil, fmt.Errorf("expected list operand, got %s", content.Describe(arg(args, 0)))
	}
	lb, ok := arg(args, 1).(content.ListValue)
	if !ok {
		return nil, fmt.Errorf("expected list operand, got %s", content.Describe(arg(args, 1)))
	}
	return f(la.V, lb.V), nil
}

func listArith(op content.NativeFunctionKind, a, b listval.List) (content.Value, error) {
	switch op {
	case content.OpAdd:
		return content.NewList(listval.Union(a, b)), nil
	case content.OpSubtract:
		return content.NewList(listval.Without(a, b)), nil
	case content.OpEqual:
		return boolInt(listval.Equal(a, b)), nil
	case content.OpNotEqual:
		return boolInt(!listval.Equal(a, b)), nil
	case content.OpGreater:
		return boolInt(listMax(a) > listMax(b)), nil
	case content.OpLess:
		return boolInt(listMax(a) < listMax(b)), nil
	case content.OpGreaterOrEqual:
		return boolInt(listMax(a) >= listMax(b)), nil
	case content.OpLessOrEqual:
		return boolInt(listMax(a) <= listMax(b)), nil
	}
	return nil, fmt.Errorf("unsupported list operator %v", op)
}

func listMax(l listval.List) int {
	it, ok := l.Max()
	if !ok {
		return 0
	}
	return it.Value
}
