package ast

// Shorthand constructors for building trees by hand, mainly from embedders and
// tests. Positions are left zero.

func Int(v int64) *IntegerLiteral { return &IntegerLiteral{Value: v} }

func Bool(v bool) *BoolLiteral { return &BoolLiteral{Value: v} }

func Str(v string) *StringLiteral { return &StringLiteral{Value: v} }

func Ident(name string) *Identifier { return &Identifier{Name: name} }

func Array(items ...Expr) *ArrayLiteral { return &ArrayLiteral{Items: items} }

func Set(items ...Expr) *SetLiteral { return &SetLiteral{Items: items} }

func Object(props ...Property) *ObjectLiteral { return &ObjectLiteral{Properties: props} }

func Prop(key string, value Expr) Property { return Property{Key: key, Value: value} }

func Func(params []string, body ...Expr) *FunctionLiteral {
	return &FunctionLiteral{Params: params, Body: Block(body...)}
}

func Block(elements ...Expr) *BlockExpr { return &BlockExpr{Elements: elements} }

func Binary(op BinaryOp, lhs, rhs Expr) *BinaryExpr {
	return &BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs}
}

func Increment(operand Expr) *UnaryExpr { return &UnaryExpr{Op: OpIncrement, Operand: operand} }

func Decrement(operand Expr) *UnaryExpr { return &UnaryExpr{Op: OpDecrement, Operand: operand} }

func Let(name string, expr Expr) *Declaration { return &Declaration{Name: name, Expr: expr} }

func MutableLet(name string, expr Expr) *Declaration {
	return &Declaration{Name: name, Expr: expr, Mutable: true}
}

func Assign(name string, expr Expr) *Assignment { return &Assignment{Name: name, Expr: expr} }

func Print(arg Expr) *PrintLn { return &PrintLn{Arg: arg} }

func If(cond, then, els Expr) *IfExpr { return &IfExpr{Cond: cond, Then: then, Else: els} }

func While(cond, body Expr) *WhileExpr { return &WhileExpr{Cond: cond, Body: body} }

func Call(name string, args ...Expr) *FunctionCall { return &FunctionCall{Name: name, Args: args} }

func Labeled(name string, args ...LabeledParameter) *LabeledCall {
	return &LabeledCall{Name: name, Args: args}
}

func Label(name string, expr Expr) LabeledParameter {
	return LabeledParameter{Name: name, Parameter: expr}
}

func DefineFunc(name string, params []string, body ...Expr) *FunctionDefinition {
	return &FunctionDefinition{Name: name, Params: params, Body: Block(body...)}
}

func DefineVal(name string, expr Expr) *ValueDefinition {
	return &ValueDefinition{Name: name, Expr: expr}
}

func DefineMutableVal(name string, expr Expr) *ValueDefinition {
	return &ValueDefinition{Name: name, Expr: expr, Mutable: true}
}

func NewProgram(defs ...TopLevel) *Program { return &Program{Definitions: defs} }
