package ast

// -----------------------------------------------------------------------------

type IncludedFrom struct {
	File string `json:"file"`
}

// Loc is a source location as dumped by clang. Fields equal to the previously
// dumped location are omitted by clang, see LocTracker.
type Loc struct {
	Offset       int64         `json:"offset,omitempty"` // 432
	File         string        `json:"file,omitempty"`   // "sqlite3.i"
	Line         int           `json:"line,omitempty"`
	PresumedFile string        `json:"presumedFile,omitempty"`
	PresumedLine int           `json:"presumedLine,omitempty"`
	Col          int           `json:"col,omitempty"`
	TokLen       int           `json:"tokLen,omitempty"`
	IncludedFrom *IncludedFrom `json:"includedFrom,omitempty"` // "sqlite3.c"
	SpellingLoc  *Loc          `json:"spellingLoc,omitempty"`
	ExpansionLoc *Loc          `json:"expansionLoc,omitempty"`
}

type Range struct {
	Begin Loc `json:"begin"`
	End   Loc `json:"end"`
}

// -----------------------------------------------------------------------------

type ID string

type Kind string

const (
	TranslationUnitDecl Kind = "TranslationUnitDecl"
	TypedefDecl         Kind = "TypedefDecl"
	RecordDecl          Kind = "RecordDecl"
	VarDecl             Kind = "VarDecl"
	FunctionDecl        Kind = "FunctionDecl"
	ParmVarDecl         Kind = "ParmVarDecl"
	CompoundStmt        Kind = "CompoundStmt"
	ReturnStmt          Kind = "ReturnStmt"
	ParenExpr           Kind = "ParenExpr"
	CallExpr            Kind = "CallExpr"
	ConstantExpr        Kind = "ConstantExpr"
	CStyleCastExpr      Kind = "CStyleCastExpr"
	DeclRefExpr         Kind = "DeclRefExpr"
	ImplicitCastExpr    Kind = "ImplicitCastExpr"
	UnaryOperator       Kind = "UnaryOperator"
	CharacterLiteral    Kind = "CharacterLiteral"
	IntegerLiteral      Kind = "IntegerLiteral"
	FloatingLiteral     Kind = "FloatingLiteral"
	StringLiteral       Kind = "StringLiteral"
	PredefinedExpr      Kind = "PredefinedExpr"
)

type ValueCategory string

const (
	RValue ValueCategory = "rvalue"
	LValue ValueCategory = "lvalue"
)

type StorageClass string

const (
	Static StorageClass = "static"
	Extern StorageClass = "extern"
)

type CastKind string

const (
	LValueToRValue         CastKind = "LValueToRValue"
	IntegralCast           CastKind = "IntegralCast"
	FloatingCast           CastKind = "FloatingCast"
	FunctionToPointerDecay CastKind = "FunctionToPointerDecay"
	ArrayToPointerDecay    CastKind = "ArrayToPointerDecay"
	BuiltinFnToFnPtr       CastKind = "BuiltinFnToFnPtr"
	NoOp                   CastKind = "NoOp"
)

type (
	// OpCode can be:
	//   + - * / || >= -- ++ etc
	OpCode string
)

type Type struct {
	// QualType can be:
	//   unsigned int
	//   struct ConstantString
	//   volatile uint32_t
	//   int (*)(const char *, ...)
	//   const char *restrict
	//   const char [7]
	//   char *
	//   void
	//   ...
	QualType          string `json:"qualType"`
	DesugaredQualType string `json:"desugaredQualType,omitempty"`
	TypeAliasDeclID   ID     `json:"typeAliasDeclId,omitempty"`
}

// Canonical returns the desugared spelling if clang provided one.
func (t *Type) Canonical() string {
	if t.DesugaredQualType != "" {
		return t.DesugaredQualType
	}
	return t.QualType
}

type Node struct {
	ID                  ID            `json:"id,omitempty"`
	Kind                Kind          `json:"kind,omitempty"`
	Loc                 *Loc          `json:"loc,omitempty"`
	Range               *Range        `json:"range,omitempty"`
	PreviousDecl        ID            `json:"previousDecl,omitempty"`
	ParentDeclContextID ID            `json:"parentDeclContextId,omitempty"`
	IsImplicit          bool          `json:"isImplicit,omitempty"`
	IsReferenced        bool          `json:"isReferenced,omitempty"`
	IsUsed              bool          `json:"isUsed,omitempty"`
	StorageClass        StorageClass  `json:"storageClass,omitempty"`
	TagUsed             string        `json:"tagUsed,omitempty"` // struct | union
	Name                string        `json:"name,omitempty"`
	MangledName         string        `json:"mangledName,omitempty"`
	Type                *Type         `json:"type,omitempty"`
	Variadic            bool          `json:"variadic,omitempty"`
	ReferencedDecl      *Node         `json:"referencedDecl,omitempty"`
	OpCode              OpCode        `json:"opcode,omitempty"`
	ValueCategory       ValueCategory `json:"valueCategory,omitempty"`
	Value               interface{}   `json:"value,omitempty"`
	CastKind            CastKind      `json:"castKind,omitempty"`
	Inner               []*Node       `json:"inner,omitempty"`
}

// -----------------------------------------------------------------------------

// Walk calls fn for n and then, if fn returns true, for each inner node in
// document order.
func (n *Node) Walk(fn func(n *Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, v := range n.Inner {
		v.Walk(fn)
	}
}

// StripImplicit skips implicit casts, parens and constant wrappers, returning
// the expression as the user wrote it.
func (n *Node) StripImplicit() *Node {
	for n != nil && len(n.Inner) == 1 {
		switch n.Kind {
		case ImplicitCastExpr, ParenExpr, ConstantExpr:
			n = n.Inner[0]
			continue
		}
		break
	}
	return n
}

// CalleeName returns the name of the function directly called by a CallExpr,
// or "" for calls through function pointers.
func (n *Node) CalleeName() string {
	if n.Kind != CallExpr || len(n.Inner) == 0 {
		return ""
	}
	fn := n.Inner[0].StripImplicit()
	if fn.Kind == DeclRefExpr && fn.ReferencedDecl != nil &&
		fn.ReferencedDecl.Kind == FunctionDecl {
		return fn.ReferencedDecl.Name
	}
	return ""
}

// Args returns the arguments of a CallExpr.
func (n *Node) Args() []*Node {
	if n.Kind != CallExpr || len(n.Inner) == 0 {
		return nil
	}
	return n.Inner[1:]
}

// StringLiteral returns the decoded contents of a narrow string literal.
func (n *Node) StringLiteral() (string, bool) {
	if n == nil || n.Kind != StringLiteral {
		return "", false
	}
	lit, ok := n.Value.(string)
	if !ok {
		return "", false
	}
	s, err := Unquote(lit)
	if err != nil {
		return "", false
	}
	return s, true
}

// -----------------------------------------------------------------------------
