package ast

// -----------------------------------------------------------------------------

// Position is a fully resolved source location.
type Position struct {
	File   string // presumed file (honours #line markers in .i files)
	Line   int
	Col    int
	Offset int64
}

func (p Position) IsValid() bool {
	return p.Line > 0
}

// LocTracker recovers full positions from clang's JSON dump, which omits the
// file and line of a location when they equal those of the previously dumped
// location. Nodes must be fed to Observe in document order.
type LocTracker struct {
	file, presumedFile string
	line, presumedLine int
	delta              int // line - presumedLine of the previous location
}

// Observe records the locations carried by n (not its inner nodes).
func (p *LocTracker) Observe(n *Node) {
	if n.Loc != nil {
		p.loc(n.Loc)
	}
	if n.Range != nil {
		p.loc(&n.Range.Begin)
		p.loc(&n.Range.End)
	}
}

// Begin observes n and returns the user-facing start position of n. For macro
// expansions this is the expansion site.
func (p *LocTracker) Begin(n *Node) Position {
	var begin Position
	if n.Loc != nil {
		begin = p.loc(n.Loc)
	}
	if n.Range != nil {
		if pos := p.loc(&n.Range.Begin); pos.IsValid() {
			begin = pos
		}
		p.loc(&n.Range.End)
	}
	return begin
}

func (p *LocTracker) loc(l *Loc) Position {
	if l.SpellingLoc != nil || l.ExpansionLoc != nil {
		var pos Position
		if l.SpellingLoc != nil {
			pos = p.bare(l.SpellingLoc)
		}
		if l.ExpansionLoc != nil {
			pos = p.bare(l.ExpansionLoc)
		}
		return pos
	}
	return p.bare(l)
}

func (p *LocTracker) bare(l *Loc) Position {
	if l.Col == 0 { // invalid location: "{}"
		return Position{}
	}
	fileChanged := false
	if l.File != "" {
		fileChanged = l.File != p.file
		p.file = l.File
	}
	if l.Line != 0 {
		p.line = l.Line
	}
	switch {
	case l.PresumedFile != "":
		p.presumedFile = l.PresumedFile
	case fileChanged || p.presumedFile == "":
		p.presumedFile = p.file
	}
	switch {
	case l.PresumedLine != 0:
		p.presumedLine = l.PresumedLine
	case p.presumedFile == p.file:
		p.presumedLine = p.line
	case p.line-p.delta != p.presumedLine:
		// presumedLine is omitted when it equals either the spelling line or
		// the previous presumed line. The previous line marker offset tells
		// the two apart: only a same line location keeps the old value.
		p.presumedLine = p.line
	}
	p.delta = p.line - p.presumedLine
	return Position{File: p.presumedFile, Line: p.presumedLine, Col: l.Col, Offset: l.Offset}
}

// -----------------------------------------------------------------------------
