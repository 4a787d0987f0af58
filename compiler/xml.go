package compiler

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/sol25/pkg/ast"
)

// ---------------------------------------------------------------------------
// XML form of a program
// ---------------------------------------------------------------------------

type xmlProgram struct {
	XMLName     xml.Name   `xml:"program"`
	Language    string     `xml:"language,attr"`
	Description string     `xml:"description,attr,omitempty"`
	Classes     []xmlClass `xml:"class"`
}

type xmlClass struct {
	Name    string      `xml:"name,attr"`
	Parent  string      `xml:"parent,attr"`
	Methods []xmlMethod `xml:"method"`
}

type xmlMethod struct {
	Selector string    `xml:"selector,attr"`
	Block    *xmlBlock `xml:"block"`
}

type xmlBlock struct {
	Arity   string      `xml:"arity,attr"`
	Params  []xmlParam  `xml:"parameter"`
	Assigns []xmlAssign `xml:"assign"`
}

type xmlParam struct {
	Order string `xml:"order,attr"`
	Name  string `xml:"name,attr"`
}

type xmlAssign struct {
	Order string   `xml:"order,attr"`
	Var   *xmlVar  `xml:"var"`
	Expr  *xmlExpr `xml:"expr"`
}

type xmlVar struct {
	Name string `xml:"name,attr"`
}

type xmlExpr struct {
	Literal *xmlLiteral `xml:"literal"`
	Var     *xmlVar     `xml:"var"`
	Block   *xmlBlock   `xml:"block"`
	Send    *xmlSend    `xml:"send"`
}

type xmlLiteral struct {
	Class string `xml:"class,attr"`
	Value string `xml:"value,attr"`
}

type xmlSend struct {
	Selector string   `xml:"selector,attr"`
	Expr     *xmlExpr `xml:"expr"`
	Args     []xmlArg `xml:"arg"`
}

type xmlArg struct {
	Order string   `xml:"order,attr"`
	Expr  *xmlExpr `xml:"expr"`
}

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// ParseXML reads a program in its XML form. Documents that are not well
// formed yield code 41; documents with an unexpected structure yield 42.
func ParseXML(r io.Reader) (*ast.Program, error) {
	var doc xmlProgram
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, newError(CodeXMLFormat, ast.Position{}, "malformed XML: %v", err)
		}
		return nil, newError(CodeXMLStructure, ast.Position{}, "unexpected XML structure: %v", err)
	}

	if doc.Language != ast.Language {
		return nil, structuref("unsupported language %q", doc.Language)
	}

	prog := &ast.Program{Language: doc.Language, Description: doc.Description}
	for _, xc := range doc.Classes {
		c, err := convertClass(xc)
		if err != nil {
			return nil, err
		}
		prog.Classes = append(prog.Classes, c)
	}
	return prog, nil
}

func structuref(format string, args ...interface{}) *Error {
	return newError(CodeXMLStructure, ast.Position{}, format, args...)
}

func convertClass(xc xmlClass) (*ast.Class, error) {
	if xc.Name == "" || xc.Parent == "" {
		return nil, structuref("class element needs name and parent attributes")
	}
	c := &ast.Class{Name: xc.Name, Parent: xc.Parent}
	for _, xm := range xc.Methods {
		if xm.Selector == "" {
			return nil, structuref("method of class %s has no selector", xc.Name)
		}
		if xm.Block == nil {
			return nil, structuref("method %s>>%s has no block", xc.Name, xm.Selector)
		}
		body, err := convertBlock(xm.Block)
		if err != nil {
			return nil, err
		}
		c.Methods = append(c.Methods, &ast.Method{Selector: xm.Selector, Body: body})
	}
	return c, nil
}

func convertBlock(xb *xmlBlock) (*ast.Block, error) {
	arity, err := parseOrder("arity", xb.Arity, 0)
	if err != nil {
		return nil, err
	}
	b := &ast.Block{Arity: arity}

	for _, xp := range xb.Params {
		order, err := parseOrder("parameter order", xp.Order, 1)
		if err != nil {
			return nil, err
		}
		if xp.Name == "" {
			return nil, structuref("parameter %d has no name", order)
		}
		b.Params = append(b.Params, &ast.Param{Order: order, Name: xp.Name})
	}

	for _, xa := range xb.Assigns {
		order, err := parseOrder("assign order", xa.Order, 1)
		if err != nil {
			return nil, err
		}
		if xa.Var == nil || xa.Var.Name == "" {
			return nil, structuref("assign %d has no var", order)
		}
		if xa.Expr == nil {
			return nil, structuref("assign %d has no expr", order)
		}
		expr, err := convertExpr(xa.Expr)
		if err != nil {
			return nil, err
		}
		b.Assigns = append(b.Assigns, &ast.Assign{
			Order: order,
			Var:   &ast.Var{Name: xa.Var.Name},
			Expr:  expr,
		})
	}
	return b, nil
}

func convertExpr(xe *xmlExpr) (*ast.Expr, error) {
	count := 0
	for _, present := range []bool{xe.Literal != nil, xe.Var != nil, xe.Block != nil, xe.Send != nil} {
		if present {
			count++
		}
	}
	if count != 1 {
		return nil, structuref("expr must contain exactly one element, found %d", count)
	}

	switch {
	case xe.Literal != nil:
		if xe.Literal.Class == "" {
			return nil, structuref("literal has no class")
		}
		return &ast.Expr{Literal: &ast.Literal{Class: xe.Literal.Class, Value: xe.Literal.Value}}, nil

	case xe.Var != nil:
		if xe.Var.Name == "" {
			return nil, structuref("var has no name")
		}
		return &ast.Expr{Var: &ast.Var{Name: xe.Var.Name}}, nil

	case xe.Block != nil:
		b, err := convertBlock(xe.Block)
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Block: b}, nil
	}

	xs := xe.Send
	if xs.Selector == "" {
		return nil, structuref("send has no selector")
	}
	s := &ast.Send{Selector: xs.Selector}
	if xs.Expr != nil {
		recv, err := convertExpr(xs.Expr)
		if err != nil {
			return nil, err
		}
		s.Receiver = recv
	}
	for _, xa := range xs.Args {
		order, err := parseOrder("arg order", xa.Order, 1)
		if err != nil {
			return nil, err
		}
		if xa.Expr == nil {
			return nil, structuref("arg %d of %s has no expr", order, xs.Selector)
		}
		arg, err := convertExpr(xa.Expr)
		if err != nil {
			return nil, err
		}
		s.Args = append(s.Args, &ast.Arg{Order: order, Expr: arg})
	}
	return &ast.Expr{Send: s}, nil
}

func parseOrder(what, value string, min int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < min {
		return 0, structuref("invalid %s %q", what, value)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// WriteXML writes p in its XML form with two-space indentation.
func WriteXML(w io.Writer, p *ast.Program) error {
	doc := xmlProgram{Language: p.Language, Description: p.Description}
	if doc.Language == "" {
		doc.Language = ast.Language
	}
	for _, c := range p.Classes {
		xc := xmlClass{Name: c.Name, Parent: c.Parent}
		for _, m := range c.Methods {
			xc.Methods = append(xc.Methods, xmlMethod{Selector: m.Selector, Block: toXMLBlock(m.Body)})
		}
		doc.Classes = append(doc.Classes, xc)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing XML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func toXMLBlock(b *ast.Block) *xmlBlock {
	if b == nil {
		return nil
	}
	xb := &xmlBlock{Arity: strconv.Itoa(b.Arity)}
	for _, p := range b.SortedParams() {
		xb.Params = append(xb.Params, xmlParam{Order: strconv.Itoa(p.Order), Name: p.Name})
	}
	for _, a := range b.SortedAssigns() {
		xa := xmlAssign{Order: strconv.Itoa(a.Order), Expr: toXMLExpr(a.Expr)}
		if a.Var != nil {
			xa.Var = &xmlVar{Name: a.Var.Name}
		}
		xb.Assigns = append(xb.Assigns, xa)
	}
	return xb
}

func toXMLExpr(e *ast.Expr) *xmlExpr {
	switch {
	case e == nil:
		return nil
	case e.Literal != nil:
		return &xmlExpr{Literal: &xmlLiteral{Class: e.Literal.Class, Value: e.Literal.Value}}
	case e.Var != nil:
		return &xmlExpr{Var: &xmlVar{Name: e.Var.Name}}
	case e.Block != nil:
		return &xmlExpr{Block: toXMLBlock(e.Block)}
	case e.Send != nil:
		xs := &xmlSend{Selector: e.Send.Selector, Expr: toXMLExpr(e.Send.Receiver)}
		for _, a := range e.Send.SortedArgs() {
			xs.Args = append(xs.Args, xmlArg{Order: strconv.Itoa(a.Order), Expr: toXMLExpr(a.Expr)})
		}
		return &xmlExpr{Send: xs}
	}
	return &xmlExpr{}
}
