package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/sol25/pkg/ast"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<program language="SOL25" description="Hello">
  <class name="Main" parent="Object">
    <method selector="run">
      <block arity="0">
        <assign order="2">
          <var name="y"/>
          <expr>
            <send selector="print">
              <expr><var name="x"/></expr>
            </send>
          </expr>
        </assign>
        <assign order="1">
          <var name="x"/>
          <expr><literal class="String" value="Hello"/></expr>
        </assign>
      </block>
    </method>
  </class>
</program>`

func TestParseXML(t *testing.T) {
	prog, err := ParseXML(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("ParseXML returned %v", err)
	}
	if prog.Description != "Hello" || len(prog.Classes) != 1 {
		t.Fatalf("program = %+v", prog)
	}
	body := prog.Classes[0].Method("run").Body
	assigns := body.SortedAssigns()
	if len(assigns) != 2 || assigns[0].Var.Name != "x" || assigns[1].Var.Name != "y" {
		t.Errorf("assigns out of order: %+v", assigns)
	}
	if s := assigns[1].Expr.Send; s == nil || s.Selector != "print" || s.Receiver.Var.Name != "x" {
		t.Errorf("send = %+v", assigns[1].Expr)
	}
}

func TestParseXMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code int
	}{
		{"empty", ``, CodeXMLFormat},
		{"unclosed", `<program language="SOL25">`, CodeXMLFormat},
		{"garbage", `<<<`, CodeXMLFormat},
		{"wrong root", `<prog language="SOL25"/>`, CodeXMLStructure},
		{"wrong language", `<program language="SOL24"/>`, CodeXMLStructure},
		{"class without parent", `<program language="SOL25"><class name="Main"/></program>`, CodeXMLStructure},
		{"method without block", `<program language="SOL25"><class name="Main" parent="Object"><method selector="run"/></class></program>`, CodeXMLStructure},
		{"bad arity", `<program language="SOL25"><class name="Main" parent="Object"><method selector="run"><block arity="x"/></method></class></program>`, CodeXMLStructure},
		{"empty expr", `<program language="SOL25"><class name="Main" parent="Object"><method selector="run"><block arity="0"><assign order="1"><var name="x"/><expr/></assign></block></method></class></program>`, CodeXMLStructure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseXML(strings.NewReader(tc.doc))
			if code := CodeOf(err); code != tc.code {
				t.Errorf("code = %d, want %d (%v)", code, tc.code, err)
			}
		})
	}
}

func TestWriteXMLRoundTrip(t *testing.T) {
	src := `"Demo"
class Main : Object {
  run [| x := Integer. y := [:a | b := a plus: 1. ]. z := x from: 'it\'s'. ]
}`
	prog, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile returned %v", err)
	}

	var buf bytes.Buffer
	if err := WriteXML(&buf, prog); err != nil {
		t.Fatalf("WriteXML returned %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("missing XML header:\n%s", out)
	}
	if !strings.Contains(out, `<literal class="class" value="Integer"></literal>`) {
		t.Errorf("class literal not written as expected:\n%s", out)
	}
	if !strings.Contains(out, "\n  <class name=\"Main\" parent=\"Object\">") {
		t.Errorf("expected two-space indentation:\n%s", out)
	}

	back, err := ParseXML(&buf)
	if err != nil {
		t.Fatalf("ParseXML of written program returned %v", err)
	}
	if back.Description != "Demo" {
		t.Errorf("description = %q", back.Description)
	}
	body := back.Classes[0].Method("run").Body
	if len(body.Assigns) != 3 {
		t.Fatalf("got %d statements, want 3", len(body.Assigns))
	}
	lit := body.Assigns[2].Expr.Send.Args[0].Expr.Literal
	if lit.Class != ast.LiteralString || lit.Value != `it\'s` {
		t.Errorf("string literal = %+v", lit)
	}
	if blk := body.Assigns[1].Expr.Block; blk == nil || blk.Arity != 1 || blk.Params[0].Name != "a" {
		t.Errorf("block = %+v", body.Assigns[1].Expr)
	}
}
