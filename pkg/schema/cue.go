package schema

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

const regionDefinition = "#Region"

// ExportCUE renders a descriptor graph as CUE definitions. Every Interface
// becomes an open definition named after it; the root is listed first.
func ExportCUE(d Descriptor) string {
	e := &cueExporter{seen: make(map[string]bool)}
	root := e.expr(d)

	var b strings.Builder
	if _, ok := d.(*InterfaceType); !ok {
		fmt.Fprintf(&b, "#Value: %s\n", root)
	}
	for i, def := range e.defs {
		if i > 0 || b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(def)
	}
	if e.usesRegion {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		quoted := make([]string, 0, len(supportedRegions))
		for _, r := range supportedRegions {
			quoted = append(quoted, strconv.Quote(r))
		}
		fmt.Fprintf(&b, "%s: %s\n", regionDefinition, strings.Join(quoted, " | "))
	}
	return b.String()
}

// ValidateCUE checks value against the CUE rendering of d.
func ValidateCUE(d Descriptor, value any) error {
	ctx := cuecontext.New()

	compiled := ctx.CompileString(ExportCUE(d), cue.Filename("schema.cue"))
	if err := compiled.Err(); err != nil {
		return fmt.Errorf("failed to compile exported schema: %w", err)
	}

	def := compiled.LookupPath(cue.ParsePath(rootDefinition(d)))
	if err := def.Err(); err != nil {
		return fmt.Errorf("failed to look up %s: %w", rootDefinition(d), err)
	}

	data := ctx.Encode(value)
	if err := data.Err(); err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	if err := def.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("cue validation failed: %w", err)
	}
	return nil
}

func rootDefinition(d Descriptor) string {
	if iface, ok := d.(*InterfaceType); ok {
		return "#" + iface.Name()
	}
	return "#Value"
}

type cueExporter struct {
	defs       []string
	seen       map[string]bool
	usesRegion bool
}

func (e *cueExporter) expr(d Descriptor) string {
	switch t := d.(type) {
	case *BooleanType:
		return "bool"
	case *NumberType:
		return "number"
	case *IntegerType:
		if t.lo == MinInteger && t.hi == MaxInteger {
			return "int"
		}
		return fmt.Sprintf("int & >=%d & <=%d", t.lo, t.hi)
	case *StringType:
		if t.NonEmpty() {
			return `string & !=""`
		}
		return "string"
	case *RegionType:
		e.usesRegion = true
		return regionDefinition
	case *EnumType:
		quoted := make([]string, 0, len(t.values))
		for _, v := range t.values {
			quoted = append(quoted, strconv.Quote(v))
		}
		return strings.Join(quoted, " | ")
	case *OptionalType:
		return "null | " + e.expr(t.Inner())
	case *ArrayType:
		elem := e.expr(t.Elem())
		if strings.Contains(elem, "|") || strings.Contains(elem, "&") {
			elem = "(" + elem + ")"
		}
		return "[..." + elem + "]"
	case *InterfaceType:
		e.define(t)
		return "#" + t.Name()
	}
	return "_"
}

func (e *cueExporter) define(t *InterfaceType) {
	if e.seen[t.Name()] {
		return
	}
	e.seen[t.Name()] = true

	// reserve the slot so the parent precedes its children
	slot := len(e.defs)
	e.defs = append(e.defs, "")

	var b strings.Builder
	fmt.Fprintf(&b, "#%s: {\n", t.Name())
	for _, f := range t.fields {
		name := cueLabel(f.Name)
		if opt, ok := f.Descriptor.(*OptionalType); ok {
			fmt.Fprintf(&b, "\t%s?: null | %s\n", name, e.expr(opt.Inner()))
			continue
		}
		fmt.Fprintf(&b, "\t%s: %s\n", name, e.expr(f.Descriptor))
	}
	b.WriteString("\t...\n}\n")
	e.defs[slot] = b.String()
}

func cueLabel(name string) string {
	for i, r := range name {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		digit := r >= '0' && r <= '9'
		if !letter && !(digit && i > 0) {
			return strconv.Quote(name)
		}
	}
	if name == "" {
		return `""`
	}
	return name
}
