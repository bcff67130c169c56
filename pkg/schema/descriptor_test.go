package schema

import (
	"math"
	"strings"
	"testing"
)

func TestDescriptor_Scalars(t *testing.T) {
	tests := []struct {
		name      string
		desc      Descriptor
		value     any
		want      any
		wantError bool
	}{
		{name: "boolean true", desc: Boolean(), value: true, want: true},
		{name: "boolean rejects string", desc: Boolean(), value: "true", wantError: true},
		{name: "number int", desc: Number(), value: 90, want: float64(90)},
		{name: "number float", desc: Number(), value: 2.5, want: 2.5},
		{name: "number uint64", desc: Number(), value: uint64(7), want: float64(7)},
		{name: "number rejects bool", desc: Number(), value: false, wantError: true},
		{name: "number rejects NaN", desc: Number(), value: math.NaN(), wantError: true},
		{name: "number rejects infinity", desc: Number(), value: math.Inf(-1), wantError: true},
		{name: "integer int", desc: Integer(), value: 90, want: 90},
		{name: "integer integral float", desc: Integer(), value: 90.0, want: 90},
		{name: "integer negative", desc: Integer(), value: int64(-3), want: -3},
		{name: "integer rejects fraction", desc: Integer(), value: 90.6, wantError: true},
		{name: "integer rejects NaN", desc: Integer(), value: math.NaN(), wantError: true},
		{name: "integer rejects infinity", desc: Integer(), value: math.Inf(1), wantError: true},
		{name: "integer rejects beyond range", desc: Integer(), value: 1e19, wantError: true},
		{name: "integer rejects string", desc: Integer(), value: "90", wantError: true},
		{name: "integer range lower bound", desc: IntegerRange(1, 10), value: 1, want: 1},
		{name: "integer range below", desc: IntegerRange(1, 10), value: 0, wantError: true},
		{name: "integer range above", desc: IntegerRange(1, 10), value: 11, wantError: true},
		{name: "string empty allowed", desc: String(), value: "", want: ""},
		{name: "string rejects number", desc: String(), value: 1, wantError: true},
		{name: "non-empty string", desc: NonEmptyString(), value: "LogArchive", want: "LogArchive"},
		{name: "non-empty string rejects empty", desc: NonEmptyString(), value: "", wantError: true},
		{name: "region valid", desc: Region(), value: "eu-west-1", want: "eu-west-1"},
		{name: "region unknown", desc: Region(), value: "mars-north-1", wantError: true},
		{name: "region rejects list", desc: Region(), value: []any{"us-east-1"}, wantError: true},
		{name: "enum member", desc: Enum("Compression", "ZIP", "GZIP"), value: "GZIP", want: "GZIP"},
		{name: "enum non-member", desc: Enum("Compression", "ZIP", "GZIP"), value: "BZIP", wantError: true},
		{name: "enum is case sensitive", desc: Enum("Compression", "ZIP"), value: "zip", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, vs := tt.desc.Validate("field", tt.value)
			if tt.wantError {
				if len(vs) == 0 {
					t.Fatalf("expected violation, got value %v", got)
				}
				if vs[0].Path != "field" {
					t.Errorf("expected path %q, got %q", "field", vs[0].Path)
				}
				return
			}
			if len(vs) > 0 {
				t.Fatalf("unexpected violations: %v", vs)
			}
			if got != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}

func TestInteger_Messages(t *testing.T) {
	tests := []struct {
		desc  Descriptor
		value any
		want  string
	}{
		{Integer(), 90.6, "expected integer, got 90.6"},
		{Integer(), math.NaN(), "expected integer, got NaN"},
		{IntegerRange(1, 3653), 0, "expected integer in [1, 3653], got 0"},
		{Number(), math.Inf(1), "expected number, got +Inf"},
	}

	for _, tt := range tests {
		_, vs := tt.desc.Validate("retention", tt.value)
		if len(vs) != 1 {
			t.Fatalf("%v: expected 1 violation, got %d", tt.value, len(vs))
		}
		if vs[0].Message != tt.want {
			t.Errorf("message = %q, want %q", vs[0].Message, tt.want)
		}
		if vs[0].Actual != KindNumber {
			t.Errorf("actual = %q, want %q", vs[0].Actual, KindNumber)
		}
	}
}

func TestEnum_MessageNamesEnumAndValue(t *testing.T) {
	_, vs := Enum("BudgetType", "COST", "USAGE").Validate("reports.budgets.budgetType", "MONEY")
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(vs))
	}
	msg := vs[0].Message
	if !strings.Contains(msg, "BudgetType") || !strings.Contains(msg, "MONEY") {
		t.Errorf("message should name enum and value, got %q", msg)
	}
	if vs[0].Expected != "enum BudgetType" {
		t.Errorf("unexpected Expected: %q", vs[0].Expected)
	}
}

func TestEnum_ValuesAreCopied(t *testing.T) {
	values := []string{"A", "B"}
	e := Enum("Letters", values...)
	values[0] = "Z"

	if !e.Contains("A") || e.Contains("Z") {
		t.Error("enum must not alias the caller's slice")
	}

	got := e.Values()
	got[1] = "Y"
	if !e.Contains("B") {
		t.Error("Values must return a copy")
	}
}

func TestOptional(t *testing.T) {
	opt := Optional(NonEmptyString())

	if _, vs := opt.Validate("x", nil); len(vs) != 0 {
		t.Errorf("null should be accepted, got %v", vs)
	}
	if got, vs := opt.Validate("x", "value"); len(vs) != 0 || got != "value" {
		t.Errorf("present value should delegate, got %v %v", got, vs)
	}
	if _, vs := opt.Validate("x", ""); len(vs) != 1 {
		t.Errorf("inner violation should surface, got %v", vs)
	}
}

func TestArray_CollectsPerIndexViolations(t *testing.T) {
	arr := Array(Region())

	got, vs := arr.Validate("enabledRegions", []any{"us-east-1", "nowhere-1", 5, "eu-west-1"})
	if got != nil {
		t.Errorf("expected nil typed value on failure, got %v", got)
	}
	if len(vs) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(vs), vs)
	}
	if vs[0].Path != "enabledRegions[1]" {
		t.Errorf("unexpected first path %q", vs[0].Path)
	}
	if vs[1].Path != "enabledRegions[2]" || vs[1].Actual != KindNumber {
		t.Errorf("unexpected second violation %+v", vs[1])
	}
}

func TestArray_RejectsNonList(t *testing.T) {
	_, vs := Array(String()).Validate("list", "not-a-list")
	if len(vs) != 1 || vs[0].Actual != KindString {
		t.Fatalf("expected one type violation, got %v", vs)
	}
}

func TestInterface_RequiredAndUnknownKeys(t *testing.T) {
	iface := Interface("Cloudtrail",
		F("enable", Boolean()),
		F("organizationTrail", Boolean()),
		F("note", Optional(String())),
	)

	got, vs := iface.Validate("logging.cloudtrail", map[string]any{
		"enable":  true,
		"unknown": "ignored",
	})
	if got != nil {
		t.Errorf("expected nil typed value, got %v", got)
	}
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %v", vs)
	}
	if vs[0].Path != "logging.cloudtrail.organizationTrail" {
		t.Errorf("unexpected path %q", vs[0].Path)
	}
	if !strings.Contains(vs[0].Message, "organizationTrail") || !strings.Contains(vs[0].Message, "Cloudtrail") {
		t.Errorf("message should name field and interface, got %q", vs[0].Message)
	}

	got, vs = iface.Validate("", map[string]any{
		"enable":            true,
		"organizationTrail": false,
		"unknown":           1,
	})
	if len(vs) != 0 {
		t.Fatalf("unexpected violations: %v", vs)
	}
	obj := got.(Object)
	if obj.Has("unknown") {
		t.Error("unknown keys must not reach the typed value")
	}
	if obj.Has("note") {
		t.Error("absent optional fields must stay absent")
	}
}

func TestInterface_NullRequiredFieldIsMissing(t *testing.T) {
	iface := Interface("ControlTower", F("enable", Boolean()))
	_, vs := iface.Validate("controlTower", map[string]any{"enable": nil})
	if len(vs) != 1 || vs[0].Expected != "required field" {
		t.Fatalf("expected missing-field violation, got %v", vs)
	}
}

func TestInterface_PanicsOnDuplicateField(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate field")
		}
	}()
	Interface("Dup", F("a", Boolean()), F("a", String()))
}

func TestInterface_FieldsKeepOrder(t *testing.T) {
	iface := Interface("Ordered", F("z", Boolean()), F("a", Number()), F("m", String()))
	var names []string
	for _, f := range iface.Fields() {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "z,a,m" {
		t.Errorf("fields out of order: %v", names)
	}
	if f, ok := iface.Field("a"); !ok || !f.Required() {
		t.Error("expected required field a")
	}
}

func TestKindOf(t *testing.T) {
	tests := map[string]any{
		KindNull:    nil,
		KindBoolean: true,
		KindNumber:  int64(3),
		KindString:  "s",
		KindArray:   []any{},
		KindObject:  map[string]any{},
	}
	for want, value := range tests {
		if got := KindOf(value); got != want {
			t.Errorf("KindOf(%v) = %q, want %q", value, got, want)
		}
	}
	if got := KindOf(Object{}); got != KindObject {
		t.Errorf("KindOf(Object) = %q", got)
	}
}
