package cql

import (
	"math"
	"testing"

	apierrors "github.com/olgasafonova/volcano-mcp-server/internal/errors"
)

func TestClause_Encode(t *testing.T) {
	tests := []struct {
		name   string
		clause Clause
		want   string
	}{
		{"like", Contains("Country", "Japan"), "Country LIKE '%Japan%'"},
		{"equals string", Equals("VolcanoType", "Stratovolcano"), "VolcanoType = 'Stratovolcano'"},
		{"equals int", Equals("VolcanoNumber", 211020), "VolcanoNumber = 211020"},
		{"at least", AtLeast("Elevation", 1000), "Elevation >= 1000"},
		{"at least fractional", AtLeast("ExplosivityIndexMax", 2.5), "ExplosivityIndexMax >= 2.5"},
		{"at most negative", AtMost("StartDateYear", -1000), "StartDateYear <= -1000"},
		{"at least zero", AtLeast("ExplosivityIndexMax", 0), "ExplosivityIndexMax >= 0"},
		{"is null", IsNull("EndDateYear"), "EndDateYear IS NULL"},
		{
			"subquery",
			In("Volcano_Name", "Smithsonian_VOTW_Holocene_Volcanoes", "Volcano_Name", Contains("Country", "Chile")),
			"Volcano_Name IN (SELECT Volcano_Name FROM Smithsonian_VOTW_Holocene_Volcanoes WHERE Country LIKE '%Chile%')",
		},
		{"quote escaping", Contains("VolcanoName", "O'Leary"), "VolcanoName LIKE '%O''Leary%'"},
		{
			"injection stays inside literal",
			Contains("Country", "x' OR 1=1 OR Country LIKE '"),
			"Country LIKE '%x'' OR 1=1 OR Country LIKE ''%'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.clause.Encode()
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClause_EncodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		clause Clause
	}{
		{"bad field", Contains("Country; DROP", "x")},
		{"empty field", IsNull("")},
		{"NaN", AtLeast("Elevation", math.NaN())},
		{"Inf", AtMost("Elevation", math.Inf(1))},
		{"like non-string", Clause{Field: "Country", Op: OpLike, Value: 3.0}},
		{"range with string", Clause{Field: "Elevation", Op: OpAtLeast, Value: "high"}},
		{"unsupported value", Equals("Elevation", []int{1})},
		{"missing subquery", Clause{Field: "Volcano_Name", Op: OpInSubquery}},
		{"bad subquery layer", In("Volcano_Name", "a b", "Volcano_Name", IsNull("x"))},
		{"nested subquery", In("A", "L", "A", In("B", "M", "B", IsNull("C")))},
		{"unknown op", Clause{Field: "A", Op: Op(42)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.clause.Encode()
			if err == nil {
				t.Fatal("expected error")
			}
			if !apierrors.IsValidation(err) {
				t.Errorf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestFilter_Encode(t *testing.T) {
	var empty Filter
	got, err := empty.Encode()
	if err != nil {
		t.Fatalf("empty Encode() error = %v", err)
	}
	if got != "" {
		t.Errorf("empty Encode() = %q, want empty", got)
	}

	f := Filter{AtLeast("StartDateYear", 2015)}.And(AtLeast("ExplosivityIndexMax", 3))
	got, err = f.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := "StartDateYear >= 2015 AND ExplosivityIndexMax >= 3"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestFilter_AndDoesNotAlias(t *testing.T) {
	base := make(Filter, 1, 4)
	base[0] = IsNull("EndDateYear")

	a := base.And(AtLeast("A", 1))
	b := base.And(AtLeast("B", 2))

	if a[1].Field != "A" {
		t.Errorf("a[1].Field = %q, want A", a[1].Field)
	}
	if b[1].Field != "B" {
		t.Errorf("b[1].Field = %q, want B", b[1].Field)
	}
	if len(base) != 1 {
		t.Errorf("base was modified: len = %d", len(base))
	}
}

func TestFilter_EncodePropagatesError(t *testing.T) {
	f := Filter{IsNull("ok"), IsNull("not ok")}
	if _, err := f.Encode(); err == nil {
		t.Error("expected error from invalid clause")
	}
}

func TestOp_String(t *testing.T) {
	if OpAtLeast.String() != ">=" {
		t.Errorf("OpAtLeast.String() = %q", OpAtLeast.String())
	}
	if Op(99).String() != "unknown" {
		t.Errorf("Op(99).String() = %q", Op(99).String())
	}
}
