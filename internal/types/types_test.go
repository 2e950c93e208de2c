package types

import (
	"encoding/json"
	"math"
	"testing"
)

func TestFlexNumberUnmarshal(t *testing.T) {
	cases := []struct {
		input  string
		finite bool
		whole  bool
		value  float64
	}{
		{`3`, true, true, 3},
		{`"4"`, true, true, 4},
		{`1.5`, true, false, 1.5},
		{`"NaN"`, false, false, math.NaN()},
		{`"Infinity"`, false, false, math.Inf(1)},
		{`"-Infinity"`, false, false, math.Inf(-1)},
	}

	for _, tc := range cases {
		var n FlexNumber
		if err := json.Unmarshal([]byte(tc.input), &n); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", tc.input, err)
		}
		if n.IsFinite() != tc.finite {
			t.Errorf("%s: expected finite=%v", tc.input, tc.finite)
		}
		if n.IsWhole() != tc.whole {
			t.Errorf("%s: expected whole=%v", tc.input, tc.whole)
		}
		if tc.finite && n.Float64() != tc.value {
			t.Errorf("%s: expected %v, got %v", tc.input, tc.value, n.Float64())
		}
	}

	var n FlexNumber
	if err := json.Unmarshal([]byte(`"abc"`), &n); err == nil {
		t.Error("Expected error for non-numeric string")
	}
	if err := json.Unmarshal([]byte(`true`), &n); err == nil {
		t.Error("Expected error for boolean")
	}
}

func TestFlexListSingleOrArray(t *testing.T) {
	var single FlexList[string]
	if err := json.Unmarshal([]byte(`"a"`), &single); err != nil {
		t.Fatalf("Unmarshal single failed: %v", err)
	}
	if len(single) != 1 || single[0] != "a" {
		t.Errorf("Expected [a], got %v", single)
	}

	var many FlexList[string]
	if err := json.Unmarshal([]byte(`["a","b"]`), &many); err != nil {
		t.Fatalf("Unmarshal array failed: %v", err)
	}
	if len(many.Slice()) != 2 {
		t.Errorf("Expected 2 items, got %d", len(many))
	}

	got := TrimStrings([]string{" x ", "", "  ", "y"})
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("Expected [x y], got %v", got)
	}
}

func TestOptionalTriState(t *testing.T) {
	var body struct {
		Image Optional[string] `json:"image"`
		Name  Optional[string] `json:"name"`
		Order Optional[int]    `json:"order"`
	}
	if err := json.Unmarshal([]byte(`{"image":null,"name":"Posters"}`), &body); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !body.Image.Set || !body.Image.Null {
		t.Error("Expected image to be an explicit null")
	}
	if !body.Name.HasValue() || body.Name.Value != "Posters" {
		t.Errorf("Expected name value, got %+v", body.Name)
	}
	if body.Order.Set {
		t.Error("Expected order to be absent")
	}
	if body.Order.Ptr() != nil {
		t.Error("Expected nil pointer for absent value")
	}
	if p := Some(3).Ptr(); p == nil || *p != 3 {
		t.Error("Expected pointer to 3")
	}
}
