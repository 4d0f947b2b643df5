package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSkillList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want SkillList
	}{
		{"json array", `["Guitar","Spanish"]`, SkillList{"Guitar", "Spanish"}},
		{"comma string", `"Guitar, Spanish,Cooking"`, SkillList{"Guitar", "Spanish", "Cooking"}},
		{"whitespace and empties", `[" Guitar ","","  "]`, SkillList{"Guitar"}},
		{"empty array", `[]`, SkillList{}},
		{"empty string", `""`, SkillList{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got SkillList
			if err := json.Unmarshal([]byte(tc.in), &got); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tc.in, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Unmarshal(%s) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSkillList_UnmarshalJSON_RejectsNonString(t *testing.T) {
	var got SkillList
	if err := json.Unmarshal([]byte(`42`), &got); err == nil {
		t.Error("Expected error for numeric input")
	}
}
