package models

import (
	"encoding/json"
	"strings"
)

// SkillList unmarshals from either a JSON array of strings or a single
// comma-separated string. Older clients submitted skills as free text.
type SkillList []string

func (s *SkillList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*s = NormalizeSkills(arr)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NormalizeSkills(strings.Split(raw, ","))
	return nil
}

// NormalizeSkills trims entries and drops empties.
func NormalizeSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, skill := range in {
		skill = strings.TrimSpace(skill)
		if skill != "" {
			out = append(out, skill)
		}
	}
	return out
}
