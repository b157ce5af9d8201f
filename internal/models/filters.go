// internal/models/filters.go
package models

import "strings"

// JobFilters narrows a job set. Empty fields impose no constraint.
type JobFilters struct {
	Type       string `json:"type,omitempty"`
	Location   string `json:"location,omitempty"`
	Salary     string `json:"salary,omitempty"`
	Experience string `json:"experience,omitempty"`
	Category   string `json:"category,omitempty"`
	Skills     string `json:"skills,omitempty"` // comma-separated
}

// IsSentinel reports whether v is a UI "no constraint" value such as
// "all-types" or "any-salary".
func IsSentinel(v string) bool {
	return strings.HasPrefix(v, "all-") || strings.HasPrefix(v, "any-")
}

// Normalized returns a copy with sentinel values cleared.
func (f JobFilters) Normalized() JobFilters {
	drop := func(v string) string {
		if IsSentinel(v) {
			return ""
		}
		return v
	}
	return JobFilters{
		Type:       drop(f.Type),
		Location:   drop(f.Location),
		Salary:     drop(f.Salary),
		Experience: drop(f.Experience),
		Category:   drop(f.Category),
		Skills:     drop(f.Skills),
	}
}

// SkillList splits Skills on commas, trimming tokens and dropping empty ones.
func (f JobFilters) SkillList() []string {
	if f.Skills == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(f.Skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsEmpty reports whether no constraint is present after normalization.
func (f JobFilters) IsEmpty() bool {
	n := f.Normalized()
	return n.Type == "" && n.Location == "" && n.Salary == "" &&
		n.Experience == "" && n.Category == "" && len(n.SkillList()) == 0
}
