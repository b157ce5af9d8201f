// internal/models/user.go
package models

type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	IsAdmin     bool     `json:"isAdmin"`
	SavedJobs   []string `json:"savedJobs"`
	AppliedJobs []string `json:"appliedJobs"`
	CV          string   `json:"cv,omitempty"`
}

// Clone returns a deep copy so callers can never alias store state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.SavedJobs = append([]string{}, u.SavedJobs...)
	c.AppliedJobs = append([]string{}, u.AppliedJobs...)
	return &c
}

func (u *User) HasSaved(jobID string) bool {
	return u != nil && contains(u.SavedJobs, jobID)
}

func (u *User) HasApplied(jobID string) bool {
	return u != nil && contains(u.AppliedJobs, jobID)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
