// cmd/jobportal/render.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"jobportal/internal/models"
	cvmatch "jobportal/internal/stores/cv-match"
	usersession "jobportal/internal/stores/user-session"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderJobs(w io.Writer, jobs []models.Job, marks func(id string) string) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs found")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tLOCATION\tTYPE\tSALARY\t")
	for _, j := range jobs {
		title := j.Title
		if marks != nil {
			if m := marks(j.ID); m != "" {
				title += " " + m
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n", j.ID, title, j.Company, j.Location, j.Type, j.Salary)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d job(s)\n", len(jobs))
}

func renderRanked(w io.Writer, ranked []models.RankedJob, threshold float64) {
	if len(ranked) == 0 {
		fmt.Fprintln(w, "No jobs found")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "MATCH\tID\tTITLE\tCOMPANY\tLOCATION\t")
	for _, r := range ranked {
		match := fmt.Sprintf("%d%%", r.MatchScore)
		if threshold > 0 && float64(r.MatchScore) >= threshold*100 {
			match += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", match, r.ID, r.Title, r.Company, r.Location)
	}
	_ = tw.Flush()
}

func renderJob(w io.Writer, j models.Job) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Title:\t%s\n", j.Title)
	fmt.Fprintf(tw, "Company:\t%s\n", j.Company)
	fmt.Fprintf(tw, "Location:\t%s\n", j.Location)
	fmt.Fprintf(tw, "Type:\t%s\n", j.Type)
	fmt.Fprintf(tw, "Salary:\t%s\n", j.Salary)
	fmt.Fprintf(tw, "Experience:\t%s\n", j.Experience)
	fmt.Fprintf(tw, "Category:\t%s\n", j.Category)
	fmt.Fprintf(tw, "Skills:\t%s\n", strings.Join(j.Skills, ", "))
	fmt.Fprintf(tw, "Posted:\t%s\n", j.PostedDate)
	fmt.Fprintf(tw, "Source:\t%s\n", j.Origin)
	if j.JobURL != "" {
		fmt.Fprintf(tw, "Apply at:\t%s\n", j.JobURL)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\n%s\n", j.Description)
	if len(j.Requirements) > 0 {
		fmt.Fprintln(w, "\nRequirements:")
		for _, r := range j.Requirements {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}

func renderSession(w io.Writer, snap usersession.Snapshot) {
	if !snap.IsAuthenticated || snap.User == nil {
		fmt.Fprintln(w, "Not signed in")
		return
	}
	u := snap.User
	tw := newTable(w)
	fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	if u.IsAdmin {
		fmt.Fprintf(tw, "Role:\tadmin\n")
	}
	fmt.Fprintf(tw, "Saved jobs:\t%s\n", listOrDash(u.SavedJobs))
	fmt.Fprintf(tw, "Applied jobs:\t%s\n", listOrDash(u.AppliedJobs))
	fmt.Fprintf(tw, "CV:\t%s\n", orDash(u.CV))
	_ = tw.Flush()
}

func renderAnalysis(w io.Writer, snap cvmatch.Snapshot, threshold float64) {
	a := snap.Analysis
	if a == nil {
		fmt.Fprintln(w, "No CV analysis yet")
		return
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Score:\t%.0f/100\n", a.Score)
	fmt.Fprintf(tw, "Categories:\t%s\n", listOrDash(a.Categories))
	fmt.Fprintf(tw, "Skills:\t%s\n", listOrDash(a.Skills))
	fmt.Fprintf(tw, "Experience:\t%s\n", listOrDash(a.Experience))
	fmt.Fprintf(tw, "Matched jobs:\t%d\n", a.MatchedJobs)
	_ = tw.Flush()

	if len(a.Improvements) > 0 {
		fmt.Fprintln(w, "\nSuggested improvements:")
		for _, s := range a.Improvements {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	fmt.Fprintln(w, "\nRecommended jobs:")
	renderRanked(w, a.Recommendations, threshold)
}

func renderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// savedMarks tags saved and applied jobs in listings.
func savedMarks(snap usersession.Snapshot) func(string) string {
	if snap.User == nil {
		return nil
	}
	u := snap.User
	return func(id string) string {
		switch {
		case u.HasApplied(id):
			return "[applied]"
		case u.HasSaved(id):
			return "[saved]"
		}
		return ""
	}
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
