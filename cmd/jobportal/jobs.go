// cmd/jobportal/jobs.go
package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"jobportal/internal/models"
	jobcollection "jobportal/internal/stores/job-collection"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Browse, filter and search job listings",
}

var (
	jobsFilters models.JobFilters
	jobsJSON    bool
)

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally narrowed by filters",
		Args:  cobra.NoArgs,
		RunE:  runJobsList,
	}
	addFilterFlags(listCmd)

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search jobs by title, company, description and skills",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runJobsSearch,
	}
	addFilterFlags(searchCmd)

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single job",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsShow,
	}
	showCmd.Flags().BoolVar(&jobsJSON, "json", false, "Print JSON")

	featuredCmd := &cobra.Command{
		Use:   "featured",
		Short: "Show the featured jobs",
		Args:  cobra.NoArgs,
		RunE:  runJobsFeatured,
	}

	savedCmd := &cobra.Command{
		Use:   "saved",
		Short: "List the signed-in user's saved jobs",
		Args:  cobra.NoArgs,
		RunE:  runJobsSaved,
	}

	jobsCmd.AddCommand(listCmd, searchCmd, showCmd, featuredCmd, savedCmd)
	rootCmd.AddCommand(jobsCmd)
}

func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&jobsFilters.Type, "type", "", "Employment type, e.g. Full-time")
	f.StringVar(&jobsFilters.Location, "location", "", "Location substring (case-insensitive)")
	f.StringVar(&jobsFilters.Salary, "salary", "", "Salary substring")
	f.StringVar(&jobsFilters.Experience, "experience", "", "Experience level")
	f.StringVar(&jobsFilters.Category, "category", "", "Category")
	f.StringVar(&jobsFilters.Skills, "skills", "", "Comma-separated skills; any match qualifies")
	f.BoolVar(&jobsJSON, "json", false, "Print JSON")
}

// loadedJobs fails when the initial fetch left nothing to show.
func loadedJobs(a *app) error {
	snap := a.jobs.Snapshot()
	if snap.Error != "" && len(snap.Jobs) == 0 {
		return errors.New(snap.Error)
	}
	return nil
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, true, func(_ context.Context, a *app) error {
		if err := loadedJobs(a); err != nil {
			return err
		}
		jobs := a.jobs.Snapshot().Displayed
		if !jobsFilters.IsEmpty() {
			jobs = a.jobs.Filter(jobsFilters)
		}
		if jobsJSON {
			return renderJSON(cmd.OutOrStdout(), jobs)
		}
		renderJobs(cmd.OutOrStdout(), jobs, savedMarks(a.session.Snapshot()))
		return nil
	})
}

func runJobsSearch(cmd *cobra.Command, args []string) error {
	return withApp(cmd, true, func(ctx context.Context, a *app) error {
		if err := loadedJobs(a); err != nil {
			return err
		}
		if !jobsFilters.IsEmpty() {
			a.jobs.Filter(jobsFilters)
		}
		jobs, err := a.jobs.Search(ctx, strings.Join(args, " "))
		if err != nil {
			if msg := a.jobs.Snapshot().Error; msg != "" {
				return errors.New(msg)
			}
			return err
		}

		out := cmd.OutOrStdout()
		snap := a.jobs.Snapshot()
		if jobsJSON {
			if snap.Ranked != nil {
				return renderJSON(out, snap.Ranked)
			}
			return renderJSON(out, jobs)
		}
		if snap.Ranked != nil {
			renderRanked(out, snap.Ranked, 0)
			return nil
		}
		renderJobs(out, jobs, savedMarks(a.session.Snapshot()))
		return nil
	})
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, true, func(_ context.Context, a *app) error {
		if err := loadedJobs(a); err != nil {
			return err
		}
		job, err := a.jobs.FetchOne(args[0])
		if err != nil {
			return errors.New(jobcollection.ErrMsgFetchJob)
		}
		if jobsJSON {
			return renderJSON(cmd.OutOrStdout(), job)
		}
		renderJob(cmd.OutOrStdout(), job)
		return nil
	})
}

func runJobsFeatured(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, true, func(_ context.Context, a *app) error {
		if err := loadedJobs(a); err != nil {
			return err
		}
		renderJobs(cmd.OutOrStdout(), a.jobs.Snapshot().Featured, savedMarks(a.session.Snapshot()))
		return nil
	})
}

func runJobsSaved(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, true, func(_ context.Context, a *app) error {
		session := a.session.Snapshot()
		if session.User == nil {
			return errNotSignedIn
		}
		renderJobs(cmd.OutOrStdout(), pickJobs(a.jobs.Snapshot().Jobs, session.User.SavedJobs), nil)
		return nil
	})
}

// pickJobs returns the jobs named by ids in ids order. Unknown ids are skipped.
func pickJobs(jobs []models.Job, ids []string) []models.Job {
	byID := make(map[string]models.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}
	out := make([]models.Job, 0, len(ids))
	for _, id := range ids {
		if j, ok := byID[id]; ok {
			out = append(out, j)
		}
	}
	return out
}
