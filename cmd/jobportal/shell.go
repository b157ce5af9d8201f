// cmd/jobportal/shell.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"jobportal/internal/models"
	jobcollection "jobportal/internal/stores/job-collection"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "shell",
		Short: "Interactive session against a single set of stores",
		Args:  cobra.NoArgs,
		RunE:  runShell,
	})
}

const shellHelp = `Commands:
  list [type=.. location=.. salary=.. experience=.. category=.. skills=a,b]
  search <query>          featured          show <id>          refresh
  login <email> <password>          signup <name> <email> <password>
  logout          status          save|unsave|apply <id>          saved
  upload <file>          analyze [url]          analysis          matches
  help          quit`

func runShell(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, true, func(ctx context.Context, a *app) error {
		out := cmd.OutOrStdout()
		sh := &shell{app: a, out: out}

		unsubscribe := a.jobs.Subscribe(sh.onJobs)
		defer unsubscribe()

		if msg := a.jobs.Snapshot().Error; msg != "" {
			fmt.Fprintln(out, msg)
		}
		fmt.Fprintln(out, "Type 'help' for commands.")

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "quit" || line == "exit" {
				return nil
			}
			if err := sh.exec(ctx, line); err != nil {
				fmt.Fprintf(out, "Error: %s\n", a.errs.Handle("shell "+strings.Fields(line)[0], err))
			}
			if ctx.Err() != nil {
				return nil
			}
		}
	})
}

type shell struct {
	app     *app
	out     io.Writer
	loading bool
}

// onJobs prints a progress line when a job request starts.
func (sh *shell) onJobs(snap jobcollection.Snapshot) {
	if snap.Loading && !sh.loading {
		fmt.Fprintln(sh.out, "Loading...")
	}
	sh.loading = snap.Loading
}

func (sh *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]
	a := sh.app

	switch name {
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
	case "list":
		f, err := parseFilters(args)
		if err != nil {
			return err
		}
		renderJobs(sh.out, a.jobs.Filter(f), savedMarks(a.session.Snapshot()))
	case "search":
		jobs, err := a.jobs.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return errors.New(a.jobs.Snapshot().Error)
		}
		if ranked := a.jobs.Snapshot().Ranked; ranked != nil {
			renderRanked(sh.out, ranked, 0)
			return nil
		}
		renderJobs(sh.out, jobs, savedMarks(a.session.Snapshot()))
	case "featured":
		renderJobs(sh.out, a.jobs.Snapshot().Featured, savedMarks(a.session.Snapshot()))
	case "show":
		if len(args) != 1 {
			return errors.New("usage: show <id>")
		}
		job, err := a.jobs.FetchOne(args[0])
		if err != nil {
			return errors.New(a.jobs.Snapshot().Error)
		}
		renderJob(sh.out, job)
	case "refresh":
		if err := a.jobs.FetchAll(ctx); err != nil {
			return errors.New(a.jobs.Snapshot().Error)
		}
		fmt.Fprintf(sh.out, "%d job(s) loaded\n", len(a.jobs.Snapshot().Jobs))
	case "login":
		if len(args) != 2 {
			return errors.New("usage: login <email> <password>")
		}
		if err := a.session.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		renderSession(sh.out, a.session.Snapshot())
	case "signup":
		if len(args) < 3 {
			return errors.New("usage: signup <name> <email> <password>")
		}
		n := len(args)
		if err := a.session.Signup(ctx, strings.Join(args[:n-2], " "), args[n-2], args[n-1]); err != nil {
			return err
		}
		renderSession(sh.out, a.session.Snapshot())
	case "logout":
		a.session.Logout(ctx)
		fmt.Fprintln(sh.out, "Signed out")
	case "status":
		renderSession(sh.out, a.session.Snapshot())
	case "save", "unsave", "apply":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <id>", name)
		}
		if a.session.Snapshot().User == nil {
			return errNotSignedIn
		}
		var changed bool
		switch name {
		case "save":
			changed = a.session.SaveJob(ctx, args[0])
		case "unsave":
			changed = a.session.UnsaveJob(ctx, args[0])
		default:
			changed = a.session.ApplyToJob(ctx, args[0])
		}
		if !changed {
			fmt.Fprintln(sh.out, "Nothing to change")
		}
	case "saved":
		snap := a.session.Snapshot()
		if snap.User == nil {
			return errNotSignedIn
		}
		renderJobs(sh.out, pickJobs(a.jobs.Snapshot().Jobs, snap.User.SavedJobs), nil)
	case "upload":
		if len(args) != 1 {
			return errors.New("usage: upload <file>")
		}
		url, err := uploadFile(ctx, a, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "CV uploaded: %s\n", url)
	case "analyze":
		explicit := ""
		if len(args) > 0 {
			explicit = args[0]
		}
		target, err := analysisTarget(a, explicit)
		if err != nil {
			return err
		}
		if _, err := a.cv.Analyze(ctx, target); err != nil {
			return errors.New(a.cv.Snapshot().Error)
		}
		renderAnalysis(sh.out, a.cv.Snapshot(), a.cfg.CV.MatchThreshold)
	case "analysis":
		renderAnalysis(sh.out, a.cv.Snapshot(), a.cfg.CV.MatchThreshold)
	case "matches":
		nav, err := a.cv.ViewMatchingJobs()
		if err != nil {
			return errors.New("No CV analysis yet")
		}
		renderJobs(sh.out, pickJobs(a.jobs.Snapshot().Jobs, nav.RecommendedJobIDs), savedMarks(a.session.Snapshot()))
	default:
		return fmt.Errorf("unknown command %q, type 'help'", name)
	}
	return nil
}

// parseFilters reads key=value pairs into filters.
func parseFilters(args []string) (models.JobFilters, error) {
	var f models.JobFilters
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return f, fmt.Errorf("filter %q must be key=value", arg)
		}
		switch key {
		case "type":
			f.Type = value
		case "location":
			f.Location = value
		case "salary":
			f.Salary = value
		case "experience":
			f.Experience = value
		case "category":
			f.Category = value
		case "skills":
			f.Skills = value
		default:
			return f, fmt.Errorf("unknown filter %q", key)
		}
	}
	return f, nil
}
