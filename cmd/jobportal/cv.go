// cmd/jobportal/cv.go
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cvCmd = &cobra.Command{
	Use:   "cv",
	Short: "Analyze the uploaded CV and view matching jobs",
}

var (
	cvURL  string
	cvJSON bool
)

func init() {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the signed-in user's CV",
		Args:  cobra.NoArgs,
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringVar(&cvURL, "url", "", "Analyze this CV URL instead of the uploaded one")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the last CV analysis",
		Args:  cobra.NoArgs,
		RunE:  runAnalysisShow,
	}

	matchesCmd := &cobra.Command{
		Use:   "matches",
		Short: "Show the job listing navigation state for the last analysis",
		Args:  cobra.NoArgs,
		RunE:  runMatches,
	}
	matchesCmd.Flags().BoolVar(&cvJSON, "json", false, "Print JSON")

	cvCmd.AddCommand(analyzeCmd, showCmd, matchesCmd)
	rootCmd.AddCommand(cvCmd)
}

// analysisTarget picks the CV to analyze: an explicit URL or the session's.
func analysisTarget(a *app, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	snap := a.session.Snapshot()
	if snap.User == nil {
		return "", errNotSignedIn
	}
	if snap.User.CV == "" {
		return "", errors.New("Please upload your CV first")
	}
	return snap.User.CV, nil
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, false, func(ctx context.Context, a *app) error {
		target, err := analysisTarget(a, cvURL)
		if err != nil {
			return err
		}
		if _, err := a.cv.Analyze(ctx, target); err != nil {
			if msg := a.cv.Snapshot().Error; msg != "" {
				return errors.New(msg)
			}
			return err
		}
		renderAnalysis(cmd.OutOrStdout(), a.cv.Snapshot(), a.cfg.CV.MatchThreshold)
		return nil
	})
}

func runAnalysisShow(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, false, func(_ context.Context, a *app) error {
		renderAnalysis(cmd.OutOrStdout(), a.cv.Snapshot(), a.cfg.CV.MatchThreshold)
		return nil
	})
}

func runMatches(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, false, func(_ context.Context, a *app) error {
		nav, err := a.cv.ViewMatchingJobs()
		if err != nil {
			return errors.New("No CV analysis yet")
		}
		out := cmd.OutOrStdout()
		if cvJSON {
			return renderJSON(out, nav)
		}
		fmt.Fprintf(out, "Categories: %s\n", listOrDash(nav.Categories))
		fmt.Fprintf(out, "Skills: %s\n", listOrDash(nav.Skills))
		fmt.Fprintf(out, "Experience: %s\n", listOrDash(nav.Experience))
		fmt.Fprintf(out, "Match threshold: %.0f%%\n", nav.MatchThreshold*100)
		fmt.Fprintf(out, "Recommended: %s\n", listOrDash(nav.RecommendedJobIDs))
		return nil
	})
}
