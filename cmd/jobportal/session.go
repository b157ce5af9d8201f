// cmd/jobportal/session.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("Not signed in")

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Sign in, manage saved jobs and upload a CV",
}

var (
	sessionName     string
	sessionEmail    string
	sessionPassword string
)

func init() {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE:  runLogin,
	}
	loginCmd.Flags().StringVarP(&sessionEmail, "email", "e", "", "Email address (required)")
	loginCmd.Flags().StringVarP(&sessionPassword, "password", "p", "", "Password (or JOBPORTAL_PASSWORD)")
	if err := loginCmd.MarkFlagRequired("email"); err != nil {
		panic(fmt.Sprintf("failed to mark email flag as required: %v", err))
	}

	signupCmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE:  runSignup,
	}
	signupCmd.Flags().StringVarP(&sessionName, "name", "n", "", "Full name (required)")
	signupCmd.Flags().StringVarP(&sessionEmail, "email", "e", "", "Email address (required)")
	signupCmd.Flags().StringVarP(&sessionPassword, "password", "p", "", "Password (or JOBPORTAL_PASSWORD)")
	for _, name := range []string{"name", "email"} {
		if err := signupCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}

	saveCmd := &cobra.Command{
		Use:   "save <job-id>",
		Short: "Save a job",
		Args:  cobra.ExactArgs(1),
		RunE:  jobAction("Saved", func(ctx context.Context, a *app, id string) bool { return a.session.SaveJob(ctx, id) }),
	}
	unsaveCmd := &cobra.Command{
		Use:   "unsave <job-id>",
		Short: "Remove a job from the saved list",
		Args:  cobra.ExactArgs(1),
		RunE:  jobAction("Removed", func(ctx context.Context, a *app, id string) bool { return a.session.UnsaveJob(ctx, id) }),
	}
	applyCmd := &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Record an application to a job",
		Args:  cobra.ExactArgs(1),
		RunE:  jobAction("Applied to", func(ctx context.Context, a *app, id string) bool { return a.session.ApplyToJob(ctx, id) }),
	}

	uploadCmd := &cobra.Command{
		Use:   "upload-cv <file>",
		Short: "Upload a CV (PDF or Word, up to the configured size limit)",
		Args:  cobra.ExactArgs(1),
		RunE:  runUploadCV,
	}

	sessionCmd.AddCommand(loginCmd, signupCmd, logoutCmd, statusCmd, saveCmd, unsaveCmd, applyCmd, uploadCmd)
	rootCmd.AddCommand(sessionCmd)
}

func password() string {
	if sessionPassword != "" {
		return sessionPassword
	}
	return os.Getenv("JOBPORTAL_PASSWORD")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, false, func(ctx context.Context, a *app) error {
		if err := a.session.Login(ctx, sessionEmail, password()); err != nil {
			return err
		}
		renderSession(cmd.OutOrStdout(), a.session.Snapshot())
		return nil
	})
}

func runSignup(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, false, func(ctx context.Context, a *app) error {
		if err := a.session.Signup(ctx, sessionName, sessionEmail, password()); err != nil {
			return err
		}
		renderSession(cmd.OutOrStdout(), a.session.Snapshot())
		return nil
	})
}

func runLogout(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, false, func(ctx context.Context, a *app) error {
		a.session.Logout(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	})
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, false, func(_ context.Context, a *app) error {
		renderSession(cmd.OutOrStdout(), a.session.Snapshot())
		return nil
	})
}

func jobAction(verb string, fn func(ctx context.Context, a *app, id string) bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app) error {
			if a.session.Snapshot().User == nil {
				return errNotSignedIn
			}
			if fn(ctx, a, args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s job %s\n", verb, args[0])
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to change")
			}
			return nil
		})
	}
}

func runUploadCV(cmd *cobra.Command, args []string) error {
	return withApp(cmd, false, func(ctx context.Context, a *app) error {
		url, err := uploadFile(ctx, a, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "CV uploaded: %s\n", url)
		return nil
	})
}

func uploadFile(ctx context.Context, a *app, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return a.session.UploadCV(ctx, filepath.Base(path), f, info.Size())
}
