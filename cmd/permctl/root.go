package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jordymora1978/dropux-admin/internal/catalog"
	"github.com/jordymora1978/dropux-admin/internal/client"
	"github.com/jordymora1978/dropux-admin/internal/config"
	"github.com/jordymora1978/dropux-admin/internal/logger"
	"github.com/jordymora1978/dropux-admin/internal/permission"
)

type rootOptions struct {
	host        string
	authURL     string
	email       string
	password    string
	stalePolicy string
	dryRun      bool
	timeout     time.Duration
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "permctl",
		Short:         "Manage Dropux role page permissions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(cfg.LogLevel, cfg.LogFormat).SetOutput(cmd.ErrOrStderr())
			pterm.SetDefaultOutput(cmd.OutOrStdout())
			if cmd.OutOrStdout() != os.Stdout {
				pterm.DisableStyling()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.host, "host", "localhost", "hostname the dashboard is served from; picks the backend URLs")
	flags.StringVar(&opts.authURL, "auth-url", "", "override the auth backend URL")
	flags.StringVar(&opts.email, "email", os.Getenv("PERMCTL_EMAIL"), "login email (env PERMCTL_EMAIL)")
	flags.StringVar(&opts.password, "password", os.Getenv("PERMCTL_PASSWORD"), "login password (env PERMCTL_PASSWORD)")
	flags.StringVar(&opts.stalePolicy, "stale-policy", cfg.StalePagePolicy, "what to do with page IDs the catalog no longer has: keep, prune or flag")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "show what would be saved without saving")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall request timeout")

	cmd.AddCommand(
		newShowCmd(opts),
		newPagesCmd(opts),
		newGrantCmd(opts),
		newRevokeCmd(opts),
		newRestrictCmd(opts),
		newUnrestrictCmd(opts),
	)
	return cmd
}

// remoteSession logs in, learns the caller's role and loads the current
// permissions into a fresh session.
type remoteSession struct {
	*permission.Session
	viewer permission.Role
}

func (o *rootOptions) open(ctx context.Context) (*remoteSession, error) {
	if o.email == "" || o.password == "" {
		return nil, fmt.Errorf("--email and --password are required")
	}
	policy, err := permission.ParseStalePolicy(o.stalePolicy)
	if err != nil {
		return nil, err
	}

	ep := config.ResolveEndpoints(o.host)
	if o.authURL != "" {
		ep.Auth = o.authURL
	}

	c := client.New(ep, nil)
	if err := c.Login(ctx, o.email, o.password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	me, _, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	viewer := permission.Role("")
	if me.Role != nil {
		viewer = permission.Role(me.Role.Name)
	}

	s := permission.NewSession(catalog.Default(), c, permission.Options{
		Viewer:      viewer,
		Mode:        permission.SavePerResource,
		StalePolicy: policy,
	})
	if err := s.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return &remoteSession{Session: s, viewer: viewer}, nil
}

// run opens a session, applies edit and saves unless --dry-run is set.
func (o *rootOptions) run(cmd *cobra.Command, edit func(s *remoteSession) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	s, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := edit(s); err != nil {
		return err
	}
	return o.commit(ctx, cmd.OutOrStdout(), s)
}

func (o *rootOptions) commit(ctx context.Context, w io.Writer, s *remoteSession) error {
	if !s.HasUnsavedChanges() {
		pterm.Info.Println("Nothing to save")
		return nil
	}

	roles := s.DirtyRoles()
	for _, r := range roles {
		fmt.Fprintf(w, "role %s: %v\n", r, s.Permissions(r))
	}
	if s.RestrictedDirty() {
		fmt.Fprintf(w, "restricted: %v\n", s.RestrictedPages())
	}
	if o.dryRun {
		pterm.Warning.Println("Dry run, nothing saved")
		return nil
	}

	if err := s.Save(ctx); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	pterm.Success.Printf("Saved %d role(s)\n", len(roles))
	return nil
}
