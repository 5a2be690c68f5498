package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jordymora1978/dropux-admin/internal/catalog"
	"github.com/jordymora1978/dropux-admin/internal/permission"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [role]",
		Short: "Show the pages each role can open",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			s, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			roles := permission.Roles
			if len(args) == 1 {
				r, err := parseRole(args[0])
				if err != nil {
					return err
				}
				roles = []permission.Role{r}
			}

			cat := catalog.Default()
			m, restricted := s.Snapshot()
			if err := renderTable(permissionRows(cat, m, roles, s.StalePages)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restricted: %s\n", strings.Join(namesOf(cat, restricted), ", "))
			return nil
		},
	}
}

func newPagesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List the pages you may assign",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			s, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			rows := [][]string{{"ID", "Name", "Path", "Restricted"}}
			for _, p := range s.AvailablePages(s.viewer) {
				rows = append(rows, []string{p.ID, p.Name, p.Path, yesNo(s.IsRestricted(p.ID))})
			}
			return renderTable(rows)
		},
	}
}

func newGrantCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "grant <role> <page>...",
		Short: "Add pages to a role",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := parseRole(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(s *remoteSession) error {
				for _, id := range args[1:] {
					if err := s.AddPage(role, id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newRevokeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <role> <page>...",
		Short: "Remove pages from a role",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := parseRole(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(s *remoteSession) error {
				for _, id := range args[1:] {
					if err := s.RemovePage(role, id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newRestrictCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restrict <page>...",
		Short: "Restrict pages to super admins and strip them from other roles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *remoteSession) error {
				for _, id := range args {
					if err := s.AddRestriction(id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newUnrestrictCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unrestrict <page>...",
		Short: "Make pages assignable again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *remoteSession) error {
				for _, id := range args {
					if err := s.RemoveRestriction(id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func parseRole(s string) (permission.Role, error) {
	r, ok := permission.ParseRole(s)
	if !ok {
		return "", fmt.Errorf("unknown role %q (want one of %s)", s, strings.Join(permission.RoleNames(), ", "))
	}
	return r, nil
}

// permissionRows builds the show table: one row per role with its page
// names, plus stale IDs when the session flagged any.
func permissionRows(cat *catalog.Catalog, m permission.Map, roles []permission.Role, stale func(permission.Role) []string) [][]string {
	rows := [][]string{{"Role", "Pages", "Stale"}}
	for _, r := range roles {
		ids := append([]string(nil), m[r]...)
		sort.Strings(ids)
		rows = append(rows, []string{
			string(r),
			strings.Join(namesOf(cat, ids), ", "),
			strings.Join(stale(r), ", "),
		})
	}
	return rows
}

func namesOf(cat *catalog.Catalog, ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = cat.IDToName(id)
	}
	return out
}

func renderTable(rows [][]string) error {
	if err := pterm.DefaultTable.
		WithHasHeader(true).
		WithBoxed(false).
		WithData(pterm.TableData(rows)).
		Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
