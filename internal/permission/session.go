// Package permission holds the role → page permission model and the edit
// session used by the role, custom menu and private pages editors.
//
// A Session keeps a working copy and a last-synchronized baseline of the
// role permission map and the restricted page set. Unsaved changes are a
// structural diff between the two, never a flag toggled by mutations.
package permission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jordymora1978/dropux-admin/internal/catalog"
	"github.com/jordymora1978/dropux-admin/internal/logger"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotPrivileged  = errors.New("only the super admin can change restricted pages")
	ErrUnknownRole    = errors.New("unknown role")
	ErrUnknownPage    = errors.New("unknown page")
	ErrRestrictedPage = errors.New("page is restricted")
	ErrSaveInProgress = errors.New("save already in progress")
)

type SaveStatus string

const (
	StatusIdle    SaveStatus = "idle"
	StatusSaving  SaveStatus = "saving"
	StatusSuccess SaveStatus = "success"
	StatusError   SaveStatus = "error"
)

// SaveMode decides which baselines a multi-request save commits.
type SaveMode int

const (
	// SavePerResource commits each role and the restricted set on its own
	// request's success.
	SavePerResource SaveMode = iota
	// SaveAllOrNothing commits nothing unless every request succeeded.
	SaveAllOrNothing
)

// RemoteState is the shape returned by GET /admin/role-permissions.
// Restricted pages come back as display names.
type RemoteState struct {
	Permissions     map[string][]string `json:"permissions"`
	RestrictedPages []string            `json:"restricted_pages"`
}

// Remote is the persistence the session synchronizes with.
type Remote interface {
	LoadPermissions(ctx context.Context) (*RemoteState, error)
	SaveRolePermissions(ctx context.Context, role Role, pageIDs []string) error
	SaveRestrictedPages(ctx context.Context, names []string) error
}

type Options struct {
	// Viewer is the role of the user running the editor.
	Viewer      Role
	Mode        SaveMode
	StalePolicy StalePolicy
	// How long success and error statuses stay visible before reverting to idle.
	SuccessTTL time.Duration
	ErrorTTL   time.Duration
}

func (o *Options) applyDefaults() {
	if o.SuccessTTL <= 0 {
		o.SuccessTTL = 3 * time.Second
	}
	if o.ErrorTTL <= 0 {
		o.ErrorTTL = 5 * time.Second
	}
	if o.StalePolicy == "" {
		o.StalePolicy = StaleKeep
	}
}

type Session struct {
	mu     sync.Mutex
	cat    *catalog.Catalog
	remote Remote
	opts   Options

	current            Map
	original           Map
	restricted         []string
	originalRestricted []string
	stale              map[Role][]string

	status    SaveStatus
	statusGen int
	statusT   *time.Timer
	lastErr   error
	saving    bool
}

// NewSession seeds the working copy and baseline with DefaultPermissions.
func NewSession(cat *catalog.Catalog, remote Remote, opts Options) *Session {
	opts.applyDefaults()
	defaults := DefaultPermissions(cat)
	return &Session{
		cat:                cat,
		remote:             remote,
		opts:               opts,
		current:            defaults,
		original:           defaults.Clone(),
		restricted:         []string{},
		originalRestricted: []string{},
		stale:              map[Role][]string{},
		status:             StatusIdle,
	}
}

// Close stops the pending status timer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusT != nil {
		s.statusT.Stop()
		s.statusT = nil
	}
}

func (s *Session) Viewer() Role {
	return s.opts.Viewer
}

// Permissions returns a copy of the role's working set, empty if unseeded.
func (s *Session) Permissions(role Role) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIDs(s.current[role])
}

// Snapshot returns copies of the working map and restricted set.
func (s *Session) Snapshot() (Map, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone(), cloneIDs(s.restricted)
}

// AddPage grants a page to a role. Adding a page twice is a no-op.
// Non-privileged roles cannot receive restricted pages.
func (s *Session) AddPage(role Role, pageID string) error {
	if _, ok := ParseRole(string(role)); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	if !s.cat.Contains(pageID) {
		return fmt.Errorf("%w: %s", ErrUnknownPage, pageID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !role.Privileged() && containsID(s.restricted, pageID) {
		return fmt.Errorf("%w: %s", ErrRestrictedPage, pageID)
	}
	s.current[role] = addID(s.current[role], pageID)
	return nil
}

// RemovePage drops a page from a role. Removing an absent page is allowed.
func (s *Session) RemovePage(role Role, pageID string) error {
	if _, ok := ParseRole(string(role)); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[role] = removeID(s.current[role], pageID)
	return nil
}

func (s *Session) IsRestricted(pageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return containsID(s.restricted, pageID)
}

func (s *Session) RestrictedPages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIDs(s.restricted)
}

// AddRestriction adds a page to the global restricted set and strips it from
// every non-privileged role's working set.
func (s *Session) AddRestriction(pageID string) error {
	if !s.opts.Viewer.Privileged() {
		return ErrNotPrivileged
	}
	if !s.cat.Contains(pageID) {
		return fmt.Errorf("%w: %s", ErrUnknownPage, pageID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.restricted = addID(s.restricted, pageID)
	for role, ids := range s.current {
		if role.Privileged() {
			continue
		}
		if containsID(ids, pageID) {
			s.current[role] = removeID(ids, pageID)
		}
	}
	return nil
}

// RemoveRestriction unlocks a page for assignment. It grants nothing.
func (s *Session) RemoveRestriction(pageID string) error {
	if !s.opts.Viewer.Privileged() {
		return ErrNotPrivileged
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.restricted = removeID(s.restricted, pageID)
	return nil
}

// AvailablePages lists the pages the viewer may drag onto a role. Restricted
// pages are filtered on every call unless the viewer is privileged.
func (s *Session) AvailablePages(viewer Role) []catalog.Page {
	s.mu.Lock()
	restricted := cloneIDs(s.restricted)
	s.mu.Unlock()

	pages := s.cat.Pages()
	if viewer.Privileged() {
		return pages
	}
	out := make([]catalog.Page, 0, len(pages))
	for _, p := range pages {
		if !containsID(restricted, p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// AssignablePages is AvailablePages minus what the role already has.
func (s *Session) AssignablePages(viewer, role Role) []catalog.Page {
	granted := s.Permissions(role)
	var out []catalog.Page
	for _, p := range s.AvailablePages(viewer) {
		if !containsID(granted, p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// HasUnsavedChanges diffs the working copy against the baseline.
func (s *Session) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.current.Equal(s.original) || !sameSet(s.restricted, s.originalRestricted)
}

// DirtyRoles lists roles whose working set differs from the baseline.
func (s *Session) DirtyRoles() []Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyRolesLocked()
}

func (s *Session) RestrictedDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !sameSet(s.restricted, s.originalRestricted)
}

func (s *Session) dirtyRolesLocked() []Role {
	dirty := map[Role]struct{}{}
	for role, ids := range s.current {
		orig, ok := s.original[role]
		if !ok || !sameSet(ids, orig) {
			dirty[role] = struct{}{}
		}
	}
	for role := range s.original {
		if _, ok := s.current[role]; !ok {
			dirty[role] = struct{}{}
		}
	}
	return sortedRoles(dirty)
}

// Status returns the current save status and the error of the last failed save.
func (s *Session) Status() (SaveStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.lastErr
}

// Saving reports whether save requests are in flight.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

func (s *Session) setStatusLocked(st SaveStatus, err error) {
	if s.statusT != nil {
		s.statusT.Stop()
		s.statusT = nil
	}
	s.status = st
	s.lastErr = err
	s.statusGen++

	var ttl time.Duration
	switch st {
	case StatusSuccess:
		ttl = s.opts.SuccessTTL
	case StatusError:
		ttl = s.opts.ErrorTTL
	default:
		return
	}
	gen := s.statusGen
	s.statusT = time.AfterFunc(ttl, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.statusGen == gen {
			s.status = StatusIdle
			s.lastErr = nil
			s.statusT = nil
		}
	})
}

// Load replaces the working copy and baseline with the remote state. Roles
// the remote does not know keep their defaults. Restricted names that no
// longer map to a page are dropped. On error the session is left untouched.
// Load is refused while a save is running, since the save commits its
// baselines when its requests return.
func (s *Session) Load(ctx context.Context) error {
	if s.Saving() {
		return ErrSaveInProgress
	}
	state, err := s.remote.LoadPermissions(ctx)
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	log := logger.WithModule("permission")

	current := DefaultPermissions(s.cat)
	original := current.Clone()
	stale := map[Role][]string{}

	for name, ids := range state.Permissions {
		role, ok := ParseRole(name)
		if !ok {
			log.Warnf("⚠️  Ignoring permissions for unknown role %q", name)
			continue
		}
		raw := dedupe(ids)
		kept, unknown := s.resolveIDs(raw)
		original[role] = raw
		switch s.opts.StalePolicy {
		case StalePrune:
			current[role] = kept
		case StaleFlag:
			current[role] = cloneIDs(raw)
			if len(unknown) > 0 {
				stale[role] = unknown
				log.WithField("role", role).Warnf("⚠️  %d stale page IDs kept: %v", len(unknown), unknown)
			}
		default:
			current[role] = cloneIDs(raw)
		}
	}

	restricted := []string{}
	for _, name := range state.RestrictedPages {
		if id := s.cat.NameToID(name); id != "" {
			restricted = addID(restricted, id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrSaveInProgress
	}
	s.current = current
	s.original = original
	s.restricted = restricted
	s.originalRestricted = cloneIDs(restricted)
	s.stale = stale
	return nil
}

// resolveIDs splits raw entries into known page IDs and entries the catalog
// does not contain.
func (s *Session) resolveIDs(raw []string) (known, unknown []string) {
	known = []string{}
	for _, id := range raw {
		if s.cat.Contains(id) {
			known = addID(known, id)
			continue
		}
		unknown = append(unknown, id)
	}
	return known, unknown
}

// StalePages reports page IDs kept for a role that are not in the catalog.
// Only populated under StaleFlag.
func (s *Session) StalePages(role Role) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIDs(s.stale[role])
}

// SaveRole persists one role's full working set.
func (s *Session) SaveRole(ctx context.Context, role Role) error {
	if _, ok := ParseRole(string(role)); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	return s.save(ctx, []Role{role}, false)
}

// SaveRestricted persists the restricted set as display names.
func (s *Session) SaveRestricted(ctx context.Context) error {
	if !s.opts.Viewer.Privileged() {
		return ErrNotPrivileged
	}
	return s.save(ctx, nil, true)
}

// Save persists every dirty role and the restricted set if it changed. The
// requests are issued concurrently; the overall status is an error if any of
// them fails. Which baselines get committed depends on the SaveMode.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	roles := s.dirtyRolesLocked()
	restricted := !sameSet(s.restricted, s.originalRestricted) && s.opts.Viewer.Privileged()
	s.mu.Unlock()

	if len(roles) == 0 && !restricted {
		return nil
	}
	return s.save(ctx, roles, restricted)
}

func (s *Session) save(ctx context.Context, roles []Role, withRestricted bool) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInProgress
	}
	sent := make(Map, len(roles))
	for _, r := range roles {
		sent[r] = cloneIDs(s.current[r])
	}
	sentRestricted := cloneIDs(s.restricted)
	s.saving = true
	s.setStatusLocked(StatusSaving, nil)
	s.mu.Unlock()

	names := make([]string, 0, len(sentRestricted))
	for _, id := range sentRestricted {
		names = append(names, s.cat.IDToName(id))
	}

	roleErrs := make([]error, len(roles))
	var restrictedErr error
	var g errgroup.Group
	for i, r := range roles {
		g.Go(func() error {
			roleErrs[i] = s.remote.SaveRolePermissions(ctx, r, sent[r])
			return roleErrs[i]
		})
	}
	if withRestricted {
		g.Go(func() error {
			restrictedErr = s.remote.SaveRestrictedPages(ctx, names)
			return restrictedErr
		})
	}
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false

	if err == nil || s.opts.Mode == SavePerResource {
		for i, r := range roles {
			if roleErrs[i] == nil {
				s.original[r] = sent[r]
			}
		}
		if withRestricted && restrictedErr == nil {
			s.originalRestricted = sentRestricted
		}
	}

	if err != nil {
		s.setStatusLocked(StatusError, err)
		logger.WithModule("permission").WithError(err).Error("❌ Failed to save permissions")
		return fmt.Errorf("save permissions: %w", err)
	}
	s.setStatusLocked(StatusSuccess, nil)
	return nil
}
