package permission

import "fmt"

// StalePolicy decides what Load does with page IDs a role holds that the
// catalog no longer contains.
type StalePolicy string

const (
	// StaleKeep leaves them untouched.
	StaleKeep StalePolicy = "keep"
	// StalePrune drops them from the working copy, so the next save removes
	// them remotely.
	StalePrune StalePolicy = "prune"
	// StaleFlag keeps them and reports them through StalePages.
	StaleFlag StalePolicy = "flag"
)

func ParseStalePolicy(s string) (StalePolicy, error) {
	switch p := StalePolicy(s); p {
	case StaleKeep, StalePrune, StaleFlag:
		return p, nil
	case "":
		return StaleKeep, nil
	}
	return "", fmt.Errorf("invalid stale page policy %q (want keep, prune or flag)", s)
}
