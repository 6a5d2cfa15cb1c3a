// Package release holds the helpers used when publishing a version: the
// prerelease check and moving the floating "latest" git tag.
package release

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/menezmethod/routekit/internal/pipe"
)

// LatestTag is the floating tag pointing at the newest stable release.
const LatestTag = "latest"

// Operations reported in Result.
const (
	OpDryRun = "dry-run"
	OpUpdate = "update"
	OpError  = "error"
)

var prereleaseIdentifiers = []string{"rc", "alpha", "beta", "dev", "preview"}

// ErrPrerelease is returned when a prerelease version would move the latest tag.
var ErrPrerelease = errors.New("prerelease version")

// IsPrerelease reports whether version carries a prerelease identifier
// such as "-rc" or "-beta".
func IsPrerelease(version string) bool {
	for _, id := range prereleaseIdentifiers {
		if strings.Contains(version, "-"+id) {
			return true
		}
	}
	return false
}

// ShouldUpdateLatestTag reports whether version may move the latest tag.
func ShouldUpdateLatestTag(version string) bool {
	return !IsPrerelease(version)
}

// Git runs git with args and returns its standard output.
type Git interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// ExecGit runs the git binary in Dir (the current directory when empty).
type ExecGit struct {
	Dir string
}

// Run implements Git.
func (g ExecGit) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir
	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// Input selects the version to tag.
type Input struct {
	Version string
	DryRun  bool
}

// Result reports what UpdateLatestTag did. It never carries an error
// value; failures have Success false and Operation "error".
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Operation string `json:"operation"`
}

type tagUpdate struct {
	Input
	Result
}

// UpdateLatestTag points the latest tag at the commit of version's tag
// ("v" is prefixed when missing). With DryRun nothing is run.
func UpdateLatestTag(ctx context.Context, git Git, in Input) Result {
	update := pipe.Compose(
		validateVersion,
		performUpdate(git),
	)
	out, err := update(ctx, tagUpdate{Input: in})
	if err != nil {
		return errorResult(err)
	}
	return out.Result
}

func errorResult(err error) Result {
	msg := "Failed to update latest tag: " + err.Error()
	if errors.Is(err, ErrPrerelease) {
		msg = "Cannot update latest tag: " + err.Error()
	}
	return Result{Success: false, Message: msg, Operation: OpError}
}

func validateVersion(_ context.Context, u tagUpdate) (tagUpdate, error) {
	if !ShouldUpdateLatestTag(u.Version) {
		return u, fmt.Errorf("%s is a %w", u.Version, ErrPrerelease)
	}
	return u, nil
}

func performUpdate(git Git) pipe.Step[tagUpdate] {
	return func(ctx context.Context, u tagUpdate) (tagUpdate, error) {
		if u.DryRun {
			u.Result = Result{
				Success:   true,
				Message:   fmt.Sprintf("Would update latest tag to %s", u.Version),
				Operation: OpDryRun,
			}
			return u, nil
		}

		tag := u.Version
		if !strings.HasPrefix(tag, "v") {
			tag = "v" + tag
		}
		out, err := git.Run(ctx, "rev-parse", tag)
		if err != nil {
			return u, err
		}
		ref := strings.TrimSpace(out)
		if _, err := git.Run(ctx, "tag", "-f", LatestTag, ref); err != nil {
			return u, err
		}

		u.Result = Result{
			Success:   true,
			Message:   fmt.Sprintf("Updated latest tag to %s (%s)", u.Version, short(ref)),
			Operation: OpUpdate,
		}
		return u, nil
	}
}

func short(ref string) string {
	if len(ref) > 7 {
		return ref[:7]
	}
	return ref
}
