// Command releasetag manages the floating "latest" release tag.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/menezmethod/routekit/internal/release"
	"github.com/menezmethod/routekit/internal/version"
)

// CLI is the command line interface of releasetag.
type CLI struct {
	UpdateLatest UpdateLatest `kong:"cmd,help='Point the latest tag at a release version.'"`
	Check        Check        `kong:"cmd,help='Report whether a version is a prerelease.'"`

	Dir     string           `kong:"help='Git working directory.',default='.'"`
	Version kong.VersionFlag `kong:"help='Output version and exit.'"`
}

// appContext is bound to every command's Run method.
type appContext struct {
	ctx    context.Context
	git    release.Git
	stdout io.Writer
}

// errFailed makes the process exit non-zero after the result is printed.
var errFailed = errors.New("release operation failed")

// UpdateLatest moves the latest tag.
type UpdateLatest struct {
	Version string `arg:"" help:"Release version, with or without the v prefix."`
	DryRun  bool   `help:"Report what would happen without touching git."`
}

// Run the update-latest command.
func (c *UpdateLatest) Run(app *appContext) error {
	res := release.UpdateLatestTag(app.ctx, app.git, release.Input{Version: c.Version, DryRun: c.DryRun})
	enc := json.NewEncoder(app.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !res.Success {
		return errFailed
	}
	return nil
}

// Check reports whether a version would move the latest tag.
type Check struct {
	Version string `arg:"" help:"Release version."`
}

// Run the check command.
func (c *Check) Run(app *appContext) error {
	_, err := fmt.Fprintf(app.stdout, "prerelease=%t update_latest=%t\n",
		release.IsPrerelease(c.Version), release.ShouldUpdateLatestTag(c.Version))
	return err
}

func run(args []string, git func(dir string) release.Git, stdout, stderr io.Writer, exit func(int)) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("releasetag"),
		kong.Description("Manage the floating latest release tag."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
		kong.Vars{"version": version.Version},
	)
	if err != nil {
		return fmt.Errorf("failed creating the Kong parser: %w", err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	//nolint:wrapcheck // Run returns the command's own error.
	return kctx.Run(&appContext{ctx: context.Background(), git: git(cli.Dir), stdout: stdout})
}

func main() {
	git := func(dir string) release.Git { return release.ExecGit{Dir: dir} }
	if err := run(os.Args[1:], git, os.Stdout, os.Stderr, os.Exit); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
