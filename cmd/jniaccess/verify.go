package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/chazu/jniaccess/pkg/linkcheck"
)

func verifyCommand() *cli.Command {
	flags := append(configFlags(),
		&cli.StringFlag{
			Name:      "lib",
			Aliases:   []string{"l"},
			Usage:     "Built shared library to check",
			Required:  true,
			TakesFile: true,
		},
	)
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check that a built library exports every generated symbol",
		ArgsUsage: "[model.json | -]",
		Flags:     flags,
		Action:    verifyAction,
	}
}

func verifyAction(ctx context.Context, cmd *cli.Command) error {
	result, _, err := run(cmd)
	if err != nil {
		return err
	}
	stdout := cmd.Root().Writer
	if n := reportDiagnostics(cmd.Root().ErrWriter, result.Diagnostics); n > 0 {
		return fmt.Errorf("%d element(s) failed, cannot derive the symbol list", n)
	}

	report, err := linkcheck.Verify(ctx, cmd.String("lib"), result.Symbols)
	if err != nil {
		return err
	}
	for _, sym := range report.Present {
		fmt.Fprintf(stdout, "  ✓ %s\n", sym)
	}
	for _, sym := range report.Missing {
		fmt.Fprintf(stdout, "  ✗ %s - missing\n", sym)
	}
	if !report.OK() {
		return fmt.Errorf("%s is missing %d of %d symbols", report.Library,
			len(report.Missing), len(report.Missing)+len(report.Present))
	}
	return nil
}
