// jniaccess - JNI access code generator
//
// Reads the element model written by the discovery front end and produces
// the C helpers native code uses to reach into the JVM, plus the headers
// (and optionally cgo exports) for native methods the JVM calls.
//
// Usage:
//
//	jniaccess generate model.json              # write artifacts next to jniaccess.toml
//	jniaccess verify --lib libfoo.so model.json
//	jniaccess mangle pkg.Holder.sum --signature "([I)J"
//	jniaccess inspect model.json
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/urfave/cli/v3"
)

const versionStr = "0.1.0"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	var verbosity int
	return &cli.Command{
		Name:                   "jniaccess",
		Usage:                  "Generate JNI access code from a discovered element model",
		Version:                versionStr,
		Writer:                 stdout,
		ErrWriter:              stderr,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "More log output (repeat for debug)",
				Config:  cli.BoolConfig{Count: &verbosity},
			},
			&cli.StringFlag{
				Name:      "log",
				Usage:     "Write log output to this file instead of stderr",
				TakesFile: true,
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			var path *string
			if p := cmd.String("log"); p != "" {
				path = &p
			}
			commonlog.Configure(verbosity, path)
			return ctx, nil
		},
		Commands: []*cli.Command{
			generateCommand(),
			verifyCommand(),
			mangleCommand(),
			inspectCommand(),
		},
	}
}
