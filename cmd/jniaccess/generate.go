package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	"github.com/urfave/cli/v3"

	"github.com/chazu/jniaccess/pkg/codegen"
	"github.com/chazu/jniaccess/pkg/config"
)

var log = commonlog.GetLogger("jniaccess")

func generateCommand() *cli.Command {
	flags := append(configFlags(),
		&cli.StringFlag{
			Name:    "out-dir",
			Aliases: []string{"o"},
			Usage:   "Directory the artifacts are written to",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Show what would be generated without writing files",
		},
		&cli.BoolFlag{
			Name:  "keep-going",
			Usage: "Write artifacts even when some elements failed",
		},
	)
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate the access helpers and native headers",
		ArgsUsage: "[model.json | -]",
		Flags:     flags,
		Action:    generateAction,
	}
}

type artifact struct {
	name    string
	content string
}

func artifacts(cfg *config.Config, result *codegen.Result) []artifact {
	out := []artifact{
		{cfg.Output.Header, result.Header},
		{cfg.Output.Implementation, result.Implementation},
	}
	if cfg.Generate.NativeHeaders {
		out = append(out, artifact{cfg.Output.NativeHeader, result.NativeHeader})
	}
	if cfg.Generate.GoPackage != "" {
		out = append(out, artifact{cfg.Output.GoExports, result.GoExports})
	}
	return out
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	result, cfg, err := run(cmd)
	if err != nil {
		return err
	}
	stderr := cmd.Root().ErrWriter

	errorCount := reportDiagnostics(stderr, result.Diagnostics)
	failed := errorCount > 0
	if failed && !cmd.Bool("keep-going") {
		return fmt.Errorf("%d element(s) failed, nothing written", errorCount)
	}

	files := artifacts(cfg, result)
	if cmd.Bool("dry-run") {
		for _, a := range files {
			fmt.Fprintf(stderr, "Dry run - would write %d bytes to %s\n", len(a.content), cfg.OutputPath(a.name))
		}
	} else {
		if err := writeArtifacts(cfg, files); err != nil {
			return err
		}
	}

	fmt.Fprintf(stderr, "Generated %d bindings, %d native exports, %d cached classes.\n",
		len(result.Bindings), len(result.Natives), len(result.CachedClasses))
	if failed {
		return fmt.Errorf("%d element(s) failed", errorCount)
	}
	return nil
}

func writeArtifacts(cfg *config.Config, files []artifact) error {
	for _, a := range files {
		path := cfg.OutputPath(a.name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(a.content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Infof("wrote %s", path)
	}
	return nil
}
