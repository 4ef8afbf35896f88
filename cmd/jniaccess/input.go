package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/chazu/jniaccess/pkg/ast"
	"github.com/chazu/jniaccess/pkg/codegen"
	"github.com/chazu/jniaccess/pkg/config"
	"github.com/chazu/jniaccess/pkg/ir"
)

// configFlags are shared by every command that runs a generation pass.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      "config",
			Aliases:   []string{"c"},
			Usage:     "Configuration file (default: jniaccess.toml found above the input)",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  "namespace",
			Usage: "Prefix of the OnLoad/OnUnload functions",
		},
		&cli.StringFlag{
			Name:  "cache-mode",
			Usage: "Cache mode for DEFAULT members: NONE or EAGER_PERSISTENT",
		},
		&cli.BoolFlag{
			Name:  "no-native-headers",
			Usage: "Do not produce the header for native methods",
		},
		&cli.StringFlag{
			Name:  "go-package",
			Usage: "Also produce cgo exports for native methods in this Go package",
		},
	}
}

// readInput reads the model from the first argument, or stdin when it is
// missing or "-". It returns the directory configuration lookup starts at.
func readInput(cmd *cli.Command) (*ast.Program, string, error) {
	path := cmd.Args().First()
	if path == "" || path == "-" {
		input, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("reading input: %w", err)
		}
		if len(input) == 0 {
			return nil, "", fmt.Errorf("no input provided")
		}
		program, err := ast.ParseBytes(input)
		if err != nil {
			return nil, "", err
		}
		return program, ".", nil
	}

	program, err := ast.ParseFile(path)
	if err != nil {
		return nil, "", err
	}
	return program, filepath.Dir(path), nil
}

// loadConfig loads the configuration and applies command-line overrides.
func loadConfig(cmd *cli.Command, startDir string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := cmd.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.FindAndLoad(startDir)
	}
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("namespace") {
		cfg.Generate.Namespace = cmd.String("namespace")
	}
	if cmd.IsSet("cache-mode") {
		cfg.Generate.DefaultCacheMode = cmd.String("cache-mode")
	}
	if cmd.Bool("no-native-headers") {
		cfg.Generate.NativeHeaders = false
	}
	if cmd.IsSet("go-package") {
		cfg.Generate.GoPackage = cmd.String("go-package")
	}
	if cmd.IsSet("out-dir") {
		cfg.Output.Dir = cmd.String("out-dir")
		cfg.Path = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run reads the input, loads the configuration and runs one pass.
func run(cmd *cli.Command) (*codegen.Result, *config.Config, error) {
	program, dir, err := readInput(cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(cmd, dir)
	if err != nil {
		return nil, nil, err
	}
	result := codegen.Generate(program, cfg.GenerateOptions())
	return result, cfg, nil
}

// cacheModeOrDefault returns the mode DEFAULT members resolve to.
func cacheModeOrDefault(cfg *config.Config) ir.CacheMode {
	mode, _ := ir.ParseCacheMode(cfg.Generate.DefaultCacheMode)
	if mode == ir.CacheDefault {
		return ir.CacheNone
	}
	return mode
}
