package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/chazu/jniaccess/pkg/codegen"
	"github.com/chazu/jniaccess/pkg/parser"
)

func mangleCommand() *cli.Command {
	return &cli.Command{
		Name:      "mangle",
		Usage:     "Print the exported symbol of a native method",
		ArgsUsage: "<pkg.Class.method>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "signature",
				Aliases: []string{"s"},
				Usage:   "Method descriptor, e.g. \"(I)V\", for the overloaded form",
			},
		},
		Action: mangleAction,
	}
}

func mangleAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("usage: jniaccess mangle [--signature desc] <pkg.Class.method>")
	}
	name := cmd.Args().First()

	symbol := codegen.MangleName(name)
	if sig := cmd.String("signature"); sig != "" {
		desc, err := parser.ParseMethodDescriptor(sig)
		if err != nil {
			return err
		}
		symbol = codegen.MangleOverloaded(name, desc.ParamDescriptors())
	}
	fmt.Fprintln(cmd.Root().Writer, symbol)
	return nil
}
