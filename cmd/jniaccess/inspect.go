package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/chazu/jniaccess/pkg/codegen"
	"github.com/chazu/jniaccess/pkg/ir"
	"github.com/chazu/jniaccess/pkg/lexer"
	"github.com/chazu/jniaccess/pkg/parser"
)

func inspectCommand() *cli.Command {
	flags := append(configFlags(),
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the bindings as JSON",
		},
		&cli.StringFlag{
			Name:  "type",
			Usage: "Show how one type expression is tokenized and mapped, instead of reading a model",
		},
	)
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the resolved bindings without writing anything",
		ArgsUsage: "[model.json | -]",
		Flags:     flags,
		Action:    inspectAction,
	}
}

// inspection is the JSON form of one pass.
type inspection struct {
	DefaultCacheMode string           `json:"defaultCacheMode"`
	Bindings         []inspectBinding `json:"bindings"`
	Natives          []inspectNative  `json:"natives"`
	CachedClasses    []string         `json:"cachedClasses"`
	Diagnostics      []string         `json:"diagnostics,omitempty"`
}

type inspectBinding struct {
	Element      string   `json:"element"`
	Shape        string   `json:"shape"`
	CacheMode    string   `json:"cacheMode"`
	Functions    []string `json:"functions"`
	CacheSymbols []string `json:"cacheSymbols,omitempty"`
}

type inspectNative struct {
	Method    string `json:"method"`
	Symbol    string `json:"symbol"`
	Prototype string `json:"prototype"`
}

func newInspection(mode string, result *codegen.Result) inspection {
	in := inspection{DefaultCacheMode: mode, CachedClasses: result.CachedClasses}
	for _, b := range result.Bindings {
		in.Bindings = append(in.Bindings, inspectBinding{
			Element:      b.Element,
			Shape:        string(b.Shape),
			CacheMode:    b.CacheMode.String(),
			Functions:    b.Functions,
			CacheSymbols: b.CacheSymbols,
		})
	}
	for _, n := range result.Natives {
		in.Natives = append(in.Natives, inspectNative{
			Method:    n.Method.QualifiedName(),
			Symbol:    n.Symbol,
			Prototype: n.Prototype(),
		})
	}
	for _, d := range result.Diagnostics {
		in.Diagnostics = append(in.Diagnostics, d.String())
	}
	return in
}

func inspectAction(ctx context.Context, cmd *cli.Command) error {
	if expr := cmd.String("type"); expr != "" {
		return inspectType(cmd, expr)
	}
	result, cfg, err := run(cmd)
	if err != nil {
		return err
	}
	in := newInspection(cacheModeOrDefault(cfg).String(), result)
	out := cmd.Root().Writer

	if cmd.Bool("json") {
		data, err := json.MarshalIndent(in, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Default cache mode: %s\n\n", in.DefaultCacheMode)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ELEMENT\tSHAPE\tCACHE\tFUNCTIONS\tCACHED")
	for _, b := range in.Bindings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.Element, b.Shape, b.CacheMode,
			strings.Join(b.Functions, ", "), strings.Join(b.CacheSymbols, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(in.Natives) > 0 {
		fmt.Fprintln(out, "\nNative methods:")
		for _, n := range in.Natives {
			fmt.Fprintf(out, "  %s -> %s\n", n.Method, n.Symbol)
		}
	}
	if len(in.CachedClasses) > 0 {
		fmt.Fprintf(out, "\nCached classes: %s\n", strings.Join(in.CachedClasses, ", "))
	}
	reportDiagnostics(cmd.Root().ErrWriter, result.Diagnostics)
	return nil
}

// inspectType prints each stage a type expression goes through, resolved
// against the built-in java.lang hierarchy.
func inspectType(cmd *cli.Command, expr string) error {
	out := cmd.Root().Writer
	tokens, err := lexer.New(expr).TokenizeJSON()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "tokens:     %s\n", tokens)

	parsed, err := parser.ParseType(expr)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "parsed:     %s\n", parsed)

	types := ir.Builtins()
	typ, err := types.TypeOf(parsed)
	if err != nil {
		return err
	}
	mapper := codegen.NewTypeMapper(types)
	desc, err := mapper.Descriptor(typ)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "descriptor: %s\n", desc)
	fmt.Fprintf(out, "native:     %s\n", mapper.NativeType(typ))
	fmt.Fprintf(out, "accessor:   %s\n", mapper.AccessorTag(typ))
	return nil
}
