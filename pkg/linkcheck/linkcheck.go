// Package linkcheck verifies that a built shared library exports every
// symbol a generation pass produced.
package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/jamesits/goinvoke"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jniaccess.linkcheck")

// ErrLibraryLoad is returned when the library itself cannot be opened.
var ErrLibraryLoad = errors.New("cannot load library")

// Report lists which expected symbols the library resolves.
type Report struct {
	Library string
	Present []string
	Missing []string
}

// OK reports whether every symbol was found.
func (r *Report) OK() bool {
	return len(r.Missing) == 0
}

// resolver loads a library and reports, per symbol, whether it is exported.
type resolver interface {
	Resolve(path string, symbols []string) ([]bool, error)
}

type goinvokeResolver struct{}

// procStruct builds a struct with one *goinvoke.Proc field per symbol.
func procStruct(symbols []string) reflect.Value {
	fields := make([]reflect.StructField, len(symbols))
	for i, sym := range symbols {
		fields[i] = reflect.StructField{
			Name: fmt.Sprintf("Proc%d", i),
			Type: reflect.TypeOf((*goinvoke.Proc)(nil)),
			Tag:  reflect.StructTag(fmt.Sprintf(`func:%q`, sym)),
		}
	}
	return reflect.New(reflect.StructOf(fields))
}

// Resolve loads path once and binds every symbol in a single struct; a
// field left nil is a missing export. If the binding itself fails, the
// symbols are bound one at a time so one missing export does not hide the
// others.
func (goinvokeResolver) Resolve(path string, symbols []string) ([]bool, error) {
	found := make([]bool, len(symbols))
	v := procStruct(symbols)
	err := goinvoke.Unmarshal(path, v.Interface())
	if err == nil {
		for i := range symbols {
			found[i] = !v.Elem().Field(i).IsNil()
		}
		return found, nil
	}
	if openErr := goinvoke.Unmarshal(path, &struct{}{}); openErr != nil {
		return nil, openErr
	}
	log.Debugf("%s: batch bind failed, binding singly: %v", path, err)
	for i, sym := range symbols {
		one := procStruct([]string{sym})
		if err := goinvoke.Unmarshal(path, one.Interface()); err != nil {
			log.Debugf("%s: %s: %v", path, sym, err)
			continue
		}
		found[i] = !one.Elem().Field(0).IsNil()
	}
	return found, nil
}

var defaultResolver resolver = goinvokeResolver{}

// Verify loads libPath and resolves every symbol, in order, skipping
// duplicates.
func Verify(ctx context.Context, libPath string, symbols []string) (*Report, error) {
	return verify(ctx, defaultResolver, libPath, symbols)
}

func verify(ctx context.Context, r resolver, libPath string, symbols []string) (*Report, error) {
	if _, err := os.Stat(libPath); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrLibraryLoad, libPath, err)
	}

	var unique []string
	seen := make(map[string]bool)
	for _, sym := range symbols {
		if !seen[sym] {
			seen[sym] = true
			unique = append(unique, sym)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found, err := r.Resolve(libPath, unique)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrLibraryLoad, libPath, err)
	}

	report := &Report{Library: libPath}
	for i, sym := range unique {
		if found[i] {
			report.Present = append(report.Present, sym)
		} else {
			report.Missing = append(report.Missing, sym)
		}
	}
	log.Infof("%s: %d of %d symbols present", libPath, len(report.Present), len(report.Present)+len(report.Missing))
	return report, nil
}
