// Package engine evaluates solidgrow scripts. It wraps zygomys in a
// sandboxed environment with builtins for building, combining and
// expanding solids, and returns the value of the last expression as
// geometry.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/solidgrow/internal/logging"
	"github.com/chazu/solidgrow/pkg/batch"
	"github.com/chazu/solidgrow/pkg/expand"
	"github.com/chazu/solidgrow/pkg/kernel"
	"github.com/chazu/solidgrow/pkg/kernel/bsp"
	"github.com/chazu/solidgrow/pkg/kernel/sdfx"
	zygo "github.com/glycerine/zygomys/zygo"
)

var log = logging.Named("engine")

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	kernel   kernel.Kernel
	mesher   *sdfx.Mesher
	expander *expand.Expander
}

// NewEngine creates an Engine using the BSP kernel.
func NewEngine() *Engine {
	return NewEngineWith(bsp.New())
}

// NewEngineWith creates an Engine that combines solids with k.
func NewEngineWith(k kernel.Kernel) *Engine {
	return &Engine{
		kernel:   k,
		mesher:   sdfx.New(),
		expander: expand.New(k),
	}
}

// Evaluate runs source and returns the geometry its last expression
// produced. A solid becomes a batch.Solid, a (nested) list becomes a
// batch.Collection, and any other value an empty collection.
//
// Return semantics:
//   - On success: returns item + nil errors + nil error
//   - On parse/eval failure: returns nil item + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (batch.Item, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		item, evalErrs, err := e.evaluate(source)
		ch <- evalResult{item: item, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

func (e *Engine) evaluate(source string) (batch.Item, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return batch.Collection{}, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	e.registerBuiltins(env)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	res, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	item, err := toItem(res)
	if err != nil {
		log.WithError(err).Debug("script result is not geometry")
		return batch.Collection{}, nil, nil
	}
	return item, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// extracting the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
