// Package luabridge evaluates script source through an embedded Lua
// interpreter and collects the emitted turtle commands.
//
// Each evaluation runs in a fresh interpreter state with only the turtle
// primitives, the math library, and Lua's own control constructs available.
// The primitives append to a private buffer and perform no I/O; the buffer
// is returned only when the whole script ran to completion, so a caller
// never observes a partial sequence.
package luabridge

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"gnartgen/internal/domain/model/command"
	"gnartgen/internal/domain/model/execution"
)

// hostViolation is the error value sealGlobals raises. Carrying it as a
// typed userdata payload keeps the classification unspoofable by script
// text that merely mentions the same words.
type hostViolation struct {
	name  string
	where string
}

// Bridge turns script source text into a command sequence. The zero value
// is ready to use; Bridge carries no state between evaluations.
type Bridge struct{}

// New creates an interpreter bridge.
func New() *Bridge {
	return &Bridge{}
}

// Eval evaluates source to completion and returns the full command
// sequence, or a *execution.ScriptError classifying the failure.
// Cancellation is cooperative through ctx and resolves as the Cancelled
// kind; the interpreter checks the context at a bounded granularity inside
// its execution loop.
func (b *Bridge) Eval(ctx context.Context, source string) (command.Sequence, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	L.SetContext(ctx)

	// Pure libraries only: math carries no I/O and no host access.
	lua.OpenMath(L)

	var buf []command.Command
	registerPrimitives(L, &buf)
	sealGlobals(L)

	fn, err := L.LoadString(source)
	if err != nil {
		return nil, classifyLuaErr(ctx, err, true)
	}

	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return nil, classifyLuaErr(ctx, err, false)
	}

	return command.Sequence(buf), nil
}

// registerPrimitives installs the fixed turtle primitive set. Each one only
// appends to buf; none may touch the project store or perform I/O.
func registerPrimitives(L *lua.LState, buf *[]command.Command) {
	L.SetGlobal("forward", L.NewFunction(func(L *lua.LState) int {
		d := float64(L.CheckNumber(1))
		*buf = append(*buf, command.MoveForward(d))
		return 0
	}))
	L.SetGlobal("turn", L.NewFunction(func(L *lua.LState) int {
		a := float64(L.CheckNumber(1))
		*buf = append(*buf, command.Turn(a))
		return 0
	}))
	L.SetGlobal("pen_up", L.NewFunction(func(L *lua.LState) int {
		*buf = append(*buf, command.PenUp())
		return 0
	}))
	L.SetGlobal("pen_down", L.NewFunction(func(L *lua.LState) int {
		*buf = append(*buf, command.PenDown())
		return 0
	}))
	L.SetGlobal("set_color", L.NewFunction(func(L *lua.LState) int {
		r := clampChannel(L.CheckNumber(1))
		g := clampChannel(L.CheckNumber(2))
		b := clampChannel(L.CheckNumber(3))
		*buf = append(*buf, command.SetColor(command.Color{R: r, G: g, B: b}))
		return 0
	}))
}

// sealGlobals makes any read of an undefined global raise a host-violation
// error instead of silently yielding nil. This is how attempts to reach
// outside the primitive set are detected and classified.
func sealGlobals(L *lua.LState) {
	mt := L.NewTable()
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		ud := L.NewUserData()
		ud.Value = &hostViolation{name: L.Get(2).String(), where: L.Where(1)}
		L.Error(ud, 0)
		return 0
	}))
	L.SetMetatable(L.Get(lua.GlobalsIndex), mt)
}

func clampChannel(n lua.LNumber) uint8 {
	v := int(n)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// luaLineRe matches the "chunk:line:" prefix Lua puts on error messages.
var luaLineRe = regexp.MustCompile(`:(\d+):`)

func classifyLuaErr(ctx context.Context, err error, parsing bool) error {
	msg := err.Error()
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		if ud, ok := apiErr.Object.(*lua.LUserData); ok {
			if hv, ok := ud.Value.(*hostViolation); ok {
				return &execution.ScriptError{
					Kind:    execution.HostViolation,
					Message: fmt.Sprintf("%q is not part of the turtle primitive set", hv.name),
					Line:    extractLine(hv.where),
				}
			}
		}
		msg = apiErr.Object.String()
	}

	// The interpreter surfaces a context interruption as an error carrying
	// the context's own message. Only that error is Cancelled; a genuine
	// script failure keeps its kind even when the context has since expired.
	if ctxErr := ctx.Err(); ctxErr != nil && strings.Contains(msg, ctxErr.Error()) {
		return &execution.ScriptError{
			Kind:    execution.Cancelled,
			Message: ctxErr.Error(),
		}
	}

	kind := execution.RuntimeError
	if parsing {
		kind = execution.SyntaxError
	}
	return &execution.ScriptError{
		Kind:    kind,
		Message: strings.TrimSpace(msg),
		Line:    extractLine(msg),
	}
}

func extractLine(msg string) int {
	m := luaLineRe.FindStringSubmatch(msg)
	if len(m) != 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
