package luabridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"gnartgen/internal/domain/model/command"
	"gnartgen/internal/domain/model/execution"
)

func TestBridge_EvalCollectsCommands(t *testing.T) {
	b := New()

	seq, err := b.Eval(context.Background(), `
		forward(100)
		turn(90)
		forward(50)
	`)
	require.NoError(t, err)
	require.Len(t, seq, 3)
	assert.Equal(t, command.MoveForward(100), seq[0])
	assert.Equal(t, command.Turn(90), seq[1])
	assert.Equal(t, command.MoveForward(50), seq[2])
}

func TestBridge_PenAndColor(t *testing.T) {
	b := New()

	seq, err := b.Eval(context.Background(), `
		pen_up()
		forward(10)
		pen_down()
		set_color(255, 128, 0)
		forward(10)
	`)
	require.NoError(t, err)
	require.Len(t, seq, 5)
	assert.Equal(t, command.KindPenUp, seq[0].Kind)
	assert.Equal(t, command.KindPenDown, seq[2].Kind)
	assert.Equal(t, command.Color{R: 255, G: 128, B: 0}, seq[3].Color)
}

func TestBridge_ColorChannelsClamp(t *testing.T) {
	b := New()

	seq, err := b.Eval(context.Background(), `set_color(-20, 300, 64)`)
	require.NoError(t, err)
	require.Len(t, seq, 1)
	assert.Equal(t, command.Color{R: 0, G: 255, B: 64}, seq[0].Color)
}

func TestBridge_LuaLoopsFlattenIntoSequence(t *testing.T) {
	b := New()

	seq, err := b.Eval(context.Background(), `
		for i = 1, 4 do
			forward(50)
			turn(90)
		end
	`)
	require.NoError(t, err)
	assert.Len(t, seq, 8)
}

func TestBridge_MathLibraryIsAvailable(t *testing.T) {
	b := New()

	seq, err := b.Eval(context.Background(), `turn(math.floor(90.7))`)
	require.NoError(t, err)
	require.Len(t, seq, 1)
	assert.Equal(t, 90.0, seq[0].Angle)
}

func TestBridge_SyntaxError(t *testing.T) {
	b := New()

	seq, err := b.Eval(context.Background(), `forward(100) turn(`)
	require.Error(t, err)
	assert.Nil(t, seq, "no partial sequence may be returned on failure")

	se, ok := execution.AsScriptError(err)
	require.True(t, ok)
	assert.Equal(t, execution.SyntaxError, se.Kind)
}

func TestBridge_RuntimeError(t *testing.T) {
	b := New()

	// Arithmetic on a non-number raises inside the VM.
	seq, err := b.Eval(context.Background(), `
		local x = "text"
		forward(x + 1)
	`)
	require.Error(t, err)
	assert.Nil(t, seq)

	se, ok := execution.AsScriptError(err)
	require.True(t, ok)
	assert.Equal(t, execution.RuntimeError, se.Kind)
	assert.Greater(t, se.Line, 0)
}

func TestBridge_HostViolation(t *testing.T) {
	b := New()

	seq, err := b.Eval(context.Background(), `os.remove("/etc/passwd")`)
	require.Error(t, err)
	assert.Nil(t, seq)

	se, ok := execution.AsScriptError(err)
	require.True(t, ok)
	assert.Equal(t, execution.HostViolation, se.Kind)
	assert.Contains(t, se.Message, "os")
}

func TestBridge_SyntaxErrorUnderExpiredContext(t *testing.T) {
	b := New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The parse failure is the real error; the dead context must not
	// relabel it as a cancellation.
	seq, err := b.Eval(ctx, `forward(`)
	require.Error(t, err)
	assert.Nil(t, seq)

	se, ok := execution.AsScriptError(err)
	require.True(t, ok)
	assert.Equal(t, execution.SyntaxError, se.Kind)
}

func TestClassifyLuaErr_MessageTextCannotForgeHostViolation(t *testing.T) {
	raised := &lua.ApiError{Type: lua.ApiErrorRun, Object: lua.LString("chunk:1: host violation")}

	err := classifyLuaErr(context.Background(), raised, false)
	se, ok := execution.AsScriptError(err)
	require.True(t, ok)
	assert.Equal(t, execution.RuntimeError, se.Kind, "only the sealed-globals value carries the host-violation kind")
}

func TestBridge_CancelledMidEvaluation(t *testing.T) {
	b := New()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	seq, err := b.Eval(ctx, `while true do forward(1) end`)
	require.Error(t, err)
	assert.Nil(t, seq)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must interrupt the loop")

	se, ok := execution.AsScriptError(err)
	require.True(t, ok)
	assert.Equal(t, execution.Cancelled, se.Kind)

	// No residual broken state: a fresh terminating run succeeds.
	seq, err = b.Eval(context.Background(), `forward(5)`)
	require.NoError(t, err)
	assert.Len(t, seq, 1)
}
