package js

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// consoleAPI maps console.debug/log/warn/error onto logger levels. Each
// entry carries the name of the running script.
type consoleAPI struct {
	e      *Engine
	logger *zap.Logger
}

func (c *consoleAPI) register(vm *goja.Runtime) {
	console := vm.NewObject()
	console.Set("debug", c.at(zapcore.DebugLevel))
	console.Set("log", c.at(zapcore.InfoLevel))
	console.Set("info", c.at(zapcore.InfoLevel))
	console.Set("warn", c.at(zapcore.WarnLevel))
	console.Set("error", c.at(zapcore.ErrorLevel))
	console.Set("assert", c.assert)
	vm.Set("console", console)
}

func (c *consoleAPI) at(level zapcore.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		c.write(level, c.format(call.Arguments))
		return goja.Undefined()
	}
}

// assert logs an error when its first argument is falsy.
func (c *consoleAPI) assert(call goja.FunctionCall) goja.Value {
	if call.Argument(0).ToBoolean() {
		return goja.Undefined()
	}
	msg := "Assertion failed"
	if len(call.Arguments) > 1 {
		msg += ": " + c.format(call.Arguments[1:])
	}
	c.write(zapcore.ErrorLevel, msg)
	return goja.Undefined()
}

func (c *consoleAPI) write(level zapcore.Level, msg string) {
	if ce := c.logger.Check(level, msg); ce != nil {
		ce.Write(zap.String("script", c.e.running))
	}
}

// format joins the arguments with spaces. Boxes print as their debug name.
func (c *consoleAPI) format(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if b := c.e.unwrapBox(arg); b != nil {
			parts[i] = b.DebugName()
			continue
		}
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
