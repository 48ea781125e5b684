// Package executor defines the capability that performs a task's actual
// work, and a subprocess implementation that shells out to a model CLI.
//
// The dispatcher holds only the [Executor] interface; nothing in it assumes
// a subprocess, an RPC call, or an in-process function. [CLI] is the
// production implementation: it renders the final prompt (instructions +
// task prompt, optional web-search directive) and invokes an external
// binary such as the Gemini CLI:
//
//	gemini --model <model> --prompt <text>
//
// Context deadlines kill the subprocess; attempt-level timeouts are owned
// by the dispatcher.
package executor
