// Command oxyshader builds GLSL shader programs and draws the hello-triangle demo.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
)

func init() {
	// GLFW and the OpenGL context must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code. Errors are reported on
// stderr since the root command leaves printing to its caller.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(newDiagnosticWriter(stderr), "error: %v\n", err)
		return 1
	}
	return 0
}
