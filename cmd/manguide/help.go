package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: manguide <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  enhance    Add breadcrumbs and code highlighting to HTML pages")
	fmt.Fprintln(w, "  capture    Enhance pages in headless Chrome and save the result")
	fmt.Fprintln(w, "  watch      Re-enhance pages whenever they change")
	fmt.Fprintln(w, "  doctor     Check settings and the capture environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'manguide help <command>' for details on a specific command.")
}

// printPageFlags prints the flags shared by enhance, capture and watch.
func printPageFlags(w io.Writer) {
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "      --title <s>           Root crumb label (default \"Quick Start Guide\")")
	fmt.Fprintln(w, "      --container-id <s>    Breadcrumb container id (default \"breadcrumb\")")
	fmt.Fprintln(w, "      --code-tag <s>        Code block tag name (default \"code\")")
	fmt.Fprintln(w, "      --no-breadcrumb       Skip the breadcrumb trail")
	fmt.Fprintln(w, "      --no-highlight        Skip code highlighting")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Per-page details and debug logs")
}

// printEnhanceUsage prints usage for the enhance command.
func printEnhanceUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: manguide enhance <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Enhance static HTML pages without a browser.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    HTML file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: rewrite in place)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --base-path <path>    Site path of the input root, e.g. /docs/")
	fmt.Fprintln(w, "      --dry-run             Report without writing")
	fmt.Fprintln(w)
	printPageFlags(w)
}

// printCaptureUsage prints usage for the capture command.
func printCaptureUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: manguide capture <url|file>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load pages in headless Chrome, enhance the live DOM and save the HTML.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir|->      Output directory, or - for stdout (single target)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel browsers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	printPageFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN           Chrome binary to use")
	fmt.Fprintln(w, "  ROD_NO_SANDBOX=1          Disable the Chrome sandbox (Docker/CI)")
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: manguide watch <dir> -o <dir> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Enhance a directory once, then again whenever pages are written.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory outside the watched tree")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --base-path <path>    Site path of the input root, e.g. /docs/")
	fmt.Fprintln(w, "      --debounce <d>        Quiet period before re-enhancing (default 200ms)")
	fmt.Fprintln(w)
	printPageFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "enhance":
		printEnhanceUsage(env.Stdout)
	case "capture":
		printCaptureUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: manguide version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: manguide help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
