// Command vmgrep prints the lines of its input that contain a match of a
// pattern.
//
// Usage:
//
//	vmgrep [-mode m] [-config file.yaml] [-strict] [-n] [-c] [-o] [-dump] PATTERN [FILE...]
//
// With no FILE it reads standard input. The exit status is 0 when a line
// matched, 1 when none did and 2 on error.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/coregx/regvm"
	"github.com/coregx/regvm/meta"
)

const (
	exitMatch   = 0
	exitNoMatch = 1
	exitError   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	lineNumbers bool
	count       bool
	onlyMatch   bool
	dump        bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vmgrep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: vmgrep [flags] PATTERN [FILE...]")
		fs.PrintDefaults()
	}

	modeFlag := fs.String("mode", "", "evaluator: depth-first or breadth-first")
	configFlag := fs.String("config", "", "YAML configuration file")
	strict := fs.Bool("strict", false, "reject unbalanced ')'")
	var opts options
	fs.BoolVar(&opts.lineNumbers, "n", false, "prefix each line with its line number")
	fs.BoolVar(&opts.count, "c", false, "print only a count of matching lines")
	fs.BoolVar(&opts.onlyMatch, "o", false, "print only the matched parts of a line")
	fs.BoolVar(&opts.dump, "dump", false, "print the compiled program and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitMatch
		}
		return exitError
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return exitError
	}

	config := regvm.DefaultConfig()
	if *configFlag != "" {
		loaded, err := meta.LoadConfigFile(*configFlag)
		if err != nil {
			fmt.Fprintf(stderr, "vmgrep: %v\n", err)
			return exitError
		}
		config = loaded
	}
	if *modeFlag != "" {
		mode, err := meta.ParseMode(*modeFlag)
		if err != nil {
			fmt.Fprintf(stderr, "vmgrep: %v\n", err)
			return exitError
		}
		config.Mode = mode
	}
	if *strict {
		config.StrictParens = true
	}

	re, err := regvm.CompileWithConfig(fs.Arg(0), config)
	if err != nil {
		fmt.Fprintf(stderr, "vmgrep: %v\n", err)
		return exitError
	}
	if opts.dump {
		fmt.Fprint(stdout, re.Program())
		return exitMatch
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()

	files := fs.Args()[1:]
	if len(files) == 0 {
		matched, err := grep(re, "", stdin, out, opts)
		return report(matched, err, stderr)
	}

	status := exitNoMatch
	for _, name := range files {
		prefix := ""
		if len(files) > 1 {
			prefix = name + ":"
		}
		code := grepFile(re, name, prefix, out, opts, stderr)
		if code == exitError || status == exitError {
			status = exitError
		} else if code == exitMatch {
			status = exitMatch
		}
	}
	return status
}

func grepFile(re *regvm.Regex, name, prefix string, out *bufio.Writer, opts options, stderr io.Writer) int {
	f, err := os.Open(name)
	if err != nil {
		fmt.Fprintf(stderr, "vmgrep: %v\n", err)
		return exitError
	}
	defer f.Close()
	matched, err := grep(re, prefix, f, out, opts)
	return report(matched, err, stderr)
}

// report turns the result of grep into an exit status.
func report(matched bool, err error, stderr io.Writer) int {
	switch {
	case err != nil:
		fmt.Fprintf(stderr, "vmgrep: %v\n", err)
		return exitError
	case matched:
		return exitMatch
	default:
		return exitNoMatch
	}
}

// grep scans r line by line and writes the output selected by opts.
func grep(re *regvm.Regex, prefix string, r io.Reader, out *bufio.Writer, opts options) (bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	count := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()

		if !opts.onlyMatch {
			ok, err := re.Match(line)
			if err != nil {
				return false, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if !ok {
				continue
			}
			count++
			if !opts.count {
				writeLine(out, prefix, lineNo, line, opts)
			}
			continue
		}

		locs, err := re.FindAllIndex(line, -1)
		if err != nil {
			return false, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if locs == nil {
			continue
		}
		count++
		if opts.count {
			continue
		}
		for _, loc := range locs {
			if loc[0] == loc[1] {
				continue
			}
			writeLine(out, prefix, lineNo, line[loc[0]:loc[1]], opts)
		}
	}
	if err := scanner.Err(); err != nil {
		return false, err
	}
	if opts.count {
		fmt.Fprintf(out, "%s%d\n", prefix, count)
	}
	return count > 0, nil
}

func writeLine(out *bufio.Writer, prefix string, lineNo int, text []byte, opts options) {
	out.WriteString(prefix)
	if opts.lineNumbers {
		fmt.Fprintf(out, "%d:", lineNo)
	}
	out.Write(text)
	out.WriteByte('\n')
}
