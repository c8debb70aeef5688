// Command smartpaste-detect classifies text from arguments or stdin lines
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"smartpaste/internal/core/catalog"
	"smartpaste/internal/core/classifier"
	"smartpaste/internal/core/normalize"
	"smartpaste/internal/core/rules"
	"smartpaste/internal/core/version"
)

// maxLine bounds one stdin line
const maxLine = 4 * 1024 * 1024

type line struct {
	Input      string              `json:"input"`
	Result     *classifier.Result  `json:"result"`
	Tool       *catalog.Tool       `json:"tool,omitempty"`
	Candidates []classifier.Result `json:"candidates,omitempty"`
}

type ruleLine struct {
	Order      int     `json:"order"`
	ID         string  `json:"id"`
	Target     string  `json:"target"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("smartpaste-detect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		all       = fs.Bool("all", false, "print every qualifying candidate, not just the winner")
		rulesFile = fs.String("rules", "", "rules pack JSON (default: embedded pack)")
		threshold = fs.Float64("threshold", classifier.DefaultThreshold, "acceptance threshold in (0,1]")
		listRules = fs.Bool("list-rules", false, "print the registry in evaluation order and exit")
		showVer   = fs.Bool("version", false, "print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVer {
		fmt.Fprintln(stdout, version.For("smartpaste-detect"))
		return 0
	}
	if *threshold <= 0 || *threshold > 1 {
		fmt.Fprintf(stderr, "threshold %v outside (0,1]\n", *threshold)
		return 2
	}

	reg := rules.Default()
	if *rulesFile != "" {
		r, err := rules.LoadFile(*rulesFile)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		reg = r
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)

	if *listRules {
		for i, r := range reg.Rules() {
			sp := r.Spec()
			_ = enc.Encode(ruleLine{Order: i + 1, ID: sp.ID, Target: sp.Target, Confidence: sp.Confidence, Evidence: sp.Evidence})
		}
		return 0
	}

	cls := classifier.New(reg, classifier.Options{Threshold: *threshold})
	cat := catalog.Default()

	emit := func(in string) error {
		text := normalize.Clean(in)
		out := line{Input: in, Result: cls.Classify(text)}
		if out.Result != nil {
			if t, ok := cat.Lookup(out.Result.TargetID); ok {
				out.Tool = &t
			}
		}
		if *all {
			out.Candidates = cls.Candidates(text)
		}
		return enc.Encode(out)
	}

	if fs.NArg() > 0 {
		for _, a := range fs.Args() {
			if err := emit(a); err != nil {
				fmt.Fprintln(stderr, err)
				return 1
			}
		}
		return 0
	}

	sc := bufio.NewScanner(stdin)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		if err := emit(sc.Text()); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
