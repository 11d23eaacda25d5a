package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	isatty "github.com/mattn/go-isatty"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/calclab/infix/pkg/infix"
	"github.com/calclab/infix/pkg/service"
)

var (
	app = kingpin.New("Infix Calculator CLI", "Evaluates infix arithmetic expressions")

	notation = app.Flag("notation", "Output form").Default("value").Enum("value", "prefix", "postfix")

	replCmd = app.Command("repl", "Interactive mode: one expression per line")

	batchCmd  = app.Command("batch", "Evaluate expressions and exit")
	batchExpr = batchCmd.Arg("expr", "Expressions").Required().Strings()

	remoteCmd  = app.Command("remote", "Evaluate expressions against a running server")
	remoteAddr = remoteCmd.Flag("addr", "Server base URL").Default("http://localhost:8080").String()
	remoteExpr = remoteCmd.Arg("expr", "Expressions").Required().Strings()
)

func main() {
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case replCmd.FullCommand():
		doREPL()
	case batchCmd.FullCommand():
		os.Exit(doBatch())
	case remoteCmd.FullCommand():
		os.Exit(doRemote())
	}
}

func parseNotation() infix.Notation {
	n, err := infix.ParseNotation(*notation)
	if err != nil {
		// The Enum flag already constrains the value.
		panic(err)
	}
	return n
}

func doREPL() {
	engine := infix.New(parseNotation())
	interactive := isatty.IsTerminal(os.Stdout.Fd())

	if interactive {
		fmt.Println("Enter an expression per line. Press Ctrl+D to exit.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for prompt(interactive); scanner.Scan(); prompt(interactive) {
		line := scanner.Text()
		if isBlank(line) {
			continue
		}

		result, err := engine.Evaluate(line)
		if err != nil {
			fmt.Printf("!! %v\n", err)
			engine.Reset()
			continue
		}

		fmt.Println(result)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input: %v\n", err)
		os.Exit(1)
	}
}

func prompt(interactive bool) {
	if interactive {
		fmt.Print("> ")
	}
}

func isBlank(line string) bool {
	for _, r := range line {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}

// doBatch evaluates each argument expression and prints one line per
// expression. The exit status is the number of failed expressions.
func doBatch() int {
	engine := infix.New(parseNotation())

	failed := 0
	for _, expr := range *batchExpr {
		result, err := engine.Evaluate(expr)
		if err != nil {
			fmt.Printf("!! %v\n", err)
			engine.Reset()
			failed++
			continue
		}

		fmt.Println(result)
	}

	return failed
}

func doRemote() int {
	client := service.NewClient(*remoteAddr)

	failed := 0
	for _, expr := range *remoteExpr {
		result, err := client.Evaluate(context.Background(), *notation, expr)
		if err != nil {
			fmt.Printf("!! %v\n", err)
			failed++
			continue
		}

		fmt.Println(result)
	}

	return failed
}
