package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"usercalc/internal/calculator"
)

func calcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calc",
		Short: "Interactive calculator menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

var menuOperations = map[string]calculator.Operation{
	"1": calculator.OpAdd,
	"2": calculator.OpSubtract,
	"3": calculator.OpMultiply,
	"4": calculator.OpDivide,
}

// runMenu drives the interactive loop. Invalid choices and bad numbers
// are reported and the loop continues; only choice 5 or EOF ends it.
func runMenu(in io.Reader, out io.Writer) error {
	eng := &calculator.Engine{}
	sc := bufio.NewScanner(in)

	for {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Calculator Menu:")
		fmt.Fprintln(out, "1. Add")
		fmt.Fprintln(out, "2. Subtract")
		fmt.Fprintln(out, "3. Multiply")
		fmt.Fprintln(out, "4. Divide")
		fmt.Fprintln(out, "5. Exit")
		fmt.Fprint(out, "Enter your choice (1-5): ")

		if !sc.Scan() {
			return sc.Err()
		}
		choice := strings.TrimSpace(sc.Text())

		if choice == "5" {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		op, ok := menuOperations[choice]
		if !ok {
			fmt.Fprintln(out, "Invalid choice!")
			continue
		}

		a, ok := readNumber(sc, out, "Enter first number: ")
		if !ok {
			continue
		}
		b, ok := readNumber(sc, out, "Enter second number: ")
		if !ok {
			continue
		}

		result, err := eng.Apply(op, a, b)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "Result: %v\n", result)
	}
}

func readNumber(sc *bufio.Scanner, out io.Writer, prompt string) (float64, bool) {
	fmt.Fprint(out, prompt)
	if !sc.Scan() {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(sc.Text()), 64)
	if err != nil {
		fmt.Fprintln(out, "Invalid number!")
		return 0, false
	}
	return v, true
}
