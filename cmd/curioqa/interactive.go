package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"curio-queries/internal/models"
	"curio-queries/internal/pipeline"
)

// answerer is the part of the runner the interactive loop needs
type answerer interface {
	Answer(ctx context.Context, dir, question string) (*models.Response, pipeline.Guidance, error)
}

func runInteractiveMode(ctx context.Context, runner answerer, in io.Reader, out io.Writer, dir string) error {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "curioqa - Ask questions about your documents (type 'exit' to quit, '/dir <path>' to switch directory)")
	if dir != "" {
		fmt.Fprintf(out, "Document directory: %s\n", dir)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			break
		}
		if input == "" {
			continue
		}

		if next, ok := parseDirCommand(input); ok {
			dir = next
			if dir == "" {
				fmt.Fprintln(out, "Document directory cleared")
			} else {
				fmt.Fprintf(out, "Document directory set to: %s\n", dir)
			}
			continue
		}

		fmt.Fprint(out, "Searching documents... ")

		response, g, err := runner.Answer(ctx, dir, input)
		if err != nil {
			fmt.Fprintf(out, "\rError: %v\n", err)
			continue
		}
		if g != pipeline.GuidanceNone {
			fmt.Fprintln(out, "\r"+formatGuidance(g))
			continue
		}

		fmt.Fprint(out, "\r"+formatResponse(response))
	}

	return scanner.Err()
}

// parseDirCommand recognises "/dir <path>"
func parseDirCommand(input string) (string, bool) {
	if strings.EqualFold(input, "/dir") {
		return "", true
	}
	if len(input) > 5 && strings.EqualFold(input[:5], "/dir ") {
		return strings.TrimSpace(input[5:]), true
	}
	return "", false
}
