package main

import (
	"fmt"
	"strings"

	"curio-queries/internal/models"
	"curio-queries/internal/pipeline"
)

func formatGuidance(g pipeline.Guidance) string {
	return "Please check your input: " + g.String()
}

func formatAnswer(answer models.Answer) string {
	return fmt.Sprintf("%s (chunk %d): %s (score: %.4f)",
		answer.Document, answer.Position, answer.Text, answer.Score)
}

func formatResponse(response *models.Response) string {
	var sb strings.Builder

	if len(response.Answers) == 0 {
		sb.WriteString("No answer found.\n")
	}
	for _, answer := range response.Answers {
		sb.WriteString(formatAnswer(answer))
		sb.WriteString("\n")
	}

	if len(response.Skipped) > 0 {
		sb.WriteString("\n")
		for _, s := range response.Skipped {
			sb.WriteString(fmt.Sprintf("skipped %s: %s\n", s.Name, s.Reason))
		}
	}
	if response.Failed > 0 {
		sb.WriteString(fmt.Sprintf("%d chunk(s) could not be scored\n", response.Failed))
	}

	return sb.String()
}
