package main

import (
	"fmt"
	"strings"
)

// keywordSeparator joins keyword lists in prompts, exports and submissions.
const keywordSeparator = "、"

func modelAnswerPrompt(question string, keywords []string) string {
	return fmt.Sprintf(`%s Using every one of the keywords below, write a model answer of about 200 characters to the following question. Use simple words that an elementary school student can follow.

Question: "%s"

Keywords to use: %s

Output only the model answer, with no explanation or preamble.`,
		teacherPersona, question, strings.Join(keywords, keywordSeparator))
}

func correctionPrompt(question, summary string, keywords []string) string {
	keywordNote := ""
	if len(keywords) > 0 {
		keywordNote = "\nKeywords: " + strings.Join(keywords, keywordSeparator)
	}
	return fmt.Sprintf(`%s Read the student's answer to the question below and give advice.

Important rules:
- Never write a corrected or rewritten version of the text
- Do not give the answer; only give hints that help the student think for themselves
- Use easy, gentle words an elementary school student can understand
- Use emoji to keep it friendly

Question: "%s"%s

Student's answer: "%s"

Reply in this format:
1. [Good points ✨] Praise what the student did well in 2 or 3 sentences.
2. [Hints 💡] List hints for improving the answer as bullet points, phrased as prompts to think ("try thinking about...", "it might help to add...").`,
		teacherPersona, question, keywordNote, summary)
}

// answerRequest checks the inputs for a model answer.
func answerRequest(question string, keywords []string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", validationf("Enter a question first")
	}
	if len(keywords) == 0 {
		return "", validationf("Enter at least one keyword")
	}
	return modelAnswerPrompt(question, keywords), nil
}

// correctionRequest checks the inputs for a correction of the summary.
func correctionRequest(question, summary string, keywords []string) (string, error) {
	question = strings.TrimSpace(question)
	summary = strings.TrimSpace(summary)
	if question == "" {
		return "", validationf("Enter a question first")
	}
	if summary == "" {
		return "", validationf("Write a summary in S first")
	}
	return correctionPrompt(question, summary, keywords), nil
}
