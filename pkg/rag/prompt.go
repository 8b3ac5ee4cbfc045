package rag

import "strings"

// buildPrompt combines the assembled precedent context with the user's
// question and citation instructions. When no precedent cleared the
// similarity threshold the prompt switches to the general-knowledge path
// and tells the model to say so explicitly.
func buildPrompt(contextBlock, query string) string {
	var sb strings.Builder

	sb.WriteString("You are a legal research assistant. Answer the user's legal question accurately and concisely.\n\n")

	if contextBlock != "" {
		sb.WriteString("RELEVANT PRECEDENT CASES:\n")
		sb.WriteString(contextBlock)
		sb.WriteString("\n\n")
		sb.WriteString("INSTRUCTIONS:\n")
		sb.WriteString("- Base your answer on the precedent cases above where they apply.\n")
		sb.WriteString("- Cite cases you rely on by their title (e.g. \"as held in <case title>\").\n")
		sb.WriteString("- If the cases do not fully cover the question, say which parts of your answer are general legal knowledge.\n")
		sb.WriteString("- Recommend consulting a qualified lawyer for advice on the user's specific situation.\n\n")
	} else {
		sb.WriteString("No directly relevant precedent cases were found for this question.\n\n")
		sb.WriteString("INSTRUCTIONS:\n")
		sb.WriteString("- Answer from general legal knowledge.\n")
		sb.WriteString("- State clearly that no directly relevant precedent was found.\n")
		sb.WriteString("- Recommend consulting a qualified lawyer for advice on the user's specific situation.\n\n")
	}

	sb.WriteString("USER QUESTION:\n")
	sb.WriteString(strings.TrimSpace(query))
	return sb.String()
}
