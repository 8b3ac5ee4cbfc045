package rag

import "strings"

// fallbackTopic pairs trigger keywords with a canned response for the
// degraded path when every generation attempt has failed. The answer is
// generic but on-topic, never an error page.
type fallbackTopic struct {
	keywords []string
	response string
}

var fallbackTopics = []fallbackTopic{
	{
		keywords: []string{"contract", "agreement", "breach"},
		response: "Contract law governs agreements between parties. For a breach of contract, remedies typically include damages, specific performance, or cancellation of the contract. The injured party must usually show that a valid contract existed, that the other party failed to perform, and that the failure caused a loss. Please consult a qualified lawyer for advice on your specific situation.",
	},
	{
		keywords: []string{"property", "land", "tenant", "eviction", "rent", "lease"},
		response: "Property law covers ownership, transfer, and tenancy of land and buildings. Tenants generally have statutory protections against arbitrary eviction, and landlords must follow the prescribed notice and court procedures. Disputes over title, boundaries, or possession are decided on the strength of registered documents and evidence of possession. Please consult a qualified lawyer for advice on your specific situation.",
	},
	{
		keywords: []string{"divorce", "custody", "marriage", "family", "alimony", "maintenance"},
		response: "Family law covers marriage, divorce, child custody, and maintenance. Courts decide custody primarily on the welfare of the child, and maintenance on the needs and means of the parties. Divorce may be sought on statutory grounds or by mutual consent, with different procedures and timelines for each. Please consult a qualified lawyer for advice on your specific situation.",
	},
	{
		keywords: []string{"criminal", "theft", "assault", "bail", "arrest", "fir"},
		response: "Criminal law defines offences and their punishments. An accused person has the right to know the charges, to legal representation, and to apply for bail, which courts grant or refuse based on the gravity of the offence and the risk of flight or tampering. Conviction requires proof beyond reasonable doubt. Please consult a qualified lawyer for advice on your specific situation.",
	},
}

const generalFallbackResponse = "I am currently unable to generate a detailed answer to your legal question. Legal outcomes depend heavily on the specific facts, the applicable statutes, and the precedents of your jurisdiction. Please consult a qualified lawyer for advice on your specific situation."

// fallbackResponse keyword-matches the query against known legal topics
// and returns the closest canned answer.
func fallbackResponse(query string) string {
	q := strings.ToLower(query)
	for _, topic := range fallbackTopics {
		for _, kw := range topic.keywords {
			if strings.Contains(q, kw) {
				return topic.response
			}
		}
	}
	return generalFallbackResponse
}
