// internal/drafting/prompts.go
package drafting

import (
	"strings"

	"github.com/draftloop/outreach-backend/internal/model"
)

const initialEmailPromptTemplate = `You are an expert sales rep writing a compelling, personalized cold email.
My product is an AI-powered sales automation platform.
Lead Info: Name - {full_name}, Title - {title}, Company - {company}.
Task: Draft a short, professional cold email (under 100 words).
- Acknowledge their role ({title}) at {company}.
- Connect their role to the problem our product solves (saving time on outreach).
- End with a simple question.
- DO NOT use "I hope this email finds you well."
- Output ONLY the email body.`

const followUpEmailPromptTemplate = `You are an expert sales rep writing a gentle and brief follow-up email.
You are following up on a previous email about our AI sales automation platform.
Lead Info: Name - {full_name}, Title - {title}, Company - {company}.
Task: Draft a very short (under 60 words) follow-up email.
- Gently "bump" the previous message to the top of their inbox.
- Re-state the core benefit: helping sales leaders like them save time.
- End with a simple, no-pressure question.
- Output ONLY the email body.`

const linkedinConnectionPromptTemplate = `You are an expert sales rep writing a concise and professional LinkedIn connection request note.
The goal is to provide context and start a conversation, NOT to sell immediately.
My product is an AI-powered sales automation platform.
Lead Info: Name - {full_name}, Title - {title}, Company - {company}.
Task: Draft a LinkedIn connection request note. It MUST be under 300 characters.
- Make it personal by mentioning their company or title.
- Briefly state your professional area (e.g., "I work with sales leaders...").
- Do not include a sales pitch or ask for a meeting.
- Output ONLY the connection note.`

const replyDraftingPromptTemplate = `You are an expert sales development representative. A lead has replied to your outreach email.
Your task is to draft a helpful and professional response based on the conversation history.

**CONVERSATION HISTORY (Last message is the lead's reply):**
---
{conversation_history}
---

**INSTRUCTIONS:**
1. Analyze the lead's last message to understand their intent (e.g., Interested, Not Interested, Asking a question).
2. If the lead seems interested or asks for a meeting, suggest a few times to connect.
3. If the lead asks a question, answer it concisely.
4. If the lead is not interested, reply with a polite and professional closing.
5. Keep the reply concise and focused.

**Draft your reply below:**`

const guessEmailPromptTemplate = `Given the full name "{full_name}" and the company name "{company}", generate the most likely professional email address. Common formats are firstname.lastname@company.com, f.lastname@company.com, or firstname@company.com. Output ONLY the email address and nothing else.`

// RenderPrompt substitutes {placeholder} tokens in a template.
func RenderPrompt(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

func leadData(lead model.Lead) map[string]string {
	return map[string]string{
		"full_name": lead.FullName,
		"title":     lead.Title,
		"company":   lead.Company,
	}
}

// PromptForLead selects the outreach template by channel and sequence step:
// LinkedIn always gets the connection note, email gets the follow-up tone
// once the step is past the first touch.
func PromptForLead(lead model.Lead, sequenceStep int) string {
	if lead.PreferredChannel == model.ChannelLinkedIn {
		return RenderPrompt(linkedinConnectionPromptTemplate, leadData(lead))
	}
	if sequenceStep > 1 {
		return RenderPrompt(followUpEmailPromptTemplate, leadData(lead))
	}
	return RenderPrompt(initialEmailPromptTemplate, leadData(lead))
}

// PromptForReply builds the reply-drafting prompt from reconstructed
// conversation history.
func PromptForReply(conversationHistory string) string {
	return RenderPrompt(replyDraftingPromptTemplate, map[string]string{
		"conversation_history": conversationHistory,
	})
}

// PromptForEmailGuess builds the prospecting email-guess prompt.
func PromptForEmailGuess(fullName, company string) string {
	return RenderPrompt(guessEmailPromptTemplate, map[string]string{
		"full_name": fullName,
		"company":   company,
	})
}
