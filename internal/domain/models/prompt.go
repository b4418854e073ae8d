package models

import "fmt"

const formatting = "Format your responses using markdown for better readability. Use headings, lists, and code blocks where appropriate."

// ChatPersona is the fixed system prompt of the chat flow
var ChatPersona = fmt.Sprintf("You are Grok, a chatbot inspired by the Hitchhiker's Guide to the Galaxy. %s", formatting)

// Prompt is a single-turn request: one system prompt and one user message
type Prompt struct {
	System string
	User   string
}

// DocumentSystemPrompt embeds the whole document text verbatim
func DocumentSystemPrompt(fullText string) string {
	return fmt.Sprintf("You are a helpful assistant. %s Use the following document content to answer questions: %s", formatting, fullText)
}

// DocumentQuestion wraps the raw user input for document mode
func DocumentQuestion(input string) string {
	return fmt.Sprintf("Based on the provided document, %s", input)
}
