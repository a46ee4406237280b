// Package prompt builds the messages sent to the model for card generation
// and single-card regeneration.
//
// Prompts are versioned with the binary; changing them requires a rebuild.
package prompt

import (
	"fmt"
	"strings"

	"github.com/alnah/go-flashgen/internal/card"
)

// ContextChars is how many characters of the source text a regeneration
// prompt carries.
const ContextChars = 2000

// User builds the per-chunk user message asking for up to cfg.CardLimit cards.
func User(text string, cfg card.Config) string {
	var b strings.Builder
	b.WriteString("### TASK ###\n")
	fmt.Fprintf(&b, "Generate up to %d high-quality flashcards from the source text below. "+
		"Apply the Rules of Formulation strictly, and prioritize the Minimum Information Principle above all else.", cfg.CardLimit)

	if cfg.PreferredType != "" {
		fmt.Fprintf(&b, "\n\nPrefer '%s' card type when appropriate for the content.", cfg.PreferredType)
	}
	if cfg.SourceName != "" {
		fmt.Fprintf(&b, "\n\nSource context: %s", cfg.SourceName)
	}

	b.WriteString("\n\n\n### SOURCE TEXT ###\n")
	b.WriteString(text)
	return b.String()
}

// Regenerate builds the user message asking for one card to replace rejected.
// Only the first ContextChars characters of source are included. An empty
// hint adds no feedback line.
func Regenerate(rejected card.Card, source, hint string) string {
	var b strings.Builder
	b.WriteString(`### TASK ###
Create ONE new, high-quality flashcard to replace a rejected card. The new card must be superior and adhere strictly to the Rules of Formulation, especially the Minimum Information Principle.

### REJECTION CONTEXT ###
`)
	fmt.Fprintf(&b, "- **Rejected Card Type**: %s\n", rejected.Type)
	fmt.Fprintf(&b, "- **Rejected Card Front**: %q\n", rejected.Front)
	fmt.Fprintf(&b, "- **Rejected Card Back**: %q\n", rejected.Back)
	if hint = strings.TrimSpace(hint); hint != "" {
		fmt.Fprintf(&b, "- **User Feedback**: %s\n", hint)
	}

	b.WriteString("\n### SOURCE TEXT EXCERPT ###\n")
	b.WriteString(Excerpt(source))
	b.WriteString(regenerateTail)
	return b.String()
}

// Excerpt returns the first ContextChars characters of source.
// It never splits a multi-byte character.
func Excerpt(source string) string {
	n := 0
	for i := range source {
		if n == ContextChars {
			return source[:i]
		}
		n++
	}
	return source
}

const regenerateTail = `

### EXAMPLES OF IMPROVEMENT ###

**Example: Fixing a card that's too complex**
- REJECTED: "What are the characteristics of the Dead Sea?" -> "It's a salt lake, lowest point on Earth, 74km long, 7x saltier than ocean."
- IMPROVED: "Why can swimmers float easily in the Dead Sea?" -> "High salt content increases water density."

### OUTPUT FORMAT ###
Respond with valid JSON containing exactly one card:
{"cards": [{"type": "basic", "front": "...", "back": "...", "suggested_tags": [...]}]}`

// System is the system message shared by generation and regeneration.
// It fixes the reply format parsed by package parse.
const System = `### ROLE ###
You are an expert in cognitive science and learning theory, specializing in creating optimal study materials for spaced repetition systems like Anki. Your goal is to generate high-quality, effective flashcards that maximize long-term retention.

### RULES OF FORMULATION ###
Apply these cognitive science principles to every card:

1. **Minimum Information Principle**: Each card must be ATOMIC, testing only ONE discrete piece of information. Break complex concepts into their simplest possible components.

2. **Force Active Recall**: Questions must require active retrieval, not recognition. Use open-ended questions (What, Why, How) rather than simple fill-in-the-blank.

3. **Conciseness & Clarity**: Use the shortest possible questions and even shorter answers. Never repeat the question's phrasing in the answer.

4. **Focus on Key Concepts**: Test the MOST important and central concepts, not peripheral details or trivia.

5. **Independence**: Each card must be understandable on its own without the source text. Never refer to "the article" or "the author."

6. **Desirable Difficulty**: Cards should be challenging but answerable. Hard enough to require effort, not so obscure they cause frustration.

### CARD TYPE GUIDELINES ###
- **"basic"**: For definitions, simple facts, and conceptual questions. Use open-ended questions.
- **"basic_reversed"**: For vocabulary or terminology that benefits from bidirectional learning (term to definition and definition to term).
- **"cloze"**: For processes, sequences, formulas, or when testing specific terms in context. Use {{c1::text}} syntax. Use multiple cloze numbers (c1, c2, etc.) only when testing different concepts in the same sentence.

### EXAMPLES OF GOOD VS. BAD CARDS ###

**Example 1: From a text about the Dead Sea**
- BAD (Too Complex):
  - Front: "What are the characteristics of the Dead Sea?"
  - Back: "It's a salt lake on the border of Israel and Jordan, its shoreline is the lowest point on Earth, it's 74km long, and it's 7 times saltier than the ocean."
- GOOD (Atomic & Concise):
  - Front: "Why can swimmers float easily in the Dead Sea?"
  - Back: "High salt content increases water density."

**Example 2: Cloze card**
- BAD (Testing trivia):
  - Front: "The mitochondria was discovered in {{c1::1857}}."
- GOOD (Testing key concept):
  - Front: "The {{c1::mitochondria}} is the organelle responsible for producing ATP through cellular respiration."

### OUTPUT FORMAT ###
Respond ONLY with valid JSON in this exact format:
{
  "cards": [
    {
      "type": "basic",
      "front": "What is X?",
      "back": "Y",
      "suggested_tags": ["topic1", "topic2"]
    },
    {
      "type": "cloze",
      "front": "The {{c1::mitochondria}} produces ATP.",
      "back": "",
      "suggested_tags": ["biology", "cell"]
    }
  ]
}

Important:
- "type" must be one of: "basic", "basic_reversed", "cloze"
- For cloze cards, "back" should be empty string
- suggested_tags should be lowercase, no spaces (use underscores)
`
