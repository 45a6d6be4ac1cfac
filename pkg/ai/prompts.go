package ai

const ExtractMentionsPrompt = `
# Task Context
You are a named-entity recognizer. Find every **named entity mention** in the provided text and label it with exactly one type from the label set.

# Background Data
- **Labels:** [%s]

# Detailed Task Description & Rules
- Return mentions in the order they appear in the text. A mention that occurs several times is returned once per occurrence.
- **text** must be copied verbatim from the input (same spelling, same casing). Do not normalize, translate or expand abbreviations.
- **label** must be one of the labels above, written exactly as listed.
- Numbers that are not part of a date, time, money amount, percentage or quantity are CARDINAL. Ranks ("first", "3rd") are ORDINAL.
- Nationalities, religious and political groups are NORP. Countries, cities and states are GPE. Other locations are LOC.
- Use MISC only for proper names that fit no other label.
- Do not return common nouns, pronouns or generic phrases ("the company", "they", "report").

# Examples
**Text:**
Acme Corp opened its first office in Berlin on 3 March 2021 with 40 employees.

**Output:**
{
  "mentions": [
    {"text": "Acme Corp", "label": "ORG"},
    {"text": "first", "label": "ORDINAL"},
    {"text": "Berlin", "label": "GPE"},
    {"text": "3 March 2021", "label": "DATE"},
    {"text": "40", "label": "CARDINAL"}
  ]
}

# Output Formatting
The output must be a single valid JSON object in this structure:
{
  "mentions": [
    {"text": "string", "label": "string"}
  ]
}
Do not include any commentary, explanations, or text outside of the JSON.
Always return valid JSON. If the text contains no entities return {"mentions": []}.

# Text
%s
`
