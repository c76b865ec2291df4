package interview

import (
	"github.com/myrjola/interviewprep/internal/errors"
	"log/slog"
	"strings"
	"text/template"
)

// Prompt is what the question generator receives for one turn.
type Prompt struct {
	// System describes the interviewer persona for the whole session.
	System string
	// Instruction tells the interviewer what to do in this turn.
	Instruction string
}

// PromptParams are the inputs of a question instruction.
type PromptParams struct {
	InterviewType    string
	Category         string
	UserName         string
	First            bool
	PreviousQuestion string
	// Analysis of the latest answer. Nil when analysis is disabled or for the first question.
	Analysis *AnswerAnalysis
}

var promptTemplates = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`
{{- define "system" -}}
You are {{.Type.Interviewer}} conducting a professional interview for a {{.Type.Position}} position.

The interview covers {{len .Categories}} areas, asked in this order:
{{range $i, $c := .Categories}}{{inc $i}}. {{$c}}
{{end}}
CATEGORY THEMES (use as broad inspiration, not as rigid templates):
{{range $i, $c := .Categories}}{{$t := index $.Type.Themes $c}}{{if $t.Focus}}
{{inc $i}}. {{$c}}:
   Core focus: {{$t.Focus}}
   Be creative: explore {{$t.Explore}}
{{end}}{{end}}
PERSONALIZATION RULES:
- Only reference what the candidate actually said.
- Do not invent or assume experiences they did not mention.
- When in doubt, ask a fresh standalone question.

Guidelines:
- Ask ONE question at a time.
- Always acknowledge the candidate's previous answer briefly before the next question, using varied language.
- Keep questions conversational yet professionally rigorous.
- Do not mention category names in your questions.
- Stay in character as the interviewer for a {{.Type.Position}} position.
{{- end}}

{{- define "first" -}}
This is the first question for {{.UserName}}. Start with a warm greeting using their name, then ask an introductory question that helps you get to know them professionally as a {{.Type.Position}} candidate.

Category focus: {{.Category}}

Make it conversational and welcoming. Only provide the greeting and the question, nothing else.
{{- end}}

{{- define "off_topic" -}}
The candidate gave an answer that did not address the question at all.

Previous question: {{.PreviousQuestion}}
Analysis: {{.Analysis.Reasoning}}

Your task:
1. Politely but directly state that the answer was not what you asked about.
2. Do not validate the irrelevant content.
3. Briefly restate what the question was asking.
4. Ask exactly one NEW question for the {{.Category}} category.

Stay in character as the interviewer for a {{.Type.Position}} position.
{{- end}}

{{- define "does_not_know" -}}
The candidate indicated that they do not know the answer or are unsure how to respond.

Previous question: {{.PreviousQuestion}}
Analysis: {{.Analysis.Reasoning}}

Your task:
1. Acknowledge their honesty in a supportive way.
2. Provide brief encouragement.
3. Ask exactly one NEW question for the {{.Category}} category.

Stay in character as the interviewer for a {{.Type.Position}} position.
{{- end}}

{{- define "next" -}}
{{if .Analysis}}The candidate gave an on-topic answer.

Previous question: {{.PreviousQuestion}}
Answer quality: {{.Analysis.Quality}}
Analysis: {{.Analysis.Reasoning}}

{{end}}Your task:
1. Give a brief, natural acknowledgment (1-2 sentences) of the candidate's most recent answer. Reference specific details they mentioned and avoid stock phrases.
2. Ask exactly one NEW question for the {{.Category}} category. Do not mention the category name.

Stay in character as the interviewer for a {{.Type.Position}} position.

FORMAT YOUR RESPONSE:
[Brief, varied acknowledgment of their answer]
[One new question]
{{- end}}
`))

// SystemPrompt renders the interviewer persona for a session of interviewType following seq.
func (c *Catalog) SystemPrompt(interviewType string, seq Sequence) (string, error) {
	t, err := c.Type(interviewType)
	if err != nil {
		return "", err
	}
	return render("system", struct {
		Type       InterviewType
		Categories []string
	}{Type: t, Categories: seq.Categories})
}

// BuildPrompt renders the instruction for one question. The first question greets userName and asks an introductory
// question; later questions acknowledge the most recent answer and ask one question in category.
func (c *Catalog) BuildPrompt(interviewType string, category string, userName string, first bool) (string, error) {
	return c.Instruction(PromptParams{
		InterviewType:    interviewType,
		Category:         category,
		UserName:         userName,
		First:            first,
		PreviousQuestion: "",
		Analysis:         nil,
	})
}

// Instruction renders the instruction for one question, adapting it to the analysis of the previous answer.
func (c *Catalog) Instruction(p PromptParams) (string, error) {
	t, err := c.Type(p.InterviewType)
	if err != nil {
		return "", err
	}
	name := "next"
	switch {
	case p.First:
		name = "first"
	case p.Analysis != nil && p.Analysis.Scenario == ScenarioOffTopic:
		name = "off_topic"
	case p.Analysis != nil && p.Analysis.Scenario == ScenarioDoesNotKnow:
		name = "does_not_know"
	}
	return render(name, struct {
		PromptParams
		Type InterviewType
	}{PromptParams: p, Type: t})
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := promptTemplates.ExecuteTemplate(&b, name, data); err != nil {
		return "", errors.Wrap(err, "render prompt", slog.String("template", name))
	}
	return strings.TrimSpace(b.String()), nil
}
