package provider

import (
	"strings"
	"text/template"

	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
)

// domain is a topic family that gets an expert persona and stricter
// accuracy rules in the prompt.
type domain struct {
	Keywords []string
	Persona  string
	Subjects string
	EasyHard string
	BossWord string
}

var domains = []domain{
	{
		Keywords: []string{"bollywood", "tollywood", "kollywood"},
		Persona:  "You are an expert on Indian cinema. Your knowledge is precise and verified.",
		Subjects: "a well-known film title, character name, actor or actress name, or a very famous dialogue",
		EasyHard: "Easy means iconic films everyone knows; Hard may be a less mainstream but critically acclaimed film.",
		BossWord: "a specific character's full name from a classic film, a critically acclaimed but non-mainstream title, or a nuanced film-industry term",
	},
}

// matchDomain returns the sub-domain a free-text topic belongs to, if any.
func matchDomain(topic string) *domain {
	t := strings.ToLower(topic)
	for i := range domains {
		for _, k := range domains[i].Keywords {
			if strings.Contains(t, k) {
				return &domains[i]
			}
		}
	}
	return nil
}

type promptData struct {
	Topic      string
	Difficulty puzzle.Difficulty
	Count      int
	Exclude    string
	Domain     *domain
}

var prompts = template.Must(template.New("prompts").Parse(`
{{- define "exclude" }}{{ if .Exclude }}
- IMPORTANT: do NOT use any of these words or phrases, they were already used this session: {{ .Exclude }}.{{ end }}{{ end }}

{{- define "single" -}}
{{ with .Domain }}{{ .Persona }} Generate an accurate and verifiable hangman puzzle.{{ else }}Generate a hangman game word or short phrase and a list of hints for the topic and difficulty below.{{ end }}

Topic: "{{ .Topic }}"
Difficulty: "{{ .Difficulty }}"

RULES:
{{- with .Domain }}
- The 'word' must be {{ .Subjects }}.
- ACCURACY IS CRITICAL. The word and every hint must be factually correct and about that exact subject.
- {{ .EasyHard }}
{{- else }}
- The 'word' should suit the difficulty: a common, well-known term for Easy; a more obscure or specific term for Hard.
{{- end }}
- The 'word' must only contain letters A-Z and spaces, in uppercase. No digits or punctuation.
- Provide exactly 4 'hints': short, clever clues ordered from most cryptic (first) to most obvious (last).
- Return JSON with the keys "word" (a string) and "hints" (an array of 4 strings).
{{- template "exclude" . }}
{{ end }}

{{- define "boss" -}}
{{ with .Domain }}{{ .Persona }} Generate an extremely difficult, boss-level hangman puzzle for an expert.{{ else }}Generate a very difficult, boss-level hangman puzzle for an expert player.{{ end }}

Topic: "{{ .Topic }}"

RULES:
{{- with .Domain }}
- The 'word' must be {{ .BossWord }}.
- ACCURACY IS CRITICAL. Everything must be verifiable by an aficionado.
{{- else }}
- The 'word' or phrase must be significantly more challenging than a standard Hard puzzle.
{{- end }}
- The 'word' must only contain letters A-Z and spaces, in uppercase.
- Provide exactly 4 'hints' that demand deep knowledge, ordered from most cryptic to slightly less cryptic.
- Return JSON with the keys "word" (a string) and "hints" (an array of 4 strings).
- The puzzle must be unique and not trivial.
{{- template "exclude" . }}
{{ end }}

{{- define "batch" -}}
{{ with .Domain }}{{ .Persona }} Generate {{ $.Count }} accurate and verifiable hangman puzzles.{{ else }}Generate a list of {{ .Count }} hangman game words or short phrases with hints for the topic and difficulty below.{{ end }}

Topic: "{{ .Topic }}"
Difficulty: "{{ .Difficulty }}"

RULES:
{{- with .Domain }}
- Each 'word' must be {{ .Subjects }}.
- ACCURACY IS CRITICAL. Each word and all of its hints must be factually correct.
{{- end }}
- Each 'word' must only contain letters A-Z and spaces, in uppercase, and suit the difficulty.
- For each puzzle provide exactly 4 'hints' ordered from most cryptic to most obvious.
- Return a JSON array of {{ .Count }} objects, each with the keys "word" and "hints".
- All {{ .Count }} puzzles must be different from each other.
{{- template "exclude" . }}
{{ end }}
`))

func render(name string, data promptData) string {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		// Templates are static; a failure here is a programming error.
		panic(err)
	}
	return strings.TrimSpace(b.String())
}

// SinglePrompt builds the prompt for one puzzle.
func SinglePrompt(topic string, d puzzle.Difficulty, boss bool, exclude []string) string {
	data := promptData{Topic: topic, Difficulty: d, Exclude: strings.Join(exclude, ", "), Domain: matchDomain(topic)}
	if boss {
		return render("boss", data)
	}
	return render("single", data)
}

// BatchPrompt builds the prompt for count puzzles.
func BatchPrompt(topic string, d puzzle.Difficulty, exclude []string, count int) string {
	return render("batch", promptData{
		Topic:      topic,
		Difficulty: d,
		Count:      count,
		Exclude:    strings.Join(exclude, ", "),
		Domain:     matchDomain(topic),
	})
}
