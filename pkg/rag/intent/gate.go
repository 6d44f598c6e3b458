package intent

import (
	"regexp"
	"slices"
	"strings"

	"haskify-be/pkg/rag/scorer"
)

// Kind is the routing decision for a tutor query.
type Kind string

const (
	KindGreeting Kind = "GREETING"
	KindOffTopic Kind = "OFF_TOPIC"
	KindTutor    Kind = "TUTOR"
)

// Intent is the result of classifying one query before any model call.
type Intent struct {
	Kind   Kind
	Reason string
}

// NeedsModel reports whether the query goes to retrieval and the model.
func (i Intent) NeedsModel() bool { return i.Kind == KindTutor }

// greetingMaxLen bounds how long a message may be and still count as small talk.
const greetingMaxLen = 20

var greetings = []string{
	"test", "hello", "hi", "hey", "ok", "yes", "no", "cool", "nice",
	"just testing", "i am just testing", "hello there", "hi there", "hallo", "halo",
}

var topicKeywords = []string{
	"python", "variable", "function", "def", "loop", "for", "while", "list", "dict",
	"dictionary", "tuple", "set", "string", "int", "float", "bool", "class", "object",
	"method", "import", "module", "exception", "error", "traceback", "syntax", "indent",
	"indentation", "range", "print", "input", "return", "recursion", "lambda", "comprehension",
	"slice", "index", "type", "debug", "bug", "compile", "code", "program", "algorithm",
	"file", "append", "iterate", "iteration", "condition", "else", "elif", "boolean",
	"haskell", "monad", "functor", "typeclass", "pattern", "fold", "map", "filter",
}

var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`::`),
	regexp.MustCompile(`->`),
	regexp.MustCompile(`==|!=|<=|>=`),
	regexp.MustCompile(`\w+\(.*\)`),
	regexp.MustCompile(`\[.*\]`),
	regexp.MustCompile(`(?m)^\s*(def|class|import|from|for|while|if)\s`),
	regexp.MustCompile(`\b(print|len|range|input|str|int)\b`),
	regexp.MustCompile(`\b(Maybe|Just|Nothing|IO|putStrLn)\b`),
}

var questionWords = []string{"how", "what", "why", "when", "where", "which"}
var codeRequestWords = []string{"code", "show", "write", "create", "make", "implement"}

func words(s string) []string {
	return strings.Fields(strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	}, strings.ToLower(s)))
}

func containsPhrase(ws []string, phrase string) bool {
	target := strings.Fields(phrase)
	for i := 0; i+len(target) <= len(ws); i++ {
		if slices.Equal(ws[i:i+len(target)], target) {
			return true
		}
	}
	return false
}

func isGreeting(query string) bool {
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return true
	}
	ws := words(lower)
	for _, g := range greetings {
		if strings.Join(ws, " ") == g {
			return true
		}
		if len(lower) < greetingMaxLen && containsPhrase(ws, g) {
			return true
		}
	}
	return false
}

func isOnTopic(query, code string) bool {
	if strings.TrimSpace(code) != "" && len(scorer.QueryTerms(query)) > 0 {
		return true
	}

	ws := words(query)
	for _, k := range topicKeywords {
		if slices.Contains(ws, k) {
			return true
		}
	}
	for _, p := range codePatterns {
		if p.MatchString(query) {
			return true
		}
	}

	hasAny := func(candidates []string) bool {
		for _, c := range candidates {
			if slices.Contains(ws, c) {
				return true
			}
		}
		return false
	}
	return strings.Contains(query, "?") && hasAny(questionWords) && hasAny(codeRequestWords)
}

// Classify routes a tutor query. Greetings and off-topic chatter get fixed
// replies; everything else reaches retrieval and the model. A non-empty
// code buffer makes any substantive question on-topic.
func Classify(query, code string) Intent {
	if isGreeting(query) {
		return Intent{Kind: KindGreeting, Reason: "small talk"}
	}
	if !isOnTopic(query, code) {
		return Intent{Kind: KindOffTopic, Reason: "no programming content"}
	}
	return Intent{Kind: KindTutor, Reason: "programming question"}
}
