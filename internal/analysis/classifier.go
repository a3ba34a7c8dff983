// Package analysis turns free task text into weighted category scores,
// feature flags, a complexity tier and a task type, and pulls entities out
// of the text for prompt templating.
package analysis

import (
	"sort"
	"strings"
)

// Complexity is the coarse size estimate of a task.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// TaskType labels the dominant kind of work in a task.
type TaskType string

const (
	TaskNewFeature TaskType = "new-feature"
	TaskRefactor   TaskType = "refactor"
	TaskBugfix     TaskType = "bugfix"
	TaskSecurity   TaskType = "security"
	TaskResearch   TaskType = "research"
	TaskFullstack  TaskType = "fullstack"
	TaskFrontend   TaskType = "frontend"
	TaskBackend    TaskType = "backend"
	TaskData       TaskType = "data"
	TaskGeneral    TaskType = "general"
)

// Flags are the boolean features derived from positive scores.
type Flags struct {
	Research bool `json:"research"`
	Explore  bool `json:"explore"`
	Design   bool `json:"design"`
	Security bool `json:"security"`
	Test     bool `json:"test"`
	Data     bool `json:"data"`
	Docs     bool `json:"docs"`
}

// Count returns how many flags are set.
func (f Flags) Count() int {
	n := 0
	for _, b := range []bool{f.Research, f.Explore, f.Design, f.Security, f.Test, f.Data, f.Docs} {
		if b {
			n++
		}
	}
	return n
}

// Result is the full classification of a task text.
type Result struct {
	Scores              map[string]int `json:"scores"`
	Flags               Flags          `json:"flags"`
	Complexity          Complexity     `json:"complexity"`
	TaskType            TaskType       `json:"taskType"`
	DetectedKeywords    []string       `json:"detectedKeywords"`
	PhraseMatches       []string       `json:"phraseMatches"`
	PhraseScore         int            `json:"phraseScore"`
	Diversity           int            `json:"diversity"`
	LineCount           int            `json:"lineCount"`
	SuggestedAgentCount int            `json:"suggestedAgentCount"`
}

// Empty reports whether no rule matched at all.
func (r *Result) Empty() bool {
	return r.Diversity == 0
}

// Score returns the score of a category, 0 if absent.
func (r *Result) Score(category string) int {
	return r.Scores[category]
}

// Env exposes the result to rule expressions.
func (r *Result) Env() map[string]any {
	scores := make(map[string]any, len(r.Scores))
	for k, v := range r.Scores {
		scores[k] = v
	}
	return map[string]any{
		"flags": map[string]any{
			"research": r.Flags.Research,
			"explore":  r.Flags.Explore,
			"design":   r.Flags.Design,
			"security": r.Flags.Security,
			"test":     r.Flags.Test,
			"data":     r.Flags.Data,
			"docs":     r.Flags.Docs,
		},
		"complexity": string(r.Complexity),
		"taskType":   string(r.TaskType),
		"scores":     scores,
	}
}

// Classify returns the per-category score map. Every category in
// CategoryOrder is present, zero when nothing matched.
func Classify(text string) map[string]int {
	scores, _, _, _ := score(text)
	return scores
}

// Analyze classifies text and derives flags, complexity, task type and the
// suggested agent count.
func Analyze(text string) *Result {
	scores, keywords, phrases, phraseScore := score(text)

	r := &Result{
		Scores:           scores,
		DetectedKeywords: keywords,
		PhraseMatches:    phrases,
		PhraseScore:      phraseScore,
		LineCount:        countLines(text),
	}
	r.Flags = Flags{
		Research: scores[CatResearch] > 0,
		Explore:  scores[CatExplore] > 0 || scores[CatRefactor] > 0,
		Design:   scores[CatFrontend] > 0,
		Security: scores[CatSecurity] > 0,
		Test:     scores[CatTest] > 0,
		Data:     scores[CatData] > 0,
		Docs:     scores[CatDocs] > 0,
	}
	for _, v := range scores {
		if v > 0 {
			r.Diversity++
		}
	}
	r.Complexity = complexity(r.Diversity, r.PhraseScore, r.LineCount)
	r.TaskType = taskType(scores)

	r.SuggestedAgentCount = 3 + r.Flags.Count()
	switch r.Complexity {
	case ComplexityHigh:
		r.SuggestedAgentCount += 2
	case ComplexityMedium:
		r.SuggestedAgentCount++
	}
	if r.TaskType == TaskFullstack {
		r.SuggestedAgentCount++
	}
	return r
}

func score(text string) (map[string]int, []string, []string, int) {
	scores := make(map[string]int, len(CategoryOrder))
	for _, c := range CategoryOrder {
		scores[c] = 0
	}

	var keywords []string
	for _, c := range CategoryOrder {
		for _, rule := range keywordRules[c] {
			if m := rule.Pattern.FindString(text); m != "" {
				scores[c] += rule.Weight
				keywords = append(keywords, m)
			}
		}
	}

	var phrases []string
	phraseScore := 0
	for _, rule := range phraseRules {
		if m := rule.Pattern.FindString(text); m != "" {
			scores[rule.Category] += rule.Weight
			phraseScore += rule.Weight
			phrases = append(phrases, m)
		}
	}
	return scores, dedupe(keywords), dedupe(phrases), phraseScore
}

func complexity(diversity, phraseScore, lines int) Complexity {
	switch {
	case diversity >= 5 || phraseScore >= 8 || lines >= 8:
		return ComplexityHigh
	case diversity >= 3 || phraseScore >= 4 || lines >= 4:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

func taskType(scores map[string]int) TaskType {
	type ranked struct {
		cat   string
		score int
	}
	var positive []ranked
	for _, c := range CategoryOrder {
		if v := scores[c]; v > 0 {
			positive = append(positive, ranked{c, v})
		}
	}
	sort.SliceStable(positive, func(i, j int) bool { return positive[i].score > positive[j].score })

	var top string
	var topScore int
	if len(positive) > 0 {
		top, topScore = positive[0].cat, positive[0].score
	}

	switch {
	case top == CatBugfix && topScore >= 2:
		return TaskBugfix
	case top == CatSecurity && topScore >= 2:
		return TaskSecurity
	case top == CatData && topScore >= 2:
		return TaskData
	case scores[CatFrontend] >= 2 && scores[CatBackend] >= 2:
		return TaskFullstack
	case top == CatFrontend && topScore >= 3:
		return TaskFrontend
	case top == CatBackend && topScore >= 3:
		return TaskBackend
	case top == CatRefactor && topScore >= 2:
		return TaskRefactor
	case top == CatResearch && topScore >= 2:
		return TaskResearch
	case topScore > 0:
		return TaskNewFeature
	default:
		return TaskGeneral
	}
}

func countLines(text string) int {
	n := 0
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
