package analysis

import "regexp"

// Entities are the short strings pulled out of task text for prompt
// templating. Each list is deduplicated and keeps first-seen order.
type Entities struct {
	Files        []string `json:"files"`
	Technologies []string `json:"technologies"`
	Actions      []string `json:"actions"`
	Targets      []string `json:"targets"`
}

// Empty reports whether nothing was extracted.
func (e Entities) Empty() bool {
	return len(e.Files)+len(e.Technologies)+len(e.Actions)+len(e.Targets) == 0
}

type vocab struct {
	pattern   *regexp.Regexp
	canonical string
}

func term(pattern, canonical string) vocab {
	return vocab{pattern: regexp.MustCompile(`(?i)` + pattern), canonical: canonical}
}

var filePattern = regexp.MustCompile(
	`(?:[\w-]+/)*[\w-]+\.(?:go|ts|tsx|js|jsx|mjs|py|rs|java|kt|rb|php|cs|cpp|c|h|swift|md|json|ya?ml|toml|sql|css|scss|html|sh|proto|txt|csv)\b`)

var technologies = []vocab{
	term(`\breact\b`, "React"),
	term(`\bvue(\.js)?\b`, "Vue"),
	term(`\bsvelte\b`, "Svelte"),
	term(`\bnext\.?js\b`, "Next.js"),
	term(`\bnode(\.?js)?\b`, "Node.js"),
	term(`\btypescript\b`, "TypeScript"),
	term(`\bjavascript\b`, "JavaScript"),
	term(`\bgolang\b`, "Go"),
	term(`\bpython\b`, "Python"),
	term(`\brust\b`, "Rust"),
	term(`\bjava\b`, "Java"),
	term(`\bpostgres(ql)?\b`, "PostgreSQL"),
	term(`\bmysql\b`, "MySQL"),
	term(`\bsqlite\b`, "SQLite"),
	term(`\bmongo(db)?\b`, "MongoDB"),
	term(`\bredis\b`, "Redis"),
	term(`\bkafka\b`, "Kafka"),
	term(`\bnats\b`, "NATS"),
	term(`\bgraphql\b`, "GraphQL"),
	term(`\bgrpc\b`, "gRPC"),
	term(`\bdocker\b`, "Docker"),
	term(`\bkubernetes\b|\bk8s\b`, "Kubernetes"),
	term(`\baws\b`, "AWS"),
	term(`\bterraform\b`, "Terraform"),
	term(`\btailwind\b`, "Tailwind"),
	term(`\bpandas\b`, "pandas"),
	term(`\bpytorch\b|\btorch\b`, "PyTorch"),
	term(`\btensorflow\b`, "TensorFlow"),
	term(`\bjwt\b`, "JWT"),
	term(`\boauth2?\b`, "OAuth"),
	term(`websocket|웹\s*소켓`, "WebSocket"),
}

var actions = []vocab{
	term(`implement|build|create|add|develop|구현|만들|추가|개발`, "implement"),
	term(`\bfix|debug|resolve|수정|고치|해결`, "fix"),
	term(`refactor|clean\s*up|restructure|리팩토링|정리`, "refactor"),
	term(`optimi[sz]e|speed\s*up|최적화`, "optimize"),
	term(`migrat|마이그레이션`, "migrate"),
	term(`\btest|verify|검증|테스트`, "test"),
	term(`analy[sz]e|investigate|분석|조사`, "analyze"),
	term(`review|audit|리뷰|감사`, "review"),
	term(`document|write\s+docs|문서화`, "document"),
	term(`deploy|release|배포`, "deploy"),
	term(`design|설계`, "design"),
}

var targets = []vocab{
	term(`\bapi\b|endpoint|엔드포인트`, "API"),
	term(`database|\bdb\b|schema|데이터베이스`, "database"),
	term(`\bui\b|component|page|screen|컴포넌트|페이지|화면`, "UI"),
	term(`\bauth|login|sign\s*-?in|인증|로그인`, "authentication"),
	term(`dashboard|대시보드`, "dashboard"),
	term(`pipeline|파이프라인`, "pipeline"),
	term(`server|서버`, "server"),
	term(`\bcli\b|command\s+line`, "CLI"),
	term(`readme|docs?\b|문서`, "documentation"),
	term(`\bmodel\b|모델`, "model"),
	term(`\bcache\b|캐시`, "cache"),
	term(`payment|checkout|결제`, "payments"),
}

// Extract pulls filenames, technologies, actions and targets out of text.
func Extract(text string) Entities {
	return Entities{
		Files:        dedupe(filePattern.FindAllString(text, -1)),
		Technologies: matchVocab(technologies, text),
		Actions:      matchVocab(actions, text),
		Targets:      matchVocab(targets, text),
	}
}

func matchVocab(v []vocab, text string) []string {
	var out []string
	for _, t := range v {
		if t.pattern.MatchString(text) {
			out = append(out, t.canonical)
		}
	}
	return out
}
