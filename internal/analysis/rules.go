package analysis

import "regexp"

// Rule is a weighted keyword pattern. A rule contributes its weight once
// per text no matter how often it matches.
type Rule struct {
	Pattern *regexp.Regexp
	Weight  int
}

// PhraseRule is a multi-word pattern scored on top of keyword rules.
type PhraseRule struct {
	Pattern  *regexp.Regexp
	Category string
	Weight   int
}

// Category names. build and review only ever score through phrase rules.
const (
	CatResearch = "research"
	CatExplore  = "explore"
	CatFrontend = "frontend"
	CatBackend  = "backend"
	CatSecurity = "security"
	CatTest     = "test"
	CatData     = "data"
	CatDocs     = "docs"
	CatRefactor = "refactor"
	CatBugfix   = "bugfix"
	CatComplex  = "complex"
	CatBuild    = "build"
	CatReview   = "review"
)

// CategoryOrder is the fixed iteration order. Ties in task-type ranking
// resolve to the earlier category.
var CategoryOrder = []string{
	CatResearch, CatExplore, CatFrontend, CatBackend, CatSecurity, CatTest,
	CatData, CatDocs, CatRefactor, CatBugfix, CatComplex, CatBuild, CatReview,
}

func kw(pattern string, weight int) Rule {
	return Rule{Pattern: regexp.MustCompile(`(?i)` + pattern), Weight: weight}
}

// word matches a short ASCII token only as a whole word, so "ai" does not
// fire inside "detail" or "email".
func word(token string, weight int) Rule {
	return Rule{Pattern: regexp.MustCompile(`(?i)\b` + token + `\b`), Weight: weight}
}

func phrase(pattern, category string, weight int) PhraseRule {
	return PhraseRule{Pattern: regexp.MustCompile(`(?i)` + pattern), Category: category, Weight: weight}
}

var keywordRules = map[string][]Rule{
	CatResearch: {
		kw(`문서`, 1), kw(`조사`, 1), kw(`리서치`, 2),
		kw(`research`, 2), kw(`doc`, 1), kw(`api`, 1),
		kw(`라이브러리`, 1), kw(`library`, 1), kw(`sdk`, 2),
		kw(`프레임워크`, 1), kw(`framework`, 1),
	},
	CatExplore: {
		kw(`분석`, 1), kw(`파악`, 1), kw(`구조`, 1),
		kw(`이해`, 1), kw(`탐색`, 2), kw(`explore`, 2),
		kw(`codebase`, 2), kw(`코드베이스`, 2),
		kw(`기존`, 1), kw(`현재`, 1),
	},
	CatFrontend: {
		word(`ui`, 2), word(`ux`, 2), kw(`프론트`, 2),
		kw(`front`, 2), kw(`컴포넌트`, 1), kw(`component`, 1),
		kw(`react`, 1), kw(`vue`, 1), kw(`svelte`, 1),
		kw(`css`, 1), kw(`스타일`, 1), kw(`디자인`, 1),
		kw(`design`, 1), kw(`레이아웃`, 1), kw(`layout`, 1),
		kw(`반응형`, 1), kw(`responsive`, 1),
		kw(`페이지`, 1), kw(`page`, 1), kw(`화면`, 1),
	},
	CatBackend: {
		kw(`api`, 1), kw(`서버`, 2), kw(`server`, 2),
		kw(`백엔드`, 2), kw(`backend`, 2),
		kw(`데이터베이스`, 2), kw(`database`, 2), word(`db`, 1),
		kw(`rest`, 1), kw(`graphql`, 2),
		kw(`엔드포인트`, 1), kw(`endpoint`, 1),
		kw(`인증`, 1), kw(`auth`, 1),
		kw(`미들웨어`, 1), kw(`middleware`, 1),
	},
	CatSecurity: {
		kw(`보안`, 2), kw(`security`, 2),
		kw(`취약점`, 2), kw(`vulnerability`, 2),
		kw(`xss`, 2), kw(`csrf`, 2),
		kw(`인증`, 1), kw(`auth`, 1),
		kw(`암호`, 2), kw(`encrypt`, 2), kw(`owasp`, 3),
	},
	CatTest: {
		kw(`테스트`, 2), kw(`test`, 2), kw(`tdd`, 2),
		word(`qa`, 2), kw(`검증`, 1), kw(`verify`, 1),
		kw(`커버리지`, 2), kw(`coverage`, 2),
	},
	CatData: {
		kw(`데이터`, 1), kw(`data`, 1),
		kw(`분석`, 1), kw(`analy`, 1),
		kw(`통계`, 2), kw(`statistic`, 2),
		word(`ml`, 2), kw(`머신러닝`, 3),
		kw(`machine learning`, 3), word(`ai`, 1),
		kw(`모델`, 1), kw(`model`, 1),
		kw(`학습`, 2), kw(`train`, 2),
		kw(`csv`, 2), kw(`시각화`, 2), kw(`visuali`, 2),
		kw(`chart`, 1), kw(`차트`, 1),
		kw(`그래프`, 1), kw(`graph`, 1),
		kw(`pandas`, 2), kw(`matplotlib`, 2),
		kw(`plotly`, 2), kw(`streamlit`, 2),
		kw(`jupyter`, 2), kw(`notebook`, 1),
	},
	CatDocs: {
		kw(`문서화`, 2), kw(`document`, 1),
		kw(`readme`, 2), kw(`주석`, 1),
		kw(`comment`, 1), kw(`가이드`, 1), kw(`guide`, 1),
	},
	CatRefactor: {
		kw(`리팩토링`, 2), kw(`refactor`, 2),
		kw(`개선`, 1), kw(`improve`, 1),
		kw(`최적화`, 2), kw(`optimiz`, 2),
		kw(`성능`, 1), kw(`performance`, 1),
		kw(`정리`, 1), kw(`cleanup`, 1),
	},
	CatBugfix: {
		kw(`버그`, 2), kw(`bug`, 2),
		kw(`수정`, 1), kw(`fix`, 1),
		kw(`오류`, 2), kw(`error`, 1),
		kw(`에러`, 2), kw(`디버그`, 2), kw(`debug`, 2),
		kw(`문제`, 1), kw(`issue`, 1),
		kw(`깨진`, 2), kw(`broken`, 2),
	},
	CatComplex: {
		kw(`시스템`, 1), kw(`system`, 1),
		kw(`아키텍처`, 2), kw(`architect`, 2),
		kw(`전체`, 1), kw(`마이그레이션`, 2), kw(`migrat`, 2),
		kw(`대규모`, 2), kw(`풀스택`, 2),
		kw(`fullstack`, 2), kw(`full-stack`, 2),
	},
}

var phraseRules = []PhraseRule{
	phrase(`REST\s*API`, CatBackend, 3),
	phrase(`데이터\s*시각화`, CatData, 3),
	phrase(`대시보드|dashboard`, CatFrontend, 2),
	phrase(`인증\s*시스템|auth(entication)?\s+system`, CatSecurity, 3),
	phrase(`CI\s*/?\s*CD`, CatBuild, 2),
	phrase(`단위\s*테스트|unit\s+tests?`, CatTest, 2),
	phrase(`코드\s*리뷰|code\s+review`, CatReview, 2),
	phrase(`마이크로\s*서비스|micro-?services?`, CatComplex, 3),
	phrase(`모노레포|monorepo`, CatComplex, 2),
	phrase(`풀스택\s*(앱|어플|개발)|full-?stack\s+(app|application|development)`, CatComplex, 3),
	phrase(`머신\s*러닝`, CatData, 3),
	phrase(`디자인\s*시스템|design\s+system`, CatFrontend, 3),
	phrase(`보안\s*감사|security\s+audit`, CatSecurity, 3),
	phrase(`성능\s*최적화|performance\s+optimi[sz]ation`, CatRefactor, 2),
	phrase(`성능\s*테스트|performance\s+test`, CatTest, 2),
	phrase(`리팩토링`, CatRefactor, 2),
	phrase(`API\s*문서|API\s+doc`, CatDocs, 2),
	phrase(`데이터\s*파이프라인|data\s+pipeline`, CatData, 3),
	phrase(`실시간|real-?time`, CatBackend, 2),
	phrase(`웹\s*소켓|web\s*socket`, CatBackend, 2),
}

// KeywordRules returns the keyword rules of a category, nil for phrase-only
// categories.
func KeywordRules(category string) []Rule {
	return keywordRules[category]
}

// PhraseRules returns every phrase rule in evaluation order.
func PhraseRules() []PhraseRule {
	return phraseRules
}
