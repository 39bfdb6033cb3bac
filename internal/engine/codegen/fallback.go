package codegen

import (
	"regexp"
	"sort"
	"strings"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

// Template fallback: pure and deterministic, no network. Used when no
// provider is configured or every provider failed.

const defaultStack = "javascript"

// stackRules are tested in order against the lowercased title; first match wins.
// Keywords need a leading word boundary; "js" and version suffixes are allowed
// ("reactjs", "vue3", "python3") while "javascript" never reads as java.
var stackRules = []struct {
	stack string
	re    *regexp.Regexp
}{
	{"react", regexp.MustCompile(`\breact(?:js|\d*\b)`)},
	{"vue", regexp.MustCompile(`\bvue(?:js|\d*\b)`)},
	{"angular", regexp.MustCompile(`\bangular(?:js|\d*\b)`)},
	{"node", regexp.MustCompile(`\b(?:node(?:js)?|express(?:js)?|nestjs)\b`)},
	{"python", regexp.MustCompile(`\b(?:python\d*|django|flask|fastapi)\b`)},
	{"java", regexp.MustCompile(`\b(?:java\d*|spring(?:boot)?)\b`)},
	{"php", regexp.MustCompile(`\b(?:php\d*|laravel|symfony)\b`)},
	{"typescript", regexp.MustCompile(`\btypescript\b`)},
	{"go", regexp.MustCompile(`\b(?:go|golang)\b`)},
	{"rust", regexp.MustCompile(`\brust(?:lang)?\b`)},
	{"csharp", regexp.MustCompile(`(?:c#|\bcsharp\b|\.net\b|\bdotnet\b)`)},
}

// frameworkKeywords maps a title substring to its display name. Table order
// breaks ties between keywords found at the same position.
var frameworkKeywords = []struct {
	keyword, name string
}{
	{"spring boot", "Spring Boot"},
	{"springboot", "Spring Boot"},
	{"spring", "Spring"},
	{"react native", "React Native"},
	{"react", "React"},
	{"next.js", "Next.js"},
	{"nextjs", "Next.js"},
	{"vue", "Vue.js"},
	{"nuxt", "Nuxt"},
	{"angular", "Angular"},
	{"svelte", "Svelte"},
	{"express", "Express"},
	{"nestjs", "NestJS"},
	{"django", "Django"},
	{"flask", "Flask"},
	{"fastapi", "FastAPI"},
	{"laravel", "Laravel"},
	{"symfony", "Symfony"},
	{"ruby on rails", "Ruby on Rails"},
	{"asp.net", "ASP.NET"},
	{"blazor", "Blazor"},
	{"gin-gonic", "Gin"},
	{"gofiber", "Fiber"},
	{"actix", "Actix"},
	{"tailwind", "Tailwind CSS"},
	{"bootstrap", "Bootstrap"},
	{"graphql", "GraphQL"},
	{"docker", "Docker"},
	{"kubernetes", "Kubernetes"},
	{"mongodb", "MongoDB"},
	{"postgresql", "PostgreSQL"},
	{"postgres", "PostgreSQL"},
	{"mysql", "MySQL"},
	{"redis", "Redis"},
	{"firebase", "Firebase"},
}

// DetectStack returns the primary stack for a title and whether a keyword matched.
func DetectStack(title string) (string, bool) {
	lower := strings.ToLower(title)
	for _, rule := range stackRules {
		if rule.re.MatchString(lower) {
			return rule.stack, true
		}
	}
	return defaultStack, false
}

// DetectFrameworks returns display names of frameworks whose keyword occurs in
// the title, in order of first occurrence. A keyword inside a longer accepted
// match ("spring" within "spring boot") is ignored.
func DetectFrameworks(title string) []string {
	lower := strings.ToLower(title)
	type hit struct {
		start, end, rank int
		name             string
	}
	var hits []hit
	for rank, fw := range frameworkKeywords {
		if i := strings.Index(lower, fw.keyword); i >= 0 {
			hits = append(hits, hit{start: i, end: i + len(fw.keyword), rank: rank, name: fw.name})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].start != hits[j].start {
			return hits[i].start < hits[j].start
		}
		if hits[i].end != hits[j].end {
			return hits[i].end > hits[j].end
		}
		return hits[i].rank < hits[j].rank
	})

	out := []string{}
	seen := map[string]bool{}
	coveredUntil := -1
	for _, h := range hits {
		if h.start < coveredUntil || seen[h.name] {
			continue
		}
		seen[h.name] = true
		out = append(out, h.name)
		coveredUntil = h.end
	}
	return out
}

// GenerateFallback builds a canned project for the title. Identical titles
// always produce identical results.
func GenerateFallback(title string) engine.ExtractionResult {
	stack, matched := DetectStack(title)
	frameworks := DetectFrameworks(title)
	profile, known := stackProfiles[stack]
	if !known {
		profile = stackProfiles[defaultStack]
	}

	name := strings.TrimSpace(title)
	if name == "" {
		name = "Untitled project"
	}
	slug := engine.Slugify(title)

	result := engine.EmptyResult()
	result.Stack = &engine.Stack{
		Primary:     stack,
		Languages:   append([]string(nil), profile.languages...),
		Frameworks:  frameworks,
		Description: profile.description,
	}
	result.Files = profile.files(name, slug)
	result.SetupInstructions = strings.Join(profile.install, "\n")
	for eco, pkgs := range profile.deps {
		result.Dependencies[eco] = append([]string(nil), pkgs...)
	}

	result.TutorialGuide = profile.tutorial(name)
	result.IDERecommendations = &engine.IDERecommendations{
		Primary:      profile.ide,
		Alternatives: append([]engine.IDEChoice(nil), profile.altIDEs...),
		Extensions:   append([]string(nil), profile.extensions...),
	}
	result.Prerequisites = &engine.Prerequisites{
		Knowledge: append([]string(nil), profile.knowledge...),
		Software:  append([]engine.SoftwareRequirement(nil), profile.software...),
		Accounts:  []string{},
	}
	result.SetupGuide = &engine.SetupGuide{
		Steps: []engine.CommandStep{
			{Title: "Install dependencies", Description: "Install the packages the project needs.", Commands: append([]string(nil), profile.install...)},
			{Title: "Start the project", Description: "Run the development entry point.", Commands: []string{profile.dev}},
		},
		EnvironmentVariables: []engine.EnvVar{},
	}
	result.RunGuide = &engine.RunGuide{
		Development: profile.dev,
		Production:  profile.prod,
		Test:        profile.test,
		URLs:        append([]string(nil), profile.urls...),
		Troubleshooting: []engine.Troubleshoot{
			{Problem: "Dependencies fail to install", Solution: "Check the tool versions listed under prerequisites, then see README.md."},
		},
	}

	stackScore := 0.2
	if matched {
		stackScore = 0.5
	}
	result.Confidence = &engine.Confidence{Stack: stackScore, Files: 0.3}
	return result
}
