package codegen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

func TestDetectStack(t *testing.T) {
	cases := []struct {
		title   string
		want    string
		matched bool
	}{
		{"React Hooks in 10 minutes", "react", true},
		{"Vue.js crash course", "vue", true},
		{"Angular for beginners", "angular", true},
		{"Express REST API tutorial", "node", true},
		{"Django blog from scratch", "python", true},
		{"Build a REST API with Spring Boot", "java", true},
		{"Laravel auth", "php", true},
		{"TypeScript generics explained", "typescript", true},
		{"Golang concurrency patterns", "go", true},
		{"Rust ownership", "rust", true},
		{"C# minimal APIs", "csharp", true},
		{"ASP.NET Core tutorial", "csharp", true},
		{"JavaScript closures", "javascript", false},
		{"Let's go hiking", "go", true},
		{"Reactive programming", "javascript", false},
		{"ReactJS and TailwindCSS todo app", "react", true},
		{"VueJS 3 crash course", "vue", true},
		{"Vue3 + Firebase", "vue", true},
		{"Springboot microservices", "java", true},
		{"Python3 scripting basics", "python", true},
		{"Node.js streams", "node", true},
		{"", "javascript", false},
	}
	for _, tc := range cases {
		got, matched := DetectStack(tc.title)
		assert.Equal(t, tc.want, got, "title %q", tc.title)
		assert.Equal(t, tc.matched, matched, "title %q", tc.title)
	}
}

func TestDetectFrameworks(t *testing.T) {
	assert.Equal(t, []string{"Spring Boot"}, DetectFrameworks("Build a REST API with Spring Boot"))
	assert.Equal(t, []string{"React Native", "Firebase"}, DetectFrameworks("React Native + Firebase chat app"))
	assert.Equal(t, []string{"Next.js", "Tailwind CSS", "PostgreSQL"}, DetectFrameworks("Next.js, Tailwind and Postgres"))
	assert.Equal(t, []string{"Django", "React"}, DetectFrameworks("Django REST + React frontend, Django admin"))
	assert.Empty(t, DetectFrameworks("Learning to juggle"))
	assert.Empty(t, DetectFrameworks("Beginning engineering"))

	// Plain substring matching: glued spellings still count.
	assert.Equal(t, []string{"React", "Tailwind CSS"}, DetectFrameworks("ReactJS and TailwindCSS todo app"))
	assert.Equal(t, []string{"Vue.js"}, DetectFrameworks("VueJS 3 crash course"))
	assert.Equal(t, []string{"Spring Boot"}, DetectFrameworks("Springboot microservices"))
	assert.Equal(t, []string{"Vue.js", "Firebase"}, DetectFrameworks("Vue3 + Firebase"))
}

func TestGenerateFallback_SpringBoot(t *testing.T) {
	got := GenerateFallback("Build a REST API with Spring Boot")

	require.NotNil(t, got.Stack)
	assert.Equal(t, "java", got.Stack.Primary)
	assert.Contains(t, got.Stack.Frameworks, "Spring Boot")

	paths := make([]string, 0, len(got.Files))
	for _, f := range got.Files {
		paths = append(paths, f.Path)
		assert.NotEmpty(t, f.Code, f.Path)
	}
	assert.Contains(t, paths, "pom.xml")
	assert.Contains(t, paths, "src/main/java/com/example/Application.java")
	assert.Contains(t, paths, "README.md")
	assert.Equal(t, []string{"spring-boot-starter-web"}, got.Dependencies["maven"])

	require.NotNil(t, got.Confidence)
	assert.InDelta(t, 0.5, got.Confidence.Stack, 1e-9)
	assert.InDelta(t, 0.3, got.Confidence.Files, 1e-9)
	assert.Less(t, got.Confidence.Files, engine.TrustedFilesConfidence)

	require.NotNil(t, got.RunGuide)
	assert.Equal(t, "mvn spring-boot:run", got.RunGuide.Development)
	require.NotNil(t, got.TutorialGuide)
	require.NotNil(t, got.IDERecommendations)
	assert.Equal(t, "IntelliJ IDEA", got.IDERecommendations.Primary.Name)
}

func TestGenerateFallback_Deterministic(t *testing.T) {
	titles := []string{"Build a REST API with Spring Boot", "Python Flask tutorial", "Something unrelated", ""}
	for _, title := range titles {
		a := GenerateFallback(title)
		b := GenerateFallback(title)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("GenerateFallback(%q) not deterministic (-first +second):\n%s", title, diff)
		}
	}
}

func TestGenerateFallback_Unknown(t *testing.T) {
	got := GenerateFallback("My weekend vlog")

	assert.Equal(t, "javascript", got.Stack.Primary)
	require.Len(t, got.Files, 2)
	assert.Equal(t, "index.js", got.Files[0].Path)
	assert.Equal(t, "README.md", got.Files[1].Path)
	assert.InDelta(t, 0.2, got.Confidence.Stack, 1e-9)
	assert.Contains(t, got.TutorialGuide.Overview, "README")
}

func TestGenerateFallback_EveryStack(t *testing.T) {
	for stack, profile := range stackProfiles {
		files := profile.files("Demo", "demo")
		require.NotEmpty(t, files, stack)
		for _, f := range files {
			assert.NotEmpty(t, f.Path, stack)
			assert.NotEmpty(t, f.Language, stack)
			assert.NotEmpty(t, strings.TrimSpace(f.Code), "%s %s", stack, f.Path)
		}
	}
}

func TestGenerateFallback_ProjectNameInCode(t *testing.T) {
	got := GenerateFallback("Python Flask tutorial")
	assert.Equal(t, "python", got.Stack.Primary)
	require.NotEmpty(t, got.Files)
	assert.Equal(t, "main.py", got.Files[0].Path)
	assert.Contains(t, got.Files[0].Code, "Python Flask tutorial")
	assert.Equal(t, "requirements.txt", got.Files[1].Path)
	assert.Contains(t, got.Stack.Frameworks, "Flask")
}
