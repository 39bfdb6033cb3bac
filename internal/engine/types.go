package engine

// --- Video inputs ---

// VideoMeta is the best-effort oEmbed metadata for a video.
type VideoMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TranscriptUnavailable is the sentinel returned when no usable transcript
// could be fetched. Prompt building treats it as "no transcript".
const TranscriptUnavailable = "Transcript not available for this video."

// --- Extraction result ---

// ExtractionResult is the canonical output of one extraction attempt.
// It is built once and persisted as-is; re-extraction builds a new value.
// Stack, Confidence and the guides are nil when unavailable; Files and
// Dependencies are never nil so they serialize as [] and {}.
type ExtractionResult struct {
	Stack              *Stack              `json:"stack"`
	Files              []CodeFile          `json:"files"`
	SetupInstructions  string              `json:"setup_instructions"`
	Dependencies       map[string][]string `json:"dependencies"`
	TutorialGuide      *TutorialGuide      `json:"tutorial_guide"`
	IDERecommendations *IDERecommendations `json:"ide_recommendations"`
	Prerequisites      *Prerequisites      `json:"prerequisites"`
	SetupGuide         *SetupGuide         `json:"setup_guide"`
	RunGuide           *RunGuide           `json:"run_guide"`
	Confidence         *Confidence         `json:"confidence,omitempty"`
	Transcript         string              `json:"transcript,omitempty"`
	RepositoryURL      string              `json:"repository_url,omitempty"`
}

// Stack is the detected or declared technology stack.
type Stack struct {
	Primary     string   `json:"primary"`
	Languages   []string `json:"languages"`
	Frameworks  []string `json:"frameworks"`
	Description string   `json:"description"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

// CodeFile is one generated source file. Code may be empty, never absent.
type CodeFile struct {
	Filename    string `json:"filename"`
	Language    string `json:"language"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// Confidence gates downstream trust in a result.
type Confidence struct {
	Stack float64 `json:"stack"`
	Files float64 `json:"files"`
}

// TrustedFilesConfidence is the minimum Confidence.Files for generated code to be trusted.
const TrustedFilesConfidence = 0.6

// EmptyResult returns the all-defaults result.
func EmptyResult() ExtractionResult {
	return ExtractionResult{
		Files:        []CodeFile{},
		Dependencies: map[string][]string{},
	}
}

// --- Guides ---

type TutorialGuide struct {
	Title         string         `json:"title"`
	Overview      string         `json:"overview"`
	Difficulty    string         `json:"difficulty"`
	EstimatedTime string         `json:"estimated_time"`
	Steps         []TutorialStep `json:"steps"`
	KeyConcepts   []string       `json:"key_concepts"`
}

type TutorialStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code,omitempty"`
}

type IDERecommendations struct {
	Primary      IDEChoice   `json:"primary"`
	Alternatives []IDEChoice `json:"alternatives"`
	Extensions   []string    `json:"extensions"`
}

type IDEChoice struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Prerequisites struct {
	Knowledge []string              `json:"knowledge"`
	Software  []SoftwareRequirement `json:"software"`
	Accounts  []string              `json:"accounts"`
}

type SoftwareRequirement struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

type SetupGuide struct {
	Steps                []CommandStep `json:"steps"`
	EnvironmentVariables []EnvVar      `json:"environment_variables"`
}

type CommandStep struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Commands    []string `json:"commands"`
}

type EnvVar struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

type RunGuide struct {
	Development     string         `json:"development"`
	Production      string         `json:"production"`
	Test            string         `json:"test"`
	URLs            []string       `json:"urls"`
	Troubleshooting []Troubleshoot `json:"troubleshooting"`
}

type Troubleshoot struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
}
