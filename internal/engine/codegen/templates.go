package codegen

import (
	"fmt"
	"path"
	"strings"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

// stackProfile is the canned material for one primary stack.
type stackProfile struct {
	languages   []string
	description string

	entryPath     string
	entryLanguage string
	entryCode     func(name string) string

	manifestPath     string // empty for the two-file generic scaffold
	manifestLanguage string
	manifestCode     func(slug string) string

	deps    map[string][]string
	install []string
	dev     string
	prod    string
	test    string
	urls    []string

	ide        engine.IDEChoice
	altIDEs    []engine.IDEChoice
	extensions []string
	knowledge  []string
	software   []engine.SoftwareRequirement
	concepts   []string
	generic    bool
}

func (p stackProfile) files(name, slug string) []engine.CodeFile {
	files := []engine.CodeFile{{
		Filename:    path.Base(p.entryPath),
		Language:    p.entryLanguage,
		Path:        p.entryPath,
		Description: "Application entry point",
		Code:        p.entryCode(name),
	}}
	if p.manifestPath != "" {
		files = append(files, engine.CodeFile{
			Filename:    path.Base(p.manifestPath),
			Language:    p.manifestLanguage,
			Path:        p.manifestPath,
			Description: "Project manifest and dependencies",
			Code:        p.manifestCode(slug),
		})
	}
	files = append(files, engine.CodeFile{
		Filename:    "README.md",
		Language:    "markdown",
		Path:        "README.md",
		Description: "Project overview and how to run it",
		Code:        p.readme(name),
	})
	return files
}

func (p stackProfile) readme(name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n\n", name, p.description)
	sb.WriteString("## Setup\n\n```bash\n")
	for _, cmd := range p.install {
		sb.WriteString(cmd + "\n")
	}
	sb.WriteString("```\n\n## Run\n\n```bash\n" + p.dev + "\n```\n")
	if p.generic {
		sb.WriteString("\nThis scaffold was generated from the video title only. Adapt it to the tutorial as you follow along.\n")
	}
	return sb.String()
}

func (p stackProfile) tutorial(name string) *engine.TutorialGuide {
	if p.generic {
		return &engine.TutorialGuide{
			Title:         name,
			Overview:      "See README.md for an overview of the generated scaffold.",
			Difficulty:    "beginner",
			EstimatedTime: "See README.md",
			Steps: []engine.TutorialStep{
				{Title: "Read the README", Description: "See README.md for setup and run instructions."},
			},
			KeyConcepts: []string{},
		}
	}
	return &engine.TutorialGuide{
		Title:         name,
		Overview:      p.description + ". Follow the video and extend the scaffold step by step.",
		Difficulty:    "intermediate",
		EstimatedTime: "1-2 hours",
		Steps: []engine.TutorialStep{
			{Title: "Install the toolchain", Description: "Install the software listed under prerequisites."},
			{Title: "Install dependencies", Description: "Fetch the project dependencies.", Code: strings.Join(p.install, "\n")},
			{Title: "Run the entry point", Description: "Start " + p.entryPath + " and confirm it responds.", Code: p.dev},
			{Title: "Extend the project", Description: "Add the features shown in the video on top of the entry point."},
		},
		KeyConcepts: append([]string(nil), p.concepts...),
	}
}

var (
	vscode   = engine.IDEChoice{Name: "Visual Studio Code", Reason: "Lightweight editor with strong extension support for this stack"}
	webstorm = engine.IDEChoice{Name: "WebStorm", Reason: "Full-featured JavaScript and TypeScript IDE"}
	nodeSW   = engine.SoftwareRequirement{Name: "Node.js", Version: "20 LTS or newer", URL: "https://nodejs.org"}
)

var stackProfiles = map[string]stackProfile{
	"react": {
		languages:   []string{"javascript", "jsx"},
		description: "React single-page application built with Vite",
		entryPath:   "src/App.jsx", entryLanguage: "jsx",
		entryCode: func(name string) string {
			return fmt.Sprintf(`import { useState } from "react";

export default function App() {
  const [count, setCount] = useState(0);

  return (
    <main>
      <h1>%s</h1>
      <button onClick={() => setCount(count + 1)}>Clicked {count} times</button>
    </main>
  );
}
`, jsxText(name))
		},
		manifestPath: "package.json", manifestLanguage: "json",
		manifestCode: func(slug string) string {
			return npmManifest(slug, `"dev": "vite", "build": "vite build", "preview": "vite preview"`,
				`"react": "^18.3.1", "react-dom": "^18.3.1"`, `"vite": "^5.4.0", "@vitejs/plugin-react": "^4.3.1"`)
		},
		deps:    map[string][]string{"npm": {"react", "react-dom", "vite"}},
		install: []string{"npm install"}, dev: "npm run dev", prod: "npm run build && npm run preview", test: "npm test",
		urls: []string{"http://localhost:5173"},
		ide:  vscode, altIDEs: []engine.IDEChoice{webstorm},
		extensions: []string{"ES7+ React/Redux/React-Native snippets", "ESLint", "Prettier"},
		knowledge:  []string{"JavaScript ES6+", "JSX", "React hooks"},
		software:   []engine.SoftwareRequirement{nodeSW},
		concepts:   []string{"Components", "State", "Hooks"},
	},
	"vue": {
		languages:   []string{"javascript", "vue"},
		description: "Vue 3 application built with Vite",
		entryPath:   "src/App.vue", entryLanguage: "vue",
		entryCode: func(name string) string {
			return fmt.Sprintf(`<script setup>
import { ref } from "vue";

const count = ref(0);
</script>

<template>
  <main>
    <h1>%s</h1>
    <button @click="count++">Clicked {{ count }} times</button>
  </main>
</template>
`, jsxText(name))
		},
		manifestPath: "package.json", manifestLanguage: "json",
		manifestCode: func(slug string) string {
			return npmManifest(slug, `"dev": "vite", "build": "vite build"`,
				`"vue": "^3.4.0"`, `"vite": "^5.4.0", "@vitejs/plugin-vue": "^5.1.0"`)
		},
		deps:    map[string][]string{"npm": {"vue", "vite"}},
		install: []string{"npm install"}, dev: "npm run dev", prod: "npm run build", test: "npm test",
		urls: []string{"http://localhost:5173"},
		ide:  vscode, altIDEs: []engine.IDEChoice{webstorm},
		extensions: []string{"Vue - Official", "ESLint"},
		knowledge:  []string{"JavaScript ES6+", "Vue single-file components"},
		software:   []engine.SoftwareRequirement{nodeSW},
		concepts:   []string{"Reactivity", "Single-file components", "Template syntax"},
	},
	"angular": {
		languages:   []string{"typescript", "html"},
		description: "Angular standalone-component application",
		entryPath:   "src/app/app.component.ts", entryLanguage: "typescript",
		entryCode: func(name string) string {
			return fmt.Sprintf(`import { Component } from "@angular/core";

@Component({
  selector: "app-root",
  standalone: true,
  template: "<h1>{{ title }}</h1>",
})
export class AppComponent {
  title = %q;
}
`, name)
		},
		manifestPath: "package.json", manifestLanguage: "json",
		manifestCode: func(slug string) string {
			return npmManifest(slug, `"start": "ng serve", "build": "ng build", "test": "ng test"`,
				`"@angular/core": "^18.0.0", "@angular/common": "^18.0.0", "@angular/platform-browser": "^18.0.0"`,
				`"@angular/cli": "^18.0.0", "typescript": "~5.4.0"`)
		},
		deps:    map[string][]string{"npm": {"@angular/core", "@angular/cli"}},
		install: []string{"npm install"}, dev: "npm start", prod: "npm run build", test: "npm test",
		urls: []string{"http://localhost:4200"},
		ide:  vscode, altIDEs: []engine.IDEChoice{webstorm},
		extensions: []string{"Angular Language Service"},
		knowledge:  []string{"TypeScript", "Angular components"},
		software:   []engine.SoftwareRequirement{nodeSW, {Name: "Angular CLI", Version: "18", URL: "https://angular.dev/tools/cli"}},
		concepts:   []string{"Components", "Dependency injection", "Templates"},
	},
	"node": {
		languages:   []string{"javascript"},
		description: "Node.js HTTP API built with Express",
		entryPath:   "src/index.js", entryLanguage: "javascript",
		entryCode: func(name string) string {
			return fmt.Sprintf(`const express = require("express");

const app = express();
app.use(express.json());

app.get("/", (req, res) => {
  res.json({ name: %q, status: "ok" });
});

const port = process.env.PORT || 3000;
app.listen(port, () => console.log("listening on " + port));
`, name)
		},
		manifestPath: "package.json", manifestLanguage: "json",
		manifestCode: func(slug string) string {
			return npmManifest(slug, `"start": "node src/index.js", "dev": "node --watch src/index.js"`,
				`"express": "^4.19.2"`, "")
		},
		deps:    map[string][]string{"npm": {"express"}},
		install: []string{"npm install"}, dev: "npm run dev", prod: "npm start", test: "npm test",
		urls: []string{"http://localhost:3000"},
		ide:  vscode, altIDEs: []engine.IDEChoice{webstorm},
		extensions: []string{"ESLint", "REST Client"},
		knowledge:  []string{"JavaScript", "HTTP and REST basics"},
		software:   []engine.SoftwareRequirement{nodeSW},
		concepts:   []string{"Routing", "Middleware", "JSON APIs"},
	},
	"python": {
		languages:   []string{"python"},
		description: "Python web service built with Flask",
		entryPath:   "main.py", entryLanguage: "python",
		entryCode: func(name string) string {
			return fmt.Sprintf(`from flask import Flask, jsonify

app = Flask(__name__)


@app.get("/")
def index():
    return jsonify(name=%q, status="ok")


if __name__ == "__main__":
    app.run(debug=True)
`, name)
		},
		manifestPath: "requirements.txt", manifestLanguage: "text",
		manifestCode: func(string) string { return "flask>=3.0\n" },
		deps:         map[string][]string{"pip": {"flask"}},
		install:      []string{"python -m venv .venv", "pip install -r requirements.txt"},
		dev:          "python main.py", prod: "gunicorn main:app", test: "pytest",
		urls: []string{"http://localhost:5000"},
		ide:  engine.IDEChoice{Name: "PyCharm", Reason: "First-class Python refactoring and debugging"},
		altIDEs:    []engine.IDEChoice{vscode},
		extensions: []string{"Python", "Pylance"},
		knowledge:  []string{"Python 3", "HTTP basics"},
		software:   []engine.SoftwareRequirement{{Name: "Python", Version: "3.11 or newer", URL: "https://www.python.org"}},
		concepts:   []string{"Routes", "Virtual environments", "JSON responses"},
	},
	"java": {
		languages:   []string{"java", "xml"},
		description: "Java REST service built with Spring Boot",
		entryPath:   "src/main/java/com/example/Application.java", entryLanguage: "java",
		entryCode: func(name string) string {
			return fmt.Sprintf(`package com.example;

import java.util.Map;

import org.springframework.boot.SpringApplication;
import org.springframework.boot.autoconfigure.SpringBootApplication;
import org.springframework.web.bind.annotation.GetMapping;
import org.springframework.web.bind.annotation.RestController;

@SpringBootApplication
@RestController
public class Application {

    public static void main(String[] args) {
        SpringApplication.run(Application.class, args);
    }

    @GetMapping("/")
    public Map<String, String> index() {
        return Map.of("name", %q, "status", "ok");
    }
}
`, name)
		},
		manifestPath: "pom.xml", manifestLanguage: "xml",
		manifestCode: func(slug string) string {
			return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <parent>
    <groupId>org.springframework.boot</groupId>
    <artifactId>spring-boot-starter-parent</artifactId>
    <version>3.3.0</version>
  </parent>
  <groupId>com.example</groupId>
  <artifactId>%s</artifactId>
  <version>0.0.1-SNAPSHOT</version>
  <properties>
    <java.version>17</java.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>org.springframework.boot</groupId>
      <artifactId>spring-boot-starter-web</artifactId>
    </dependency>
  </dependencies>
  <build>
    <plugins>
      <plugin>
        <groupId>org.springframework.boot</groupId>
        <artifactId>spring-boot-maven-plugin</artifactId>
      </plugin>
    </plugins>
  </build>
</project>
`, slug)
		},
		deps:    map[string][]string{"maven": {"spring-boot-starter-web"}},
		install: []string{"mvn clean install"}, dev: "mvn spring-boot:run", prod: "java -jar target/*.jar", test: "mvn test",
		urls: []string{"http://localhost:8080"},
		ide:  engine.IDEChoice{Name: "IntelliJ IDEA", Reason: "Best-in-class Spring and Maven support"},
		altIDEs:    []engine.IDEChoice{vscode},
		extensions: []string{"Extension Pack for Java", "Spring Boot Extension Pack"},
		knowledge:  []string{"Java 17", "Maven", "REST basics"},
		software: []engine.SoftwareRequirement{
			{Name: "JDK", Version: "17 or newer", URL: "https://adoptium.net"},
			{Name: "Maven", Version: "3.9", URL: "https://maven.apache.org"},
		},
		concepts: []string{"Auto-configuration", "Controllers", "Dependency injection"},
	},
	"php": {
		languages:   []string{"php"},
		description: "PHP web application",
		entryPath:   "public/index.php", entryLanguage: "php",
		entryCode: func(name string) string {
			return fmt.Sprintf(`declare(strict_types=1);

header('Content-Type: application/json');

echo json_encode(['name' => %s, 'status' => 'ok']);
`, phpString(name))
		},
		manifestPath: "composer.json", manifestLanguage: "json",
		manifestCode: func(slug string) string {
			return fmt.Sprintf("{\n  \"name\": \"example/%s\",\n  \"require\": {\n    \"php\": \">=8.2\"\n  }\n}\n", slug)
		},
		deps:    map[string][]string{"composer": {}},
		install: []string{"composer install"}, dev: "php -S localhost:8000 -t public", prod: "php -S 0.0.0.0:8000 -t public", test: "vendor/bin/phpunit",
		urls: []string{"http://localhost:8000"},
		ide:  engine.IDEChoice{Name: "PhpStorm", Reason: "Deep PHP and Composer integration"},
		altIDEs:    []engine.IDEChoice{vscode},
		extensions: []string{"PHP Intelephense"},
		knowledge:  []string{"PHP 8", "Composer"},
		software: []engine.SoftwareRequirement{
			{Name: "PHP", Version: "8.2 or newer", URL: "https://www.php.net"},
			{Name: "Composer", Version: "2", URL: "https://getcomposer.org"},
		},
		concepts: []string{"Front controller", "JSON responses"},
	},
	"typescript": {
		languages:   []string{"typescript"},
		description: "TypeScript Node.js project",
		entryPath:   "src/index.ts", entryLanguage: "typescript",
		entryCode: func(name string) string {
			return fmt.Sprintf(`interface Project {
  name: string;
  status: "ok" | "error";
}

const project: Project = { name: %q, status: "ok" };

console.log(JSON.stringify(project));
`, name)
		},
		manifestPath: "package.json", manifestLanguage: "json",
		manifestCode: func(slug string) string {
			return npmManifest(slug, `"build": "tsc", "start": "node dist/index.js", "dev": "ts-node src/index.ts"`,
				"", `"typescript": "^5.5.0", "ts-node": "^10.9.2"`)
		},
		deps:    map[string][]string{"npm": {"typescript", "ts-node"}},
		install: []string{"npm install"}, dev: "npm run dev", prod: "npm run build && npm start", test: "npm test",
		urls: []string{},
		ide:  vscode, altIDEs: []engine.IDEChoice{webstorm},
		extensions: []string{"ESLint", "Prettier"},
		knowledge:  []string{"JavaScript", "TypeScript types"},
		software:   []engine.SoftwareRequirement{nodeSW},
		concepts:   []string{"Static typing", "Interfaces", "Compilation"},
	},
	"go": {
		languages:   []string{"go"},
		description: "Go HTTP service using the standard library",
		entryPath:   "main.go", entryLanguage: "go",
		entryCode: func(name string) string {
			return fmt.Sprintf(`package main

import (
	"encoding/json"
	"log"
	"net/http"
)

func main() {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"name": %q, "status": "ok"})
	})
	log.Fatal(http.ListenAndServe(":8080", nil))
}
`, name)
		},
		manifestPath: "go.mod", manifestLanguage: "text",
		manifestCode: func(slug string) string { return "module example.com/" + slug + "\n\ngo 1.22\n" },
		deps:         map[string][]string{},
		install:      []string{"go mod tidy"}, dev: "go run .", prod: "go build -o app . && ./app", test: "go test ./...",
		urls: []string{"http://localhost:8080"},
		ide:  engine.IDEChoice{Name: "GoLand", Reason: "Integrated Go tooling and debugger"},
		altIDEs:    []engine.IDEChoice{vscode},
		extensions: []string{"Go"},
		knowledge:  []string{"Go basics", "HTTP handlers"},
		software:   []engine.SoftwareRequirement{{Name: "Go", Version: "1.22 or newer", URL: "https://go.dev/dl"}},
		concepts:   []string{"Handlers", "Modules", "JSON encoding"},
	},
	"rust": {
		languages:   []string{"rust", "toml"},
		description: "Rust command-line application",
		entryPath:   "src/main.rs", entryLanguage: "rust",
		entryCode: func(name string) string {
			return fmt.Sprintf("fn main() {\n    let name = %q;\n    println!(\"{} is running\", name);\n}\n", name)
		},
		manifestPath: "Cargo.toml", manifestLanguage: "toml",
		manifestCode: func(slug string) string {
			return fmt.Sprintf("[package]\nname = %q\nversion = \"0.1.0\"\nedition = \"2021\"\n\n[dependencies]\n", slug)
		},
		deps:    map[string][]string{},
		install: []string{"cargo build"}, dev: "cargo run", prod: "cargo build --release", test: "cargo test",
		urls: []string{},
		ide:  engine.IDEChoice{Name: "RustRover", Reason: "Dedicated Rust IDE with Cargo integration"},
		altIDEs:    []engine.IDEChoice{vscode},
		extensions: []string{"rust-analyzer"},
		knowledge:  []string{"Rust ownership", "Cargo"},
		software:   []engine.SoftwareRequirement{{Name: "Rust toolchain", Version: "stable", URL: "https://rustup.rs"}},
		concepts:   []string{"Ownership", "Crates", "Pattern matching"},
	},
	"csharp": {
		languages:   []string{"csharp"},
		description: "ASP.NET Core minimal API",
		entryPath:   "Program.cs", entryLanguage: "csharp",
		entryCode: func(name string) string {
			return fmt.Sprintf(`var builder = WebApplication.CreateBuilder(args);
var app = builder.Build();

app.MapGet("/", () => new { name = %q, status = "ok" });

app.Run();
`, name)
		},
		manifestPath: "App.csproj", manifestLanguage: "xml",
		manifestCode: func(string) string {
			return `<Project Sdk="Microsoft.NET.Sdk.Web">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <Nullable>enable</Nullable>
    <ImplicitUsings>enable</ImplicitUsings>
  </PropertyGroup>
</Project>
`
		},
		deps:    map[string][]string{},
		install: []string{"dotnet restore"}, dev: "dotnet run", prod: "dotnet publish -c Release", test: "dotnet test",
		urls: []string{"http://localhost:5000"},
		ide:  engine.IDEChoice{Name: "Visual Studio", Reason: "Native .NET tooling and debugger"},
		altIDEs:    []engine.IDEChoice{{Name: "JetBrains Rider", Reason: "Cross-platform .NET IDE"}, vscode},
		extensions: []string{"C# Dev Kit"},
		knowledge:  []string{"C#", ".NET basics"},
		software:   []engine.SoftwareRequirement{{Name: ".NET SDK", Version: "8.0", URL: "https://dotnet.microsoft.com/download"}},
		concepts:   []string{"Minimal APIs", "Dependency injection"},
	},
	defaultStack: {
		languages:   []string{"javascript"},
		description: "Generic JavaScript starter project",
		entryPath:   "index.js", entryLanguage: "javascript",
		entryCode: func(name string) string {
			return fmt.Sprintf("const project = %q;\n\nconsole.log(project + \" is running\");\n", name)
		},
		deps:    map[string][]string{},
		install: []string{"See README.md"}, dev: "node index.js", prod: "node index.js", test: "See README.md",
		urls: []string{},
		ide:  vscode, altIDEs: []engine.IDEChoice{},
		extensions: []string{},
		knowledge:  []string{"See README.md"},
		software:   []engine.SoftwareRequirement{nodeSW},
		concepts:   []string{},
		generic:    true,
	},
}

func npmManifest(slug, scripts, deps, devDeps string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "{\n  \"name\": %q,\n  \"version\": \"1.0.0\",\n  \"private\": true,\n", slug)
	fmt.Fprintf(&sb, "  \"scripts\": { %s }", scripts)
	if deps != "" {
		fmt.Fprintf(&sb, ",\n  \"dependencies\": { %s }", deps)
	}
	if devDeps != "" {
		fmt.Fprintf(&sb, ",\n  \"devDependencies\": { %s }", devDeps)
	}
	sb.WriteString("\n}\n")
	return sb.String()
}

// jsxText escapes characters that would break JSX or Vue template text.
func jsxText(s string) string {
	r := strings.NewReplacer("{", "&#123;", "}", "&#125;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func phpString(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}
