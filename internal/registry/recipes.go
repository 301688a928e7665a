package registry

import "codexec/internal/domain/execution"

// defaultRecipes is the built-in language table. Interpreted languages
// have no Compile step; compiled-to-artifact languages build a binary
// that Run then executes from the same workspace; TypeScript is
// transpiled to JavaScript and then run with node, the one
// transpiled-then-run entry.
var defaultRecipes = []execution.Recipe{
	{
		Language:       execution.LanguagePython,
		Label:          "Python 3",
		Image:          "python:3.12-alpine",
		SourceFilename: "main.py",
		Run:            []string{"python3", "main.py"},
	},
	{
		Language:       execution.LanguageJavaScript,
		Label:          "JavaScript (Node.js)",
		Image:          "node:20-alpine",
		SourceFilename: "main.js",
		Run:            []string{"node", "main.js"},
	},
	{
		Language:       execution.LanguageTypeScript,
		Label:          "TypeScript",
		Image:          "node:20-alpine",
		SourceFilename: "main.ts",
		Compile:        []string{"npx", "--yes", "typescript", "--outFile", "main.js", "main.ts"},
		Run:            []string{"node", "main.js"},
	},
	{
		Language:       execution.LanguageGo,
		Label:          "Go",
		Image:          "golang:1.24-alpine",
		SourceFilename: "main.go",
		Compile:        []string{"go", "build", "-o", "program", "main.go"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguageC,
		Label:          "C (gcc)",
		Image:          "gcc:14-bookworm",
		SourceFilename: "main.c",
		Compile:        []string{"gcc", "-O2", "-pipe", "-static", "-o", "program", "main.c"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguageCPP,
		Label:          "C++ (g++)",
		Image:          "gcc:14-bookworm",
		SourceFilename: "main.cpp",
		Compile:        []string{"g++", "-O2", "-pipe", "-std=c++20", "-o", "program", "main.cpp"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguageRust,
		Label:          "Rust",
		Image:          "rust:1.81-alpine",
		SourceFilename: "main.rs",
		Compile:        []string{"rustc", "-O", "-o", "program", "main.rs"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguageJava,
		Label:          "Java",
		Image:          "eclipse-temurin:21-alpine",
		SourceFilename: "Main.java",
		Compile:        []string{"javac", "Main.java"},
		Run:            []string{"java", "Main"},
	},
	{
		Language:       execution.LanguageKotlin,
		Label:          "Kotlin",
		Image:          "zenika/kotlin:1.9-jdk21-alpine",
		SourceFilename: "main.kt",
		Compile:        []string{"kotlinc", "main.kt", "-include-runtime", "-d", "program.jar"},
		Run:            []string{"java", "-jar", "program.jar"},
	},
	{
		Language:       execution.LanguageScala,
		Label:          "Scala",
		Image:          "hseeberger/scala-sbt:17.0.2_1.6.2_3.1.1",
		SourceFilename: "Main.scala",
		Compile:        []string{"scalac", "Main.scala"},
		Run:            []string{"scala", "Main"},
	},
	{
		Language:       execution.LanguageSwift,
		Label:          "Swift",
		Image:          "swift:5.9",
		SourceFilename: "main.swift",
		Compile:        []string{"swiftc", "-O", "-o", "program", "main.swift"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguageHaskell,
		Label:          "Haskell (GHC)",
		Image:          "haskell:9.4",
		SourceFilename: "main.hs",
		Compile:        []string{"ghc", "-O2", "-o", "program", "main.hs"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguageOCaml,
		Label:          "OCaml",
		Image:          "ocaml/opam:alpine",
		SourceFilename: "main.ml",
		Compile:        []string{"ocamlfind", "ocamlopt", "-package", "str", "-linkpkg", "-o", "program", "main.ml"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguageFortran,
		Label:          "Fortran (gfortran)",
		Image:          "gcc:14-bookworm",
		SourceFilename: "main.f90",
		Compile:        []string{"gfortran", "-O2", "-o", "program", "main.f90"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguagePascal,
		Label:          "Pascal (Free Pascal)",
		Image:          "alpine:3.20",
		SourceFilename: "main.pas",
		Compile:        []string{"fpc", "-O2", "-oprogram", "main.pas"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguageD,
		Label:          "D (DMD)",
		Image:          "dlang2/dmd-ubuntu:latest",
		SourceFilename: "main.d",
		Compile:        []string{"dmd", "-O", "-of=program", "main.d"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguageObjC,
		Label:          "Objective-C (GNUstep)",
		Image:          "alpine:3.20",
		SourceFilename: "main.m",
		Compile:        []string{"gcc", "-O2", "-o", "program", "main.m", "-lobjc"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguageCOBOL,
		Label:          "COBOL (GnuCOBOL)",
		Image:          "alpine:3.20",
		SourceFilename: "main.cob",
		Compile:        []string{"cobc", "-x", "-O", "-o", "program", "main.cob"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguageBasic,
		Label:          "BASIC (FreeBASIC)",
		Image:          "alpine:3.20",
		SourceFilename: "main.bas",
		Compile:        []string{"fbc", "-O", "2", "-o", "program", "main.bas"},
		Run:            []string{"./program"},
	},
	{
		Language:       execution.LanguageAssembly,
		Label:          "Assembly (NASM)",
		Image:          "alpine:3.20",
		SourceFilename: "main.asm",
		Compile:        []string{"sh", "-c", "nasm -f elf64 -o main.o main.asm && ld -o program main.o"},
		Run:            []string{"./program"},
	},
}

// defaultAliases maps alternate tokens to a canonical language name.
var defaultAliases = map[string]execution.Language{
	"js":      execution.LanguageJavaScript,
	"node":    execution.LanguageJavaScript,
	"nodejs":  execution.LanguageJavaScript,
	"ts":      execution.LanguageTypeScript,
	"py":      execution.LanguagePython,
	"python3": execution.LanguagePython,
	"golang":  execution.LanguageGo,
	"c++":     execution.LanguageCPP,
	"cxx":     execution.LanguageCPP,
	"kt":      execution.LanguageKotlin,
	"objc":    execution.LanguageObjC,
	"objective-c": execution.LanguageObjC,
	"asm":     execution.LanguageAssembly,
	"nasm":    execution.LanguageAssembly,
	"fpc":     execution.LanguagePascal,
}
