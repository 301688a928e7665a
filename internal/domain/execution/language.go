package execution

// Language is the canonical identifier for a supported programming language.
// It is data, not behavior: the set of valid values lives in the registry's
// recipe table, not in this type.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageGo         Language = "go"
	LanguageC          Language = "c"
	LanguageCPP        Language = "cpp"
	LanguageRust       Language = "rust"
	LanguageJava       Language = "java"
	LanguageKotlin     Language = "kotlin"
	LanguageScala      Language = "scala"
	LanguageSwift      Language = "swift"
	LanguageHaskell    Language = "haskell"
	LanguageOCaml      Language = "ocaml"
	LanguageFortran    Language = "fortran"
	LanguagePascal     Language = "pascal"
	LanguageD          Language = "d"
	LanguageObjC       Language = "objc"
	LanguageCOBOL      Language = "cobol"
	LanguageBasic      Language = "basic"
	LanguageAssembly   Language = "assembly"
)

// Recipe is the immutable execution plan for one language: the container
// image, the on-disk filename the source must take, and the optional
// compile step followed by the run step.
//
// Invariant: Run must be executable with the workspace as the working
// directory once the source file has been written there. When Compile is
// present it must produce an artifact Run can locate in the same
// workspace.
type Recipe struct {
	Language       Language
	Label          string
	Image          string
	SourceFilename string
	Compile        []string
	Run            []string
	DefaultLimits  *Limits
}

// Compiled reports whether the recipe has a compile step.
func (r Recipe) Compiled() bool {
	return len(r.Compile) > 0
}
