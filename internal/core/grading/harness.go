package grading

import (
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

// dialect holds everything language specific about a generated harness.
// Test templates take the 1-based test number, the call expression and the
// expected literal as positional arguments.
type dialect struct {
	identifier *regexp.Regexp
	reserved   map[string]struct{}
	literal    func(interface{}) (string, error)
	prologue   string
	test       string
	epilogue   string
}

var dialects = map[domain.Language]dialect{
	domain.LanguagePython: {
		identifier: regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`),
		reserved: words(
			"False", "None", "True", "and", "as", "assert", "async", "await", "break",
			"class", "continue", "def", "del", "elif", "else", "except", "finally", "for",
			"from", "global", "if", "import", "in", "is", "lambda", "nonlocal", "not", "or",
			"pass", "raise", "return", "try", "while", "with", "yield",
		),
		literal: pythonLiteral,
		prologue: lines(
			"__harness_passed = 0",
			"__harness_total = 0",
		),
		test: lines(
			"try:",
			"    __harness_total += 1",
			"    __harness_result = %[2]s",
			"    __harness_expected = %[3]s",
			"    if __harness_result == __harness_expected:",
			"        __harness_passed += 1",
			`        print("Test %[1]d: PASSED", flush=True)`,
			"    else:",
			`        print(f"Test %[1]d: FAILED - Expected {__harness_expected!r}, got {__harness_result!r}", flush=True)`,
			"except BaseException as __harness_error:",
			`    print(f"Test %[1]d: ERROR - {__harness_error}", flush=True)`,
		),
		epilogue: lines(
			`print(f"RESULTS: {__harness_passed}/{__harness_total}", flush=True)`,
		),
	},
	domain.LanguageJavaScript: {
		identifier: regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`),
		reserved: words(
			"await", "break", "case", "catch", "class", "const", "continue", "debugger",
			"default", "delete", "do", "else", "enum", "export", "extends", "false",
			"finally", "for", "function", "if", "implements", "import", "in", "instanceof",
			"interface", "let", "new", "null", "package", "private", "protected", "public",
			"return", "static", "super", "switch", "this", "throw", "true", "try", "typeof",
			"var", "void", "while", "with", "yield",
		),
		literal: jsLiteral,
		prologue: lines(
			"let __harnessPassed = 0;",
			"let __harnessTotal = 0;",
			"function __harnessEqual(a, b) {",
			"  if (a === b) return true;",
			"  if (a === null || b === null || typeof a !== \"object\" || typeof b !== \"object\") return false;",
			"  if (Array.isArray(a) !== Array.isArray(b)) return false;",
			"  if (Array.isArray(a)) {",
			"    if (a.length !== b.length) return false;",
			"    for (let i = 0; i < a.length; i++) {",
			"      if (!__harnessEqual(a[i], b[i])) return false;",
			"    }",
			"    return true;",
			"  }",
			"  const aKeys = Object.keys(a);",
			"  const bKeys = Object.keys(b);",
			"  if (aKeys.length !== bKeys.length) return false;",
			"  for (const key of aKeys) {",
			"    if (!Object.prototype.hasOwnProperty.call(b, key)) return false;",
			"    if (!__harnessEqual(a[key], b[key])) return false;",
			"  }",
			"  return true;",
			"}",
		),
		test: lines(
			"try {",
			"  __harnessTotal++;",
			"  const __harnessResult = %[2]s;",
			"  const __harnessExpected = %[3]s;",
			"  if (__harnessEqual(__harnessResult, __harnessExpected)) {",
			"    __harnessPassed++;",
			`    console.log("Test %[1]d: PASSED");`,
			"  } else {",
			"    console.log(`Test %[1]d: FAILED - Expected ${JSON.stringify(__harnessExpected)}, got ${JSON.stringify(__harnessResult)}`);",
			"  }",
			"} catch (__harnessError) {",
			"  console.log(`Test %[1]d: ERROR - ${__harnessError && __harnessError.message ? __harnessError.message : __harnessError}`);",
			"}",
		),
		epilogue: lines(
			"console.log(`RESULTS: ${__harnessPassed}/${__harnessTotal}`);",
		),
	},
}

// BuildHarness appends a test runner for functionName to code. The output of
// the generated program reports one line per test case and ends with a single
// RESULTS: <passed>/<total> line.
func BuildHarness(code, language, functionName string, cases []domain.TestCase) (string, error) {
	lang, err := domain.ParseLanguage(language)
	if err != nil {
		return "", err
	}
	d := dialects[lang]

	if !d.identifier.MatchString(functionName) {
		return "", fmt.Errorf("%w: %q", errs.InvalidFunctionName, functionName)
	}
	if _, ok := d.reserved[functionName]; ok {
		return "", fmt.Errorf("%w: %q is reserved", errs.InvalidFunctionName, functionName)
	}

	var sb strings.Builder
	sb.WriteString(code)
	sb.WriteString("\n\n")
	sb.WriteString(d.prologue)

	for i, tc := range cases {
		args := make([]string, len(tc.Args))
		for j, arg := range tc.Args {
			lit, err := d.literal(arg)
			if err != nil {
				return "", fmt.Errorf("test %d argument %d: %w", i+1, j+1, err)
			}
			args[j] = lit
		}
		expected, err := d.literal(tc.Expected)
		if err != nil {
			return "", fmt.Errorf("test %d expected value: %w", i+1, err)
		}
		call := functionName + "(" + strings.Join(args, ", ") + ")"
		fmt.Fprintf(&sb, d.test, i+1, call, expected)
	}

	sb.WriteString(d.epilogue)
	return sb.String(), nil
}

func lines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

func words(w ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(w))
	for _, s := range w {
		m[s] = struct{}{}
	}
	return m
}
