package autograder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.gatech.edu/ECEInnovation/rv32ias/assembler"
)

var assemblyExtensions = []string{".s", ".S", ".asm"}

// findSubmission resolves a submission directory to the assembly file inside it.
func findSubmission(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}

	dirFiles, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("failed to list submission directory: %w", err)
	}
	for _, f := range dirFiles {
		if !f.IsDir() && lo.Contains(assemblyExtensions, filepath.Ext(f.Name())) {
			return filepath.Join(path, f.Name()), nil
		}
	}
	return "", fmt.Errorf("no assembly file in %s", path)
}

// GradeAssembly grades the submission named by conf.
func GradeAssembly(conf *Config) (*GradescopeOutput, error) {
	path, err := findSubmission(conf.StudentCodePath)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return GradeSource(string(b), conf), nil
}

// GradeSource assembles source once and scores it against every test case.
func GradeSource(source string, conf *Config) *GradescopeOutput {
	gso := CreateGradescopeOutput()
	config := assembler.AssemblerConfig{
		StrictImmediates: conf.StrictImmediates,
		StrictAlignment:  conf.StrictAlignment,
	}

	assembles := CreateTestCase("Assembles without errors", conf.AssemblyPoints, "visible")
	res, err := assembler.AssembleWithConfig(source, config)
	if err != nil {
		assembles.OutputPrintLn(err.Error())
		assembles.SetStatus(false)
		gso.AddTest(assembles, 0)

		for _, tc := range conf.TestCases {
			test := CreateTestCase(testCaseName(tc), tc.Points, visibility(tc))
			test.OutputPrintLn("Submission does not assemble")
			test.SetStatus(false)
			gso.AddTest(test, 0)
		}
		return gso
	}

	for _, w := range res.Warnings {
		assembles.OutputPrintLn(fmt.Sprintf("warning (line %d): %s", w.Range.Start.Line+1, w.Message))
	}
	assembles.SetStatus(true)
	gso.AddTest(assembles, conf.AssemblyPoints)

	for _, tc := range conf.TestCases {
		gso.AddTest(gradeTestCase(res, tc))
	}

	gso.AddLeaderBoardEntry(GradescopeLeaderBoardEntry{
		Name:  "Instructions",
		Value: len(res.ProgramText),
		Order: "asc",
	})
	return gso
}

func testCaseName(tc TestCase) string {
	return fmt.Sprintf("%d: %s", tc.Number, tc.Name)
}

func visibility(tc TestCase) string {
	if tc.Visibility == "" {
		return "visible"
	}
	return tc.Visibility
}

func gradeTestCase(res *assembler.AssembledResult, tc TestCase) (GradescopeTest, int) {
	test := CreateTestCase(testCaseName(tc), tc.Points, visibility(tc))
	passed := true

	for i, hex := range tc.ExpectedWords {
		want, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(hex), "0x"), 16, 32)
		if err != nil {
			test.OutputPrintLn("Invalid expected word " + hex)
			passed = false
			continue
		}

		idx := tc.Offset + i
		if idx < 0 || idx >= len(res.ProgramText) {
			test.OutputPrintLn(fmt.Sprintf("Expected word %d to be 0x%08x, but the program has %d words", idx, want, len(res.ProgramText)))
			passed = false
			continue
		}
		if got := res.ProgramText[idx]; got != uint32(want) {
			test.OutputPrintLn(fmt.Sprintf("Expected word %d (%s) to be 0x%08x, got 0x%08x",
				idx, res.Lines[res.Instructions[idx].Line].Body, want, got))
			passed = false
		}
	}

	labels := lo.Keys(tc.Labels)
	sort.Strings(labels)
	for _, label := range labels {
		got, ok := res.Labels.Lookup(label)
		if !ok {
			test.OutputPrintLn("Expected label " + label + " to be defined")
			passed = false
			continue
		}
		if want := tc.Labels[label]; got != want {
			test.OutputPrintLn(fmt.Sprintf("Expected label %s at 0x%08x, got 0x%08x", label, want, got))
			passed = false
		}
	}

	test.SetStatus(passed)
	if !passed {
		return test, 0
	}
	return test, tc.Points
}
