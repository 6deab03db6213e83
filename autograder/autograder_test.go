package autograder_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.gatech.edu/ECEInnovation/rv32ias/autograder"
)

const submission = `main:
	addi a0, zero, 10
loop:
	addi a0, a0, -1
	bne a0, zero, loop
`

func testConfig() *autograder.Config {
	return &autograder.Config{
		AssignmentName: "countdown",
		AssemblyPoints: 2,
		TestCases: []autograder.TestCase{
			{Number: 1, Name: "setup", Points: 3, ExpectedWords: []string{"00A00513"}},
			{Number: 2, Name: "loop", Points: 5, Offset: 1, ExpectedWords: []string{"fff50513", "0xFE051EE3"}, Labels: map[string]uint32{"loop": 4}},
			{Number: 3, Name: "too long", Points: 1, Offset: 3, ExpectedWords: []string{"00000013"}},
		},
	}
}

func TestGradeSource(t *testing.T) {
	gso := autograder.GradeSource(submission, testConfig())

	if len(gso.Tests) != 4 {
		t.Fatalf("Expected 4 tests, got %d", len(gso.Tests))
	}

	expectedScores := []int{2, 3, 5, 0}
	for i, test := range gso.Tests {
		if test.Score != expectedScores[i] {
			t.Errorf("Expected test %d (%s) to score %d, got %d: %s", i, test.Name, expectedScores[i], test.Score, test.Output)
		}
	}
	if gso.Score != 10 {
		t.Errorf("Expected total score 10, got %d", gso.Score)
	}
	if gso.Tests[3].Status != "failed" || !strings.Contains(gso.Tests[3].Output, "program has 3 words") {
		t.Errorf("Unexpected failure output %q", gso.Tests[3].Output)
	}
	if !strings.Contains(gso.Tests[0].Output, "Unused label") {
		t.Errorf("Expected the unused main label to be reported, got %q", gso.Tests[0].Output)
	}
	if len(gso.LeaderboardData) != 1 || gso.LeaderboardData[0].Value != 3 {
		t.Errorf("Unexpected leaderboard %+v", gso.LeaderboardData)
	}
}

func TestGradeSourceWrongWord(t *testing.T) {
	conf := testConfig()
	conf.TestCases[0].ExpectedWords = []string{"00B00513"}

	gso := autograder.GradeSource(submission, conf)
	if gso.Tests[1].Score != 0 || !strings.Contains(gso.Tests[1].Output, "addi a0, zero, 10") {
		t.Errorf("Unexpected result %+v", gso.Tests[1])
	}
}

func TestGradeSourceDoesNotAssemble(t *testing.T) {
	gso := autograder.GradeSource("addi a0, zero\n", testConfig())

	for _, test := range gso.Tests {
		if test.Score != 0 || test.Status != "failed" {
			t.Errorf("Expected %s to fail, got %+v", test.Name, test)
		}
	}
	if !strings.Contains(gso.Tests[0].Output, "Syntax Error found at line 1") {
		t.Errorf("Expected the assembler error in the output, got %q", gso.Tests[0].Output)
	}
}

func TestGradeAssemblyFromDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "countdown.s"), []byte(submission), 0644); err != nil {
		t.Fatal(err)
	}

	conf := testConfig()
	conf.StudentCodePath = dir
	gso, err := autograder.GradeAssembly(conf)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	results := filepath.Join(dir, "results", "results.json")
	if err := gso.Save(results); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	b, err := os.ReadFile(results)
	if err != nil {
		t.Fatal(err)
	}
	decoded := autograder.GradescopeOutput{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Score != 10 || len(decoded.Tests) != 4 {
		t.Errorf("Unexpected saved results %+v", decoded)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autograderConfig.json")
	raw := `{"assignmentName": "a", "studentCodePath": "submission", "assemblyPoints": 1,
		"testCases": [{"number": 1, "name": "first", "points": 4, "expectedWords": ["00000013"]}]}`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	conf, err := autograder.LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if conf.Mode != "asm" || conf.ResultsPath != "results/results.json" {
		t.Errorf("Expected defaults, got %+v", conf)
	}
	if len(conf.TestCases) != 1 || conf.TestCases[0].Points != 4 {
		t.Errorf("Unexpected test cases %+v", conf.TestCases)
	}
}
