package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
)

// exerciseFile describes one submission to grade. Code is either inline or
// read from code_file, relative to the exercise file.
type exerciseFile struct {
	Language     string            `yaml:"language"`
	FunctionName string            `yaml:"function_name"`
	Code         string            `yaml:"code"`
	CodeFile     string            `yaml:"code_file"`
	TestCases    []domain.TestCase `yaml:"test_cases"`
}

func loadExercise(path string) (*exerciseFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading exercise: %w", err)
	}

	var ex exerciseFile
	if err := yaml.Unmarshal(raw, &ex); err != nil {
		return nil, fmt.Errorf("parsing exercise: %w", err)
	}

	if ex.CodeFile != "" {
		codePath := ex.CodeFile
		if !filepath.IsAbs(codePath) {
			codePath = filepath.Join(filepath.Dir(path), codePath)
		}
		code, err := os.ReadFile(codePath)
		if err != nil {
			return nil, fmt.Errorf("reading code file: %w", err)
		}
		ex.Code = string(code)
	}
	if ex.Code == "" {
		return nil, fmt.Errorf("exercise %s has no code", path)
	}
	return &ex, nil
}

func (ex *exerciseFile) gradeRequest() map[string]interface{} {
	cases := ex.TestCases
	if cases == nil {
		cases = []domain.TestCase{}
	}
	return map[string]interface{}{
		"code":          ex.Code,
		"language":      ex.Language,
		"function_name": ex.FunctionName,
		"test_cases":    cases,
	}
}
