package eval

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/apple/pkl-go/pkl"
	"gopkg.in/yaml.v3"

	"github.com/picklr-io/stagehand/internal/ir"
)

// ProjectFiles are the declaration files looked up in a project directory, in order.
var ProjectFiles = []string{"stagehand.yml", "stagehand.yaml", "main.pkl"}

// ErrNoProjectFile is returned when a directory holds none of ProjectFiles.
var ErrNoProjectFile = errors.New("no project file found")

// Evaluator loads project declarations into IR types.
type Evaluator struct {
	projectDir string
}

func NewEvaluator(projectDir string) *Evaluator {
	return &Evaluator{
		projectDir: projectDir,
	}
}

// ProjectDir returns the directory relative paths in the project resolve against.
func (e *Evaluator) ProjectDir() string {
	return e.projectDir
}

// FindProjectFile returns the first of ProjectFiles present in the project directory.
func (e *Evaluator) FindProjectFile() (string, error) {
	for _, name := range ProjectFiles {
		path := filepath.Join(e.projectDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNoProjectFile, e.projectDir, strings.Join(ProjectFiles, ", "))
}

// LoadProject evaluates a declaration file. YAML files are decoded strictly;
// .pkl files are evaluated with pkl.
func (e *Evaluator) LoadProject(ctx context.Context, file string) (*ir.Project, error) {
	if file == "" {
		found, err := e.FindProjectFile()
		if err != nil {
			return nil, err
		}
		file = found
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".yml", ".yaml":
		return e.loadYAML(file)
	case ".pkl":
		return e.loadPkl(ctx, file)
	default:
		return nil, fmt.Errorf("unsupported project file %s: expected .yml, .yaml or .pkl", file)
	}
}

func (e *Evaluator) loadYAML(file string) (*ir.Project, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	return DecodeProject(data)
}

// DecodeProject parses a YAML project declaration, rejecting unknown keys.
func DecodeProject(data []byte) (*ir.Project, error) {
	var project ir.Project
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&project); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse project: %w", err)
	}
	return &project, nil
}

func (e *Evaluator) loadPkl(ctx context.Context, file string) (*ir.Project, error) {
	evaluator, err := e.newPklEvaluator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create PKL evaluator: %w", err)
	}
	defer evaluator.Close()

	var project ir.Project
	if err := evaluator.EvaluateModule(ctx, pkl.FileSource(file), &project); err != nil {
		return nil, fmt.Errorf("failed to evaluate project: %w", err)
	}
	return &project, nil
}

// newPklEvaluator uses the project's PklProject when there is one, so that
// declared package dependencies resolve.
func (e *Evaluator) newPklEvaluator(ctx context.Context) (pkl.Evaluator, error) {
	if _, err := os.Stat(filepath.Join(e.projectDir, "PklProject")); err != nil {
		return pkl.NewEvaluator(ctx, pkl.PreconfiguredOptions)
	}

	abs, err := filepath.Abs(e.projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}
	u, err := url.Parse("file://" + abs + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse project directory URL: %w", err)
	}
	return pkl.NewProjectEvaluator(ctx, u, pkl.PreconfiguredOptions)
}
