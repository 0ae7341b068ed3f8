// Package task provides the warifuri data model: instruction files,
// tasks, projects, and the workspace they live in.
package task

// Type classifies how a task is executed.
type Type string

// Valid task types.
const (
	TypeMachine Type = "machine"
	TypeAI      Type = "ai"
	TypeHuman   Type = "human"
)

// Status represents the lifecycle state of a task at evaluation time.
type Status string

// Valid task statuses.
const (
	StatusCompleted Status = "completed"
	StatusReady     Status = "ready"
	StatusPending   Status = "pending"
)

// Instruction is the declarative record parsed from a task's
// instruction.yaml file.
type Instruction struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Dependencies []string `yaml:"dependencies"`
	Inputs       []string `yaml:"inputs"`
	Outputs      []string `yaml:"outputs"`
	Note         string   `yaml:"note,omitempty"`
	TaskType     Type     `yaml:"task_type,omitempty"`
	AutoMerge    bool     `yaml:"auto_merge,omitempty"`
}

// Validate checks that the instruction has the minimum required fields.
func (i *Instruction) Validate() error {
	if i.Name == "" {
		return errMissingField("name")
	}
	if i.Description == "" {
		return errMissingField("description")
	}
	return nil
}

// Task is the in-memory entity for a single task directory.
type Task struct {
	Project     string
	Name        string
	Path        string
	Instruction Instruction
	TaskType    Type
	Status      Status
}

// FullName returns the "project/task" identifier unique within a workspace.
func (t *Task) FullName() string {
	return t.Project + "/" + t.Name
}

// IsCompleted reports whether the task's Status is StatusCompleted, which
// discovery sets when the completion marker was present. It does not
// re-check the filesystem.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Project is a named collection of tasks plus its directory path.
type Project struct {
	Name  string
	Path  string
	Tasks []*Task
}

// Workspace is the root of a discovered warifuri tree.
type Workspace struct {
	Root         string
	ProjectsDir  string
	TemplatesDir string
	SchemasDir   string
	Projects     []*Project
}

// TaskByFullName returns the task with the given "project/task" name, if any.
func (w *Workspace) TaskByFullName(fullName string) (*Task, bool) {
	for _, p := range w.Projects {
		for _, t := range p.Tasks {
			if t.FullName() == fullName {
				return t, true
			}
		}
	}
	return nil, false
}

// AllTasks returns every task across every project in the workspace.
func (w *Workspace) AllTasks() []*Task {
	var all []*Task
	for _, p := range w.Projects {
		all = append(all, p.Tasks...)
	}
	return all
}

func errMissingField(field string) error {
	return &fieldError{field: field}
}

type fieldError struct {
	field string
}

func (e *fieldError) Error() string {
	return "instruction field is required: " + e.field
}
