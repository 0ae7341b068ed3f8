package githubcli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/f43a9a/warifuri/internal/task"
)

func TestTaskIssueBody(t *testing.T) {
	tk := &task.Task{
		Project:  "etl",
		Name:     "extract",
		TaskType: task.TypeMachine,
		Instruction: task.Instruction{
			Description:  "pulls raw records",
			Dependencies: []string{"setup"},
			Inputs:       []string{"raw.csv"},
			Outputs:      []string{"clean.csv"},
			Note:         "rate limited",
		},
	}

	body := TaskIssueBody(tk)
	assert.Contains(t, body, "# Task: etl/extract")
	assert.Contains(t, body, "pulls raw records")
	assert.Contains(t, body, "- [ ] setup")
	assert.Contains(t, body, "`raw.csv`")
	assert.Contains(t, body, "`clean.csv`")
	assert.Contains(t, body, "rate limited")
	assert.Contains(t, body, "warifuri run --task etl/extract")
}

func TestTaskIssueBody_MissingDescription(t *testing.T) {
	tk := &task.Task{Project: "etl", Name: "extract"}
	body := TaskIssueBody(tk)
	assert.Contains(t, body, "No description provided")
}

func TestCreatePR_SurfacesGHFailure(t *testing.T) {
	// The test host has no authenticated "gh" available; CreatePR must
	// surface that as an error rather than panicking.
	_, err := CreatePR(context.Background(), CreatePROptions{Title: "t", Body: "b"})
	assert.Error(t, err)
}

func TestEnableAutoMerge_SurfacesGHFailure(t *testing.T) {
	err := EnableAutoMerge(context.Background(), "https://example.invalid/pr/1", "")
	assert.Error(t, err)
}
