package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTasks(t *testing.T) {
	var buf bytes.Buffer
	printTasks(&buf, nil)
	assert.Equal(t, "No tasks.\n", buf.String())

	buf.Reset()
	printTasks(&buf, []domain.Task{{ID: 2, Title: "Gym", DueLabel: "DUE TODAY"}})
	assert.Contains(t, buf.String(), "[2] Gym")
	assert.Contains(t, buf.String(), "DUE TODAY")
}

func TestPrintActions(t *testing.T) {
	var buf bytes.Buffer
	printActions(&buf, domain.Actions([]domain.Mutation{
		domain.AddTask{Title: "Quiz", DueLabel: "DUE TMR"},
		domain.CompleteTask{TaskID: 4},
	}))
	assert.Equal(t, "  + Quiz (DUE TMR)\n  - task 4\n", buf.String())
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cmd := configCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"init", path})

	require.NoError(t, cmd.Execute())
	_, err := os.Stat(path)
	require.NoError(t, err)

	cmd.SetArgs([]string{"init", path})
	assert.Error(t, cmd.Execute(), "refuses to overwrite")
}

func TestTasksDoneRejectsBadID(t *testing.T) {
	cmd := tasksCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"done", "abc"})
	assert.Error(t, cmd.Execute())
}
