package assistant

import (
	"github.com/Junheng-Zheng/Junbot/internal/domain"
	"github.com/Junheng-Zheng/Junbot/internal/pkg/llm"
)

// TaskTools 返回每轮对话附带的任务工具声明，与状态无关
func TaskTools() []llm.ToolSpec {
	return []llm.ToolSpec{
		AddTaskTool(),
		CompleteTaskTool(),
		DeleteTaskTool(),
	}
}

// AddTaskTool 返回 add_task 工具定义
func AddTaskTool() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        domain.ToolAddTask,
		Description: "Add a task for the user with a title and due label. Use when the user asks to add, create, or schedule a task.",
		Params: []llm.Param{
			{
				Name:        "title",
				Type:        "string",
				Description: "Short task name. ALWAYS MAX THREE WORDS, 6 CHARACTERS MAX PER WORD. Summarize the task to fit.",
				Required:    true,
			},
			{
				Name:        "dueLabel",
				Type:        "string",
				Description: "Either 'DUE TODAY' or 'DUE TMR' for today/tomorrow, OR a specific date in m/d/yy format (e.g. 10/6/25, 1/25/26). No leading zeros. For relative dates like 'next Sunday' use the current date context to compute the actual date.",
				Required:    true,
			},
		},
	}
}

// CompleteTaskTool 返回 complete_task 工具定义
func CompleteTaskTool() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        domain.ToolCompleteTask,
		Description: "Mark a task as complete and remove it from the user's list. Use when the user says they finished a task, did it, or want to mark it complete.",
		Params: []llm.Param{
			{
				Name:        "taskId",
				Type:        "number",
				Description: "The id of the task from the current task list (use the [id: N] value from the task list).",
				Required:    true,
			},
		},
	}
}

// DeleteTaskTool 返回 delete_task 工具定义
// 按标题和截止标签匹配，而不是 ID
func DeleteTaskTool() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        domain.ToolDeleteTask,
		Description: "Delete or remove a task by its name and due date. Use when the user asks to delete, remove, or cancel a task and gives the task name and/or due date. Match against the current task list (title and dueLabel).",
		Params: []llm.Param{
			{
				Name:        "title",
				Type:        "string",
				Description: "Task name as shown in the list (e.g. Psych Quiz, Microsoft Event). Match the wording from the current task list.",
				Required:    true,
			},
			{
				Name:        "dueLabel",
				Type:        "string",
				Description: "Due date from the list: 'DUE TODAY', 'DUE TMR', or m/d/yy (e.g. 3/14/26). Use the exact dueLabel from the task list.",
				Required:    true,
			},
		},
	}
}
