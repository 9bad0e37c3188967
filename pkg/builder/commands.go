package builder

import (
	"context"
	"fmt"
	"strings"
)

type handler func(b *Builder, ctx context.Context, args []string) error

// command is one entry of the command vocabulary.
type command struct {
	name    string
	aliases []string
	usage   string
	summary string
	run     handler
}

// commands is the vocabulary in help order.
var commands []command

func init() {
	commands = []command{
		{name: "add", usage: "add", summary: "Create a task and run it immediately", run: (*Builder).cmdAdd},
		{name: "start_block", usage: "start_block [name]", summary: "Open a block; following tasks go into it", run: (*Builder).cmdStartBlock},
		{name: "add_to_block", usage: "add_to_block", summary: "Add a task to the open block", run: (*Builder).cmdAddToBlock},
		{name: "add_rescue", usage: "add_rescue", summary: "Add a task to the open block's rescue section", run: (*Builder).cmdAddRescue},
		{name: "add_always", usage: "add_always", summary: "Add a task to the open block's always section", run: (*Builder).cmdAddAlways},
		{name: "end_block", usage: "end_block", summary: "Close the open block", run: (*Builder).cmdEndBlock},
		{name: "set_target", aliases: []string{"target"}, usage: "set_target [hosts]", summary: "Set the host or group selector", run: (*Builder).cmdSetTarget},
		{name: "env", usage: "env [NAME [VALUE]]", summary: "Set an environment variable for task runs", run: (*Builder).cmdEnv},
		{name: "var", aliases: []string{"ansible_var"}, usage: "var [NAME [VALUE]]", summary: "Set a play variable", run: (*Builder).cmdVar},
		{name: "run", usage: "run", summary: "Run every top-level task in order", run: (*Builder).cmdRun},
		{name: "edit", usage: "edit <n>", summary: "Edit top-level task n", run: (*Builder).cmdEdit},
		{name: "import", usage: "import [file]", summary: "Replace the document with a playbook file", run: (*Builder).cmdImport},
		{name: "save", usage: "save [file]", summary: "Write the document to a file", run: (*Builder).cmdSave},
		{name: "display", usage: "display", summary: "Re-render the document preview", run: (*Builder).cmdDisplay},
		{name: "help", usage: "help", summary: "Show this help", run: (*Builder).cmdHelp},
		{name: "exit", aliases: []string{"quit"}, usage: "exit", summary: "Leave without saving"},
	}
}

// lookupCommand resolves a command word, including aliases.
func lookupCommand(word string) (command, bool) {
	for _, c := range commands {
		if c.name == word {
			return c, true
		}
		for _, a := range c.aliases {
			if a == word {
				return c, true
			}
		}
	}
	return command{}, false
}

// CommandNames lists every command word and alias, for completion.
func CommandNames() []string {
	var names []string
	for _, c := range commands {
		names = append(names, c.name)
		names = append(names, c.aliases...)
	}
	return names
}

// PromptLabel is the label of the command prompt.
func PromptLabel() string {
	return "Enter command (add, start_block, add_to_block, add_rescue, end_block, set_target, run, display, save, help, exit): "
}

// HelpMarkdown renders the command vocabulary as a markdown table.
func HelpMarkdown() string {
	var b strings.Builder
	b.WriteString("# Commands\n\n| Command | Description |\n|---|---|\n")
	for _, c := range commands {
		usage := "`" + c.usage + "`"
		if len(c.aliases) > 0 {
			usage += " (" + strings.Join(c.aliases, ", ") + ")"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", usage, c.summary)
	}
	b.WriteString("\nIn a form, move with up/down and confirm a field with enter. " +
		"Select **Accept** to keep the task or **Cancel** to discard it.\n")
	return b.String()
}

// splitLine splits a command line into the command word and arguments.
func splitLine(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}
