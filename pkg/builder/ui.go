package builder

// UI is the interactive surface the builder drives. Every method blocks
// until the operator has answered or the output is shown. Prompt and
// Navigate return io.EOF when the operator closes the session.
type UI interface {
	// Prompt asks for one line of text on the input line.
	Prompt(label string) (string, error)
	// Navigate shows a form and returns the operator's next move.
	Navigate(v View) (Nav, error)
	// Log appends an entry to the result pane.
	Log(e Entry)
	// Preview replaces the document preview.
	Preview(text string)
}

// Busy is implemented by surfaces that can show progress while a task runs.
type Busy interface {
	SetBusy(label string, busy bool)
}

// NavKind is a selection-mode move.
type NavKind int

const (
	NavUp NavKind = iota
	NavDown
	NavConfirm
	// NavJump selects the field at Nav.Index.
	NavJump
)

// Nav is one move in selection mode.
type Nav struct {
	Kind  NavKind
	Index int
}

// Row is one field of a form view.
type Row struct {
	Key      string
	Label    string
	Value    string
	Help     string
	Required bool
	// Control marks the Accept and Cancel entries.
	Control bool
}

// View is a snapshot of an editing session for display.
type View struct {
	Title   string
	Rows    []Row
	Cursor  int
	Message string
}

// Level is the severity of a result pane entry.
type Level int

const (
	LevelInfo Level = iota
	LevelResult
	LevelError
	// LevelHelp entries hold markdown.
	LevelHelp
)

// Entry is one message for the result pane.
type Entry struct {
	Level Level
	Title string
	Text  string
	// Failed and Skipped qualify LevelResult entries.
	Failed  bool
	Skipped bool
}
