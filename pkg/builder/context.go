package builder

import "github.com/mahespth/ansible-write/pkg/playbook"

// State is the builder's position in the block state machine.
type State int

const (
	Idle State = iota
	InBlock
)

func (s State) String() string {
	if s == InBlock {
		return "in-block"
	}
	return "idle"
}

// Context is the state of one builder session: the document and the open
// block, if any. A fresh Context starts Idle with an empty document.
type Context struct {
	Doc   *playbook.Document
	block *playbook.Block
}

// NewContext returns the initial session state.
func NewContext() *Context {
	return &Context{Doc: playbook.New()}
}

// State reports whether a block is open.
func (c *Context) State() State {
	if c.block != nil {
		return InBlock
	}
	return Idle
}

// Block returns the open block, or nil.
func (c *Context) Block() *playbook.Block { return c.block }

func (c *Context) openBlock(b *playbook.Block) { c.block = b }

func (c *Context) closeBlock() { c.block = nil }

// replace swaps in an imported document and closes any open block.
func (c *Context) replace(d *playbook.Document) {
	c.Doc = d
	c.block = nil
}
