package search

import (
	"context"

	"github.com/google/uuid"
)

// Command is a directive for the index owner. The set of implementations is
// closed; the owner switches over every one of them.
type Command interface {
	command()
}

// AddCommand indexes a document. An existing document with the same id is
// replaced.
type AddCommand struct {
	Doc Document
}

// UpdateCommand replaces the document with Doc.ID in one atomic batch.
type UpdateCommand struct {
	Doc Document
}

// DeleteCommand removes the document with ID.
type DeleteCommand struct {
	ID uuid.UUID
}

// QueryCommand runs a search under the sender's Ctx. The owner sends exactly
// one Reply on Reply, which must have room for it.
type QueryCommand struct {
	Ctx   context.Context
	Text  string
	Reply chan<- Reply
}

// CountCommand asks for the index document count, answered on Reply.
type CountCommand struct {
	Reply chan<- Reply
}

func (AddCommand) command()    {}
func (UpdateCommand) command() {}
func (DeleteCommand) command() {}
func (QueryCommand) command()  {}
func (CountCommand) command()  {}

// Reply answers one QueryCommand or CountCommand.
type Reply struct {
	Hits  []Hit
	Count uint64
	Err   error
}
