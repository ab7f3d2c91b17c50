package search

import (
	"context"

	"github.com/google/uuid"
)

// Client submits commands to an Owner. Mutations are fire-and-forget: a nil
// error only means the command was queued. Queries wait for their own reply.
type Client struct {
	inbox *mailbox
	done  <-chan struct{}
}

// Send queues cmd. It never blocks.
func (c *Client) Send(cmd Command) error {
	if !c.inbox.push(cmd) {
		return ErrClosed
	}
	return nil
}

func (c *Client) Add(doc Document) error {
	return c.Send(AddCommand{Doc: doc})
}

func (c *Client) Update(doc Document) error {
	return c.Send(UpdateCommand{Doc: doc})
}

func (c *Client) Delete(id uuid.UUID) error {
	return c.Send(DeleteCommand{ID: id})
}

// Query runs text against the index and returns at most MaxResults hits,
// newest first. Malformed text yields an error wrapping ErrMalformedQuery.
func (c *Client) Query(ctx context.Context, text string) ([]Hit, error) {
	reply := make(chan Reply, 1)
	if err := c.Send(QueryCommand{Ctx: ctx, Text: text, Reply: reply}); err != nil {
		return nil, err
	}
	r, err := c.await(ctx, reply)
	if err != nil {
		return nil, err
	}
	return r.Hits, r.Err
}

// DocCount returns the number of documents in the index.
func (c *Client) DocCount(ctx context.Context) (uint64, error) {
	reply := make(chan Reply, 1)
	if err := c.Send(CountCommand{Reply: reply}); err != nil {
		return 0, err
	}
	r, err := c.await(ctx, reply)
	if err != nil {
		return 0, err
	}
	return r.Count, r.Err
}

func (c *Client) await(ctx context.Context, reply <-chan Reply) (Reply, error) {
	select {
	case r := <-reply:
		return r, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	case <-c.done:
		// The owner answers drained commands before closing done.
		select {
		case r := <-reply:
			return r, nil
		default:
			return Reply{}, ErrClosed
		}
	}
}
