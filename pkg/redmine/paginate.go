package redmine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danielolaszy/redmine/pkg/models"
)

// Options controls list operations.
type Options struct {
	// Filter is appended to the request query as is, for example
	// "project_id=2&status_id=open".
	Filter string
	// All fetches every page instead of only the first.
	All bool
}

// ListCallback receives the records of a list operation. On failure items is
// empty and messages holds the transport error followed by server messages.
type ListCallback[T any] func(items []T, kind ErrorKind, messages []string)

// ItemCallback receives the record of a single-item operation. On failure the
// record is the zero value.
type ItemCallback[T any] func(item T, kind ErrorKind, messages []string)

// SuccessCallback receives the outcome of a create, update or delete. For a
// create id is the identifier assigned by the server.
type SuccessCallback func(ok bool, id models.ID, kind ErrorKind, messages []string)

// Decoder builds a record from one JSON object.
type Decoder[T any] func(Document) T

type pager[T any] struct {
	client   *Client
	ctx      context.Context
	resource string
	filter   string
	all      bool
	limit    int
	decode   Decoder[T]
	keep     func(T) bool
	callback ListCallback[T]

	items  []T
	offset int
}

// FetchMany lists resource page by page, decoding every element of the
// response's top-level arrays. Unless opts.All is set only the first page is
// requested. The next page is requested when a page comes back full.
func FetchMany[T any](ctx context.Context, c *Client, resource string, opts Options, decode Decoder[T], callback ListCallback[T]) error {
	return fetchMany(ctx, c, resource, opts.Filter, opts.All, decode, nil, callback)
}

func fetchMany[T any](ctx context.Context, c *Client, resource, filter string, all bool, decode Decoder[T], keep func(T) bool, callback ListCallback[T]) error {
	if callback == nil {
		return ErrNoHandler
	}
	p := &pager[T]{
		client:   c,
		ctx:      ctx,
		resource: resource,
		filter:   filter,
		all:      all,
		limit:    c.snapshot().pageLimit,
		decode:   decode,
		keep:     keep,
		callback: callback,
		items:    make([]T, 0),
	}
	return p.request()
}

func (p *pager[T]) query() string {
	return joinQuery(p.filter, fmt.Sprintf("offset=%d&limit=%d", p.offset, p.limit))
}

func (p *pager[T]) request() error {
	_, err := p.client.Send(p.ctx, p.resource, p.handle, ModeRead, p.query(), nil)
	return err
}

func (p *pager[T]) handle(reply *Reply, doc Document) {
	if reply.Failed() {
		p.callback(make([]T, 0), kindOf(reply), errorMessages(reply, doc))
		return
	}

	count := 0
	doc.EachCollectionItem(func(item Document) {
		count++
		v := p.decode(item)
		if p.keep == nil || p.keep(v) {
			p.items = append(p.items, v)
		}
	})
	p.offset += count
	// The server may cap the page below what was asked for.
	if echoed := doc.Int("limit"); echoed > 0 && echoed < p.limit {
		p.limit = echoed
	}

	if p.all && count == p.limit {
		if err := p.request(); err != nil {
			p.callback(make([]T, 0), ErrNetwork, []string{err.Error()})
		}
		return
	}
	p.callback(p.items, NoError, nil)
}

// FetchOne reads a single record. The record is decoded from the member
// named key, e.g. "issue" for issues/1.json.
func FetchOne[T any](ctx context.Context, c *Client, resource, key, query string, decode Decoder[T], callback ItemCallback[T]) error {
	if callback == nil {
		return ErrNoHandler
	}
	_, err := c.Send(ctx, resource, func(reply *Reply, doc Document) {
		if reply.Failed() {
			var zero T
			callback(zero, kindOf(reply), errorMessages(reply, doc))
			return
		}
		callback(decode(doc.Get(key)), NoError, nil)
	}, ModeRead, query, nil)
	return err
}

// submit creates the record when id is unset and updates it otherwise.
// Creates go to createPath, updates to updatePath/<id>.
func (c *Client) submit(ctx context.Context, createPath, updatePath string, id models.ID, key string, payload any, callback SuccessCallback) error {
	body, err := json.Marshal(map[string]any{key: payload})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	resource, mode := createPath, ModeCreate
	if id.IsSet() {
		resource, mode = updatePath+"/"+id.String(), ModeUpdate
	}

	var handler ResponseHandler
	if callback != nil {
		handler = func(reply *Reply, doc Document) {
			if reply.Failed() {
				callback(false, models.ID{}, kindOf(reply), errorMessages(reply, doc))
				return
			}
			if mode == ModeUpdate {
				callback(true, id, NoError, nil)
				return
			}
			newID := doc.Get(key).ID("id")
			if !newID.IsSet() {
				callback(false, models.ID{}, ErrNotSaved, doc.Errors())
				return
			}
			callback(true, newID, NoError, nil)
		}
	}

	_, err = c.Send(ctx, resource, handler, mode, "", body)
	return err
}

// remove deletes resource/<id>.
func (c *Client) remove(ctx context.Context, resource string, id models.ID, callback SuccessCallback) error {
	if !id.IsSet() {
		reject(callback, ErrIncompleteData, "missing id")
		return nil
	}

	var handler ResponseHandler
	if callback != nil {
		handler = func(reply *Reply, doc Document) {
			if reply.Failed() {
				callback(false, id, kindOf(reply), errorMessages(reply, doc))
				return
			}
			callback(true, id, NoError, nil)
		}
	}

	_, err := c.Send(ctx, resource+"/"+id.String(), handler, ModeDelete, "", nil)
	return err
}

// reject reports a failed precondition without touching the network.
func reject(callback SuccessCallback, kind ErrorKind, messages ...string) {
	if callback != nil {
		callback(false, models.ID{}, kind, messages)
	}
}

// joinQuery joins non-empty query fragments with "&".
func joinQuery(parts ...string) string {
	var out []string
	for _, part := range parts {
		part = strings.Trim(part, "?&")
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, "&")
}
