// Package connectortest provides an in-memory coreinterfaces.Connector for
// tests.
package connectortest

import (
	"context"
	"fmt"
	"sync"

	"github.com/pingcap-inc/sql2dw/pkg/coreinterfaces"
	"github.com/pingcap-inc/sql2dw/pkg/jobconfig"
	"google.golang.org/api/iterator"
)

// Submission records one call to Submit.
type Submission struct {
	Query  string
	Config *jobconfig.JobConfig
}

// Result scripts the answer to a submission.
type Result struct {
	// SubmitErr fails Submit itself.
	SubmitErr error
	// JobErr is reported through QueryJob.ErrorResult.
	JobErr error
	// ReadErr fails QueryJob.Read.
	ReadErr error
	Rows    []coreinterfaces.Row
}

// Connector answers submissions from a script keyed by query text. Queries
// without a scripted result succeed with no rows.
type Connector struct {
	mu          sync.Mutex
	results     map[string]Result
	submissions []Submission
	closed      bool
}

func NewConnector() *Connector {
	return &Connector{results: make(map[string]Result)}
}

// On scripts the result for query.
func (c *Connector) On(query string, r Result) *Connector {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[query] = r
	return c
}

func (c *Connector) Name() string {
	return "Fake"
}

func (c *Connector) Submit(_ context.Context, query string, cfg *jobconfig.JobConfig) (coreinterfaces.QueryJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submissions = append(c.submissions, Submission{Query: query, Config: cfg})
	r := c.results[query]
	if r.SubmitErr != nil {
		return nil, r.SubmitErr
	}
	return &job{id: fmt.Sprintf("job_%d", len(c.submissions)), result: r}, nil
}

func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Submissions returns every submission in order.
func (c *Connector) Submissions() []Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Submission(nil), c.submissions...)
}

func (c *Connector) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type job struct {
	id     string
	result Result
}

func (j *job) ID() string {
	return j.id
}

func (j *job) ErrorResult() error {
	return j.result.JobErr
}

func (j *job) Read(context.Context) (coreinterfaces.RowIterator, error) {
	if j.result.ReadErr != nil {
		return nil, j.result.ReadErr
	}
	return &RowIterator{Rows: j.result.Rows}, nil
}

// RowIterator iterates over a fixed slice of rows.
type RowIterator struct {
	Rows []coreinterfaces.Row
	pos  int
}

func (it *RowIterator) Next() (coreinterfaces.Row, error) {
	if it.pos >= len(it.Rows) {
		return nil, iterator.Done
	}
	row := it.Rows[it.pos]
	it.pos++
	return row, nil
}
