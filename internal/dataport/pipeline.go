package dataport

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// EntityHandler upserts the records of one entity type.
type EntityHandler interface {
	Name() string
	Dependencies() []string
	Upsert(ctx context.Context, record json.RawMessage) (Outcome, error)
	// AfterImport runs once after a batch that inserted rows.
	AfterImport(ctx context.Context) error
}

// Pipeline runs handlers in dependency order.
type Pipeline struct {
	order []EntityHandler
	index map[string]EntityHandler
}

// NewPipeline orders handlers with Kahn's algorithm. Among handlers that are
// ready at the same time the one registered first wins. Unknown dependencies
// and cycles are errors.
func NewPipeline(handlers ...EntityHandler) (*Pipeline, error) {
	index := make(map[string]EntityHandler, len(handlers))
	position := make(map[string]int, len(handlers))
	for i, h := range handlers {
		if _, dup := index[h.Name()]; dup {
			return nil, fmt.Errorf("dataport: duplicate handler %q", h.Name())
		}
		index[h.Name()] = h
		position[h.Name()] = i
	}

	indegree := make(map[string]int, len(handlers))
	dependents := make(map[string][]string, len(handlers))
	for _, h := range handlers {
		for _, dep := range h.Dependencies() {
			if _, ok := index[dep]; !ok {
				return nil, fmt.Errorf("dataport: %q depends on unknown entity %q", h.Name(), dep)
			}
			indegree[h.Name()]++
			dependents[dep] = append(dependents[dep], h.Name())
		}
	}

	done := make(map[string]bool, len(handlers))
	order := make([]EntityHandler, 0, len(handlers))
	for len(order) < len(handlers) {
		next := -1
		for i, h := range handlers {
			if !done[h.Name()] && indegree[h.Name()] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for _, h := range handlers {
				if !done[h.Name()] {
					stuck = append(stuck, h.Name())
				}
			}
			return nil, fmt.Errorf("dataport: dependency cycle among %s", strings.Join(stuck, ", "))
		}

		h := handlers[next]
		done[h.Name()] = true
		order = append(order, h)
		for _, d := range dependents[h.Name()] {
			indegree[d]--
		}
	}

	return &Pipeline{order: order, index: index}, nil
}

// Order returns entity names in execution order.
func (p *Pipeline) Order() []string {
	names := make([]string, len(p.order))
	for i, h := range p.order {
		names[i] = h.Name()
	}
	return names
}

// Run upserts every record. Record and finalize failures are collected in the
// result and never stop the batch, since earlier records are already committed.
func (p *Pipeline) Run(ctx context.Context, data ImportData) (*Result, error) {
	result := newResult()

	var unknown []string
	for name := range data {
		if _, ok := p.index[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: unknown entity ignored", name))
	}

	for _, h := range p.order {
		records, ok := data[h.Name()]
		if !ok {
			continue
		}
		entity := &EntityResult{}
		result.Entities[h.Name()] = entity

		for i, record := range records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcome, err := h.Upsert(ctx, record)
			if err != nil {
				entity.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("%s[%d]: %v", h.Name(), i, err))
				continue
			}
			switch outcome {
			case OutcomeImported:
				entity.Imported++
			case OutcomeUpdated:
				entity.Updated++
			}
		}

		if entity.Imported > 0 {
			if err := h.AfterImport(ctx); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: finalize: %v", h.Name(), err))
			}
		}

		result.Imported += entity.Imported
		result.Updated += entity.Updated
		result.Skipped += entity.Skipped
	}

	return result, nil
}
