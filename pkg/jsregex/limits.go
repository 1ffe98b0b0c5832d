package jsregex

import (
	"errors"
	"fmt"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

var (
	ErrNilTree       = errors.New("nil tree")
	ErrTreeTooLarge  = errors.New("tree exceeds node limit")
	ErrTreeTooDeep   = errors.New("tree exceeds depth limit")
	ErrBatchTooLarge = errors.New("batch exceeds size limit")
)

// Limits bound the input an Engine accepts. Zero disables a limit.
type Limits struct {
	MaxNodes     int `json:"max_nodes" yaml:"max_nodes"`
	MaxDepth     int `json:"max_depth" yaml:"max_depth"`
	MaxBatchSize int `json:"max_batch_size" yaml:"max_batch_size"`
}

func DefaultLimits() *Limits {
	return &Limits{
		MaxNodes:     10000,
		MaxDepth:     500,
		MaxBatchSize: 256,
	}
}

// LimitError reports which limit a tree or batch violated.
type LimitError struct {
	Resource string
	Current  int
	Limit    int
	err      error
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: %s is %d, limit %d", e.err, e.Resource, e.Current, e.Limit)
}

func (e *LimitError) Unwrap() error { return e.err }

// IsLimitError reports whether err is a limit violation.
func IsLimitError(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}

func (l *Limits) checkTree(tree *syntax.Tree) error {
	if tree == nil || tree.Root == nil {
		return ErrNilTree
	}
	if l.MaxNodes > 0 {
		if n := syntax.CountNodes(tree.Root); n > l.MaxNodes {
			return &LimitError{Resource: "nodes", Current: n, Limit: l.MaxNodes, err: ErrTreeTooLarge}
		}
	}
	if l.MaxDepth > 0 {
		if d := syntax.Depth(tree.Root); d > l.MaxDepth {
			return &LimitError{Resource: "depth", Current: d, Limit: l.MaxDepth, err: ErrTreeTooDeep}
		}
	}
	return nil
}

func (l *Limits) checkBatch(size int) error {
	if l.MaxBatchSize > 0 && size > l.MaxBatchSize {
		return &LimitError{Resource: "batch", Current: size, Limit: l.MaxBatchSize, err: ErrBatchTooLarge}
	}
	return nil
}
