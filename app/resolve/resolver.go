package resolve

import (
	"errors"
	"fmt"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/lysyi3m/rss-canon/app/xmlns"
)

var ErrInvalidQuery = errors.New("invalid query")

// Resolver evaluates ordered candidate paths against ordered roots.
// Compiled expressions are shared, so one Resolver can serve many feeds.
type Resolver struct {
	namespaces map[string]string

	mu       sync.RWMutex
	compiled map[string]*xpath.Expr
}

func NewResolver(registry *xmlns.Registry) *Resolver {
	return &Resolver{
		namespaces: registry.Map(),
		compiled:   make(map[string]*xpath.Expr),
	}
}

// First returns the first node matched by any path. Roots are tried in
// order and every path is tried against a root before moving to the next
// one. A nil node with a nil error means nothing matched.
func (r *Resolver) First(roots []*xmlquery.Node, paths []string) (*xmlquery.Node, error) {
	roots, paths, err := r.prepare(roots, paths)
	if err != nil {
		return nil, err
	}

	for _, root := range roots {
		for _, path := range paths {
			expr, err := r.compile(path)
			if err != nil {
				return nil, err
			}
			if node := xmlquery.QuerySelector(root, expr); node != nil {
				return node, nil
			}
		}
	}

	return nil, nil
}

// All returns every match of every (root, path) pair, root-major, keeping
// document order within each pair.
func (r *Resolver) All(roots []*xmlquery.Node, paths []string) ([]*xmlquery.Node, error) {
	roots, paths, err := r.prepare(roots, paths)
	if err != nil {
		return nil, err
	}

	var results []*xmlquery.Node
	for _, root := range roots {
		for _, path := range paths {
			expr, err := r.compile(path)
			if err != nil {
				return nil, err
			}
			results = append(results, xmlquery.QuerySelectorAll(root, expr)...)
		}
	}

	return results, nil
}

// FirstText is First projected to the matched node's text content.
func (r *Resolver) FirstText(roots []*xmlquery.Node, paths []string) (string, bool, error) {
	node, err := r.First(roots, paths)
	if err != nil || node == nil {
		return "", false, err
	}
	return node.InnerText(), true, nil
}

// AllText is All projected to text content.
func (r *Resolver) AllText(roots []*xmlquery.Node, paths []string) ([]string, error) {
	nodes, err := r.All(roots, paths)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(nodes))
	for _, node := range nodes {
		values = append(values, node.InnerText())
	}
	return values, nil
}

func (r *Resolver) prepare(roots []*xmlquery.Node, paths []string) ([]*xmlquery.Node, []string, error) {
	filteredRoots := make([]*xmlquery.Node, 0, len(roots))
	seen := make(map[*xmlquery.Node]bool, len(roots))
	for _, root := range roots {
		if root == nil || seen[root] {
			continue
		}
		seen[root] = true
		filteredRoots = append(filteredRoots, root)
	}

	filteredPaths := make([]string, 0, len(paths))
	for _, path := range paths {
		if path != "" {
			filteredPaths = append(filteredPaths, path)
		}
	}

	if len(filteredRoots) == 0 && len(filteredPaths) == 0 {
		return nil, nil, fmt.Errorf("%w: no roots and no paths", ErrInvalidQuery)
	}

	return filteredRoots, filteredPaths, nil
}

func (r *Resolver) compile(path string) (*xpath.Expr, error) {
	r.mu.RLock()
	expr, ok := r.compiled[path]
	r.mu.RUnlock()
	if ok {
		return expr, nil
	}

	expr, err := xpath.CompileWithNS(path, r.namespaces)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidQuery, path, err)
	}

	r.mu.Lock()
	r.compiled[path] = expr
	r.mu.Unlock()

	return expr, nil
}
