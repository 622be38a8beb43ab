// Package depgraph assembles inferred and explicit dependencies into a
// directed graph of addresses.
package depgraph

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/protobuf"
	"github.com/stackb/thrift-deps/pkg/resolver"
	"github.com/stackb/thrift-deps/pkg/snapshot"
)

// EdgeKind distinguishes where an edge came from.
type EdgeKind string

const (
	// Inferred edges come from include statements.
	Inferred EdgeKind = "inferred"
	// Explicit edges come from the dependencies field.
	Explicit EdgeKind = "explicit"
	// Generated edges link a generator to the file targets it expands into.
	Generated EdgeKind = "generated"
)

const kindAttribute = "kind"

// Graph is a directed graph over address strings.  An edge from a to b means
// a depends on b.
type Graph struct {
	g         graph.Graph[string, string]
	addresses map[string]address.Address
}

// New constructs an empty Graph.
func New() *Graph {
	return &Graph{
		g:         graph.New(graph.StringHash, graph.Directed()),
		addresses: make(map[string]address.Address),
	}
}

// Build creates the graph of the snapshot given the results of
// infer.Engine.All.
func Build(snap *snapshot.Snapshot, results map[address.Address]*resolver.InferResult) (*Graph, error) {
	g := New()

	for _, gen := range snap.Generators() {
		if err := g.AddNode(gen.Address); err != nil {
			return nil, err
		}
	}
	for _, t := range snap.Targets() {
		if err := g.AddNode(t.Address); err != nil {
			return nil, err
		}
		if t.Address.IsFileTarget() {
			if err := g.AddEdge(t.Address.Generator(), t.Address, Generated); err != nil {
				return nil, err
			}
		}
		explicit, err := snap.ExplicitDependencies(t)
		if err != nil {
			return nil, err
		}
		for _, dep := range explicit.IncludeList() {
			if err := g.AddEdge(t.Address, dep, Explicit); err != nil {
				return nil, err
			}
		}
	}

	froms := make([]address.Address, 0, len(results))
	for from := range results {
		froms = append(froms, from)
	}
	resolver.SortAddresses(froms)
	for _, from := range froms {
		for _, dep := range results[from].Dependencies {
			if err := g.AddEdge(from, dep, Inferred); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}

// AddNode adds the address if not already present.
func (g *Graph) AddNode(addr address.Address) error {
	key := addr.String()
	if err := g.g.AddVertex(key); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return fmt.Errorf("adding %s: %w", key, err)
	}
	g.addresses[key] = addr
	return nil
}

// AddEdge records that from depends on to.  Self edges are ignored.  When an
// edge is added twice the first kind wins.
func (g *Graph) AddEdge(from, to address.Address, kind EdgeKind) error {
	if from == to {
		return nil
	}
	if err := g.AddNode(from); err != nil {
		return err
	}
	if err := g.AddNode(to); err != nil {
		return err
	}
	err := g.g.AddEdge(from.String(), to.String(), graph.EdgeAttribute(kindAttribute, string(kind)))
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return fmt.Errorf("adding %s -> %s: %w", from, to, err)
	}
	return nil
}

// Nodes returns all addresses, sorted.
func (g *Graph) Nodes() []address.Address {
	nodes := make([]address.Address, 0, len(g.addresses))
	for _, addr := range g.addresses {
		nodes = append(nodes, addr)
	}
	resolver.SortAddresses(nodes)
	return nodes
}

// Edge is a dependency of From on To.
type Edge struct {
	From address.Address
	To   address.Address
	Kind EdgeKind
}

// Edges returns all edges sorted by From, then To.
func (g *Graph) Edges() ([]Edge, error) {
	edges, err := g.g.Edges()
	if err != nil {
		return nil, err
	}
	result := make([]Edge, len(edges))
	for i, e := range edges {
		result[i] = Edge{
			From: g.addresses[e.Source],
			To:   g.addresses[e.Target],
			Kind: EdgeKind(e.Properties.Attributes[kindAttribute]),
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.From != b.From {
			return address.Less(a.From, b.From)
		}
		return address.Less(a.To, b.To)
	})
	return result, nil
}

// Dependencies returns the direct dependencies of addr, sorted.
func (g *Graph) Dependencies(addr address.Address) ([]address.Address, error) {
	adjacency, err := g.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	targets, ok := adjacency[addr.String()]
	if !ok {
		return nil, fmt.Errorf("%s: %w", addr, graph.ErrVertexNotFound)
	}
	deps := make([]address.Address, 0, len(targets))
	for key := range targets {
		deps = append(deps, g.addresses[key])
	}
	resolver.SortAddresses(deps)
	return deps, nil
}

// Cycles returns the strongly connected components with more than one member,
// each sorted, ordered by their first member.
func (g *Graph) Cycles() ([][]address.Address, error) {
	components, err := graph.StronglyConnectedComponents(g.g)
	if err != nil {
		return nil, err
	}
	var cycles [][]address.Address
	for _, component := range components {
		if len(component) < 2 {
			continue
		}
		cycle := make([]address.Address, len(component))
		for i, key := range component {
			cycle[i] = g.addresses[key]
		}
		resolver.SortAddresses(cycle)
		cycles = append(cycles, cycle)
	}
	sort.Slice(cycles, func(i, j int) bool {
		return address.Less(cycles[i][0], cycles[j][0])
	})
	return cycles, nil
}

// TopologicalOrder lists dependencies before their dependents, breaking ties
// by address.  It fails if the graph has a cycle.
func (g *Graph) TopologicalOrder() ([]address.Address, error) {
	keys, err := graph.StableTopologicalSort(g.g, func(a, b string) bool {
		return a < b
	})
	if err != nil {
		return nil, err
	}
	order := make([]address.Address, len(keys))
	for i, key := range keys {
		order[len(keys)-1-i] = g.addresses[key]
	}
	return order, nil
}

// WriteDOT renders the graph in graphviz format.
func (g *Graph) WriteDOT(w io.Writer) error {
	return draw.DOT(g.g, w, draw.GraphAttribute("rankdir", "LR"))
}

// Struct encodes the graph as {nodes: [addr...], edges: [{from, to, kind}...]}.
func (g *Graph) Struct() (*structpb.Struct, error) {
	nodes := g.Nodes()
	nodeList := make([]interface{}, len(nodes))
	for i, n := range nodes {
		nodeList[i] = n.String()
	}
	edges, err := g.Edges()
	if err != nil {
		return nil, err
	}
	edgeList := make([]interface{}, len(edges))
	for i, e := range edges {
		edgeList[i] = map[string]interface{}{
			"from": e.From.String(),
			"to":   e.To.String(),
			"kind": string(e.Kind),
		}
	}
	return structpb.NewStruct(map[string]interface{}{
		"nodes": nodeList,
		"edges": edgeList,
	})
}

// WriteJSON renders the graph as indented JSON.
func (g *Graph) WriteJSON(w io.Writer) error {
	s, err := g.Struct()
	if err != nil {
		return err
	}
	return protobuf.WriteStableJSON(w, s)
}

// WriteLabels writes one line per node in topological order: the bazel label
// of the node followed by the labels of its dependencies.
func (g *Graph) WriteLabels(w io.Writer) error {
	order, err := g.TopologicalOrder()
	if err != nil {
		order = g.Nodes()
	}
	for _, addr := range order {
		deps, err := g.Dependencies(addr)
		if err != nil {
			return err
		}
		line := addr.Label().String()
		for _, dep := range deps {
			line += " " + dep.Label().String()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
