package export

import (
	"slices"

	"github.com/nao1215/traveller/internal/graph"
)

// DegreeStats summarizes the degrees of the nodes of one kind.
type DegreeStats struct {
	Kind   graph.Kind
	Count  int
	Min    int
	Max    int
	Mean   float64
	Median float64
}

// Statistics describes the shape of a graph.
type Statistics struct {
	Nodes int
	Edges int

	// PerKind holds one entry per node kind, in room, user, server order.
	PerKind []DegreeStats

	// Distribution maps a degree to how many nodes have it.
	Distribution map[int]int
}

// Compute derives the statistics of g.
func Compute(g *graph.Graph) Statistics {
	s := Statistics{
		Nodes:        g.NodeCount(),
		Edges:        g.EdgeCount(),
		Distribution: make(map[int]int),
	}

	byKind := map[graph.Kind][]int{}
	for i, n := range g.Nodes() {
		d := g.Degree(graph.NodeIndex(i))
		byKind[n.Kind] = append(byKind[n.Kind], d)
		s.Distribution[d]++
	}

	for _, kind := range []graph.Kind{graph.KindRoom, graph.KindUser, graph.KindServer} {
		s.PerKind = append(s.PerKind, degreeStats(kind, byKind[kind]))
	}
	return s
}

func degreeStats(kind graph.Kind, degrees []int) DegreeStats {
	ds := DegreeStats{Kind: kind, Count: len(degrees)}
	if len(degrees) == 0 {
		return ds
	}
	slices.Sort(degrees)

	sum := 0
	for _, d := range degrees {
		sum += d
	}
	ds.Min = degrees[0]
	ds.Max = degrees[len(degrees)-1]
	ds.Mean = float64(sum) / float64(len(degrees))

	mid := len(degrees) / 2
	if len(degrees)%2 == 1 {
		ds.Median = float64(degrees[mid])
	} else {
		ds.Median = float64(degrees[mid-1]+degrees[mid]) / 2
	}
	return ds
}
