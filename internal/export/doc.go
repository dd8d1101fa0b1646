// Package export writes a crawl graph to disk.
//
// Every crawl gets its own directory named after the UTC start time of the
// crawl, so runs never overwrite each other. The directory holds the same
// graph in several formats:
//   - graph.json: the lossless snapshot, readable with graph.FromSnapshot
//   - graph.graphml: GraphML with kind and label data per node
//   - graph.dot: an undirected Graphviz graph with labeled nodes
//   - summary.md: node, edge and degree statistics
//   - graph.svg: optional circo layout of graph.dot
//
// Only anonymized graphs are meant to be exported. The package does not check
// that, it writes whatever graph it is given.
package export
