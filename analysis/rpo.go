package analysis

import "github.com/TheJackiMonster/shady/ir"

// ReversePostorder returns g's nodes in reverse postorder from g.Entry, the
// traversal order the Cooper/Harvey/Kennedy dominance algorithm requires for
// fast convergence.
func ReversePostorder(g *CFG) []ir.AbstractionRef {
	visited := make(map[ir.AbstractionRef]bool, len(g.Nodes))
	var post []ir.AbstractionRef
	var visit func(n ir.AbstractionRef)
	visit = func(n ir.AbstractionRef) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, e := range g.Succs[n] {
			visit(e.To)
		}
		post = append(post, n)
	}
	visit(g.Entry)
	// reverse post in place
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}
