package filetree

import (
	"cmp"
	"slices"

	models "zote/internal/domain/models/filetree"
)

// BuildTree converts a flat list of parent-referencing nodes into an ordered
// tree. It never fails: nodes whose parent is missing, nodes that are their
// own parent, and one member of every parent cycle are promoted to the root.
// Duplicate ids resolve to the last occurrence. Defects are listed in the
// returned report.
//
// The input is not modified and no state is shared between calls.
func BuildTree(nodes []models.FileNode) *models.Tree {
	tree := &models.Tree{
		Nodes: []*models.TreeNode{},
		Report: models.BuildReport{
			Duplicates:  []string{},
			SelfParents: []string{},
			Cycles:      [][]string{},
		},
	}
	if len(nodes) == 0 {
		return tree
	}

	// First pass: index every node, last occurrence wins
	index := make(map[string]*models.TreeNode, len(nodes))
	winner := make(map[string]int, len(nodes))
	for i := range nodes {
		id := nodes[i].ID
		if _, seen := index[id]; seen {
			tree.Report.Duplicates = append(tree.Report.Duplicates, id)
		}
		index[id] = &models.TreeNode{
			FileNode: nodes[i].Clone(),
			Children: []*models.TreeNode{},
		}
		winner[id] = i
	}

	// Winning ids in input order; this order is the sibling tie-break
	order := make([]string, 0, len(index))
	for i := range nodes {
		if winner[nodes[i].ID] == i {
			order = append(order, nodes[i].ID)
		}
	}

	// Second pass: resolve each node's effective parent (absent = root)
	parents := make(map[string]string, len(order))
	for _, id := range order {
		node := index[id]
		if node.ParentID == nil {
			continue
		}
		parentID := *node.ParentID
		if parentID == id {
			tree.Report.SelfParents = append(tree.Report.SelfParents, id)
			continue
		}
		if _, exists := index[parentID]; !exists {
			// Orphan: promoted silently
			continue
		}
		parents[id] = parentID
	}

	tree.Report.Cycles = breakCycles(order, parents)

	// Third pass: attach nodes to their parents
	for _, id := range order {
		node := index[id]
		if parentID, ok := parents[id]; ok {
			parent := index[parentID]
			parent.Children = append(parent.Children, node)
		} else {
			tree.Nodes = append(tree.Nodes, node)
		}
	}

	sortLevels(tree.Nodes)

	return tree
}

// breakCycles finds every loop in the parent mapping and removes the parent
// link of the loop member that comes first in order. Each node has at most
// one parent, so a single walk meets at most one loop.
func breakCycles(order []string, parents map[string]string) [][]string {
	const (
		unvisited = iota
		walking
		done
	)

	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	cycles := [][]string{}
	state := make(map[string]int, len(order))

	for _, start := range order {
		if state[start] != unvisited {
			continue
		}

		var path []string
		current := start
		for {
			if state[current] == done {
				break
			}
			if state[current] == walking {
				// Loop closes at current: members are the path suffix from it
				at := slices.Index(path, current)
				members := slices.Clone(path[at:])
				slices.SortFunc(members, func(a, b string) int {
					return cmp.Compare(position[a], position[b])
				})
				delete(parents, members[0])
				cycles = append(cycles, members)
				break
			}

			state[current] = walking
			path = append(path, current)

			next, ok := parents[current]
			if !ok {
				break
			}
			current = next
		}

		for _, id := range path {
			state[id] = done
		}
	}

	return cycles
}

// sortLevels stable-sorts every sibling list by ascending sort key using an
// explicit queue, so deep trees cannot exhaust the stack.
func sortLevels(roots []*models.TreeNode) {
	queue := [][]*models.TreeNode{roots}
	for len(queue) > 0 {
		level := queue[0]
		queue = queue[1:]

		slices.SortStableFunc(level, func(a, b *models.TreeNode) int {
			return cmp.Compare(a.Sort, b.Sort)
		})

		for _, node := range level {
			if len(node.Children) > 0 {
				queue = append(queue, node.Children)
			}
		}
	}
}
