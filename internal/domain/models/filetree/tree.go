package filetree

// TreeNode is a FileNode with its ordered children attached
type TreeNode struct {
	FileNode
	Children []*TreeNode `json:"children"` // never nil
}

// BuildReport lists the data-integrity defects found while building a tree.
// None of them stop the build; they are surfaced so callers can log or alert.
type BuildReport struct {
	// Duplicates holds one id per superseded occurrence (last occurrence wins)
	Duplicates []string `json:"duplicates"`

	// SelfParents holds ids whose parent_id equals their own id
	SelfParents []string `json:"self_parents"`

	// Cycles holds each parent chain that loops back on itself, members in
	// input order. The first member was promoted to the root.
	Cycles [][]string `json:"cycles"`
}

// DuplicateCount returns the number of superseded duplicate records
func (r *BuildReport) DuplicateCount() int {
	return len(r.Duplicates)
}

// HasDefects reports whether any defect was recorded
func (r *BuildReport) HasDefects() bool {
	return len(r.Duplicates) > 0 || len(r.SelfParents) > 0 || len(r.Cycles) > 0
}

// Tree is the navigator payload: ordered roots plus the build report
type Tree struct {
	Nodes  []*TreeNode `json:"nodes"`
	Report BuildReport `json:"report"`
}

// Count returns the total number of nodes in the tree
func (t *Tree) Count() int {
	count := 0
	stack := append([]*TreeNode(nil), t.Nodes...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, node.Children...)
	}
	return count
}
