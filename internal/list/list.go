package list

import "iter"

// Node holds one value and owns at most one successor.
type Node struct {
	value int32
	next  *Node
}

// Value returns the value stored in the node.
func (n *Node) Value() int32 { return n.value }

// Next returns the successor, or nil at the tail.
func (n *Node) Next() *Node { return n.next }

// List is a singly linked list that only grows at the front.
// The zero value is an empty list.
type List struct {
	head *Node
	size int
}

// New returns an empty list.
func New() *List {
	return &List{}
}

// Push inserts value at the front. The new node takes over the previous
// head chain as its successor.
func (l *List) Push(value int32) {
	l.head = &Node{
		value: value,
		next:  l.head,
	}
	l.size++
}

// Head returns the first node, or nil for an empty list.
func (l *List) Head() *Node { return l.head }

func (l *List) Len() int { return l.size }

// All yields values from head to tail.
func (l *List) All() iter.Seq[int32] {
	return func(yield func(int32) bool) {
		for n := l.head; n != nil; n = n.next {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Values returns a head-to-tail copy of the list contents.
func (l *List) Values() []int32 {
	values := make([]int32, 0, l.size)
	for v := range l.All() {
		values = append(values, v)
	}
	return values
}
