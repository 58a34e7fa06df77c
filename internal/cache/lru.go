package cache

// node is an entry in the recency list. Head is most recently used.
type node[V any] struct {
	key        Key
	value      V
	prev, next *node[V]
}

type lruList[V any] struct {
	head, tail *node[V]
	len        int
}

func (l *lruList[V]) pushFront(n *node[V]) {
	n.prev, n.next = nil, l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.len++
}

func (l *lruList[V]) unlink(n *node[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}

func (l *lruList[V]) moveToFront(n *node[V]) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.pushFront(n)
}

// popBack removes the least recently used node.
func (l *lruList[V]) popBack() *node[V] {
	n := l.tail
	if n != nil {
		l.unlink(n)
	}
	return n
}
