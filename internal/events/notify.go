package events

type notifyState int

const (
	stateIdle notifyState = iota
	stateNotifying
)

// notifier delivers structural change callbacks. A change made by a
// handler while a round is running is queued and delivered as another
// round once the current one finishes, instead of recursing.
type notifier struct {
	handlers map[int]func()
	order    []int
	nextID   int

	state  notifyState
	queued int
}

func (n *notifier) subscribe(fn func()) func() {
	if n.handlers == nil {
		n.handlers = make(map[int]func())
	}
	id := n.nextID
	n.nextID++
	n.handlers[id] = fn
	n.order = append(n.order, id)

	return func() {
		if _, ok := n.handlers[id]; !ok {
			return
		}
		delete(n.handlers, id)
		for i, h := range n.order {
			if h == id {
				n.order = append(n.order[:i], n.order[i+1:]...)
				break
			}
		}
	}
}

func (n *notifier) notify() {
	if n.state == stateNotifying {
		n.queued++
		return
	}

	n.state = stateNotifying
	defer func() { n.state = stateIdle }()

	for {
		ids := append([]int(nil), n.order...)
		for _, id := range ids {
			if fn, ok := n.handlers[id]; ok {
				fn()
			}
		}
		if n.queued == 0 {
			return
		}
		n.queued--
	}
}
