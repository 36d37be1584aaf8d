package game

// Watch registers for snapshots published after every action, timer callback
// and tick. The channel buffers only the newest snapshot; a slow reader skips
// intermediate ones. stop unregisters and closes the channel.
func (c *Controller) Watch() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.watchMu.Lock()
	id := c.nextWatch
	c.nextWatch++
	c.watchers[id] = ch
	c.watchMu.Unlock()

	stop := func() {
		c.watchMu.Lock()
		defer c.watchMu.Unlock()
		if _, ok := c.watchers[id]; ok {
			delete(c.watchers, id)
			close(ch)
		}
	}
	return ch, stop
}

func (c *Controller) publish(snap Snapshot) {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	for _, ch := range c.watchers {
		select {
		case ch <- snap:
		default:
			// Replace the stale snapshot.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
