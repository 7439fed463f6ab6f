package main

// AlertQueue is the modal notification surface. Alerts are shown one at a
// time and block other input until acknowledged.
type AlertQueue struct {
	msgs []string
}

// Alert queues a message.
func (q *AlertQueue) Alert(msg string) {
	q.msgs = append(q.msgs, msg)
}

// Active reports whether an alert is waiting for acknowledgement.
func (q *AlertQueue) Active() bool { return len(q.msgs) > 0 }

// Current returns the alert on screen, or "" when there is none.
func (q *AlertQueue) Current() string {
	if len(q.msgs) == 0 {
		return ""
	}
	return q.msgs[0]
}

// Ack dismisses the current alert.
func (q *AlertQueue) Ack() {
	if len(q.msgs) > 0 {
		q.msgs = q.msgs[1:]
	}
}

// Len returns the number of pending alerts.
func (q *AlertQueue) Len() int { return len(q.msgs) }
