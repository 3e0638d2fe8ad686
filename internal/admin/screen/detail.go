package screen

// Detail shows one resolved record.
type Detail[P any] struct {
	Record  P
	history History
}

func NewDetail[P any](record P, history History) *Detail[P] {
	return &Detail[P]{Record: record, history: history}
}

func (d *Detail[P]) PreviousState() {
	d.history.Back()
}
