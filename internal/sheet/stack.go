package sheet

// Stack is the ordered set of open sheets, most recently pushed first.
// Replay looks sheets up by name through this catalog.
type Stack struct {
	sheets []*Sheet
}

// NewStack returns an empty stack.
func NewStack() *Stack { return &Stack{} }

// Push puts the sheet on top of the stack. A sheet already present is
// moved to the top rather than duplicated.
func (st *Stack) Push(s *Sheet) {
	if s == nil {
		return
	}
	st.Remove(s)
	st.sheets = append([]*Sheet{s}, st.sheets...)
}

// Remove takes the sheet out of the stack if present.
func (st *Stack) Remove(s *Sheet) {
	for i, cur := range st.sheets {
		if cur == s {
			st.sheets = append(st.sheets[:i], st.sheets[i+1:]...)
			return
		}
	}
}

// Top returns the topmost sheet, or nil if the stack is empty.
func (st *Stack) Top() *Sheet {
	if len(st.sheets) == 0 {
		return nil
	}
	return st.sheets[0]
}

// Get returns the first sheet with the given name, or nil.
func (st *Stack) Get(name string) *Sheet {
	for _, s := range st.sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// All returns the sheets in stack order.
func (st *Stack) All() []*Sheet { return st.sheets }

// Len returns the number of open sheets.
func (st *Stack) Len() int { return len(st.sheets) }
