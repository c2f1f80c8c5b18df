package catalog

import "fmt"

// SlotReferenceError reports a template that reads a field it did not declare,
// or declares a slot the machine does not know.
type SlotReferenceError struct {
	Template string
	Slot     string
	Reason   string
}

func (e *SlotReferenceError) Error() string {
	return fmt.Sprintf("template %q: %s %q", e.Template, e.Reason, e.Slot)
}
