package tree

// State is the selection and expansion of one tree instance.
type State struct {
	Selected IDSet `json:"selected" yaml:"selected"`
	Expanded IDSet `json:"expanded" yaml:"expanded"`
}

// Binding holds one half of a tree's state (selection or expansion).
//
// An owned binding keeps its own copy and updates it on Set. A bound binding
// reads from its parent on every Get and only reports changes through the
// callback, leaving the parent to decide whether to apply them.
type Binding struct {
	local    IDSet
	get      func() IDSet
	onChange func(IDSet)
}

// Owned returns a binding that owns its state, starting from initial.
func Owned(initial IDSet) *Binding {
	return &Binding{local: NewIDSet(initial...)}
}

// Bound returns a binding whose state lives in a parent.
func Bound(get func() IDSet, onChange func(IDSet)) *Binding {
	return &Binding{get: get, onChange: onChange}
}

// Observe registers a change callback on an owned binding. Bound bindings
// already report through their constructor callback.
func (b *Binding) Observe(fn func(IDSet)) *Binding {
	if b.get == nil {
		b.onChange = fn
	}
	return b
}

// Controlled reports whether the binding forwards to a parent.
func (b *Binding) Controlled() bool {
	return b.get != nil
}

// Get returns the current ids.
func (b *Binding) Get() IDSet {
	if b.get != nil {
		return b.get()
	}
	return b.local
}

// Set applies ids: stored locally when owned, forwarded when bound.
func (b *Binding) Set(ids IDSet) {
	if b.get == nil {
		b.local = ids
	}
	if b.onChange != nil {
		b.onChange(ids)
	}
}

// Controller runs the engine operations against a forest through two bindings.
// The same operations serve owned and bound state, so a view behaves the same
// whether it manages its own state or a parent does.
type Controller struct {
	Forest      []*Node
	Selection   *Binding
	Expansion   *Binding
	IncludeRoot bool
}

// Option configures a controller built by NewController.
type Option func(*Controller)

// StartExpanded opens every expandable node once, at construction. Nodes can
// still be closed afterwards.
func StartExpanded() Option {
	return func(c *Controller) {
		c.Expansion = Owned(ExpandAllIDs(c.Forest))
	}
}

// NewController returns a controller with owned selection and expansion.
func NewController(forest []*Node, includeRoot bool, opts ...Option) *Controller {
	c := &Controller{
		Forest:      forest,
		Selection:   Owned(nil),
		Expansion:   Owned(nil),
		IncludeRoot: includeRoot,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the effective selection and expansion.
func (c *Controller) State() State {
	return State{Selected: c.Selected(), Expanded: c.Expanded()}
}

// Selected returns the effective selection.
func (c *Controller) Selected() IDSet {
	return c.Selection.Get()
}

// Expanded returns the effective expansion.
func (c *Controller) Expanded() IDSet {
	return c.Expansion.Get()
}

// Select toggles the selection of item. A nil item is ignored.
func (c *Controller) Select(item *Node) {
	if item == nil {
		return
	}
	c.Selection.Set(ToggleSelect(item, c.Selection.Get()))
}

// Expand opens or closes a single node.
func (c *Controller) Expand(id string, open bool) {
	c.Expansion.Set(ToggleExpand(id, open, c.Expanded()))
}

// Activate applies the usual click convention: folders toggle expansion and
// everything else toggles selection.
func (c *Controller) Activate(item *Node) {
	if item == nil {
		return
	}
	if item.Expandable() || item.IsDirectory {
		c.Expand(item.ID, !c.Expanded().Contains(item.ID))
		return
	}
	c.Select(item)
}

// ToggleAll expands every folder, or collapses everything if all are open.
func (c *Controller) ToggleAll() {
	c.Expansion.Set(ToggleExpandAll(c.Forest, c.Expanded(), c.IncludeRoot))
}

// ExpandToSelection opens the folders leading to every selected node.
func (c *Controller) ExpandToSelection() {
	selected := c.Selected()
	if len(selected) == 0 {
		return
	}
	c.Expansion.Set(ExpandToSelected(c.Forest, selected, c.Expanded(), c.IncludeRoot))
}

// CanExpandToSelection reports whether ExpandToSelection would change anything visible.
func (c *Controller) CanExpandToSelection() bool {
	return !AreAllSelectedPathsExpanded(c.Forest, c.Selected(), c.Expanded())
}

// CollapseAll closes every node.
func (c *Controller) CollapseAll() {
	c.Expansion.Set(CollapseAll())
}

// Rows returns the visible rows under the current state.
func (c *Controller) Rows() []Row {
	return Flatten(c.Forest, c.State())
}
