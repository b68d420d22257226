package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tormodhaugland/gsxpm/internal/appstate"
	"github.com/tormodhaugland/gsxpm/internal/profile"
	"github.com/tormodhaugland/gsxpm/internal/tree"
)

type appMode int

const (
	modeBrowse appMode = iota
	modeFilter
	modeConfirm
	modeName
	modeDelete
)

// Loader reads a forest for a pane. It is called on start, on r and on every
// change reported by the watcher.
type Loader func() ([]*tree.Node, error)

// Options configures the profile manager.
type Options struct {
	WatchedFolder string
	LoadWatched   Loader
	LoadLocal     Loader
	IncludeRoot   bool

	// State is the persisted snapshot to start from. Saver receives every change.
	State appstate.State
	Saver *appstate.Saver

	// Activate links the selected files into the GSX folder and returns a summary.
	Activate func(selected []string) (string, error)

	// Changes delivers one value per filesystem change burst.
	Changes <-chan struct{}

	// NewFolder and Delete manage the local store. parentID is the id of the
	// folder under the cursor, tree.RootID for the store itself.
	NewFolder func(parentID, name string) error
	Delete    func(id string) error
}

type changedMsg struct{}

type activatedMsg struct {
	summary string
	err     error
}

// App is the two-pane profile manager. It owns the selection and both
// expansion sets; the panes read and write them through bound bindings.
type App struct {
	opts  Options
	state appstate.State

	panes  []*pane
	active int

	mode        appMode
	filterInput textinput.Model
	nameInput   textinput.Model
	nameParent  string
	nameErr     string
	pending     *tree.Node

	width, height int
	status        string
	err           error
	quitting      bool
}

// NewApp builds the manager and loads both forests.
func NewApp(opts Options) *App {
	a := &App{opts: opts, state: opts.State}
	if a.state.SelectedFiles == nil {
		a.state.SelectedFiles = tree.IDSet{}
	}
	if a.state.ExpandedIDs == nil {
		a.state.ExpandedIDs = tree.IDSet{}
	}
	if a.state.LocalExpandedIDs == nil {
		a.state.LocalExpandedIDs = tree.IDSet{}
	}

	selection := func() *tree.Binding {
		return tree.Bound(func() tree.IDSet { return a.state.SelectedFiles }, func(ids tree.IDSet) {
			a.state.SelectedFiles = ids
			a.schedule()
		})
	}

	watched := newPane("Watched folder", &tree.Controller{
		Selection: selection(),
		Expansion: tree.Bound(func() tree.IDSet { return a.state.ExpandedIDs }, func(ids tree.IDSet) {
			a.state.ExpandedIDs = ids
			a.schedule()
		}),
		IncludeRoot: opts.IncludeRoot,
	}, 10)
	watched.empty = "No folder is being watched. Run gsxpm watch <folder>."
	if opts.WatchedFolder != "" {
		watched.empty = "No GSX profiles found in " + opts.WatchedFolder
	}

	local := newPane("Local store", &tree.Controller{
		Selection: selection(),
		Expansion: tree.Bound(func() tree.IDSet { return a.state.LocalExpandedIDs }, func(ids tree.IDSet) {
			a.state.LocalExpandedIDs = ids
			a.schedule()
		}),
		IncludeRoot: opts.IncludeRoot,
	}, 10)

	a.panes = []*pane{watched, local}
	a.filterInput = newFilterInput()
	a.nameInput = textinput.New()
	a.nameInput.Placeholder = "folder name"
	a.nameInput.CharLimit = 64
	a.nameInput.Width = 30
	a.reload()
	return a
}

// NewBrowser builds a single pane over forest whose state lives in the pane.
// With expandAll every folder starts open.
func NewBrowser(title string, forest []*tree.Node, includeRoot, expandAll bool) *App {
	a := &App{}
	var opts []tree.Option
	if expandAll {
		opts = append(opts, tree.StartExpanded())
	}
	p := newPane(title, tree.NewController(forest, includeRoot, opts...), 10)
	a.panes = []*pane{p}
	a.filterInput = newFilterInput()
	return a
}

func newFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "fuzzy filter..."
	ti.CharLimit = 100
	ti.Width = 30
	return ti
}

// State returns the manager's current snapshot. In browser mode it holds the
// pane's selection only.
func (a *App) State() appstate.State {
	if len(a.panes) == 1 {
		return appstate.State{SelectedFiles: a.panes[0].ctrl.Selected()}
	}
	st := a.state
	if a.opts.WatchedFolder != "" {
		st = st.WithFolder(a.opts.WatchedFolder)
	}
	return st
}

// TreeState returns the selection and expansion of the active pane.
func (a *App) TreeState() tree.State {
	return a.panes[a.active].ctrl.State()
}

func (a *App) schedule() {
	if a.opts.Saver == nil {
		return
	}
	if err := a.opts.Saver.Schedule(a.State()); err != nil && !errors.Is(err, appstate.ErrNotLoaded) {
		a.err = err
	}
}

func (a *App) reload() {
	a.err = nil
	loaders := []Loader{a.opts.LoadWatched, a.opts.LoadLocal}
	for i, p := range a.panes {
		if i >= len(loaders) || loaders[i] == nil {
			continue
		}
		forest, err := loaders[i]()
		if err != nil {
			a.err = err
			forest = nil
		}
		p.setForest(forest)
	}
}

func (a *App) selected() tree.IDSet {
	return a.panes[0].ctrl.Selected()
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (a *App) Init() tea.Cmd {
	return waitForChange(a.opts.Changes)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		visible := msg.Height - 10
		if visible < 5 {
			visible = 5
		}
		for _, p := range a.panes {
			p.scroller.setHeight(visible)
		}
		return a, nil

	case changedMsg:
		a.reload()
		a.status = "Refreshed after a change on disk"
		return a, waitForChange(a.opts.Changes)

	case activatedMsg:
		if msg.err != nil {
			a.err = msg.err
			a.status = ""
		} else {
			a.err = nil
			a.status = msg.summary
		}
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case modeFilter:
			return a.handleFilterKeys(msg)
		case modeConfirm:
			return a.handleConfirmKeys(msg)
		case modeName:
			return a.handleNameKeys(msg)
		case modeDelete:
			return a.handleDeleteKeys(msg)
		default:
			return a.handleBrowseKeys(msg)
		}
	}
	return a, nil
}

func (a *App) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		a.quitting = true
		return a, tea.Quit

	case "tab":
		a.active = (a.active + 1) % len(a.panes)
		return a, nil

	case "/":
		a.mode = modeFilter
		a.filterInput.SetValue(a.panes[a.active].filter)
		a.filterInput.Focus()
		return a, textinput.Blink

	case "r":
		a.reload()
		if a.err == nil {
			a.status = "Refreshed"
		}
		return a, nil

	case "a":
		if a.opts.Activate == nil {
			return a, nil
		}
		if len(a.selected()) == 0 {
			a.status = "Nothing selected"
			return a, nil
		}
		a.mode = modeConfirm
		return a, nil

	case "n":
		if !a.onLocal() || a.opts.NewFolder == nil {
			break
		}
		a.nameParent = tree.RootID
		if cur := a.panes[a.active].scroller.current(); cur != nil && (cur.IsDirectory || cur.Expandable()) {
			a.nameParent = cur.ID
		}
		a.nameErr = ""
		a.nameInput.SetValue("")
		a.nameInput.Focus()
		a.mode = modeName
		return a, textinput.Blink

	case "d":
		if !a.onLocal() || a.opts.Delete == nil {
			break
		}
		cur := a.panes[a.active].scroller.current()
		if cur == nil || cur.ID == tree.RootID {
			a.status = "The local store itself cannot be deleted"
			return a, nil
		}
		a.pending = cur
		a.mode = modeDelete
		return a, nil
	}

	if a.panes[a.active].handleKey(msg.String()) {
		// the selection is shared, so the other pane's markers may have changed
		for i, p := range a.panes {
			if i != a.active {
				p.refresh()
			}
		}
	}
	return a, nil
}

func (a *App) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := a.panes[a.active]
	switch msg.String() {
	case "esc":
		a.mode = modeBrowse
		a.filterInput.Blur()
		a.filterInput.SetValue("")
		p.setFilter("")
		return a, nil

	case "enter":
		a.mode = modeBrowse
		a.filterInput.Blur()
		return a, nil

	case "ctrl+c":
		a.quitting = true
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.filterInput, cmd = a.filterInput.Update(msg)
	if v := a.filterInput.Value(); v != p.filter {
		p.setFilter(v)
	}
	return a, cmd
}

func (a *App) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		a.mode = modeBrowse
		a.status = "Activating..."
		selected := a.selected().Strings()
		activate := a.opts.Activate
		return a, func() tea.Msg {
			summary, err := activate(selected)
			return activatedMsg{summary: summary, err: err}
		}

	case "n", "N", "esc":
		a.mode = modeBrowse
		a.status = "Activation cancelled"
		return a, nil

	case "ctrl+c":
		a.quitting = true
		return a, tea.Quit
	}
	return a, nil
}

// onLocal reports whether the local store pane has focus.
func (a *App) onLocal() bool {
	return len(a.panes) > 1 && a.active == 1
}

func (a *App) handleNameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeBrowse
		a.nameInput.Blur()
		return a, nil

	case "ctrl+c":
		a.quitting = true
		return a, tea.Quit

	case "enter":
		name := strings.TrimSpace(a.nameInput.Value())
		if name == "" {
			a.nameErr = "name is required"
			return a, nil
		}
		if err := a.opts.NewFolder(a.nameParent, name); err != nil {
			a.nameErr = err.Error()
			return a, nil
		}
		a.mode = modeBrowse
		a.nameInput.Blur()
		if a.nameParent != "" {
			a.panes[1].ctrl.Expand(a.nameParent, true)
		}
		a.reload()
		a.status = "Created " + name
		return a, nil
	}

	var cmd tea.Cmd
	a.nameInput, cmd = a.nameInput.Update(msg)
	return a, cmd
}

func (a *App) handleDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		a.mode = modeBrowse
		target := a.pending
		a.pending = nil
		if err := a.opts.Delete(target.ID); err != nil {
			a.err = err
			return a, nil
		}
		local := a.panes[1].ctrl
		local.Selection.Set(tree.DropUnder(local.Selected(), target.ID))
		local.Expansion.Set(tree.DropUnder(local.Expanded(), target.ID))
		a.reload()
		a.status = "Deleted " + target.Name
		return a, nil

	case "ctrl+c":
		a.quitting = true
		return a, tea.Quit

	default:
		a.mode = modeBrowse
		a.pending = nil
		a.status = "Delete cancelled"
		return a, nil
	}
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("GSX Profile Manager"))
	if a.opts.WatchedFolder != "" {
		b.WriteString(helpStyle.Render("  " + a.opts.WatchedFolder))
	}
	b.WriteString("\n\n")

	width := a.width
	if width <= 0 {
		width = 100
	}
	paneHeight := a.panes[0].scroller.height + 3

	if len(a.panes) == 1 {
		b.WriteString(a.panes[0].render(width-4, paneHeight, true))
	} else {
		paneWidth := width/2 - 4
		left := a.panes[0].render(paneWidth, paneHeight, a.active == 0)
		right := a.panes[1].render(paneWidth, paneHeight, a.active == 1)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	}
	b.WriteString("\n")

	if a.mode == modeFilter {
		b.WriteString("/ " + a.filterInput.View() + "\n")
	}

	b.WriteString(a.renderSelected())

	switch {
	case a.mode == modeName:
		b.WriteString(confirmStyle.Render("New folder:") + " " + a.nameInput.View() + "\n")
		if a.nameErr != "" {
			b.WriteString(errorStyle.Render("Error: "+a.nameErr) + "\n")
		}
	case a.mode == modeDelete:
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Delete %s from the local store? (y/n)", a.pending.Name)) + "\n")
	case a.mode == modeConfirm:
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Activate %d selected profile(s)? (y/n)", len(a.selected()))) + "\n")
	case a.err != nil:
		b.WriteString(errorStyle.Render("Error: "+a.err.Error()) + "\n")
	case a.status != "":
		b.WriteString(successStyle.Render(a.status) + "\n")
	}

	b.WriteString(a.renderHelp())
	return b.String()
}

// renderSelected summarizes the selection grouped by add-on folder.
func (a *App) renderSelected() string {
	groups := profile.GroupSelected(a.selected().Strings())
	if len(groups) == 0 {
		return ""
	}
	var parts []string
	for _, g := range groups {
		parts = append(parts, fmt.Sprintf("%s (%d)", g.Name, len(g.Files)))
	}
	return groupStyle.Render("Selected: "+strings.Join(parts, ", ")) + "\n"
}

func (a *App) renderHelp() string {
	toSelection := "s: to selection"
	if !a.panes[a.active].ctrl.CanExpandToSelection() {
		toSelection = disabledStyle.Render(toSelection)
	}
	items := []string{
		"j/k: move",
		"enter/l/h: expand",
		"space: select",
		"E: expand all",
		toSelection,
		"c: collapse",
		"/: filter",
	}
	if len(a.panes) > 1 {
		items = append(items, "tab: pane", "r: refresh")
	}
	if a.onLocal() && a.opts.NewFolder != nil {
		items = append(items, "n: new folder", "d: delete")
	}
	if a.opts.Activate != nil {
		items = append(items, "a: activate")
	}
	items = append(items, "q: quit")
	return helpStyle.Render(strings.Join(items, " • "))
}

// Run starts the manager and returns the final state once the user quits.
func Run(opts Options) (appstate.State, error) {
	useStderrRenderer()
	a := NewApp(opts)
	final, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return a.State(), err
	}
	return final.(*App).State(), nil
}

// RunBrowser shows forest in a single pane and returns its final tree state.
func RunBrowser(title string, forest []*tree.Node, includeRoot, expandAll bool) (tree.State, error) {
	useStderrRenderer()
	a := NewBrowser(title, forest, includeRoot, expandAll)
	final, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return a.TreeState(), err
	}
	return final.(*App).TreeState(), nil
}
