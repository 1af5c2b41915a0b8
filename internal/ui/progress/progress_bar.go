// Package progress reports batch progress on the terminal: an animated
// bar when stderr is a terminal, plain lines otherwise.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-isatty"

	"github.com/phlp/studeval/internal/ui/styles"
)

// Reporter receives progress updates for a batch of known size.
type Reporter interface {
	Start()
	// Update reports that done of total items are finished; message
	// describes the item just finished.
	Update(done, total int, message string)
	Stop()
}

// New returns a bar on terminals and a line reporter everywhere else.
// onInterrupt, if non-nil, is called when the user presses ctrl+c while
// the bar is shown.
func New(out *os.File, title string, onInterrupt func()) Reporter {
	if isTerminal(out) {
		pb := NewProgressBar(out, title)
		pb.OnInterrupt = onInterrupt
		return pb
	}
	return NewLines(out, title)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// progressUpdate is sent to update the progress bar
type progressUpdate struct {
	done, total int
	message     string
}

// ProgressBar wraps a Bubbletea progress bar for non-interactive use.
type ProgressBar struct {
	// OnInterrupt is called when ctrl+c is pressed while the bar owns the
	// terminal.
	OnInterrupt func()

	out       io.Writer
	title     string
	program   *tea.Program
	updateCh  chan progressUpdate
	finished  chan struct{}
	mu        sync.Mutex
	isRunning bool
	last      progressUpdate
}

// progressBarModel is the internal Bubbletea model
type progressBarModel struct {
	progress    progress.Model
	title       string
	state       progressUpdate
	updateCh    chan progressUpdate
	onInterrupt func()
}

func (m progressBarModel) Init() tea.Cmd {
	return m.waitForUpdate()
}

func (m progressBarModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updateCh
		if !ok {
			return tea.Quit()
		}
		return update
	}
}

func (m progressBarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressUpdate:
		m.state = msg
		return m, m.waitForUpdate()
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" && m.onInterrupt != nil {
			m.onInterrupt()
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}
}

func (m progressBarModel) View() tea.View {
	return tea.NewView(m.render())
}

// render formats: [████████░░░░░░░░] 2/5 Preparing (003)
func (m progressBarModel) render() string {
	percent := 0.0
	if m.state.total > 0 {
		percent = float64(m.state.done) / float64(m.state.total)
	}
	line := fmt.Sprintf("%s %d/%d %s", m.progress.ViewAs(percent), m.state.done, m.state.total, m.title)
	if m.state.message != "" {
		line += " " + styles.MutedStyle.Render("("+m.state.message+")")
	}
	return line
}

// NewProgressBar creates a progress bar writing to out.
func NewProgressBar(out io.Writer, title string) *ProgressBar {
	return &ProgressBar{
		out:      out,
		title:    title,
		updateCh: make(chan progressUpdate, 10),
		finished: make(chan struct{}),
	}
}

// Start begins the progress bar display.
func (p *ProgressBar) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return
	}

	model := progressBarModel{
		progress: progress.New(
			progress.WithWidth(30),
			progress.WithoutPercentage(),
			progress.WithColors(styles.Primary, styles.Accent),
		),
		title:       p.title,
		state:       p.last,
		updateCh:    p.updateCh,
		onInterrupt: p.OnInterrupt,
	}

	p.program = tea.NewProgram(model, tea.WithoutSignalHandler(), tea.WithOutput(p.out))
	p.isRunning = true

	go func() {
		_, _ = p.program.Run()
		close(p.finished)
	}()
}

// Update sends a new state to the bar. Updates are dropped while the
// channel is full; the next one catches up.
func (p *ProgressBar) Update(done, total int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	u := progressUpdate{done: done, total: total, message: message}
	p.last = u
	if !p.isRunning {
		return
	}
	select {
	case p.updateCh <- u:
	default:
	}
}

// Stop stops the progress bar and clears the line.
func (p *ProgressBar) Stop() {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = false
	close(p.updateCh)
	p.mu.Unlock()

	if p.program != nil {
		p.program.Quit()
	}

	select {
	case <-p.finished:
	case <-time.After(500 * time.Millisecond):
	}

	fmt.Fprint(p.out, "\r\033[K")
}

// Lines reports progress as one line per update, for logs and pipes.
type Lines struct {
	mu    sync.Mutex
	out   io.Writer
	title string
}

// NewLines creates a line reporter writing to out.
func NewLines(out io.Writer, title string) *Lines {
	return &Lines{out: out, title: title}
}

// Start is a no-op.
func (l *Lines) Start() {}

// Update writes "[done/total] title: message".
func (l *Lines) Update(done, total int, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("[%d/%d] %s", done, total, l.title)
	if message != "" {
		line += ": " + message
	}
	fmt.Fprintln(l.out, line)
}

// Stop is a no-op.
func (l *Lines) Stop() {}
