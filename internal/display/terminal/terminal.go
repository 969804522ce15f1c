// Package terminal draws the clock face as seven-segment glyphs in a
// bubbletea program.
//
// All model state lives on the bubbletea event loop. The scheduler side
// (SetDigit/Flush) only assembles a frame and hands it to a pump goroutine,
// which forwards it with Program.Send, so a slow terminal never stalls the
// scheduler. If the pump is still busy with the previous frame the new one
// replaces it.
package terminal

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zgpcy/ledclock/internal/display"
	"github.com/zgpcy/ledclock/internal/segment"
)

// FrameMsg carries a complete set of digits into the model
type FrameMsg struct {
	Digits [display.Positions]int
}

// Model is the bubbletea model for the clock face
type Model struct {
	digits [display.Positions]int
	frames int
	on     lipgloss.Style
	off    lipgloss.Style
	width  int
	footer string
}

// NewModel creates a model drawing with the given palette
func NewModel(p display.Palette) Model {
	return Model{
		on:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.On.String())).Bold(true),
		off:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Off.String())),
		footer: "q to quit",
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		m.digits = msg.Digits
		m.frames++
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

// Digits returns the digits the model currently shows
func (m Model) Digits() [display.Positions]int {
	return m.digits
}

// View implements tea.Model
func (m Model) View() string {
	on := func(r rune) string { return m.on.Render(string(r)) }
	off := func(r rune) string { return m.off.Render(string(r)) }

	var glyphs [display.Positions][segment.Rows]string
	for i, d := range m.digits {
		glyphs[i] = segment.Text(d, on, off)
	}

	var b strings.Builder
	for row := 0; row < segment.Rows; row++ {
		b.WriteString(" ")
		for i := range glyphs {
			b.WriteString(glyphs[i][row])
			switch {
			case i == 1 || i == 3:
				b.WriteString(colon(row, on))
			case i%2 == 0:
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n ")
	b.WriteString(m.off.Render(m.footer))
	b.WriteString("\n")

	view := b.String()
	if m.width > 0 {
		view = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, view)
	}
	return view
}

// colon draws the separator column between digit pairs
func colon(row int, on func(rune) string) string {
	if row == 1 || row == 3 {
		return " " + on('•') + " "
	}
	return "   "
}

// Sink implements display.Sink by feeding a bubbletea program
type Sink struct {
	program *tea.Program
	send    func(tea.Msg)

	mu      sync.Mutex
	pending [display.Positions]int

	frames chan FrameMsg
	done   chan struct{}
	once   sync.Once
}

// New creates a terminal sink. opts are passed to tea.NewProgram.
func New(p display.Palette, opts ...tea.ProgramOption) *Sink {
	program := tea.NewProgram(NewModel(p), opts...)
	s := newSink(program.Send)
	s.program = program
	return s
}

func newSink(send func(tea.Msg)) *Sink {
	return &Sink{
		send:   send,
		frames: make(chan FrameMsg, 1),
		done:   make(chan struct{}),
	}
}

// SetDigit implements display.Sink
func (s *Sink) SetDigit(position, value int) {
	if position < 0 || position >= display.Positions {
		return
	}
	s.mu.Lock()
	s.pending[position] = value
	s.mu.Unlock()
}

// Flush implements display.Flusher. It never blocks.
func (s *Sink) Flush() {
	s.mu.Lock()
	f := FrameMsg{Digits: s.pending}
	s.mu.Unlock()

	for {
		select {
		case s.frames <- f:
			return
		default:
		}
		// replace a frame the pump has not picked up yet
		select {
		case <-s.frames:
		default:
		}
	}
}

// pump forwards frames to the program until stopped
func (s *Sink) pump() {
	for {
		select {
		case <-s.done:
			return
		case f := <-s.frames:
			s.send(f)
		}
	}
}

// Run starts the program and blocks until the user quits or Quit is called
func (s *Sink) Run() error {
	go s.pump()
	defer s.stop()
	_, err := s.program.Run()
	return err
}

// Quit asks the program to exit
func (s *Sink) Quit() {
	if s.program != nil {
		s.program.Quit()
	}
}

func (s *Sink) stop() {
	s.once.Do(func() { close(s.done) })
}
