// Package ui provides the interactive speech deck: pick a language and
// voice, audition it, tune prosody, and submit text for full synthesis.
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/mattn/go-runewidth"
	te "github.com/muesli/termenv"
	"github.com/sahilm/fuzzy"

	"github.com/dgnsrekt/ttsdeck/tts"
)

const (
	minListHeight = 3
	prosodyStep   = 5
)

// Deps are the core components the UI drives. They are constructed by the
// caller so the UI stays testable against fakes.
type Deps struct {
	Client   *tts.Client
	Catalog  *tts.Catalog
	Preview  *tts.PreviewController
	Generate *tts.GenerationController
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, deps Deps) *tea.Program {
	log.Debug("starting ttsdeck", "language", cfg.Language, "voice", cfg.Voice)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	if cfg.StdinUsed {
		opts = append(opts, tea.WithInputTTY())
	}
	return tea.NewProgram(newModel(cfg, deps), opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type editorFinishedMsg struct {
	path string
	err  error
}

type statusMessageMsg string

// focusArea tracks which pane receives key input.
type focusArea int

const (
	focusControls focusArea = iota
	focusText
	focusFilter
)

type model struct {
	cfg  Config
	deps Deps
	ctx  context.Context

	width  int
	height int

	focus focusArea

	// Language picker
	languages   []string
	languageIdx int

	// Voice list
	voices      []tts.Voice
	visible     []int // indices into voices after filtering
	voiceCursor int
	voice       string
	filterInput textinput.Model
	filterQuery string
	loading     bool

	// Prosody
	prosody tts.Prosody

	// Text entry
	textarea     textarea.Model
	showRendered bool
	rendered     string

	spinner  spinner.Model
	status   *statusDisplay
	note     string
	fatalErr error
}

func newModel(cfg Config, deps Deps) tea.Model {
	ta := textarea.New()
	ta.Placeholder = "Type or paste the text to speak…"
	ta.CharLimit = tts.MaxTextLength
	ta.ShowLineNumbers = false
	if cfg.InitialText != "" {
		ta.SetValue(cfg.InitialText)
	}

	fi := textinput.New()
	fi.Prompt = "/"
	fi.Placeholder = "filter voices"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = warnStyle

	languages := cfg.Languages
	if len(languages) == 0 {
		languages = tts.DefaultLanguages()
	}
	languageIdx := 0
	for i, l := range languages {
		if l == cfg.Language {
			languageIdx = i
			break
		}
	}

	return model{
		cfg:         cfg,
		deps:        deps,
		ctx:         context.Background(),
		focus:       focusControls,
		languages:   languages,
		languageIdx: languageIdx,
		voice:       cfg.Voice,
		prosody:     cfg.Prosody.Clamped(),
		filterInput: fi,
		textarea:    ta,
		spinner:     sp,
		status:      newStatusDisplay(),
		loading:     true,
	}
}

func (m model) language() string {
	return m.languages[m.languageIdx]
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tts.LoadVoicesCmd(m.ctx, m.deps.Catalog, m.language()),
		tts.CheckHealthCmd(m.ctx, m.deps.Client),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(msg.Width - 4)
		m.textarea.SetHeight(maxInt(msg.Height/3, 3))
		m.filterInput.Width = maxInt(msg.Width/3, 10)
		if m.showRendered {
			m.rendered = m.renderText()
		}

	case tts.VoicesLoadedMsg:
		if !m.deps.Catalog.Apply(msg.Result) {
			// Superseded; the load that replaced it will refresh the list.
			return m, nil
		}
		m.loading = false
		if msg.Result.Err != nil {
			log.Warn("voice load failed", "language", msg.Result.Language, "err", msg.Result.Err)
			m.status.setError(msg.Result.Err)
		} else {
			m.status.setError(nil)
		}
		m.voices = m.deps.Catalog.Voices()
		m.applyFilter()
		m.ensureVoiceSelection()

	case tts.PreviewFetchedMsg:
		// Resolve reports failures through the controller; surface them in
		// the status bar and keep going.
		if err := m.deps.Preview.Resolve(msg.Request, msg.Data, msg.Err); err != nil {
			m.status.setError(err)
		}
		m.syncPreviewStatus()

	case tts.GenerationDoneMsg:
		gen, err := m.deps.Generate.Resolve(msg.Result, msg.Err)
		m.status.setGeneration(false, gen)
		if err != nil {
			m.status.setError(err)
		} else {
			m.note = "generated " + gen.FileID
		}

	case tts.HealthCheckedMsg:
		m.status.setHealth(msg.Err == nil && msg.Status.Status == "healthy")

	case editorFinishedMsg:
		if msg.err != nil {
			m.status.setError(msg.err)
			break
		}
		body, err := os.ReadFile(msg.path)
		_ = os.Remove(msg.path)
		if err != nil {
			m.status.setError(err)
			break
		}
		m.textarea.SetValue(strings.TrimRight(string(body), "\n"))
		if m.showRendered {
			m.rendered = m.renderText()
		}

	case statusMessageMsg:
		m.note = string(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy() {
			cmds = append(cmds, cmd)
		}

	case errMsg:
		m.fatalErr = msg.err
	}

	// The preview state can change off the event loop when playback reaches
	// end of media, so refresh the status segment on every pass.
	m.syncPreviewStatus()

	if m.focus == focusText {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global bindings first.
	switch msg.String() {
	case "ctrl+c":
		m.deps.Preview.Shutdown()
		return m, tea.Quit

	case "ctrl+g":
		return m.startGeneration()

	case "ctrl+e":
		return m.openEditor()

	case "tab":
		if m.focus == focusText {
			m.focus = focusControls
			m.textarea.Blur()
		} else {
			m.focus = focusText
			m.filterInput.Blur()
			return m, m.textarea.Focus()
		}
		return m, nil
	}

	switch m.focus {
	case focusText:
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	case focusFilter:
		switch msg.String() {
		case "esc":
			m.focus = focusControls
			m.filterInput.Blur()
			m.filterInput.SetValue("")
			m.filterQuery = ""
			m.applyFilter()
			return m, nil
		case "enter":
			m.focus = focusControls
			m.filterInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			if q := m.filterInput.Value(); q != m.filterQuery {
				m.filterQuery = q
				m.applyFilter()
			}
			return m, cmd
		}
	}

	// Controls focus.
	switch msg.String() {
	case "q", "esc":
		m.deps.Preview.Shutdown()
		return m, tea.Quit

	case "left", "h":
		return m.changeLanguage(-1)
	case "right", "l":
		return m.changeLanguage(1)

	case "up", "k":
		m.moveVoiceCursor(-1)
		return m, nil
	case "down", "j":
		m.moveVoiceCursor(1)
		return m, nil

	case "/":
		m.focus = focusFilter
		return m, m.filterInput.Focus()

	case "p", " ":
		return m.startPreview()

	case "s":
		m.deps.Preview.Stop()
		m.syncPreviewStatus()
		return m, nil

	case "c":
		return m.copyDownloadURL()

	case "v":
		m.showRendered = !m.showRendered
		if m.showRendered {
			m.rendered = m.renderText()
		}
		return m, nil

	case "-", "_":
		return m.adjustProsody(-prosodyStep, 0, 0)
	case "+", "=":
		return m.adjustProsody(prosodyStep, 0, 0)
	case "[":
		return m.adjustProsody(0, -prosodyStep, 0)
	case "]":
		return m.adjustProsody(0, prosodyStep, 0)
	case "{":
		return m.adjustProsody(0, 0, -prosodyStep)
	case "}":
		return m.adjustProsody(0, 0, prosodyStep)
	case "0":
		if !m.prosody.IsDefault() {
			m.prosody = tts.Prosody{}
			m.invalidatePreview()
		}
		return m, nil
	}

	return m, nil
}

// changeLanguage steps the language picker. Each change clears the voice
// selection and starts exactly one catalog load; the preview, if live, is
// scoped to the old selection and must stop.
func (m model) changeLanguage(delta int) (tea.Model, tea.Cmd) {
	n := len(m.languages)
	m.languageIdx = ((m.languageIdx+delta)%n + n) % n

	m.invalidatePreview()
	m.voice = ""
	m.voiceCursor = 0
	m.loading = true
	m.note = ""

	return m, tea.Batch(
		tts.LoadVoicesCmd(m.ctx, m.deps.Catalog, m.language()),
		m.spinner.Tick,
	)
}

func (m *model) moveVoiceCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	next := m.voiceCursor + delta
	if next < 0 || next >= len(m.visible) {
		return
	}
	m.voiceCursor = next

	chosen := m.voices[m.visible[m.voiceCursor]].ShortName
	if chosen != m.voice {
		m.voice = chosen
		m.invalidatePreview()
	}
}

// ensureVoiceSelection keeps the selected voice valid for the current
// catalog, falling back to the catalog default.
func (m *model) ensureVoiceSelection() {
	if m.voice != "" {
		for i, vi := range m.visible {
			if m.voices[vi].ShortName == m.voice {
				m.voiceCursor = i
				return
			}
		}
	}

	m.voice = ""
	m.voiceCursor = 0
	if def, ok := m.deps.Catalog.Default(); ok {
		m.voice = def
		for i, vi := range m.visible {
			if m.voices[vi].ShortName == def {
				m.voiceCursor = i
				break
			}
		}
	}
}

// applyFilter recomputes the visible voice indices from the fuzzy query.
func (m *model) applyFilter() {
	if m.filterQuery == "" {
		m.visible = make([]int, len(m.voices))
		for i := range m.voices {
			m.visible[i] = i
		}
	} else {
		haystack := make([]string, len(m.voices))
		for i, v := range m.voices {
			haystack[i] = v.ShortName + " " + v.FriendlyName
		}
		matches := fuzzy.Find(m.filterQuery, haystack)
		m.visible = make([]int, len(matches))
		for i, match := range matches {
			m.visible[i] = match.Index
		}
	}

	if m.voiceCursor >= len(m.visible) {
		m.voiceCursor = maxInt(len(m.visible)-1, 0)
	}
}

// adjustProsody applies a prosody delta. The settings are part of the live
// preview's identity, so any change stops it.
func (m model) adjustProsody(dRate, dPitch, dVolume int) (tea.Model, tea.Cmd) {
	next := tts.Prosody{
		Rate:   m.prosody.Rate + dRate,
		Pitch:  m.prosody.Pitch + dPitch,
		Volume: m.prosody.Volume + dVolume,
	}.Clamped()

	if next != m.prosody {
		m.prosody = next
		m.invalidatePreview()
	}
	return m, nil
}

func (m *model) invalidatePreview() {
	m.deps.Preview.Stop()
	m.syncPreviewStatus()
}

func (m *model) syncPreviewStatus() {
	session, active := m.deps.Preview.Session()
	if active {
		m.status.setPreview(m.deps.Preview.State(), session.Voice)
	} else {
		m.status.setPreview(tts.StateIdle, "")
	}
}

func (m model) startPreview() (tea.Model, tea.Cmd) {
	req, err := m.deps.Preview.Begin(m.voice, m.language(), m.prosody)
	if err != nil {
		m.status.setError(err)
		return m, nil
	}
	m.status.setError(nil)
	m.syncPreviewStatus()
	return m, tea.Batch(
		tts.FetchPreviewCmd(m.ctx, m.deps.Preview, req),
		m.spinner.Tick,
	)
}

func (m model) startGeneration() (tea.Model, tea.Cmd) {
	req, err := m.deps.Generate.Begin(m.textarea.Value(), m.voice, m.prosody)
	if err != nil {
		m.status.setError(err)
		return m, nil
	}
	m.status.setError(nil)
	m.status.setGeneration(true, nil)
	m.note = ""
	return m, tea.Batch(
		tts.SubmitGenerationCmd(m.ctx, m.deps.Generate, req),
		m.spinner.Tick,
	)
}

func (m model) copyDownloadURL() (tea.Model, tea.Cmd) {
	result := m.deps.Generate.Result()
	if result == nil {
		m.status.setError(fmt.Errorf("nothing generated yet"))
		return m, nil
	}
	if err := clipboard.WriteAll(result.PlayableURL); err != nil {
		m.status.setError(fmt.Errorf("copy to clipboard: %w", err))
		return m, nil
	}
	return m, func() tea.Msg { return statusMessageMsg("download link copied") }
}

func (m model) openEditor() (tea.Model, tea.Cmd) {
	f, err := os.CreateTemp("", "ttsdeck-*.md")
	if err != nil {
		m.status.setError(err)
		return m, nil
	}
	path := f.Name()
	if _, err := f.WriteString(m.textarea.Value()); err != nil {
		f.Close()
		m.status.setError(err)
		return m, nil
	}
	f.Close()

	c, err := editor.Cmd("ttsdeck", path)
	if err != nil {
		m.status.setError(err)
		return m, nil
	}
	return m, tea.ExecProcess(c, func(err error) tea.Msg {
		return editorFinishedMsg{path: path, err: err}
	})
}

func (m model) busy() bool {
	return m.loading || m.deps.Generate.Loading() || m.deps.Preview.State() == tts.StateRequesting
}

func (m model) renderText() string {
	width := m.width - 4
	if width < 20 {
		width = 20
	}
	style := m.cfg.GlamourStyle
	if style == "" {
		if te.HasDarkBackground() {
			style = "dark"
		} else {
			style = "light"
		}
	}
	opts := []glamour.TermRendererOption{
		glamour.WithWordWrap(width),
		glamour.WithStylePath(style),
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return m.textarea.Value()
	}
	out, err := r.Render(m.textarea.Value())
	if err != nil {
		return m.textarea.Value()
	}
	return out
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("ttsdeck"))
	b.WriteString("\n\n")

	b.WriteString(m.languageView())
	b.WriteString("\n\n")
	b.WriteString(m.voiceListView())
	b.WriteString("\n")
	b.WriteString(m.prosodyView())
	b.WriteString("\n\n")

	if m.showRendered {
		b.WriteString(labelStyle.Render("Text (rendered)"))
		b.WriteString("\n")
		b.WriteString(m.rendered)
	} else {
		b.WriteString(labelStyle.Render("Text"))
		b.WriteString("\n")
		b.WriteString(m.textarea.View())
	}
	b.WriteString("\n\n")

	if r := m.deps.Generate.Result(); r != nil && !m.deps.Generate.Loading() {
		b.WriteString(labelStyle.Render("Download: "))
		b.WriteString(urlStyle.Render(r.PlayableURL))
		b.WriteString("\n")
	}
	if m.note != "" {
		b.WriteString(okStyle.Render(m.note))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status.View(m.width, m.spinner.View()))
	b.WriteString("\n")
	b.WriteString(helpView())

	return b.String()
}

func (m model) languageView() string {
	lang := m.language()
	name := tts.LanguageDisplayName(lang)
	line := labelStyle.Render("Language  ") +
		subtleStyle.Render("◀ ") +
		selectedStyle.Render(fmt.Sprintf("%s (%s)", name, lang)) +
		subtleStyle.Render(" ▶")
	return line
}

func (m model) voiceListView() string {
	var b strings.Builder

	header := labelStyle.Render("Voice")
	if m.filterQuery != "" || m.focus == focusFilter {
		header += "  " + m.filterInput.View()
	}
	b.WriteString(header)
	b.WriteString("\n")

	if m.loading {
		b.WriteString(subtleStyle.Render(m.spinner.View() + " loading voices…"))
		b.WriteString("\n")
		return b.String()
	}
	if len(m.visible) == 0 {
		b.WriteString(subtleStyle.Render("no voices available"))
		b.WriteString("\n")
		return b.String()
	}

	// Window the list around the cursor.
	window := maxInt(m.height/3, minListHeight)
	start := 0
	if m.voiceCursor >= window {
		start = m.voiceCursor - window + 1
	}
	end := minInt(start+window, len(m.visible))

	for i := start; i < end; i++ {
		v := m.voices[m.visible[i]]
		line := fmt.Sprintf("%s  %s · %s", v.ShortName, v.Gender, v.FriendlyName)
		if m.width > 8 {
			line = runewidth.Truncate(line, m.width-4, "…")
		}
		if i == m.voiceCursor {
			b.WriteString(cursorStyle.Render("> ") + selectedStyle.Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if end < len(m.visible) {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("  … %d more", len(m.visible)-end)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) prosodyView() string {
	p := m.prosody.Encoded()
	return labelStyle.Render("Prosody   ") +
		fmt.Sprintf("rate %s  pitch %s  volume %s", p.Rate, p.Pitch, p.Volume) +
		subtleStyle.Render("   (-/+ [/] {/} adjust · 0 reset)")
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
