package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/bus"
	"github.com/finassist/fin/internal/chat"
)

// Download button labels.
const (
	DownloadLabel  = "Download Performance Data (Excel)"
	DownloadedText = "Downloaded Successfully!"
	DownloadFailed = "Download Failed - Try Again"
)

// downloadResetDelay is how long the download status stays before the
// label returns.
const downloadResetDelay = 2 * time.Second

// DownloadState is the label state of the download hint.
type DownloadState int

const (
	DownloadIdle DownloadState = iota
	DownloadDone
	DownloadError
)

// downloadResetMsg restores the download label unless a newer save happened.
type downloadResetMsg struct {
	Seq int
}

// ChatModel holds the state for the chat panel.
type ChatModel struct {
	Log       *chat.Log
	Input     textinput.Model
	Viewport  viewport.Model
	Spinner   spinner.Model
	Typing    bool
	Sensitive bool

	Download     DownloadState
	DownloadPath string
	DownloadErr  error
	downloadSeq  int

	queue *chat.Queue
	seq   int

	client      *api.Client
	bus         *bus.Bus[tea.Cmd]
	delay       time.Duration
	downloadDir string
	logger      *zap.Logger
	width       int
}

// NewChatModel creates a new chat model.
func NewChatModel(client *api.Client, b *bus.Bus[tea.Cmd], opts Options) *ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about your portfolio..."
	ti.CharLimit = 2000
	ti.Prompt = "› "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = DescStyle

	return &ChatModel{
		Log:         chat.NewLog(),
		Input:       ti,
		Viewport:    viewport.New(40, 10),
		Spinner:     sp,
		client:      client,
		bus:         b,
		delay:       opts.ProgressDelay,
		downloadDir: opts.DownloadDir,
		logger:      opts.Logger,
	}
}

// Init requests the assistant greeting unless the log already has messages.
func (m *ChatModel) Init() tea.Cmd {
	if m.Log.Len() > 0 {
		return nil
	}
	m.Typing = true
	return tea.Batch(InitChat(m.client), m.Spinner.Tick)
}

// SetSize sets the panel's dimensions.
func (m *ChatModel) SetSize(width, height int) {
	m.width = width
	m.Input.Width = max(width-4, 10)
	// input and download line
	m.Viewport.Width = width
	m.Viewport.Height = max(height-3, 3)
	m.refresh()
}

// Focus gives the input keyboard focus.
func (m *ChatModel) Focus() tea.Cmd {
	return m.Input.Focus()
}

// Blur removes keyboard focus from the input.
func (m *ChatModel) Blur() {
	m.Input.Blur()
}

// Send shows text as a user message and dispatches it. Credential pairs are
// stored instead of being sent to the assistant; the performance quick
// action goes to the report endpoint.
func (m *ChatModel) Send(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sensitive := m.Sensitive || chat.ContainsAPIKey(text)
	m.Log.AddUser(chat.Display(text, sensitive))
	m.Input.SetValue("")
	m.setSensitive(false)
	m.Typing = true
	m.refresh()

	var cmd tea.Cmd
	if creds, ok := chat.ParseCredentials(text); ok {
		m.logger.Info("storing broker credentials")
		cmd = StoreCredentials(m.client, creds)
	} else if text == chat.PerformanceRequest {
		cmd = RequestPerformanceReport(m.client)
	} else {
		cmd = SendChat(m.client, text)
	}
	return tea.Batch(cmd, m.Spinner.Tick)
}

// Submit places text in the input and sends it, as if typed.
func (m *ChatModel) Submit(text string) tea.Cmd {
	m.Input.SetValue(text)
	return m.Send(text)
}

func (m *ChatModel) setSensitive(on bool) {
	m.Sensitive = on
	if on {
		m.Input.EchoMode = textinput.EchoPassword
	} else {
		m.Input.EchoMode = textinput.EchoNormal
	}
}

// Update handles messages for the chat panel.
func (m *ChatModel) Update(msg tea.Msg) (*ChatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ChatResponseMsg:
		return m, m.present(msg.Response)

	case ChatErrorMsg:
		m.Typing = false
		flushed := m.finishQueue()
		m.Log.AddError(errorText(msg.Err, msg.Init))
		m.logger.Warn("chat request failed", zap.Bool("init", msg.Init), zap.Error(msg.Err))
		m.refresh()
		return m, flushed

	case ChatStepMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		return m, m.nextStep()

	case CredentialsSavedMsg:
		m.Typing = false
		text := chat.CredentialsStoredText
		if msg.Response != nil && msg.Response.Message != "" {
			text = msg.Response.Message
		}
		m.Log.AddAssistant(chat.RenderText(text), nil)
		m.refresh()
		var metrics api.Metrics
		if msg.Response != nil {
			metrics = msg.Response.Metrics
		}
		return m, publish(m.bus, bus.CredentialsStored{Metrics: metrics})

	case ChatClearedMsg:
		var flushed tea.Cmd
		pending := m.queue
		if msg.Err != nil {
			m.Log.AddError(chat.ErrorPrefix + msg.Err.Error())
		} else {
			m.Typing = false
			m.queue = nil
			m.Log.Clear()
			flushed = m.flushActions(pending)
		}
		m.refresh()
		return m, flushed

	case AttachmentSavedMsg:
		m.downloadSeq++
		if msg.Err != nil {
			m.Download = DownloadError
			m.DownloadErr = msg.Err
			m.logger.Warn("attachment save failed", zap.Error(msg.Err))
		} else {
			m.Download = DownloadDone
			m.DownloadPath = msg.Path
		}
		seq := m.downloadSeq
		return m, tea.Tick(downloadResetDelay, func(time.Time) tea.Msg {
			return downloadResetMsg{Seq: seq}
		})

	case downloadResetMsg:
		if msg.Seq == m.downloadSeq {
			m.Download = DownloadIdle
		}
		return m, nil

	case spinner.TickMsg:
		if !m.Typing {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *ChatModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		return m.Send(m.Input.Value())
	case tea.KeyCtrlS:
		a := m.Log.LastAttachment()
		if a == nil {
			return nil
		}
		return SaveAttachment(m.downloadDir, a)
	case tea.KeyCtrlL:
		return ClearChat(m.client)
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.Viewport, cmd = m.Viewport.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	m.setSensitive(chat.ContainsAPIKey(m.Input.Value()))
	return cmd
}

// present starts pacing a response. Steps still queued from an earlier
// answer are shown at once.
func (m *ChatModel) present(resp *api.ChatResponse) tea.Cmd {
	flushed := m.finishQueue()
	m.queue = chat.Plan(resp, m.delay)
	m.seq++
	return tea.Batch(flushed, m.nextStep())
}

// nextStep shows the next queued step and schedules the one after it.
func (m *ChatModel) nextStep() tea.Cmd {
	if m.queue == nil {
		return nil
	}
	step, ok := m.queue.Next()
	if !ok {
		m.Typing = false
		m.queue = nil
		return nil
	}
	cmd := m.apply(step)
	if step.Kind == chat.StepProgress {
		seq := m.seq
		return tea.Batch(cmd, tea.Tick(step.Delay, func(time.Time) tea.Msg {
			return ChatStepMsg{Seq: seq}
		}))
	}
	if step.Kind == chat.StepFinal {
		m.Typing = false
		m.queue = nil
	}
	return cmd
}

// finishQueue applies every remaining step immediately.
func (m *ChatModel) finishQueue() tea.Cmd {
	if m.queue == nil {
		return nil
	}
	var cmds []tea.Cmd
	for {
		step, ok := m.queue.Next()
		if !ok {
			break
		}
		cmds = append(cmds, m.apply(step))
	}
	m.queue = nil
	return tea.Batch(cmds...)
}

// flushActions publishes the action of a discarded answer without showing
// any of its steps.
func (m *ChatModel) flushActions(q *chat.Queue) tea.Cmd {
	if q == nil {
		return nil
	}
	var cmds []tea.Cmd
	for {
		step, ok := q.Next()
		if !ok {
			break
		}
		if step.Kind == chat.StepFinal && step.Action != nil {
			cmds = append(cmds, publish(m.bus, bus.BotAction{Action: *step.Action}))
		}
	}
	return tea.Batch(cmds...)
}

func (m *ChatModel) apply(step chat.Step) tea.Cmd {
	step.Apply(m.Log)
	if step.Attachment != nil {
		m.Download = DownloadIdle
	}
	m.refresh()
	if step.Kind == chat.StepFinal && step.Action != nil {
		m.logger.Debug("assistant action", zap.String("type", step.Action.Type))
		return publish(m.bus, bus.BotAction{Action: *step.Action})
	}
	return nil
}

// errorText picks the inline error for a failed request. Errors reported by
// the backend in a successful response are shown verbatim.
func errorText(err error, init bool) string {
	var appErr *api.AppError
	if errors.As(err, &appErr) {
		return chat.ErrorPrefix + appErr.Message
	}
	if init {
		return chat.InitError
	}
	return chat.GenericError
}

// refresh re-renders the log into the viewport and scrolls to the bottom.
func (m *ChatModel) refresh() {
	m.Viewport.SetContent(m.renderLog())
	m.Viewport.GotoBottom()
}

func (m *ChatModel) renderLog() string {
	width := max(m.Viewport.Width-2, 10)
	var b strings.Builder
	for i, msg := range m.Log.Messages() {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case msg.Role == chat.RoleUser:
			bubble := UserBubbleStyle.Width(min(lipgloss.Width(msg.Text)+2, width)).Render(msg.Text)
			b.WriteString(lipgloss.PlaceHorizontal(m.Viewport.Width, lipgloss.Right, bubble))
		case msg.Error:
			b.WriteString(ErrorBubbleStyle.Width(width).Render(msg.Text))
		case msg.Progress:
			b.WriteString(ProgressBubbleStyle.Width(width).Render(msg.Text))
		default:
			b.WriteString(BotBubbleStyle.Width(width).Render(msg.Text))
			if msg.Attachment != nil {
				b.WriteString("\n  ")
				b.WriteString(AttachmentStyle.Render("📎 " + chat.AttachmentFilename(msg.Attachment)))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// View renders the chat panel.
func (m *ChatModel) View() string {
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")

	status := ""
	if m.Typing {
		status = m.Spinner.View() + DescStyle.Render(" typing...")
	} else if m.Log.LastAttachment() != nil {
		switch m.Download {
		case DownloadDone:
			status = GreenStyle.Render("✓ "+DownloadedText) + DescStyle.Render(" "+m.DownloadPath)
		case DownloadError:
			status = ErrorStyle.Render("⚠ " + DownloadFailed)
		default:
			status = KeyStyle.Render("ctrl+s") + " " + DescStyle.Render(DownloadLabel)
		}
	}
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}
