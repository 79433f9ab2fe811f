package tui

import (
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/bus"
	"github.com/finassist/fin/internal/chat"
)

var (
	testKeyID  = strings.Repeat("A", 32)
	testSecret = strings.Repeat("B", 64)
)

func newTestChat(t *testing.T) (*ChatModel, *backend, *bus.Bus[tea.Cmd]) {
	t.Helper()
	b := newBackend(t)
	eb := testBus()
	m := NewChatModel(b.client(), eb, testOptions(t))
	m.SetSize(60, 20)
	return m, b, eb
}

// deliver feeds msgs to the chat model and returns the messages its
// commands produce.
func deliver(t *testing.T, m *ChatModel, msgs ...tea.Msg) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	for _, msg := range msgs {
		_, cmd := m.Update(msg)
		out = append(out, runCmd(t, cmd)...)
	}
	return out
}

func lastText(m *ChatModel) string {
	msgs := m.Log.Messages()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Text
}

func TestChat_InitShowsGreeting(t *testing.T) {
	m, b, _ := newTestChat(t)

	msgs := runCmd(t, m.Init())
	assert.True(t, m.Typing)

	resp, ok := findMsg[ChatResponseMsg](msgs)
	require.True(t, ok)
	assert.True(t, resp.Init)

	deliver(t, m, resp)
	assert.Equal(t, "Hello! How can I help?", lastText(m))
	assert.False(t, m.Typing)
	assert.Equal(t, []string{api.InitMessage}, b.chatMessages(t))
}

func TestChat_InitSkippedWhenLogHasMessages(t *testing.T) {
	m, _, _ := newTestChat(t)
	m.Log.AddAssistant("earlier", nil)

	assert.Nil(t, m.Init())
}

func TestChat_InitFailure(t *testing.T) {
	m, b, _ := newTestChat(t)
	b.respond("/chat", http.StatusInternalServerError, `{}`)

	deliver(t, m, runCmd(t, m.Init())...)

	assert.Equal(t, chat.InitError, lastText(m))
	assert.True(t, m.Log.Messages()[0].Error)
}

func TestChat_SendMasksKeysAndResetsSensitiveMode(t *testing.T) {
	m, b, _ := newTestChat(t)
	key := "PK" + strings.Repeat("X", 20)

	m.Input.SetValue(key)
	m.setSensitive(true)
	assert.Equal(t, textinput.EchoPassword, m.Input.EchoMode)

	msgs := runCmd(t, m.Send(key))

	assert.Equal(t, chat.MaskedAPIKey, m.Log.Messages()[0].Text)
	assert.False(t, m.Sensitive)
	assert.Equal(t, textinput.EchoNormal, m.Input.EchoMode)
	assert.Empty(t, m.Input.Value())
	assert.Equal(t, []string{key}, b.chatMessages(t))

	_, ok := findMsg[ChatResponseMsg](msgs)
	assert.True(t, ok)
}

func TestChat_TypingAPIKeySwitchesToPassword(t *testing.T) {
	m, _, _ := newTestChat(t)

	for _, r := range strings.Repeat("k", 32) {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.True(t, m.Sensitive)
	assert.Equal(t, textinput.EchoPassword, m.Input.EchoMode)

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.False(t, m.Sensitive)
}

func TestChat_SendIgnoresBlank(t *testing.T) {
	m, _, _ := newTestChat(t)

	assert.Nil(t, m.Send("   "))
	assert.Equal(t, 0, m.Log.Len())
}

func TestChat_CredentialsAreStoredNotSent(t *testing.T) {
	m, b, eb := newTestChat(t)
	var stored []bus.CredentialsStored
	bus.On(eb, func(e bus.CredentialsStored) tea.Cmd {
		stored = append(stored, e)
		return nil
	})

	msgs := runCmd(t, m.Send(testKeyID+" "+testSecret))

	assert.Equal(t, chat.MaskedAPIKey, m.Log.Messages()[0].Text)
	assert.Empty(t, b.chatMessages(t))
	require.Len(t, b.requestsTo("/api/store_alpaca_credentials"), 1)
	assert.Contains(t, b.requestsTo("/api/store_alpaca_credentials")[0].Body, testSecret)

	deliver(t, m, msgs...)
	assert.Equal(t, "Credentials saved", lastText(m))
	require.Len(t, stored, 1)
	assert.Equal(t, "$1,000.00", stored[0].Metrics[api.MetricTotalValue])
}

func TestChat_PerformanceRequestUsesReportEndpoint(t *testing.T) {
	m, b, _ := newTestChat(t)

	deliver(t, m, runCmd(t, m.Send(chat.PerformanceRequest))...)

	assert.Empty(t, b.chatMessages(t))
	assert.Len(t, b.requestsTo("/api/portfolio/performance"), 1)
	assert.Equal(t, "Here is your report", lastText(m))
}

func TestChat_ProgressMessagesArePaced(t *testing.T) {
	m, _, _ := newTestChat(t)
	resp := &api.ChatResponse{
		Response:         "Done",
		ProgressMessages: []string{"Fetching data", "Crunching"},
	}

	_, cmd := m.Update(ChatResponseMsg{Response: resp})
	require.NotNil(t, cmd)
	assert.Equal(t, "Fetching data", lastText(m))
	assert.True(t, m.Log.Messages()[0].Progress)
	assert.True(t, m.Typing)

	// A step from an earlier answer does nothing
	m.Update(ChatStepMsg{Seq: m.seq - 1})
	assert.Equal(t, "Fetching data", lastText(m))

	m.Update(ChatStepMsg{Seq: m.seq})
	assert.Equal(t, "Crunching", lastText(m))
	assert.Equal(t, 1, m.Log.Len(), "progress replaces progress")

	m.Update(ChatStepMsg{Seq: m.seq})
	assert.Equal(t, "Done", lastText(m))
	assert.Equal(t, 1, m.Log.Len())
	assert.False(t, m.Typing)
}

func TestChat_InProgressKeepsTyping(t *testing.T) {
	m, _, _ := newTestChat(t)

	m.Update(ChatResponseMsg{Response: &api.ChatResponse{Response: "Working on it", InProgress: true}})

	assert.Equal(t, "Working on it", lastText(m))
	assert.True(t, m.Typing)
}

func TestChat_ErrorTexts(t *testing.T) {
	m, _, _ := newTestChat(t)

	m.Update(ChatErrorMsg{Err: &api.AppError{Message: "rate limited"}})
	assert.Equal(t, "❌ Error: rate limited", lastText(m))

	m.Update(ChatErrorMsg{Err: &api.APIError{StatusCode: 500}})
	assert.Equal(t, chat.GenericError, lastText(m))

	m.Update(ChatErrorMsg{Err: errors.New("connection refused")})
	assert.Equal(t, chat.GenericError, lastText(m))
}

func TestChat_ActionIsPublished(t *testing.T) {
	m, _, eb := newTestChat(t)
	var got []string
	bus.On(eb, func(e bus.BotAction) tea.Cmd {
		got = append(got, e.Action.Type)
		return nil
	})

	m.Update(ChatResponseMsg{Response: &api.ChatResponse{
		Response: "Opening positions",
		Action:   &api.Action{Type: api.ActionShowPositions},
	}})

	assert.Equal(t, []string{api.ActionShowPositions}, got)
}

func TestChat_SaveAttachment(t *testing.T) {
	m, _, _ := newTestChat(t)
	content := []byte("xlsx bytes")
	m.Update(ChatResponseMsg{Response: &api.ChatResponse{
		Response:      "Report ready",
		HasAttachment: true,
		Attachment: &api.Attachment{
			Data:     base64.StdEncoding.EncodeToString(content),
			Filename: "performance.xlsx",
		},
	}})
	assert.Contains(t, m.View(), DownloadLabel)

	msgs := deliver(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	saved, ok := findMsg[AttachmentSavedMsg](msgs)
	require.True(t, ok)
	require.NoError(t, saved.Err)

	_, cmd := m.Update(saved)
	assert.NotNil(t, cmd)
	assert.Equal(t, DownloadDone, m.Download)
	assert.Contains(t, m.View(), DownloadedText)

	data, err := os.ReadFile(filepath.Join(m.downloadDir, "performance.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, content, data)

	// An older reset does not clear a newer status
	m.Update(downloadResetMsg{Seq: m.downloadSeq - 1})
	assert.Equal(t, DownloadDone, m.Download)
	m.Update(downloadResetMsg{Seq: m.downloadSeq})
	assert.Equal(t, DownloadIdle, m.Download)
}

func TestChat_SaveAttachmentFailure(t *testing.T) {
	m, _, _ := newTestChat(t)

	m.Update(AttachmentSavedMsg{Err: chat.ErrInvalidAttachment})

	assert.Equal(t, DownloadError, m.Download)
}

func TestChat_SaveWithoutAttachmentDoesNothing(t *testing.T) {
	m, _, _ := newTestChat(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
}

func TestChat_Clear(t *testing.T) {
	m, b, _ := newTestChat(t)
	m.Log.AddUser("hi")
	m.Log.AddAssistant("hello", nil)

	deliver(t, m, deliver(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})...)

	assert.Len(t, b.requestsTo("/chat/clear"), 1)
	assert.Equal(t, 0, m.Log.Len())
}

func TestChat_RendersHTMLAnswers(t *testing.T) {
	m, _, _ := newTestChat(t)

	m.Update(ChatResponseMsg{Response: &api.ChatResponse{Response: "Line one<br>Line two"}})

	assert.Equal(t, "Line one\nLine two", lastText(m))
}
