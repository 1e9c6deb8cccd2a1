package tui

import (
	"context"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corslab/corslab/client"
)

type stubDoer struct {
	res *client.Response
	err error
}

func (d stubDoer) Fetch(context.Context, client.Action) (*client.Response, error) {
	return d.res, d.err
}

func newTestModel(d client.Doer) Model {
	return NewModel(context.Background(), client.NewDispatcher(d), Options{
		APIBaseURL: "http://localhost:3001",
		Origin:     "http://localhost:5173",
	})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds msg to m and runs the resulting commands, except spinner
// ticks, feeding their messages back.
func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for _, msg := range run(cmd) {
		next, _ = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var msgs []tea.Msg
		for _, c := range msg {
			msgs = append(msgs, run(c)...)
		}
		return msgs
	case resultMsg:
		return []tea.Msg{msg}
	default:
		return nil
	}
}

func TestNavigation(t *testing.T) {
	m := newTestModel(stubDoer{})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)
	m = press(t, m, runes("j"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.cursor)
	for range 10 {
		m = press(t, m, runes("j"))
	}
	assert.Equal(t, len(client.Actions())-1, m.cursor)
}

func TestDispatchSuccess(t *testing.T) {
	res := &client.Response{
		Status: http.StatusOK,
		Body:   []byte(`{"message":"This is public data accessible from any origin"}`),
		Header: http.Header{"Content-Type": {"application/json"}},
		Exchanges: []client.Exchange{
			{Method: http.MethodGet, URL: "http://localhost:3001/api/public", Status: http.StatusOK},
		},
	}
	m := newTestModel(stubDoer{res: res})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	loading := next.(Model)
	require.NotNil(t, cmd)
	assert.IsType(t, client.Loading{}, loading.state)
	assert.False(t, loading.keys.Run.Enabled())
	assert.Contains(t, loading.View(), "Public Request…")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.IsType(t, client.Success{}, m.state)
	assert.True(t, m.keys.Run.Enabled())
	view := m.View()
	assert.Contains(t, view, "API Response")
	assert.Contains(t, view, `"message": "This is public data accessible from any origin"`)
	assert.Contains(t, view, "GET http://localhost:3001/api/public -> 200")
	assert.NotContains(t, view, "Content-Type: application/json")

	m = press(t, m, runes("h"))
	assert.Contains(t, m.View(), "Content-Type: application/json")

	m = press(t, m, runes("c"))
	assert.Equal(t, client.Idle{}, m.state)
	assert.NotContains(t, m.View(), "API Response")
}

func TestDispatchFailure(t *testing.T) {
	m := newTestModel(stubDoer{err: &client.CORSError{Reason: "no Access-Control-Allow-Origin header is present on the requested resource"}})
	m = press(t, m, runes("2"))
	assert.Equal(t, 1, m.cursor)
	require.IsType(t, client.Failure{}, m.state)
	view := m.View()
	assert.Contains(t, view, "CORS Error")
	assert.Contains(t, view, "Network Error")

	m = newTestModel(stubDoer{res: &client.Response{
		Status: http.StatusUnauthorized,
		Body:   []byte(`{"error":"Unauthorized"}`),
	}})
	m = press(t, m, runes("4"))
	view = m.View()
	assert.NotContains(t, view, "CORS Error")
	assert.Contains(t, view, "Unauthorized")
}

func TestPickOutOfRange(t *testing.T) {
	m := newTestModel(stubDoer{})
	next, cmd := m.Update(runes("9"))
	assert.Nil(t, cmd)
	assert.Equal(t, client.Idle{}, next.(Model).state)
}

func TestNoDispatchWhileLoading(t *testing.T) {
	m := newTestModel(stubDoer{})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next, cmd := next.(Model).Update(runes("3"))
	assert.Nil(t, cmd)
	assert.Equal(t, 0, next.(Model).cursor)
}

func TestQuit(t *testing.T) {
	m := newTestModel(stubDoer{})
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestHeaderShowsMode(t *testing.T) {
	m := newTestModel(stubDoer{})
	assert.Contains(t, m.View(), "browser emulation")
	m.opts.Raw = true
	m.opts.Origin = ""
	assert.Contains(t, m.View(), "raw, no browser emulation")
	assert.Contains(t, m.View(), "(none)")
}
