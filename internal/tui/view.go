package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/corslab/corslab/client"
)

// View implements tea.Model
func (m Model) View() string {
	sections := []string{
		m.renderHeader(),
		m.renderActions(),
	}
	if s := m.renderState(); s != "" {
		sections = append(sections, s)
	}
	sections = append(sections, m.renderTip(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	mode := "browser emulation"
	if m.opts.Raw {
		mode = "raw, no browser emulation"
	}
	origin := m.opts.Origin
	if origin == "" {
		origin = "(none)"
	}
	return titleStyle.Render("CORS Demonstration") + "\n" +
		subtleStyle.Render(fmt.Sprintf("page origin %s → api %s (%s)", origin, m.opts.APIBaseURL, mode)) + "\n"
}

func (m Model) renderActions() string {
	var b strings.Builder
	loading := m.loading()
	for i, a := range m.actions {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		style := actionStyle
		if loading {
			style = disabledStyle
		}
		fmt.Fprintf(&b, "%s%s %s  %s\n",
			cursor,
			style.Render(fmt.Sprintf("%d. %s", i+1, a.Title)),
			subtleStyle.Render(a.Method+" "+a.Path),
			subtleStyle.Render(a.Hint),
		)
	}
	return b.String()
}

func (m Model) renderState() string {
	switch st := m.state.(type) {
	case client.Loading:
		return m.spinner.View() + " " + st.Action.Title + "…"
	case client.Success:
		body := panelTitleStyle.Render("API Response") + "\n" + st.Pretty()
		if trace := m.renderTrace(st.Response); trace != "" {
			body += "\n\n" + trace
		}
		return responseStyle.Render(body)
	case client.Failure:
		title := "Error"
		if st.Rejected {
			title = "CORS Error"
		}
		body := panelTitleStyle.Render(errorTextStyle.Render(title)) + "\n" + st.Message
		if trace := m.renderTrace(st.Response); trace != "" {
			body += "\n\n" + trace
		}
		return errorPanelStyle.Render(body)
	default:
		return ""
	}
}

// renderTrace lists the round trips of res and, if asked to, the headers
// the page could read.
func (m Model) renderTrace(res *client.Response) string {
	if res == nil {
		return ""
	}
	var lines []string
	for _, x := range res.Exchanges {
		lines = append(lines, subtleStyle.Render(x.String()))
	}
	if m.showHeaders {
		names := make([]string, 0, len(res.Header))
		for name := range res.Header {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			lines = append(lines, subtleStyle.Render(name+": "+strings.Join(res.Header[name], ", ")))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTip() string {
	return infoPanelStyle.Render(
		panelTitleStyle.Render("Check the server logs") + "\n" +
			"Look for preflight OPTIONS requests and for the Access-Control-Allow-Origin header.",
	)
}
