package client

import (
	"chat-relay/domain"
	"chat-relay/infrastructure/wire"
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Formatter renders observed events for the terminal. Colours can be
// switched off for dumb terminals and tests.
type Formatter struct {
	Me      string
	Colours bool
}

func (f Formatter) RoomConnected(participants []wire.ParticipantDTO) string {
	b := &strings.Builder{}
	b.WriteString("\n")
	b.WriteString(f.paint("Participants:", color.FgGreen))
	b.WriteString("\n")

	table := tablewriter.NewWriter(b)
	table.SetHeader([]string{"CLIENT", "JOINED AT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, p := range participants {
		name := p.ClientID
		if p.ClientID == f.Me {
			name += " (me)"
		}
		table.Append([]string{name, domain.Timestamp(p.JoinedAt).RFC3339()})
	}
	table.Render()
	return b.String()
}

func (f Formatter) ParticipantJoined(frame wire.ParticipantJoinedFrame) string {
	line := fmt.Sprintf("+ %s entered at %s", frame.ClientID, domain.Timestamp(frame.JoinedAt).RFC3339())
	return "\n" + f.paint(line, color.FgCyan) + "\n"
}

func (f Formatter) ParticipantLeft(frame wire.ParticipantLeftFrame) string {
	line := fmt.Sprintf("- %s left at %s", frame.ClientID, domain.Timestamp(frame.LeftAt).RFC3339())
	return "\n" + f.paint(line, color.FgYellow) + "\n"
}

func (f Formatter) Chat(frame wire.ChatFrame) string {
	header := f.paint(fmt.Sprintf("@%s", frame.From), color.FgGreen)
	return fmt.Sprintf("\n%s: %s\nsent at %s\n", header, frame.Content, domain.Timestamp(frame.SentAt).RFC3339())
}

func (f Formatter) SentConfirmation(at domain.Timestamp) string {
	return fmt.Sprintf("sent at %s\n", at.RFC3339())
}

func (f Formatter) Rejected(frame wire.ErrorFrame) string {
	return "\n" + f.paint(fmt.Sprintf("! message rejected: %s", frame.Reason), color.FgRed) + "\n"
}

func (f Formatter) Raw(data []byte) string {
	return fmt.Sprintf("\n%s\n", data)
}

func (f Formatter) paint(s string, c color.Color) string {
	if !f.Colours {
		return s
	}
	return color.New(c).Render(s)
}
