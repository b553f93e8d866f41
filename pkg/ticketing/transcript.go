package ticketing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fenris-bot/fenris/pkg/entities"
	"github.com/fenris-bot/fenris/pkg/logging"
)

// historyLimit caps the transcript at the most recent messages of a channel.
// Anything older is truncated silently; this is a deliberate cap, not a
// pagination contract.
const historyLimit = 100

// emptyContentPlaceholder stands in for messages with no text content, such
// as attachment-only or embed-only messages.
const emptyContentPlaceholder = "[no text content]"

// Archiver serializes a ticket channel's history into a durable transcript
// and forwards it to the guild's log channel.
type Archiver struct {
	// l is the logger.
	l *slog.Logger

	// platform is the chat-platform capability.
	platform Platform

	// dir is the directory transcripts are written to.
	dir string
}

// NewArchiver creates a new transcript archiver writing into dir.
func NewArchiver(l *slog.Logger, platform Platform, dir string) *Archiver {
	return &Archiver{
		l:        l,
		platform: platform,
		dir:      dir,
	}
}

// Archive renders the ticket channel's history oldest-first, writes it to a
// file keyed by the ticket ID (overwriting any prior artifact) and, if the
// guild has a log channel, sends a closure audit entry with the transcript
// attached. The written path is returned.
func (a *Archiver) Archive(ctx context.Context, ticket *entities.Ticket, guild *entities.Guild) (string, error) {
	messages, err := a.platform.Messages(ticket.ChannelID, historyLimit)
	if err != nil {
		return "", platformErr("fetch history", err)
	}

	path := filepath.Join(a.dir, fmt.Sprintf("ticket-%d.txt", ticket.ID))
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating transcript directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(renderTranscript(messages)), 0o644); err != nil {
		return "", fmt.Errorf("error writing transcript: %w", err)
	}

	if guild.TicketLogChannelID != "" {
		if err := a.sendClosureEntry(path, ticket, guild); err != nil {
			return "", err
		}
	}

	return path, nil
}

// renderTranscript renders messages as "[timestamp] author: content" lines in
// chronological order. The platform returns history newest first.
func renderTranscript(messages []*discordgo.Message) string {
	lines := make([]string, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]

		author := "unknown"
		if msg.Author != nil {
			author = msg.Author.Username
		}

		content := msg.Content
		if content == "" {
			content = emptyContentPlaceholder
		}

		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			msg.Timestamp.UTC().Format("2006-01-02 15:04:05"), author, content))
	}
	return strings.Join(lines, "\n")
}

// sendClosureEntry sends the closure audit embed with the transcript attached
// to the guild's log channel.
func (a *Archiver) sendClosureEntry(path string, ticket *entities.Ticket, guild *entities.Guild) error {
	// Resolve the creator for the audit entry. A resolution failure degrades
	// to an unknown-creator label rather than aborting the archive.
	creator := "Unknown"
	if user, err := a.platform.User(ticket.UserID); err == nil {
		creator = user.Mention()
	} else {
		a.l.Warn("Could not resolve ticket creator for audit entry",
			slog.Int(logging.KeyTicket, ticket.ID),
			slog.String(logging.KeyError, err.Error()))
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening transcript: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	_, err = a.platform.SendMessage(guild.TicketLogChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Ticket closed",
				Description: fmt.Sprintf("Ticket #%d was closed by <@%s>", ticket.ID, ticket.ClosedBy),
				Color:       0xe74c3c,
				Timestamp:   ticket.ClosedAt.Time().Format(time.RFC3339),
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Created by", Value: creator, Inline: true},
					{Name: "Category", Value: ticket.Category, Inline: true},
				},
			},
		},
		Files: []*discordgo.File{
			{
				Name:        filepath.Base(path),
				ContentType: "text/plain",
				Reader:      f,
			},
		},
	})
	if err != nil {
		return platformErr("send closure audit entry", err)
	}
	return nil
}
