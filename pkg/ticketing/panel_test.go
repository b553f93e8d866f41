package ticketing

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/fenris-bot/fenris/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestParseActivation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		customID string
		action   Action
		category string
	}{
		{
			name:     "create with category",
			customID: "create_ticket:Support",
			action:   ActionCreate,
			category: "Support",
		},
		{
			name:     "create preserves category casing",
			customID: "create_ticket:Bug Reports",
			action:   ActionCreate,
			category: "Bug Reports",
		},
		{
			name:     "close",
			customID: "close_ticket",
			action:   ActionClose,
		},
		{
			name:     "unrelated component",
			customID: "some_other_button",
			action:   ActionNone,
		},
		{
			name:     "empty",
			customID: "",
			action:   ActionNone,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			action, category := ParseActivation(test.customID)
			require.Equal(t, test.action, action)
			require.Equal(t, test.category, category)
		})
	}
}

func TestPanelMessage(t *testing.T) {
	t.Parallel()

	categories := []entities.TicketCategory{
		{Name: "Support"},
		{Name: "Billing"},
	}

	msg := PanelMessage(categories)
	require.Len(t, msg.Components, 1)

	row, ok := msg.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)

	for i, component := range row.Components {
		button, ok := component.(discordgo.Button)
		require.True(t, ok)
		require.Equal(t, categories[i].Name, button.Label)
		require.Equal(t, CreateTicketButtonPrefix+categories[i].Name, button.CustomID)
	}
}

func TestPanelMessageChunksRows(t *testing.T) {
	t.Parallel()

	// Seven categories need two rows: five buttons, then two.
	categories := make([]entities.TicketCategory, 7)
	for i := range categories {
		categories[i] = entities.TicketCategory{Name: fmt.Sprintf("Category %d", i+1)}
	}

	msg := PanelMessage(categories)
	require.Len(t, msg.Components, 2)

	first, ok := msg.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, first.Components, maxButtonsPerRow)

	second, ok := msg.Components[1].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, second.Components, 2)
}

func TestPanelRender(t *testing.T) {
	t.Parallel()

	platform := newFakePlatform()
	dal := newMemDal()
	panel := NewPanel(testLogger(), dal, platform)

	msg, err := panel.Render(context.Background(), "guild-1", "chan-panel")
	require.NoError(t, err)

	sent := platform.sentTo("chan-panel")
	require.Len(t, sent, 1)
	require.Equal(t, msg.ID, sent[0].ID)

	// The default configuration seeds a single Support category.
	row, ok := sent[0].Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 1)

	// The panel location is recorded as canonical.
	stored := dal.stored("guild-1")
	require.Equal(t, "chan-panel", stored.TicketChannelID)
	require.Equal(t, msg.ID, stored.PanelMessageID)
}
