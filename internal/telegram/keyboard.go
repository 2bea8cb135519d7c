package telegram

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/set-night/clipwatch/internal/domain"
)

const (
	CampaignCallbackPrefix = "campaign_"
	// NoopCallback marks buttons that only display state.
	NoopCallback = "cur"
)

// CampaignPreviewKeyboard shows the campaign status and pending payout count
// above a button that recalculates the preview.
func CampaignPreviewKeyboard(c domain.Campaign, pending int) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: fmt.Sprintf("%s · %d pending", c.Status, pending), CallbackData: NoopCallback}},
			{{Text: "🔄 Refresh", CallbackData: CampaignCallbackPrefix + c.ID}},
		},
	}
}

// CampaignIDFromCallback extracts the campaign id from refresh callback data.
func CampaignIDFromCallback(data string) (string, bool) {
	id, ok := strings.CutPrefix(data, CampaignCallbackPrefix)
	return id, ok && id != ""
}
