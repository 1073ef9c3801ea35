package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/Hoang105205/Online-Auction-sub001/internal/config"
)

// dmSession is the part of *discordgo.Session used for direct messages.
type dmSession interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord sends each notification as a direct message. Recipients are
// Discord user IDs. Only the REST API is used; no gateway connection is opened.
type Discord struct {
	session dmSession
}

// NewDiscord creates a Discord notifier authenticated as a bot.
func NewDiscord(cfg config.DiscordConfig) (*Discord, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	return &Discord{session: session}, nil
}

func (d *Discord) Notify(ctx context.Context, n Notification) error {
	ch, err := d.session.UserChannelCreate(n.Recipient, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("opening dm channel with %s: %w", n.Recipient, err)
	}
	if _, err := d.session.ChannelMessageSend(ch.ID, n.Message(), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("sending %s to %s: %w", n.Kind, n.Recipient, err)
	}
	return nil
}
