// Package telegram checks Telegram-side conditions of externally completed
// tasks through the Bot API.
package telegram

import (
	"fmt"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

var ErrUnverifiableTarget = errors.New("telegram target cannot be verified")

// ChatMemberGetter is the part of *tgbotapi.BotAPI the verifier needs.
type ChatMemberGetter interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

type MembershipVerifier struct {
	bot ChatMemberGetter
}

func NewMembershipVerifier(botToken string, debug bool) (*MembershipVerifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	bot.Debug = debug

	return &MembershipVerifier{bot: bot}, nil
}

func NewMembershipVerifierWithClient(bot ChatMemberGetter) *MembershipVerifier {
	return &MembershipVerifier{bot: bot}
}

// IsMember reports whether userID currently belongs to the public chat named
// by target. The bot must be a member of that chat.
func (v *MembershipVerifier) IsMember(userID int64, target string) (bool, error) {
	chat, err := ChatFromTarget(target)
	if err != nil {
		return false, err
	}

	member, err := v.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: chat,
			UserID:             userID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to get chat member: %w", err)
	}

	switch member.Status {
	case "creator", "administrator", "member":
		return true, nil
	case "restricted":
		return member.IsMember, nil
	default:
		return false, nil
	}
}

// ChatFromTarget turns a task target such as "https://t.me/channel" or
// "@channel" into the "@channel" form the Bot API accepts. Private invite
// links cannot be resolved to a chat.
func ChatFromTarget(target string) (string, error) {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "@") {
		if len(target) == 1 {
			return "", ErrUnverifiableTarget
		}
		return target, nil
	}

	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnverifiableTarget, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "t.me" && host != "telegram.me" {
		return "", ErrUnverifiableTarget
	}

	name := strings.Trim(u.Path, "/")
	if i := strings.Index(name, "/"); i >= 0 {
		name = name[:i]
	}
	if name == "" || strings.HasPrefix(name, "+") || name == "joinchat" {
		return "", ErrUnverifiableTarget
	}

	return "@" + name, nil
}
