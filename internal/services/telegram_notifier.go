package services

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/example/pandol/internal/report"
	"github.com/example/pandol/internal/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const telegramAPI = "https://api.telegram.org"

// TelegramNotifier sends admin notifications to a Telegram chat. With no bot
// token or chat configured it only logs.
type TelegramNotifier struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
	log         logrus.FieldLogger
}

func NewTelegramNotifier(botToken, adminChatID string, log logrus.FieldLogger) *TelegramNotifier {
	return &TelegramNotifier{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     telegramAPI,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log.WithField("component", "telegram"),
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage posts an HTML formatted message to chatID.
func (n *TelegramNotifier) SendMessage(ctx context.Context, chatID, text string) error {
	if n.botToken == "" {
		n.log.Debug("bot token not configured")
		return nil
	}

	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return errors.Wrap(err, "encode telegram message")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build telegram request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send telegram message")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// SendToAdmin sends text to the configured admin chat.
func (n *TelegramNotifier) SendToAdmin(ctx context.Context, text string) error {
	if n.adminChatID == "" {
		n.log.Debug("admin chat not configured")
		return nil
	}
	return n.SendMessage(ctx, n.adminChatID, text)
}

// NotifyCreditAlert tells admins a member is close to their credit limit.
func (n *TelegramNotifier) NotifyCreditAlert(ctx context.Context, alert CreditAlert) error {
	message := fmt.Sprintf(`<b>Credit limit alert</b>
<b>Member:</b> %s (%s)
<b>Balance:</b> %s
<b>Limit:</b> %s
<b>Utilization:</b> %s`,
		html.EscapeString(alert.MemberName),
		utils.MemberCode(alert.MemberID),
		report.Money(alert.Balance.InexactFloat64()),
		report.Money(alert.Limit.InexactFloat64()),
		alert.Utilization,
	)

	n.log.WithField("member_id", alert.MemberID).Info("sending credit alert")
	return n.SendToAdmin(ctx, strings.TrimSpace(message))
}
