package telegram

import (
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/countrystats/internal/catalog"
	"github.com/rewired-gh/countrystats/internal/models"
)

type fakeBot struct {
	failures int
	sent     []tgbotapi.MessageConfig
	calls    int
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.calls++
	if f.calls <= f.failures {
		return tgbotapi.Message{}, errors.New("Too Many Requests")
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func newTestClient(t *testing.T, bot *fakeBot, maxRetries int) (*Client, *[]time.Duration) {
	t.Helper()
	c, err := newClient(bot, "12345", maxRetries, time.Second)
	if err != nil {
		t.Fatalf("newClient failed: %v", err)
	}
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func TestNewClient_InvalidChatID(t *testing.T) {
	if _, err := newClient(&fakeBot{}, "not-a-number", 3, time.Second); err == nil {
		t.Error("expected error for invalid chat ID")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := newClient(&fakeBot{}, "-100200", 0, 0)
	if err != nil {
		t.Fatalf("newClient failed: %v", err)
	}
	if c.maxRetries != 3 {
		t.Errorf("maxRetries = %d, expected 3", c.maxRetries)
	}
	if c.retryDelayBase != time.Second {
		t.Errorf("retryDelayBase = %v, expected 1s", c.retryDelayBase)
	}
	if c.chatID != -100200 {
		t.Errorf("chatID = %d, expected -100200", c.chatID)
	}
}

func TestSendError(t *testing.T) {
	bot := &fakeBot{}
	c, _ := newTestClient(t, bot, 3)

	if err := c.SendError("ERROR READING API"); err != nil {
		t.Fatalf("SendError failed: %v", err)
	}
	if len(bot.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(bot.sent))
	}
	msg := bot.sent[0]
	if msg.ChatID != 12345 {
		t.Errorf("ChatID = %d, expected 12345", msg.ChatID)
	}
	if msg.ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Errorf("ParseMode = %q, expected MarkdownV2", msg.ParseMode)
	}
	if !strings.HasSuffix(msg.Text, "ERROR READING API") {
		t.Errorf("unexpected text: %q", msg.Text)
	}
}

func TestSend_RetriesWithLinearBackoff(t *testing.T) {
	bot := &fakeBot{failures: 2}
	c, slept := newTestClient(t, bot, 3)

	if err := c.SendError("boom"); err != nil {
		t.Fatalf("SendError failed: %v", err)
	}
	if bot.calls != 3 {
		t.Errorf("calls = %d, expected 3", bot.calls)
	}
	expected := []time.Duration{time.Second, 2 * time.Second}
	if len(*slept) != len(expected) || (*slept)[0] != expected[0] || (*slept)[1] != expected[1] {
		t.Errorf("slept = %v, expected %v", *slept, expected)
	}
}

func TestSend_GivesUp(t *testing.T) {
	bot := &fakeBot{failures: 10}
	c, _ := newTestClient(t, bot, 2)

	err := c.SendError("boom")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if bot.calls != 2 {
		t.Errorf("calls = %d, expected 2", bot.calls)
	}
}

func TestErrorObserverSwallowsFailures(t *testing.T) {
	bot := &fakeBot{failures: 10}
	c, _ := newTestClient(t, bot, 1)

	c.ErrorObserver()("boom")

	if bot.calls != 1 {
		t.Errorf("calls = %d, expected 1", bot.calls)
	}
}

func TestFormatAnalysis(t *testing.T) {
	co2, _ := catalog.IndicatorByCode("EN.ATM.CO2E.PC")
	state := models.NewState(models.StateParams{
		ID:        "run-1",
		Country:   0,
		Indicator: co2,
		StartYear: 2010,
		EndYear:   2011,
	})

	t.Run("valid", func(t *testing.T) {
		text := formatAnalysis(state.WithVerdict(true, ""), "Year 2010:\n\t\tForest => 38.7")
		if !strings.Contains(text, "Canada \\(CAN\\)") {
			t.Errorf("missing escaped country: %q", text)
		}
		if !strings.Contains(text, "2010 \\- 2011") {
			t.Errorf("missing year range: %q", text)
		}
		if !strings.Contains(text, "```\nYear 2010:") {
			t.Errorf("report not in pre block: %q", text)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		text := formatAnalysis(state.WithVerdict(false, "missing data"), "ignored")
		if strings.Contains(text, "ignored") {
			t.Errorf("invalid analysis must not include the report: %q", text)
		}
		if !strings.Contains(text, "Dataset incomplete") {
			t.Errorf("expected incomplete marker: %q", text)
		}
	})
}

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"CO2 (metric tons)", "CO2 \\(metric tons\\)"},
		{"38.7", "38\\.7"},
		{"a_b*c", "a\\_b\\*c"},
		{"back\\slash", "back\\\\slash"},
	}

	for _, tt := range tests {
		if result := escapeMarkdownV2(tt.input); result != tt.expected {
			t.Errorf("escapeMarkdownV2(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestEscapeCode(t *testing.T) {
	if got := escapeCode("a`b\\c.d"); got != "a\\`b\\\\c.d" {
		t.Errorf("escapeCode = %q", got)
	}
}
