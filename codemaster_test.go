package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"github.com/aryehlev/codemaster/config"
	"github.com/aryehlev/codemaster/models"
	"github.com/aryehlev/codemaster/producer"
	"github.com/aryehlev/codemaster/source"
)

const (
	testUser = int64(1001)
	testChat = int64(2002)
)

// fakeTelegram serves queued updates to the poller and records sent messages.
type fakeTelegram struct {
	lock    sync.Mutex
	queue   []tgbotapi.Update
	sent    []tgbotapi.MessageConfig
	nextID  int
	pollErr error
}

func (f *fakeTelegram) push(text string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.nextID++
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: testUser},
		Chat: &tgbotapi.Chat{ID: testChat},
		Text: text,
	}
	if text[0] == '/' {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	f.queue = append(f.queue, tgbotapi.Update{UpdateID: f.nextID, Message: msg})
}

func (f *fakeTelegram) GetUpdates(conf tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	f.lock.Lock()
	if f.pollErr != nil {
		err := f.pollErr
		f.lock.Unlock()
		return nil, err
	}
	var out []tgbotapi.Update
	for _, u := range f.queue {
		if u.UpdateID >= conf.Offset {
			out = append(out, u)
		}
	}
	f.lock.Unlock()

	if len(out) == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	return out, nil
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) texts() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

type sevens struct{}

func (sevens) IntN(n int) int { return 7 % n }

type memoryPublisher struct {
	lock   sync.Mutex
	events []models.Event
	closed bool
}

func (m *memoryPublisher) Publish(ev models.Event) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memoryPublisher) Close() error {
	m.closed = true
	return nil
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		BotToken:     "test",
		RecordsFile:  filepath.Join(t.TempDir(), "records.json"),
		Partitions:   2,
		RestartDelay: time.Millisecond,
		SendRetries:  1,
	}
}

func TestPlayGame(t *testing.T) {
	cfg := testConfig(t)
	tg := &fakeTelegram{}
	pub := &memoryPublisher{}
	cm := New(cfg, tg, "CodeMasterBot", pub, sevens{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- cm.Run(ctx) }()

	tg.push("/start")
	tg.push("/newgame")
	tg.push("7000")
	tg.push("0070")
	tg.push("7777")
	tg.push("/record")

	require.Eventually(t, func() bool { return len(tg.texts()) == 7 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	require.NoError(t, cm.Close())
	require.True(t, pub.closed)

	texts := tg.texts()
	require.Contains(t, texts[0], "Код‑Мастер 4")
	require.Equal(t, "🎲 Я загадал новый 4‑значный код. Удачи!", texts[1])
	require.Equal(t, "Результат: `7***`", texts[2])
	require.Equal(t, "Результат: `7*7*`", texts[3])
	require.Equal(t, "Результат: `7777`", texts[4])
	require.Contains(t, texts[5], "угадан за *3* попыток")
	require.Contains(t, texts[5], "Это новый рекорд!")
	require.Equal(t, "Ваш лучший результат — *3* попыток.", texts[6])

	data, err := os.ReadFile(cfg.RecordsFile)
	require.NoError(t, err)
	require.JSONEq(t, `{"1001": 3}`, string(data))

	for _, m := range tg.sent {
		require.Equal(t, testChat, m.ChatID)
	}

	require.Len(t, pub.events, 2)
	require.Equal(t, models.GameWon, pub.events[1].Type)
}

func TestRecordsSurviveRestart(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.RecordsFile, []byte(`{"1001": 5}`), 0o644))

	tg := &fakeTelegram{}
	cm := New(cfg, tg, "CodeMasterBot", producer.NopPublisher{}, sevens{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- cm.Run(ctx) }()

	tg.push("/record")
	require.Eventually(t, func() bool { return len(tg.texts()) == 1 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	require.Equal(t, "Ваш лучший результат — *5* попыток.", tg.texts()[0])
}

func TestRunFailsOnRejectedToken(t *testing.T) {
	tg := &fakeTelegram{pollErr: &tgbotapi.Error{Code: 401, Message: "Unauthorized"}}
	cm := New(testConfig(t), tg, "CodeMasterBot", producer.NopPublisher{}, sevens{})

	err := cm.Run(context.Background())
	require.ErrorIs(t, err, source.ErrUnauthorized)
}
