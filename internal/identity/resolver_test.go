package identity

import (
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSelfAPI struct {
	mu       sync.Mutex
	calls    int
	failures int
	username string
}

func (f *fakeSelfAPI) GetMe() (tgbotapi.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return tgbotapi.User{}, errors.New("network unreachable")
	}
	return tgbotapi.User{UserName: f.username}, nil
}

func (f *fakeSelfAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestResolverFirstAttemptSucceeds(t *testing.T) {
	api := &fakeSelfAPI{username: "course_pay_bot"}
	holder := NewHolder()

	r := NewResolver(api, holder)
	r.Start()

	id := holder.Get()
	assert.True(t, id.Resolved)
	assert.Equal(t, "course_pay_bot", id.Username)
	assert.Equal(t, 1, api.callCount())
}

func TestResolverRetriesExactlyOnce(t *testing.T) {
	api := &fakeSelfAPI{username: "course_pay_bot", failures: 1}
	holder := NewHolder()

	r := NewResolver(api, holder)
	r.RetryDelay = 10 * time.Millisecond
	r.Start()

	assert.False(t, holder.Get().Resolved)

	require.Eventually(t, func() bool {
		return holder.Get().Resolved
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "course_pay_bot", holder.Get().Username)
	assert.Equal(t, 2, api.callCount())
}

func TestResolverStopsAfterSecondFailure(t *testing.T) {
	api := &fakeSelfAPI{username: "course_pay_bot", failures: 10}
	holder := NewHolder()

	r := NewResolver(api, holder)
	r.RetryDelay = 10 * time.Millisecond
	r.Start()

	// Ждём дольше нескольких интервалов повтора: третьей попытки нет
	time.Sleep(100 * time.Millisecond)

	assert.False(t, holder.Get().Resolved)
	assert.Equal(t, 2, api.callCount())
}

func TestBuildDeepLinks(t *testing.T) {
	id := BotIdentity{Username: "course_pay_bot", Resolved: true}

	links := BuildDeepLinks(id, "buy_arabic_course")
	assert.Equal(t, "tg://resolve?domain=course_pay_bot&start=buy_arabic_course", links.App)
	assert.Equal(t, "https://t.me/course_pay_bot?start=buy_arabic_course", links.Web)
	assert.Equal(t, "https://telegram.me/course_pay_bot?start=buy_arabic_course", links.Desktop)

	// Чистая функция: одинаковые входы - одинаковые выходы
	assert.Equal(t, links, BuildDeepLinks(id, "buy_arabic_course"))
}

func TestBuildDeepLinksUnresolved(t *testing.T) {
	links := BuildDeepLinks(BotIdentity{}, "buy_arabic_course")
	assert.Equal(t, DeepLinks{}, links)
}
